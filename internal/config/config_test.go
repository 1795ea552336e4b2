package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

// TestFromEnv_Defaults returns the documented defaults on an empty environment.
func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ROHIS_ENV", "ROHIS_ADDR", "ROHIS_API_URL", "ROHIS_SESSION_BACKEND", "ROHIS_DB_PATH",
		"ROHIS_REDIS_ADDR", "ROHIS_SESSION_TTL", "ROHIS_CSRF_KEY", "ROHIS_TRUSTED_ORIGINS", "ROHIS_RATE_LIMIT",
		"ROHIS_LOGIN_RATE_LIMIT", "ROHIS_SLOW_REQUEST_MS", "ROHIS_SLOW_BACKEND_MS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.APIURL != "http://localhost:5000" || cfg.SessionBackend != SessionSQLite {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.RateLimit != 10 || cfg.LoginRateLimit != 5 {
		t.Errorf("unexpected limits: %+v", cfg)
	}
	if cfg.Production() {
		t.Error("default env must not be production")
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
}

// TestFromEnv_Overrides parses typed values and trims the API URL.
func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ROHIS_API_URL", "https://api.rohis.id/")
	t.Setenv("ROHIS_SESSION_BACKEND", "Redis")
	t.Setenv("ROHIS_SESSION_TTL", "2h")
	t.Setenv("ROHIS_TRUSTED_ORIGINS", "rohis.id, , admin.rohis.id")
	t.Setenv("ROHIS_LOGIN_RATE_LIMIT", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.APIURL != "https://api.rohis.id" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.SessionBackend != SessionRedis || cfg.SessionTTL != 2*time.Hour || cfg.LoginRateLimit != 3 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if strings.Join(cfg.TrustedOrigins, "|") != "rohis.id|admin.rohis.id" {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
}

// TestFromEnv_Invalid names the offending variable.
func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"ROHIS_SESSION_BACKEND", "postgres", "ROHIS_SESSION_BACKEND"},
		{"ROHIS_SESSION_TTL", "soon", "ROHIS_SESSION_TTL"},
		{"ROHIS_RATE_LIMIT", "ten", "ROHIS_RATE_LIMIT"},
		{"ROHIS_RATE_LIMIT", "0", "rate limits"},
		{"ROHIS_ENV", "production", "ROHIS_CSRF_KEY"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv("ROHIS_CSRF_KEY", "")
			t.Setenv(tc.key, tc.value)
			_, err := FromEnv()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}
