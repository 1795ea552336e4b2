package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backend names accepted by ROHIS_SESSION_BACKEND.
const (
	SessionSQLite = "sqlite"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// Config is the server's runtime configuration.
type Config struct {
	Env            string
	Addr           string
	APIURL         string
	SessionBackend string
	DBPath         string
	RedisAddr      string
	SessionTTL     time.Duration
	CSRFKey        string
	TrustedOrigins []string
	RateLimit      int // requests per second per IP
	LoginRateLimit int // login attempts per minute per IP
	SlowRequestMs  int
	SlowBackendMs  int
	LogLevel       string
	LogFormat      string
}

// Load reads the environment, after merging a .env file in the working directory when present.
// Variables already set in the process environment win over the file.
// PRE: none
// POST: returns a validated Config, or an error naming the first bad variable
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:            getEnv("ROHIS_ENV", "development"),
		Addr:           getEnv("ROHIS_ADDR", ":8080"),
		APIURL:         strings.TrimRight(getEnv("ROHIS_API_URL", "http://localhost:5000"), "/"),
		SessionBackend: strings.ToLower(getEnv("ROHIS_SESSION_BACKEND", SessionSQLite)),
		DBPath:         getEnv("ROHIS_DB_PATH", "rohis.db"),
		RedisAddr:      getEnv("ROHIS_REDIS_ADDR", "localhost:6379"),
		CSRFKey:        os.Getenv("ROHIS_CSRF_KEY"),
		TrustedOrigins: listEnv("ROHIS_TRUSTED_ORIGINS"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("ROHIS_SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = intEnv("ROHIS_RATE_LIMIT", 10); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateLimit, err = intEnv("ROHIS_LOGIN_RATE_LIMIT", 5); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequestMs, err = intEnv("ROHIS_SLOW_REQUEST_MS", 200); err != nil {
		return Config{}, err
	}
	if cfg.SlowBackendMs, err = intEnv("ROHIS_SLOW_BACKEND_MS", 300); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.SessionBackend {
	case SessionSQLite, SessionRedis, SessionMemory:
	default:
		return fmt.Errorf("ROHIS_SESSION_BACKEND must be sqlite, redis or memory, got %q", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return errors.New("ROHIS_SESSION_TTL must be positive")
	}
	if c.RateLimit <= 0 || c.LoginRateLimit <= 0 {
		return errors.New("rate limits must be positive")
	}
	if c.Production() && c.CSRFKey == "" {
		return errors.New("ROHIS_CSRF_KEY is required in production")
	}
	return nil
}

// Production reports whether ROHIS_ENV is production.
func (c Config) Production() bool {
	return c.Env == "production"
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
