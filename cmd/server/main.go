package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	attendanceAPI "rohis/internal/adapters/api/attendance"
	authAPI "rohis/internal/adapters/api/auth"
	calendarAPI "rohis/internal/adapters/api/calendar"
	chatAPI "rohis/internal/adapters/api/chat"
	divisionAPI "rohis/internal/adapters/api/division"
	sessionAPI "rohis/internal/adapters/api/session"
	userAPI "rohis/internal/adapters/api/user"
	"rohis/internal/adapters/backend"
	web "rohis/internal/adapters/http"
	"rohis/internal/adapters/http/perf"
	"rohis/internal/adapters/storage"
	"rohis/internal/adapters/storage/websession"
	"rohis/internal/application/orchestrators"
	"rohis/internal/config"
	"rohis/internal/telemetry"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const purgeInterval = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

// run wires the application and serves until a signal arrives or the listener fails.
// POST: deferred cleanup has run before it returns
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	slog.SetDefault(cfg.NewLogger())

	shutdownTelemetry := telemetry.Setup("rohis-dashboard", version)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	// Performance instrumentation shared by requests, backend calls and session queries
	collector := perf.NewCollector(perf.DefaultRingSize)

	sessionStore, closeSessions, err := openSessionStore(cfg, collector)
	if err != nil {
		return fmt.Errorf("open web session store: %w", err)
	}
	defer closeSessions()

	stopPurge := make(chan struct{})
	orchestrators.StartPurgeWorker(orchestrators.PurgeSessionsDeps{Sessions: sessionStore}, purgeInterval, stopPurge)
	defer close(stopPurge)

	metrics, err := backend.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register backend metrics: %w", err)
	}
	client := backend.NewClient(cfg.APIURL, backend.NewTransport(nil, collector, metrics, cfg.SlowBackendMs))

	stores := &web.Stores{
		Auth:       authAPI.NewHTTPStore(client),
		Users:      userAPI.NewHTTPStore(client),
		Divisions:  divisionAPI.NewHTTPStore(client),
		Sessions:   sessionAPI.NewHTTPStore(client),
		Attendance: attendanceAPI.NewHTTPStore(client),
		Calendar:   calendarAPI.NewHTTPStore(client),
		Chat:       chatAPI.NewHTTPStore(client),
	}

	web.RateLimitPerSecond = cfg.RateLimit
	mux, err := web.NewMux(web.Options{
		Production:     cfg.Production(),
		APIBaseURL:     cfg.APIURL,
		CSRFKey:        cfg.CSRFKey,
		TrustedOrigins: cfg.TrustedOrigins,
		SessionTTL:     cfg.SessionTTL,
		LoginPerMinute: cfg.LoginRateLimit,
		SlowRequestMs:  cfg.SlowRequestMs,
	}, stores, collector, sessionStore)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(mux, "rohis-dashboard"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_starting",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"api", cfg.APIURL,
			"session_backend", cfg.SessionBackend,
		)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openSessionStore selects the web session backend named by the configuration.
// POST: the returned close func releases the underlying connection
func openSessionStore(cfg config.Config, collector *perf.Collector) (websession.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionMemory:
		slog.Warn("web_sessions_in_memory", "detail", "sessions are lost on restart")
		return websession.NewMemoryStore(cfg.SessionTTL), func() {}, nil

	case config.SessionRedis:
		client := websession.NewRedisClient(cfg.RedisAddr)
		store := websession.NewRedisStore(client, cfg.SessionTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if !store.Healthy(ctx) {
			client.Close()
			return nil, nil, errors.New("redis unreachable at " + cfg.RedisAddr)
		}
		return store, func() { client.Close() }, nil

	default:
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("database_ready", "path", cfg.DBPath, "schema", storage.LatestSchemaVersion())
		timed := storage.NewTimedDB(db, collector, storage.DefaultSlowQueryMs)
		return websession.NewSQLiteStore(timed, cfg.SessionTTL), func() { db.Close() }, nil
	}
}
