package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendanceAPI "rohis/internal/adapters/api/attendance"
	authAPI "rohis/internal/adapters/api/auth"
	calendarAPI "rohis/internal/adapters/api/calendar"
	chatAPI "rohis/internal/adapters/api/chat"
	divisionAPI "rohis/internal/adapters/api/division"
	sessionAPI "rohis/internal/adapters/api/session"
	userAPI "rohis/internal/adapters/api/user"
	"rohis/internal/adapters/http/middleware"
	"rohis/internal/adapters/http/perf"
	"rohis/internal/adapters/storage/websession"
	"rohis/internal/application/orchestrators"
	"rohis/internal/domain/account"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Stores holds the backend API stores the pages read and write through.
type Stores struct {
	Auth       authAPI.Store
	Users      userAPI.Store
	Divisions  divisionAPI.Store
	Sessions   sessionAPI.Store
	Attendance attendanceAPI.Store
	Calendar   calendarAPI.Store
	Chat       chatAPI.Store
}

// Options configures the web layer.
type Options struct {
	Production     bool
	APIBaseURL     string // prefixes relative profile picture paths
	CSRFKey        string // hex, 32 bytes; generated per start when empty outside production
	TrustedOrigins []string
	SessionTTL     time.Duration
	LoginPerMinute int
	SlowRequestMs  int
}

// loadCSRFKey decodes the configured CSRF secret (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("ROHIS_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("ROHIS_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_generated", "detail", "forms will not survive a restart; set ROHIS_CSRF_KEY for production")
	return key, nil
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global options (set by NewMux)
var options Options

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// LoginRateLimitPerMinute controls the per-IP rate of login attempts. Tests can increase this.
var LoginRateLimitPerMinute = 5

// MaxFormBytes caps any request body; MaxPictureRequestBytes leaves room for multipart framing around a picture.
const (
	MaxFormBytes           = 1 << 20
	MaxPictureRequestBytes = orchestrators.MaxPictureBytes + 1<<20
)

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// NewMux wires HTTP handlers for the app.
// PRE: every store in s is set; sessionStore is the web-session backend
// POST: returns the full middleware chain around the router
func NewMux(opts Options, s *Stores, collector *perf.Collector, sessionStore websession.Store) (http.Handler, error) {
	stores = s
	options = opts
	perfCollector = collector
	if options.SessionTTL <= 0 {
		options.SessionTTL = 24 * time.Hour
	}
	if opts.LoginPerMinute > 0 {
		LoginRateLimitPerMinute = opts.LoginPerMinute
	}

	csrfKey, err := loadCSRFKey(opts.CSRFKey, opts.Production)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> SecurityHeaders -> BodyLimit -> CSRF -> Session -> Mux
	return middleware.Chain(mux,
		middleware.Session(sessionStore, middleware.SessionOptions{TTL: options.SessionTTL, Secure: opts.Production}),
		middleware.CSRF(csrfKey, middleware.CSRFOptions{Secure: opts.Production, TrustedOrigins: opts.TrustedOrigins}),
		middleware.BodyLimit(MaxFormBytes, map[string]int64{"POST /profile/picture": MaxPictureRequestBytes}),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequestMs),
	), nil
}

// registerRoutes maps every browser and operational route.
func registerRoutes(mux *http.ServeMux) {
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	loginLimiter := middleware.NewRateLimiter(LoginRateLimitPerMinute, time.Minute)
	mux.Handle("GET /login", withAuth(http.HandlerFunc(handleLoginForm)))
	mux.Handle("POST /login", middleware.Chain(http.HandlerFunc(handleLogin),
		withAuth,
		middleware.RateLimit(loginLimiter),
	))
	mux.Handle("POST /logout", withAuth(http.HandlerFunc(handleLogout)))
	mux.HandleFunc("GET /403", handleForbidden)

	mux.Handle("GET /{$}", page(http.HandlerFunc(handleRoot)))
	mux.Handle("GET /dashboard", page(http.HandlerFunc(handleDashboard)))

	mux.Handle("GET /members", page(http.HandlerFunc(handleMembers), account.MarkerRoles...))

	mux.Handle("GET /attendance", page(http.HandlerFunc(handleAttendance)))
	mux.Handle("POST /attendance/sessions", page(http.HandlerFunc(handleCreateSession), account.MarkerRoles...))
	mux.Handle("POST /attendance/sessions/{id}/delete", page(http.HandlerFunc(handleDeleteSession), account.MarkerRoles...))
	mux.Handle("POST /attendance/mark", page(http.HandlerFunc(handleMarkAttendance), account.MarkerRoles...))

	mux.Handle("GET /divisions", page(http.HandlerFunc(handleDivisions), account.ManagerRoles...))
	mux.Handle("POST /divisions", page(http.HandlerFunc(handleCreateDivision), account.ManagerRoles...))
	mux.Handle("POST /divisions/{id}/delete", page(http.HandlerFunc(handleDeleteDivision), account.ManagerRoles...))
	mux.Handle("POST /divisions/{id}/permission", page(http.HandlerFunc(handleDivisionPermission), account.ManagerRoles...))
	mux.Handle("POST /divisions/{id}/members", page(http.HandlerFunc(handleAssignDivisionMember), account.ManagerRoles...))
	mux.Handle("POST /divisions/{id}/members/{userID}/delete", page(http.HandlerFunc(handleRemoveDivisionMember), account.ManagerRoles...))

	mux.Handle("GET /calendar", page(http.HandlerFunc(handleCalendar)))

	mux.Handle("GET /profile", page(http.HandlerFunc(handleProfile)))
	mux.Handle("POST /profile", page(http.HandlerFunc(handleUpdateProfile)))
	mux.Handle("POST /profile/password", page(http.HandlerFunc(handleChangePassword)))
	mux.Handle("POST /profile/picture", page(http.HandlerFunc(handleUploadPicture)))

	mux.Handle("GET /chat", page(http.HandlerFunc(handleChat)))
	mux.Handle("POST /chat", page(http.HandlerFunc(handleSendChat)))

	mux.Handle("GET /admin/perf", page(http.HandlerFunc(handleAdminPerf), account.RoleAdmin))

	mux.HandleFunc("/", handleNotFound)
}

// withAuth builds the request's auth context from the backend.
func withAuth(next http.Handler) http.Handler {
	return middleware.Auth(stores.Auth)(next)
}

// page guards a signed-in page: auth refresh, then the route guard, then the optional role gate.
func page(h http.Handler, roles ...string) http.Handler {
	mws := []func(http.Handler) http.Handler{}
	if len(roles) > 0 {
		mws = append(mws, middleware.RequireRole(roles...))
	}
	mws = append(mws, middleware.RequireAuth(http.HandlerFunc(handleLoading)), withAuth)
	return middleware.Chain(h, mws...)
}
