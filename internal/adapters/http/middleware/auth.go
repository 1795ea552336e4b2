package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"rohis/internal/adapters/backend"
	"rohis/internal/application/auth"
)

// Decision is the route guard's verdict for one request.
type Decision int

const (
	ShowLoading Decision = iota
	RedirectLogin
	RedirectChangePassword
	Render
)

const (
	LoginPath          = "/login"
	ProfilePath        = "/profile"
	ChangePasswordPath = "/profile?change_password=true"
	ForbiddenPath      = "/403"
)

// Decide maps an auth state and a path onto a guard decision.
// PRE: none
// POST: loading → ShowLoading; unauthenticated → RedirectLogin;
// forced password change outside the profile page → RedirectChangePassword; else Render
func Decide(state auth.Snapshot, path string) Decision {
	switch state.Status {
	case auth.StatusLoading:
		return ShowLoading
	case auth.StatusUnauthenticated:
		return RedirectLogin
	}
	if state.User == nil {
		return RedirectLogin
	}
	if state.User.MustChangePassword && !onProfilePage(path) {
		return RedirectChangePassword
	}
	return Render
}

// onProfilePage includes the profile form targets so a forced change can be submitted.
func onProfilePage(path string) bool {
	return path == ProfilePath || strings.HasPrefix(path, ProfilePath+"/")
}

// Auth returns middleware that builds a fresh auth.Context per request and runs Refresh.
// It does NOT block unauthenticated requests; use RequireAuth for that.
func Auth(backendAuth auth.Backend) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := auth.New(backendAuth)
			if err := a.Refresh(r.Context()); err != nil && !backend.IsUnauthorized(err) {
				slog.Warn("auth_refresh_failed", "path", r.URL.Path, "error", err)
			}
			next.ServeHTTP(w, r.WithContext(auth.Into(r.Context(), a)))
		})
	}
}

// RequireAuth applies Decide. loading renders the placeholder handler and nothing else.
func RequireAuth(loading http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := auth.Snapshot{Status: auth.StatusLoading}
			if a, ok := auth.From(r.Context()); ok {
				state = a.Snapshot()
			}
			switch Decide(state, r.URL.Path) {
			case ShowLoading:
				loading.ServeHTTP(w, r)
			case RedirectLogin:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			case RedirectChangePassword:
				http.Redirect(w, r, ChangePasswordPath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireRole redirects users without one of roles to the forbidden page.
// PRE: RequireAuth runs first
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasRole(r.Context(), roles...) {
				http.Redirect(w, r, ForbiddenPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HasRole checks the request's auth context. False when none is present.
func HasRole(ctx context.Context, roles ...string) bool {
	a, ok := auth.From(ctx)
	return ok && a.HasRole(roles...)
}
