package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"rohis/internal/adapters/backend"
	"rohis/internal/adapters/http/middleware"
	"rohis/internal/adapters/storage/websession"
	"rohis/internal/application/auth"
	"rohis/internal/application/listutil"
	"rohis/internal/application/orchestrators"
	"rohis/internal/application/projections"
	"rohis/internal/domain/account"
	"rohis/internal/domain/attendance"
	"rohis/internal/domain/calendar"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer renders assistant replies. WithUnsafe is not set, so raw HTML in the input is omitted.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// menuItem is one sidebar entry. An item without roles is shown to everyone.
type menuItem struct {
	Label string
	Path  string
	Roles []string
}

var menuItems = []menuItem{
	{Label: "Dashboard", Path: "/dashboard"},
	{Label: "Attendance", Path: "/attendance"},
	{Label: "Members", Path: "/members", Roles: account.MarkerRoles},
	{Label: "Divisions", Path: "/divisions", Roles: account.ManagerRoles},
	{Label: "Calendar", Path: "/calendar"},
	{Label: "Chat", Path: "/chat"},
	{Label: "Profile", Path: "/profile"},
}

// visibleMenu filters menuItems by the user's role.
// POST: items without roles are always included; gated items need a loaded user
func visibleMenu(user *account.User) []menuItem {
	out := make([]menuItem, 0, len(menuItems))
	for _, item := range menuItems {
		if len(item.Roles) == 0 || (user != nil && user.HasRole(item.Roles...)) {
			out = append(out, item)
		}
	}
	return out
}

// currentUser returns the signed-in user of the request.
func currentUser(r *http.Request) (account.User, bool) {
	a, ok := auth.From(r.Context())
	if !ok {
		return account.User{}, false
	}
	return a.User()
}

// pictureURL resolves a profile picture path against the backend.
func pictureURL(u account.User) string {
	p, ok := u.PictureURL()
	if !ok {
		return ""
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "data:") {
		return p
	}
	return strings.TrimRight(options.APIBaseURL, "/") + "/" + strings.TrimLeft(p, "/")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderPage(w, r, http.StatusOK, "layout.html", templateName, data)
}

// renderBare renders a page without navigation chrome.
func renderBare(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	renderPage(w, r, status, "bare.html", templateName, data)
}

// renderPage executes layout plus page into a buffer, so a failed render never sends half a page
// and the flash is consumed before the session commits.
func renderPage(w http.ResponseWriter, r *http.Request, status int, layout, templateName string, data any) {
	ctx := r.Context()
	var user *account.User
	if u, ok := currentUser(r); ok {
		user = &u
	}
	var flash *websession.Flash
	if f, ok := middleware.TakeFlash(ctx); ok {
		flash = &f
	}
	now := timeNow()

	funcMap := template.FuncMap{
		"currentUser": func() *account.User { return user },
		"isLoggedIn":  func() bool { return user != nil },
		"isMarker":    func() bool { return user != nil && user.CanMarkAttendance() },
		"isManager":   func() bool { return user != nil && user.HasRole(account.ManagerRoles...) },
		"csrfToken":   func() string { return csrf.Token(r) },
		"csrfField":   func() template.HTML { return csrf.TemplateField(r) },
		"flash":       func() *websession.Flash { return flash },
		"menu":        func() []menuItem { return visibleMenu(user) },
		"isActive": func(path string) bool {
			return r.URL.Path == path || strings.HasPrefix(r.URL.Path, path+"/")
		},
		"pictureURL": pictureURL,
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"statuses": func() []string { return attendance.ValidStatuses },
		"isToday":  func(c calendar.Cell) bool { return c.IsToday(now) },
		"clock":    func(t time.Time) string { return t.Local().Format("15:04") },
		"percent":  func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) + "%" },
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"listQuery": func(p listutil.ListParams, kv ...string) template.URL {
			overrides := make(map[string]string, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				overrides[kv[i]] = kv[i+1]
			}
			return template.URL(p.Query(overrides))
		},
		"itoa": strconv.Itoa,
	}

	tpl, err := template.New(layout).Funcs(funcMap).ParseFS(templateFS, "templates/"+layout, "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// userMessage is the text shown for a failed mutation.
func userMessage(err error) string {
	var be *backend.Error
	if errors.As(err, &be) {
		return backend.Message(err)
	}
	return err.Error()
}

// flashRedirect queues a notification and redirects (Post/Redirect/Get).
func flashRedirect(w http.ResponseWriter, r *http.Request, to, kind, message string) {
	middleware.SetFlash(r.Context(), kind, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// mutationResult redirects with a success flash, or with the error's message.
func mutationResult(w http.ResponseWriter, r *http.Request, to string, err error, success string) {
	if err != nil {
		slog.Warn("mutation_failed", "path", r.URL.Path, "error", err)
		flashRedirect(w, r, to, websession.FlashError, userMessage(err))
		return
	}
	flashRedirect(w, r, to, websession.FlashSuccess, success)
}

// loadAbandoned reports whether a failed initial load should be dropped without rendering.
// POST: a live request's failure is logged as page_load_failed and false is returned
func loadAbandoned(r *http.Request, page string, err error) bool {
	if r.Context().Err() != nil {
		slog.Debug("page_load_abandoned", "page", page)
		return true
	}
	slog.Error("page_load_failed", "page", page, "error", err)
	return false
}

// pathID parses a positive numeric path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// formID parses a numeric form value; 0 when absent or malformed.
func formID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(name)), 10, 64)
	return id
}

// --- Shell ---

// handleRoot redirects / to the dashboard.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLoading renders the placeholder shown while authentication is unresolved.
func handleLoading(w http.ResponseWriter, r *http.Request) {
	renderBare(w, r, http.StatusOK, "loading.html", nil)
}

// handleForbidden handles GET /403
func handleForbidden(w http.ResponseWriter, r *http.Request) {
	if !isHTMLRequest(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	renderBare(w, r, http.StatusForbidden, "forbidden.html", nil)
}

// handleNotFound is the catch-all for unknown paths.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	if !isHTMLRequest(r) {
		http.NotFound(w, r)
		return
	}
	renderBare(w, r, http.StatusNotFound, "not_found.html", map[string]any{"Path": r.URL.Path})
}

// handleHealth handles GET /healthz
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleAdminPerf handles GET /admin/perf?minutes=N (admin only)
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	minutes, err := strconv.Atoi(r.URL.Query().Get("minutes"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		slog.Error("perf_encode_failed", "error", err)
	}
}

// --- Login / Logout ---

// handleLoginForm handles GET /login
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to dashboard
	if _, ok := currentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderBare(w, r, http.StatusOK, "login.html", map[string]any{"Email": "", "Error": ""})
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	a, ok := auth.From(r.Context())
	if !ok {
		internalError(w, errors.New("auth context missing on /login"))
		return
	}

	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{Auth: a}); err != nil {
		renderBare(w, r, http.StatusOK, "login.html", map[string]any{
			"Email": strings.TrimSpace(input.Email),
			"Error": userMessage(err),
		})
		return
	}

	middleware.RotateSession(r.Context())
	if u, ok := a.User(); ok && u.MustChangePassword {
		http.Redirect(w, r, middleware.ChangePasswordPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if a, ok := auth.From(r.Context()); ok {
		if err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutDeps{Auth: a}); err != nil {
			slog.Warn("logout_backend_failed", "error", err)
		}
	}
	middleware.DestroySession(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// --- Dashboard ---

// handleDashboard handles GET /dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)
	deps := projections.GetDashboardDeps{
		AttendanceStore: stores.Attendance,
		UserStore:       stores.Users,
		DivisionStore:   stores.Divisions,
		SessionStore:    stores.Sessions,
	}
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{User: user}, deps)
	if err != nil && loadAbandoned(r, "dashboard", err) {
		return
	}
	renderTemplate(w, r, "dashboard.html", map[string]any{
		"User":   user,
		"Result": result,
	})
}
