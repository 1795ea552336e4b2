package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"rohis/internal/adapters/backend"
	"rohis/internal/adapters/storage/websession"
)

const sessionCookieName = "rohis_session"

// SessionOptions configures the browser cookie.
type SessionOptions struct {
	TTL    time.Duration
	Secure bool
}

// webSession is the per-request view of a browser's web session.
// It is persisted just before the response headers are written.
type webSession struct {
	mu        sync.Mutex
	store     websession.Store
	opts      SessionOptions
	token     string
	data      websession.Session
	creds     *backend.Credentials
	dirty     bool
	destroy   bool
	rotate    bool
	committed bool
}

type sessionKey struct{}

// Session returns middleware that loads the web session named by the cookie, puts its backend
// credentials into the request context, and saves it when the handler changed it.
// An anonymous request that changes nothing gets no cookie.
func Session(store websession.Store, opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws := &webSession{store: store, opts: opts}
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				data, err := store.Get(r.Context(), cookie.Value)
				switch {
				case err == nil:
					ws.token = cookie.Value
					ws.data = data
				case errors.Is(err, websession.ErrNotFound):
					ws.dirty = true // clears the stale cookie on commit
				default:
					slog.Error("websession_load_failed", "error", err)
				}
			}
			ws.creds = backend.NewCredentials(ws.data.Backend)

			ctx := context.WithValue(r.Context(), sessionKey{}, ws)
			ctx = backend.WithCredentials(ctx, ws.creds)
			r = r.WithContext(ctx)

			saveCtx := context.WithoutCancel(ctx)
			cw := &commitWriter{ResponseWriter: w, commit: func() { ws.commit(saveCtx, w) }}
			next.ServeHTTP(cw, r)
			cw.commitOnce()
		})
	}
}

// commit persists, rotates or deletes the session and sets the cookie.
// PRE: headers of w are not yet written
func (ws *webSession) commit(ctx context.Context, w http.ResponseWriter) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.committed {
		return
	}
	ws.committed = true

	if ws.destroy {
		if ws.token != "" {
			if err := ws.store.Delete(ctx, ws.token); err != nil {
				slog.Error("websession_delete_failed", "error", err)
			}
		}
		ClearSessionCookie(w, ws.opts)
		return
	}

	changed := ws.creds.Changed()
	if !ws.dirty && !changed && !ws.rotate {
		return
	}
	ws.data.Backend = ws.creds.Values()
	if ws.token == "" && len(ws.data.Backend) == 0 && ws.data.Flash == nil {
		if ws.dirty {
			ClearSessionCookie(w, ws.opts)
		}
		return
	}

	if ws.rotate && ws.token != "" {
		if err := ws.store.Delete(ctx, ws.token); err != nil {
			slog.Error("websession_delete_failed", "error", err)
		}
		ws.token = ""
	}
	if ws.token == "" {
		token, err := websession.NewToken()
		if err != nil {
			slog.Error("websession_token_failed", "error", err)
			return
		}
		ws.token = token
		ws.data.CreatedAt = time.Time{}
	}
	if err := ws.store.Save(ctx, ws.token, ws.data); err != nil {
		slog.Error("websession_save_failed", "error", err)
		return
	}
	ws.creds.MarkSaved()
	SetSessionCookie(w, ws.token, ws.opts)
}

// commitWriter runs commit before the first header or body byte leaves the handler.
type commitWriter struct {
	http.ResponseWriter
	commit func()
	once   sync.Once
}

func (cw *commitWriter) commitOnce() {
	cw.once.Do(cw.commit)
}

func (cw *commitWriter) WriteHeader(code int) {
	cw.commitOnce()
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *commitWriter) Write(b []byte) (int, error) {
	cw.commitOnce()
	return cw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (cw *commitWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

func sessionFrom(ctx context.Context) (*webSession, bool) {
	ws, ok := ctx.Value(sessionKey{}).(*webSession)
	return ws, ok
}

// SetFlash queues a one-shot notification for the next page render.
func SetFlash(ctx context.Context, kind, message string) {
	ws, ok := sessionFrom(ctx)
	if !ok {
		return
	}
	ws.mu.Lock()
	ws.data.Flash = &websession.Flash{Kind: kind, Message: message}
	ws.dirty = true
	ws.mu.Unlock()
}

// TakeFlash returns and clears the pending notification.
func TakeFlash(ctx context.Context) (websession.Flash, bool) {
	ws, ok := sessionFrom(ctx)
	if !ok {
		return websession.Flash{}, false
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	f, ok := ws.data.TakeFlash()
	if ok {
		ws.dirty = true
	}
	return f, ok
}

// RotateSession issues a fresh token on commit. Called after sign-in.
func RotateSession(ctx context.Context) {
	if ws, ok := sessionFrom(ctx); ok {
		ws.mu.Lock()
		ws.rotate = true
		ws.mu.Unlock()
	}
}

// DestroySession deletes the web session and clears the cookie on commit.
func DestroySession(ctx context.Context) {
	if ws, ok := sessionFrom(ctx); ok {
		ws.mu.Lock()
		ws.destroy = true
		ws.mu.Unlock()
		ws.creds.Clear()
	}
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, opts SessionOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(opts.TTL.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, opts SessionOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
