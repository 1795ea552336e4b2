package auth

import (
	"context"
	"log/slog"
	"sync"

	"rohis/internal/domain/account"
)

// Status is the auth state of one request.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

// String returns the lower-case state name used in logs.
func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// Backend is the part of the backend's auth API the context drives.
type Backend interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (account.User, error)
}

// Snapshot is an immutable copy of the context state.
type Snapshot struct {
	Status Status
	User   *account.User
}

// Context is the auth store for a single request. Only Login, Logout and Refresh write it.
type Context struct {
	backend Backend

	mu     sync.RWMutex
	status Status
	user   *account.User
}

// New creates a context in the loading state.
func New(backend Backend) *Context {
	return &Context{backend: backend, status: StatusLoading}
}

// Refresh asks the backend who is signed in.
// PRE: ctx carries the browser's backend credentials
// POST: authenticated on success, unauthenticated on any failure; never loading
func (c *Context) Refresh(ctx context.Context) error {
	u, err := c.backend.Me(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.user = nil
		c.status = StatusUnauthenticated
		return err
	}
	c.user = &u
	c.status = StatusAuthenticated
	return nil
}

// Login posts the credentials, then re-runs Refresh.
// POST: on backend rejection the state is unchanged and the error is returned
func (c *Context) Login(ctx context.Context, email, password string) error {
	if err := c.backend.Login(ctx, email, password); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Logout ends the backend session. The local user is cleared even when the call fails.
// POST: state is unauthenticated
func (c *Context) Logout(ctx context.Context) error {
	err := c.backend.Logout(ctx)

	c.mu.Lock()
	prev := c.user
	c.user = nil
	c.status = StatusUnauthenticated
	c.mu.Unlock()

	if prev != nil {
		slog.Info("auth_event", "event", "logout", "user_id", prev.ID)
	}
	return err
}

// HasRole reports whether a user is loaded and holds one of roles.
// INVARIANT: false while no user is loaded
func (c *Context) HasRole(roles ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return false
	}
	return c.user.HasRole(roles...)
}

// User returns a copy of the signed-in user.
func (c *Context) User() (account.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return account.User{}, false
	}
	return *c.user, true
}

func (c *Context) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Snapshot copies the current state for the route guard.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{Status: c.status}
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	return s
}

type contextKey struct{}

// Into returns a request context carrying a.
func Into(ctx context.Context, a *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// From returns the auth context carried by ctx.
func From(ctx context.Context) (*Context, bool) {
	a, ok := ctx.Value(contextKey{}).(*Context)
	return a, ok && a != nil
}
