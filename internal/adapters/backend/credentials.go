package backend

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Credentials holds the backend's session cookies for one browser.
// Safe for concurrent use by the parallel fetches of a single page.
type Credentials struct {
	mu      sync.Mutex
	values  map[string]string
	changed bool
}

// NewCredentials seeds a cookie set from stored name/value pairs.
func NewCredentials(values map[string]string) *Credentials {
	c := &Credentials{values: make(map[string]string, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// Values returns a copy of the current name/value pairs.
func (c *Credentials) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Empty reports whether no backend cookie is held.
func (c *Credentials) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values) == 0
}

// Changed reports whether the set was modified since creation or the last MarkSaved.
func (c *Credentials) Changed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// MarkSaved clears the change flag once the caller has persisted Values.
func (c *Credentials) MarkSaved() {
	c.mu.Lock()
	c.changed = false
	c.mu.Unlock()
}

// Clear drops every cookie.
func (c *Credentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.values) > 0 {
		c.changed = true
	}
	c.values = make(map[string]string)
}

// apply adds the held cookies to an outgoing request in name order.
func (c *Credentials) apply(req *http.Request) {
	c.mu.Lock()
	names := make([]string, 0, len(c.values))
	for k := range c.values {
		names = append(names, k)
	}
	sort.Strings(names)
	cookies := make([]*http.Cookie, 0, len(names))
	for _, n := range names {
		cookies = append(cookies, &http.Cookie{Name: n, Value: c.values[n]})
	}
	c.mu.Unlock()

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
}

// absorb applies Set-Cookie headers from a backend response.
// POST: expired or negative max-age cookies are removed
func (c *Credentials) absorb(cookies []*http.Cookie, now time.Time) {
	if len(cookies) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ck := range cookies {
		expired := ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(now))
		if expired || ck.Value == "" {
			if _, ok := c.values[ck.Name]; ok {
				delete(c.values, ck.Name)
				c.changed = true
			}
			continue
		}
		if c.values[ck.Name] != ck.Value {
			c.values[ck.Name] = ck.Value
			c.changed = true
		}
	}
}

type credentialsKey struct{}

// WithCredentials returns a context carrying creds for backend calls.
func WithCredentials(ctx context.Context, creds *Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFrom returns the credentials carried by ctx.
func CredentialsFrom(ctx context.Context) (*Credentials, bool) {
	c, ok := ctx.Value(credentialsKey{}).(*Credentials)
	return c, ok && c != nil
}
