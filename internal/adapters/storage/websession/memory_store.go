package websession

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store whose sessions live for ttl after their last save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get retrieves a session by token.
// PRE: token is non-empty
// POST: returns ErrNotFound if absent or expired
func (m *MemoryStore) Get(_ context.Context, token string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[HashToken(token)]
	m.mu.RUnlock()
	if !ok || !m.now().Before(s.ExpiresAt) {
		return Session{}, ErrNotFound
	}
	return cloneSession(s), nil
}

// Save stores s under token with a refreshed expiry.
func (m *MemoryStore) Save(_ context.Context, token string, s Session) error {
	now := m.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.ExpiresAt = now.Add(m.ttl)
	m.mu.Lock()
	m.sessions[HashToken(token)] = cloneSession(s)
	m.mu.Unlock()
	return nil
}

// Delete removes a session by token.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, HashToken(token))
	m.mu.Unlock()
	return nil
}

// PurgeExpired removes expired sessions.
func (m *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	now := m.now()
	var n int64
	m.mu.Lock()
	for k, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, k)
			n++
		}
	}
	m.mu.Unlock()
	return n, nil
}

// cloneSession copies the mutable parts so callers never share maps with the store.
func cloneSession(s Session) Session {
	out := s
	out.Backend = make(map[string]string, len(s.Backend))
	for k, v := range s.Backend {
		out.Backend[k] = v
	}
	if s.Flash != nil {
		f := *s.Flash
		out.Flash = &f
	}
	return out
}
