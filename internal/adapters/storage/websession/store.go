package websession

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("web session not found")

// Flash is a one-shot notification shown on the next page render.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is the server-side state behind one browser's session cookie.
// Backend holds the Rohis backend's cookies for that browser.
type Session struct {
	Backend   map[string]string `json:"backend"`
	Flash     *Flash            `json:"flash,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// TakeFlash returns the pending flash and clears it.
// POST: s.Flash == nil
func (s *Session) TakeFlash() (Flash, bool) {
	if s.Flash == nil {
		return Flash{}, false
	}
	f := *s.Flash
	s.Flash = nil
	return f, true
}

// Store persists web sessions keyed by token. Implementations store only HashToken(token).
type Store interface {
	// Get returns ErrNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (Session, error)
	// Save upserts the session and pushes its expiry to now + TTL.
	Save(ctx context.Context, token string, s Session) error
	Delete(ctx context.Context, token string) error
	// PurgeExpired removes expired sessions and reports how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}

// NewToken returns a random URL-safe session token.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken derives the storage key for a token, so a leaked store cannot be replayed as cookies.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
