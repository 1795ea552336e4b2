package websession

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rohis/internal/adapters/storage"
)

// timeLayout is fixed width so stored timestamps compare correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using the web_session table.
type SQLiteStore struct {
	db  storage.SQLDB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore creates a SQLite-backed store.
// PRE: the database has been migrated
func NewSQLiteStore(db storage.SQLDB, ttl time.Duration) *SQLiteStore {
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}
}

// Get retrieves a session by token.
// PRE: token is non-empty
// POST: returns ErrNotFound if absent or expired
func (s *SQLiteStore) Get(ctx context.Context, token string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT backend_cookies, flash_kind, flash_message, created_at, expires_at
		 FROM web_session WHERE token_hash = ? AND expires_at > ?`,
		HashToken(token), s.now().UTC().Format(timeLayout))

	var cookies, kind, msg, created, expires string
	err := row.Scan(&cookies, &kind, &msg, &created, &expires)
	if err == sql.ErrNoRows {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load web session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(cookies), &sess.Backend); err != nil {
		return Session{}, fmt.Errorf("decode backend cookies: %w", err)
	}
	if sess.Backend == nil {
		sess.Backend = map[string]string{}
	}
	if kind != "" {
		sess.Flash = &Flash{Kind: kind, Message: msg}
	}
	sess.CreatedAt, _ = time.Parse(timeLayout, created)
	sess.ExpiresAt, _ = time.Parse(timeLayout, expires)
	return sess, nil
}

// Save upserts a session and refreshes its expiry.
// PRE: token is non-empty
// POST: the row for HashToken(token) holds sess
func (s *SQLiteStore) Save(ctx context.Context, token string, sess Session) error {
	now := s.now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	backend := sess.Backend
	if backend == nil {
		backend = map[string]string{}
	}
	cookies, err := json.Marshal(backend)
	if err != nil {
		return fmt.Errorf("encode backend cookies: %w", err)
	}
	var kind, msg string
	if sess.Flash != nil {
		kind, msg = sess.Flash.Kind, sess.Flash.Message
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO web_session (token_hash, backend_cookies, flash_kind, flash_message, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(token_hash) DO UPDATE SET
		   backend_cookies=excluded.backend_cookies,
		   flash_kind=excluded.flash_kind,
		   flash_message=excluded.flash_message,
		   expires_at=excluded.expires_at`,
		HashToken(token), string(cookies), kind, msg,
		sess.CreatedAt.UTC().Format(timeLayout), now.Add(s.ttl).Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save web session: %w", err)
	}
	return nil
}

// Delete removes a session by token.
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM web_session WHERE token_hash = ?`, HashToken(token))
	return err
}

// PurgeExpired removes sessions whose expiry has passed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM web_session WHERE expires_at <= ?`, s.now().UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
