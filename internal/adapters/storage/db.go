package storage

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"
)

// Open opens the SQLite file at path with WAL, busy timeout and foreign keys.
// PRE: path is a file path or ":memory:"
// POST: returns a pinged connection pool
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is its own database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "web_session",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS web_session (
				token_hash TEXT PRIMARY KEY,
				backend_cookies TEXT NOT NULL DEFAULT '{}',
				created_at TEXT NOT NULL,
				expires_at TEXT NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "web_session_flash",
		stmts: []string{
			`ALTER TABLE web_session ADD COLUMN flash_kind TEXT NOT NULL DEFAULT ''`,
			`ALTER TABLE web_session ADD COLUMN flash_message TEXT NOT NULL DEFAULT ''`,
		},
	},
	{
		version: 3,
		name:    "web_session_expiry_index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_web_session_expires_at ON web_session(expires_at)`,
		},
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied version, or 0 for an untracked database.
// PRE: db is a valid connection
// POST: does not create the schema_version table
func SchemaVersion(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&n)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB applies pending migrations, each in its own transaction.
// An existing file database is copied to <path>.bak-v<N> before it is upgraded.
// PRE: db is a valid connection; dbPath is the file behind db or ":memory:"
// POST: SchemaVersion(db) == LatestSchemaVersion()
// INVARIANT: a failed migration leaves the previous version in place
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY, name TEXT NOT NULL, applied_at TEXT NOT NULL DEFAULT (datetime('now')))`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= LatestSchemaVersion() {
		return nil
	}
	if current > 0 && dbPath != ":memory:" {
		if _, err := db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
			return fmt.Errorf("checkpoint before backup: %w", err)
		}
		if err := backupFile(dbPath, fmt.Sprintf("%s.bak-v%d", dbPath, current)); err != nil {
			return fmt.Errorf("backup before migration: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

func apply(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
		return err
	}
	return tx.Commit()
}

func backupFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
