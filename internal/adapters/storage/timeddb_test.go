package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"rohis/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE kv (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// TestOpLabel tests statement labelling for the perf dashboard.
func TestOpLabel(t *testing.T) {
	tests := map[string]string{
		"SELECT backend_cookies FROM web_session WHERE token_hash = ?": "SELECT web_session",
		"INSERT INTO web_session (token_hash) VALUES (?)":              "INSERT web_session",
		"DELETE FROM web_session WHERE expires_at < ?":                 "DELETE web_session",
		"UPDATE web_session SET flash_kind = ''":                       "UPDATE web_session",
		"PRAGMA wal_checkpoint":                                        "PRAGMA",
		"  ":                                                           "EMPTY",
	}
	for q, want := range tests {
		if got := opLabel(q); got != want {
			t.Errorf("opLabel(%q) = %q, want %q", q, got, want)
		}
	}
}

// TestTimedDB_RecordsEachCall verifies every wrapped call reaches the collector.
func TestTimedDB_RecordsEachCall(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO kv (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id, val FROM kv")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM kv WHERE id = ?", "1").Scan(&val); err != nil || val != "hello" {
		t.Fatalf("QueryRowContext: %q, %v", val, err)
	}

	if collector.TotalRecorded() != 3 {
		t.Errorf("TotalRecorded = %d, want 3", collector.TotalRecorded())
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestQueries) != 2 {
		t.Errorf("SlowestQueries = %+v, want INSERT kv and SELECT kv", snap.SlowestQueries)
	}
}

// TestTimedDB_NilCollector verifies the wrapper works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), nil, 0)
	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO kv (id, val) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
}

// TestTimedDB_ErrorPassthrough verifies errors are returned unchanged.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), perf.NewCollector(10), 0)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO missing (id) VALUES (1)"); err == nil {
		t.Error("expected error for missing table")
	}
	err := tdb.QueryRowContext(ctx, "SELECT val FROM kv WHERE id = ?", "nope").Scan(new(string))
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

// TestTimedDB_CancelledContext verifies a cancelled context is honoured.
func TestTimedDB_CancelledContext(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tdb.ExecContext(ctx, "INSERT INTO kv (id, val) VALUES ('x', 'y')"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

// TestTimedDB_ConcurrentUse verifies no races under concurrent reads and writes.
func TestTimedDB_ConcurrentUse(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), perf.NewCollector(1000), 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = tdb.ExecContext(ctx, "INSERT OR REPLACE INTO kv (id, val) VALUES (?, ?)", "k", "v")
				_ = tdb.QueryRowContext(ctx, "SELECT val FROM kv WHERE id = ?", "k").Scan(new(string))
			}
		}(i)
	}
	wg.Wait()
}
