package websession

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"rohis/internal/adapters/storage"
)

// clock is a settable time source shared by a store under test.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// storeFactory builds a store whose notion of "now" follows c.
type storeFactory func(t *testing.T, c *clock, ttl time.Duration) Store

func newSQLiteForTest(t *testing.T, c *clock, ttl time.Duration) Store {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewSQLiteStore(storage.NewTimedDB(db, nil, 0), ttl)
	s.now = c.now
	return s
}

func newMemoryForTest(_ *testing.T, c *clock, ttl time.Duration) Store {
	s := NewMemoryStore(ttl)
	s.now = c.now
	return s
}

func factories(t *testing.T) map[string]storeFactory {
	f := map[string]storeFactory{
		"memory": newMemoryForTest,
		"sqlite": newSQLiteForTest,
	}
	// Redis runs only against a live server; TTLs there follow the wall clock.
	if addr := os.Getenv("ROHIS_TEST_REDIS_ADDR"); addr != "" {
		f["redis"] = func(t *testing.T, c *clock, ttl time.Duration) Store {
			client := NewRedisClient(addr)
			t.Cleanup(func() { client.Close() })
			s := NewRedisStore(client, ttl)
			s.now = c.now
			return s
		}
	}
	return f
}

// TestStore_SaveGetDelete exercises the basic lifecycle on every backend.
func TestStore_SaveGetDelete(t *testing.T) {
	for name, build := range factories(t) {
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Now()}
			store := build(t, c, time.Hour)
			ctx := context.Background()
			token, err := NewToken()
			if err != nil {
				t.Fatal(err)
			}

			if _, err := store.Get(ctx, token); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get before save: %v, want ErrNotFound", err)
			}

			in := Session{
				Backend: map[string]string{"session": "abc"},
				Flash:   &Flash{Kind: FlashSuccess, Message: "Session created"},
			}
			if err := store.Save(ctx, token, in); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := store.Get(ctx, token)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Backend["session"] != "abc" {
				t.Errorf("Backend = %v", got.Backend)
			}
			f, ok := got.TakeFlash()
			if !ok || f.Message != "Session created" || f.Kind != FlashSuccess {
				t.Errorf("flash = %+v, %v", f, ok)
			}

			// Saving with the flash taken clears it.
			if err := store.Save(ctx, token, got); err != nil {
				t.Fatalf("Save: %v", err)
			}
			again, _ := store.Get(ctx, token)
			if again.Flash != nil {
				t.Errorf("expected flash cleared, got %+v", again.Flash)
			}

			if err := store.Delete(ctx, token); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Get(ctx, token); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete: %v, want ErrNotFound", err)
			}
		})
	}
}

// TestStore_Expiry verifies sessions vanish after their TTL and are purged.
func TestStore_Expiry(t *testing.T) {
	for _, name := range []string{"memory", "sqlite"} {
		build := factories(t)[name]
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
			store := build(t, c, time.Hour)
			ctx := context.Background()

			if err := store.Save(ctx, "tok", Session{Backend: map[string]string{"a": "b"}}); err != nil {
				t.Fatalf("Save: %v", err)
			}
			c.t = c.t.Add(59 * time.Minute)
			if _, err := store.Get(ctx, "tok"); err != nil {
				t.Fatalf("Get before expiry: %v", err)
			}
			c.t = c.t.Add(2 * time.Minute)
			if _, err := store.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after expiry: %v, want ErrNotFound", err)
			}
			n, err := store.PurgeExpired(ctx)
			if err != nil || n != 1 {
				t.Errorf("PurgeExpired = %d, %v; want 1", n, err)
			}
		})
	}
}

// TestStore_SaveSlidesExpiry verifies each save pushes the expiry forward.
func TestStore_SaveSlidesExpiry(t *testing.T) {
	for _, name := range []string{"memory", "sqlite"} {
		build := factories(t)[name]
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
			store := build(t, c, time.Hour)
			ctx := context.Background()

			_ = store.Save(ctx, "tok", Session{})
			c.t = c.t.Add(50 * time.Minute)
			s, err := store.Get(ctx, "tok")
			if err != nil {
				t.Fatal(err)
			}
			_ = store.Save(ctx, "tok", s)
			c.t = c.t.Add(50 * time.Minute)
			if _, err := store.Get(ctx, "tok"); err != nil {
				t.Errorf("expected session alive after sliding save: %v", err)
			}
		})
	}
}

// TestMemoryStore_Isolation verifies callers cannot mutate stored state through returned maps.
func TestMemoryStore_Isolation(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	_ = store.Save(ctx, "tok", Session{Backend: map[string]string{"session": "abc"}})

	s, _ := store.Get(ctx, "tok")
	s.Backend["session"] = "changed"

	again, _ := store.Get(ctx, "tok")
	if again.Backend["session"] != "abc" {
		t.Errorf("stored map was mutated: %v", again.Backend)
	}
}

// TestHashToken verifies hashing is deterministic and hides the token.
func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	if a != HashToken("token-a") {
		t.Error("HashToken is not deterministic")
	}
	if a == HashToken("token-b") {
		t.Error("distinct tokens hashed equal")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
