package orchestrators

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockPurger struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (m *mockPurger) PurgeExpired(context.Context) (int64, error) {
	m.calls.Add(1)
	return m.n, m.err
}

// TestExecutePurgeExpiredSessions reports the count and passes errors through.
func TestExecutePurgeExpiredSessions(t *testing.T) {
	n, err := ExecutePurgeExpiredSessions(context.Background(), PurgeSessionsDeps{Sessions: &mockPurger{n: 3}})
	if err != nil || n != 3 {
		t.Errorf("got (%d, %v), want (3, nil)", n, err)
	}

	boom := errors.New("disk full")
	if _, err := ExecutePurgeExpiredSessions(context.Background(), PurgeSessionsDeps{Sessions: &mockPurger{err: boom}}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

// TestStartPurgeWorker ticks until stopped.
func TestStartPurgeWorker(t *testing.T) {
	p := &mockPurger{}
	stop := make(chan struct{})
	StartPurgeWorker(PurgeSessionsDeps{Sessions: p}, 5*time.Millisecond, stop)

	deadline := time.Now().Add(2 * time.Second)
	for p.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	close(stop)
	if p.calls.Load() < 2 {
		t.Fatalf("purge calls = %d, want >= 2", p.calls.Load())
	}
}
