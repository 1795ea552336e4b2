package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// SessionPurger deletes expired web sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeSessionsDeps holds dependencies for PurgeExpiredSessions.
type PurgeSessionsDeps struct {
	Sessions SessionPurger
}

// ExecutePurgeExpiredSessions removes every web session past its expiry.
// PRE: none
// POST: returns the number of sessions removed
func ExecutePurgeExpiredSessions(ctx context.Context, deps PurgeSessionsDeps) (int64, error) {
	n, err := deps.Sessions.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("web_sessions_purged", "count", n)
	}
	return n, nil
}

// StartPurgeWorker starts a goroutine that purges expired web sessions every interval.
// PRE: interval > 0; stopCh is closed on shutdown
// POST: the worker runs until stopCh is closed
func StartPurgeWorker(deps PurgeSessionsDeps, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if _, err := ExecutePurgeExpiredSessions(ctx, deps); err != nil {
					slog.Error("web_session_purge_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("web_session_purge_worker_stopped")
				return
			}
		}
	}()
}
