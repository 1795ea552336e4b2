package attendance

import (
	"context"

	domain "rohis/internal/domain/attendance"
)

// Store reads and marks attendance.
type Store interface {
	Roster(ctx context.Context, sessionID int64) (domain.Roster, error)
	SubmitBulk(ctx context.Context, payload domain.BulkPayload) error
	Mine(ctx context.Context) ([]domain.Record, error)
	MySummary(ctx context.Context) (domain.Summary, error)
}
