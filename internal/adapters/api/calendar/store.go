package calendar

import (
	"context"
	"time"

	domain "rohis/internal/domain/calendar"
)

// Store reads calendar events and today's Hijri date.
type Store interface {
	Events(ctx context.Context, year int, month time.Month) ([]domain.Event, error)
	Hijri(ctx context.Context) (string, error)
}
