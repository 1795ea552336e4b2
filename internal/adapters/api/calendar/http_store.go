package calendar

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"rohis/internal/adapters/backend"
	domain "rohis/internal/domain/calendar"
)

// HTTPStore implements Store against the Rohis backend.
type HTTPStore struct {
	client *backend.Client
}

// NewHTTPStore creates a new calendar store.
func NewHTTPStore(client *backend.Client) *HTTPStore {
	return &HTTPStore{client: client}
}

// Events returns the month's sessions and holidays.
// PRE: month is within 1..12; the backend expects the same 1-based month
func (s *HTTPStore) Events(ctx context.Context, year int, month time.Month) ([]domain.Event, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(int(month)))
	q.Set("year", strconv.Itoa(year))
	var out struct {
		Events []domain.Event `json:"events"`
	}
	if err := s.client.Get(ctx, "/api/calendar?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// Hijri returns today's Hijri date as formatted by the backend.
func (s *HTTPStore) Hijri(ctx context.Context) (string, error) {
	var out struct {
		Hijri string `json:"hijri"`
	}
	if err := s.client.Get(ctx, "/api/hijri", &out); err != nil {
		return "", err
	}
	return out.Hijri, nil
}
