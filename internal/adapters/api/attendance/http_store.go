package attendance

import (
	"context"
	"fmt"

	"rohis/internal/adapters/backend"
	domain "rohis/internal/domain/attendance"
)

// HTTPStore implements Store against the Rohis backend.
type HTTPStore struct {
	client *backend.Client
}

// NewHTTPStore creates a new attendance store.
func NewHTTPStore(client *backend.Client) *HTTPStore {
	return &HTTPStore{client: client}
}

// Roster returns a session's members and its existing records.
// POST: missing members/records decode as empty slices
func (s *HTTPStore) Roster(ctx context.Context, sessionID int64) (domain.Roster, error) {
	var r domain.Roster
	if err := s.client.Get(ctx, fmt.Sprintf("/api/sessions/%d/attendance", sessionID), &r); err != nil {
		return domain.Roster{}, err
	}
	return r, nil
}

// SubmitBulk upserts every record of the payload in one call.
func (s *HTTPStore) SubmitBulk(ctx context.Context, payload domain.BulkPayload) error {
	return s.client.Post(ctx, "/api/attendance/bulk", payload, nil)
}

// Mine returns the caller's attendance history.
func (s *HTTPStore) Mine(ctx context.Context) ([]domain.Record, error) {
	var records []domain.Record
	if err := s.client.Get(ctx, "/api/my-attendance", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MySummary returns the caller's aggregate attendance.
func (s *HTTPStore) MySummary(ctx context.Context) (domain.Summary, error) {
	var sum domain.Summary
	if err := s.client.Get(ctx, "/api/my-attendance/summary", &sum); err != nil {
		return domain.Summary{}, err
	}
	return sum, nil
}
