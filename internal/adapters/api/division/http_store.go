package division

import (
	"context"
	"fmt"

	"rohis/internal/adapters/backend"
	domain "rohis/internal/domain/division"
)

// HTTPStore implements Store against the Rohis backend.
type HTTPStore struct {
	client *backend.Client
}

// NewHTTPStore creates a new division store.
func NewHTTPStore(client *backend.Client) *HTTPStore {
	return &HTTPStore{client: client}
}

// List returns all divisions, with members when the backend embeds them.
func (s *HTTPStore) List(ctx context.Context) ([]domain.Division, error) {
	var divs []domain.Division
	if err := s.client.Get(ctx, "/api/divisions", &divs); err != nil {
		return nil, err
	}
	return divs, nil
}

// Create adds a division.
func (s *HTTPStore) Create(ctx context.Context, name string) error {
	body := struct {
		Name string `json:"name"`
	}{name}
	return s.client.Post(ctx, "/api/divisions", body, nil)
}

// Delete removes a division.
func (s *HTTPStore) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/divisions/%d", id), nil)
}

// SetAttendancePermission sets whether the division's members may mark attendance.
func (s *HTTPStore) SetAttendancePermission(ctx context.Context, id int64, canMark bool) error {
	body := struct {
		CanMarkAttendance bool `json:"can_mark_attendance"`
	}{canMark}
	return s.client.Put(ctx, fmt.Sprintf("/api/divisions/%d/permissions", id), body, nil)
}

// AssignMember moves a user into the division.
func (s *HTTPStore) AssignMember(ctx context.Context, id, userID int64) error {
	body := struct {
		UserID int64 `json:"user_id"`
	}{userID}
	return s.client.Post(ctx, fmt.Sprintf("/api/divisions/%d/members", id), body, nil)
}

// RemoveMember takes a user out of the division.
func (s *HTTPStore) RemoveMember(ctx context.Context, id, userID int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/divisions/%d/members/%d", id, userID), nil)
}
