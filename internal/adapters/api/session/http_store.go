package session

import (
	"context"
	"fmt"

	"rohis/internal/adapters/backend"
	domain "rohis/internal/domain/session"
)

// HTTPStore implements Store against the Rohis backend.
type HTTPStore struct {
	client *backend.Client
}

// NewHTTPStore creates a new session store.
func NewHTTPStore(client *backend.Client) *HTTPStore {
	return &HTTPStore{client: client}
}

// List returns all sessions in backend order.
func (s *HTTPStore) List(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	if err := s.client.Get(ctx, "/api/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Create schedules a session.
// PRE: draft has been validated
func (s *HTTPStore) Create(ctx context.Context, draft domain.Draft) error {
	return s.client.Post(ctx, "/api/sessions", draft, nil)
}

// Delete removes a session.
func (s *HTTPStore) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/sessions/%d", id), nil)
}
