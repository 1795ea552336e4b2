package chat

import (
	"context"

	"rohis/internal/adapters/backend"
)

// HTTPStore implements Store against the Rohis backend.
type HTTPStore struct {
	client *backend.Client
}

// NewHTTPStore creates a new chat store.
func NewHTTPStore(client *backend.Client) *HTTPStore {
	return &HTTPStore{client: client}
}

type chatBody struct {
	Message string `json:"message"`
}

// Ask sends one prompt. The reply may be empty; callers substitute a fallback.
func (s *HTTPStore) Ask(ctx context.Context, message string) (string, error) {
	var out chatBody
	if err := s.client.Post(ctx, "/api/chat", chatBody{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
