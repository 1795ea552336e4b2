package auth

import (
	"context"

	"rohis/internal/adapters/backend"
	"rohis/internal/domain/account"
)

// HTTPStore implements Store against the Rohis backend.
type HTTPStore struct {
	client *backend.Client
}

// NewHTTPStore creates a new auth store.
func NewHTTPStore(client *backend.Client) *HTTPStore {
	return &HTTPStore{client: client}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts credentials. The backend answers with a session cookie, which the
// client absorbs into the request's backend.Credentials.
// PRE: ctx carries backend.Credentials
// POST: returns the backend's rejection as *backend.Error
func (s *HTTPStore) Login(ctx context.Context, email, password string) error {
	return s.client.Post(ctx, "/login", credentials{Email: email, Password: password}, nil)
}

// Logout ends the backend session.
func (s *HTTPStore) Logout(ctx context.Context) error {
	return s.client.Post(ctx, "/logout", nil, nil)
}

// Me returns the signed-in user. A 401 means no backend session.
func (s *HTTPStore) Me(ctx context.Context) (account.User, error) {
	var u account.User
	if err := s.client.Get(ctx, "/api/me", &u); err != nil {
		return account.User{}, err
	}
	return u, nil
}

// ChangePassword submits the current and new password.
// PRE: the confirmation check has already passed
func (s *HTTPStore) ChangePassword(ctx context.Context, change account.PasswordChange) error {
	return s.client.Post(ctx, "/api/change-password", change, nil)
}
