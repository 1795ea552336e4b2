package user

import (
	"context"
	"io"

	"rohis/internal/adapters/backend"
	"rohis/internal/domain/account"
)

// PictureField is the multipart field name the backend reads the picture from.
const PictureField = "profile_picture"

// HTTPStore implements Store against the Rohis backend.
type HTTPStore struct {
	client *backend.Client
}

// NewHTTPStore creates a new user store.
func NewHTTPStore(client *backend.Client) *HTTPStore {
	return &HTTPStore{client: client}
}

// List returns every user visible to the caller.
func (s *HTTPStore) List(ctx context.Context) ([]account.User, error) {
	var users []account.User
	if err := s.client.Get(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile changes the caller's username.
func (s *HTTPStore) UpdateProfile(ctx context.Context, username string) error {
	body := struct {
		Username string `json:"username"`
	}{username}
	return s.client.Put(ctx, "/api/profile", body, nil)
}

// UploadPicture streams an image to the backend as multipart form data.
// PRE: contentType is an image/* type and the size limit was enforced by the caller
func (s *HTTPStore) UploadPicture(ctx context.Context, filename, contentType string, r io.Reader) error {
	return s.client.Upload(ctx, "/api/profile/picture", PictureField, filename, contentType, r, nil)
}
