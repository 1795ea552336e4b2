package user

import (
	"context"
	"io"

	"rohis/internal/domain/account"
)

// Store lists users and edits the signed-in user's profile.
type Store interface {
	List(ctx context.Context) ([]account.User, error)
	UpdateProfile(ctx context.Context, username string) error
	UploadPicture(ctx context.Context, filename, contentType string, r io.Reader) error
}
