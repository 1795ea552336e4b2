package auth

import (
	"context"

	"rohis/internal/domain/account"
)

// Store is the backend's authentication surface.
type Store interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (account.User, error)
	ChangePassword(ctx context.Context, change account.PasswordChange) error
}
