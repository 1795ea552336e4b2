package orchestrators

import (
	"context"
	"log/slog"

	"rohis/internal/domain/account"
)

// PasswordStore defines the store interface needed by ChangePassword.
type PasswordStore interface {
	ChangePassword(ctx context.Context, change account.PasswordChange) error
}

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	UserID          int64
	CurrentPassword string `validate:"required" label:"Current password"`
	NewPassword     string `validate:"required" label:"New password"`
	ConfirmPassword string `validate:"required" label:"Password confirmation"`
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	PasswordStore PasswordStore
}

// ExecuteChangePassword checks the confirmation, then submits the change.
// PRE: the user is signed in
// POST: returns account.ErrPasswordMismatch without calling the backend when the confirmation differs
// INVARIANT: strength and correctness of the current password are decided by the backend
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if err := account.CheckPasswordConfirmation(input.NewPassword, input.ConfirmPassword); err != nil {
		return err
	}
	if err := validateInput(input); err != nil {
		return err
	}

	change := account.PasswordChange{CurrentPassword: input.CurrentPassword, NewPassword: input.NewPassword}
	if err := deps.PasswordStore.ChangePassword(ctx, change); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "user_id", input.UserID)
	return nil
}
