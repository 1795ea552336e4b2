package orchestrators

import (
	"context"
	"log/slog"

	"rohis/internal/adapters/backend"
)

// Authenticator is the auth surface Login and Logout drive.
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string `validate:"required" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Auth Authenticator
}

// ExecuteLogin signs in against the backend.
// PRE: ctx carries the browser's backend credentials
// POST: on success the credentials hold the backend session and the auth context is refreshed
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) error {
	input.Email = trimmed(input.Email)
	if err := validateInput(input); err != nil {
		return err
	}

	if err := deps.Auth.Login(ctx, input.Email, input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "status", backend.StatusOf(err))
		return err
	}
	slog.Info("auth_event", "event", "login_success", "email", input.Email)
	return nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Auth Authenticator
}

// ExecuteLogout ends the backend session.
// POST: the local user is cleared even when the backend call fails; that error is returned
func ExecuteLogout(ctx context.Context, deps LogoutDeps) error {
	if err := deps.Auth.Logout(ctx); err != nil {
		slog.Warn("auth_event", "event", "logout_failed", "error", err)
		return err
	}
	return nil
}
