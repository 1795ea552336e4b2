package orchestrators

import (
	"context"
	"errors"
	"testing"

	"rohis/internal/adapters/backend"
)

type mockAuthenticator struct {
	loginErr  error
	logoutErr error
	gotEmail  string
	logins    int
	logouts   int
}

// Login records the attempt.
func (m *mockAuthenticator) Login(_ context.Context, email, _ string) error {
	m.logins++
	m.gotEmail = email
	return m.loginErr
}

// Logout records the call.
func (m *mockAuthenticator) Logout(context.Context) error {
	m.logouts++
	return m.logoutErr
}

// TestExecuteLogin_RequiredFields verifies blank fields never reach the backend.
func TestExecuteLogin_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		input LoginInput
		field string
	}{
		{"missing email", LoginInput{Email: "  ", Password: "x"}, "Email"},
		{"missing password", LoginInput{Email: "a@x.com"}, "Password"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuthenticator{}
			err := ExecuteLogin(context.Background(), tc.input, LoginDeps{Auth: auth})
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field || ve.Rule != "required" {
				t.Fatalf("err = %v, want required %s", err, tc.field)
			}
			if err.Error() != tc.field+" is required" {
				t.Errorf("message = %q", err.Error())
			}
			if auth.logins != 0 {
				t.Error("backend must not be called")
			}
		})
	}
}

// TestExecuteLogin_BackendRejection surfaces the backend message.
func TestExecuteLogin_BackendRejection(t *testing.T) {
	auth := &mockAuthenticator{loginErr: &backend.Error{StatusCode: 401, Message: "Invalid credentials"}}
	err := ExecuteLogin(context.Background(), LoginInput{Email: " a@x.com ", Password: "bad"}, LoginDeps{Auth: auth})
	if backend.Message(err) != "Invalid credentials" {
		t.Errorf("message = %q", backend.Message(err))
	}
	if auth.gotEmail != "a@x.com" {
		t.Errorf("email sent = %q, want trimmed", auth.gotEmail)
	}
}

// TestExecuteLogin_Success calls the backend once.
func TestExecuteLogin_Success(t *testing.T) {
	auth := &mockAuthenticator{}
	if err := ExecuteLogin(context.Background(), LoginInput{Email: "a@x.com", Password: "ok"}, LoginDeps{Auth: auth}); err != nil {
		t.Fatalf("ExecuteLogin: %v", err)
	}
	if auth.logins != 1 {
		t.Errorf("logins = %d", auth.logins)
	}
}

// TestExecuteLogout_ReturnsBackendError passes the failure through.
func TestExecuteLogout_ReturnsBackendError(t *testing.T) {
	auth := &mockAuthenticator{logoutErr: errors.New("down")}
	if err := ExecuteLogout(context.Background(), LogoutDeps{Auth: auth}); err == nil {
		t.Error("expected error")
	}
	if auth.logouts != 1 {
		t.Errorf("logouts = %d", auth.logouts)
	}
}
