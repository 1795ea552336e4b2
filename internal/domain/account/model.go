package account

import (
	"errors"
	"strings"
)

// Role constants
const (
	RoleAdmin   = "admin"
	RoleKetua   = "ketua"
	RolePembina = "pembina"
	RoleMember  = "member"

	// roleAnggota is the Indonesian spelling some backend builds still emit for members.
	roleAnggota = "anggota"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleKetua, RolePembina, RoleMember}

// MarkerRoles may create sessions and mark attendance.
var MarkerRoles = []string{RoleAdmin, RoleKetua, RolePembina}

// ManagerRoles may manage divisions.
var ManagerRoles = []string{RoleAdmin, RoleKetua}

// Domain errors
var (
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyPassword    = errors.New("password cannot be empty")
)

// Max length constants for user-editable fields.
const (
	MaxUsernameLength = 80
)

// User is the signed-in account as reported by the backend.
// DivisionID and ProfilePicture are optional on the wire and stay nil when absent.
type User struct {
	ID                 int64   `json:"id"`
	Username           string  `json:"username"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	DivisionID         *int64  `json:"division_id,omitempty"`
	ProfilePicture     *string `json:"profile_picture,omitempty"`
	MustChangePassword bool    `json:"must_change_password"`
	CreatedAt          string  `json:"created_at,omitempty"`
}

// NormalizeRole maps backend role spellings onto ValidRoles.
// PRE: none
// POST: returns the canonical role, or the lower-cased input when unknown
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == roleAnggota {
		return RoleMember
	}
	return r
}

// HasRole reports whether the user's role is one of roles.
// PRE: none
// POST: returns false for an empty role set
// INVARIANT: User fields are not mutated
func (u User) HasRole(roles ...string) bool {
	own := NormalizeRole(u.Role)
	for _, r := range roles {
		if own == NormalizeRole(r) {
			return true
		}
	}
	return false
}

// CanMarkAttendance reports whether the user sees session creation and marking.
func (u User) CanMarkAttendance() bool {
	return u.HasRole(MarkerRoles...)
}

// HasDivision reports whether the user is assigned to a division.
func (u User) HasDivision() bool {
	return u.DivisionID != nil
}

// PictureURL returns the profile picture URL and whether one is set.
func (u User) PictureURL() (string, bool) {
	if u.ProfilePicture == nil || *u.ProfilePicture == "" {
		return "", false
	}
	return *u.ProfilePicture, true
}

// DisplayRole returns the canonical role for badges.
func (u User) DisplayRole() string {
	return NormalizeRole(u.Role)
}

// ValidateUsername checks a username before it is sent to the backend.
// PRE: none
// POST: returns nil if the trimmed username is non-empty and within bounds
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return ErrEmptyUsername
	}
	if len(trimmed) > MaxUsernameLength {
		return errors.New("username cannot exceed 80 characters")
	}
	return nil
}

// PasswordChange carries a password change request.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CheckPasswordConfirmation is the only password rule enforced here; strength and
// correctness of the current password are decided by the backend.
// PRE: none
// POST: returns ErrPasswordMismatch if the two values differ
func CheckPasswordConfirmation(newPassword, confirm string) error {
	if newPassword == "" {
		return ErrEmptyPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
