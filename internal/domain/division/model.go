package division

import (
	"errors"
	"strings"

	"rohis/internal/domain/account"
)

// Max length constants.
const (
	MaxNameLength = 100
)

// Domain errors
var (
	ErrEmptyName = errors.New("division name cannot be empty")
)

// Division is an organisational sub-group a member may belong to.
type Division struct {
	ID                int64          `json:"id"`
	Name              string         `json:"name"`
	CanMarkAttendance bool           `json:"can_mark_attendance"`
	Members           []account.User `json:"members,omitempty"`
}

// MemberCount returns the number of embedded members.
func (d Division) MemberCount() int {
	return len(d.Members)
}

// ValidateName checks a division name before it is sent to the backend.
// PRE: none
// POST: returns nil if the trimmed name is non-empty and within bounds
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if len(trimmed) > MaxNameLength {
		return errors.New("division name cannot exceed 100 characters")
	}
	return nil
}

// Unassigned returns the users that do not belong to any division, in input order.
// PRE: none
// POST: returns a new slice; users is not modified
func Unassigned(users []account.User) []account.User {
	out := make([]account.User, 0, len(users))
	for _, u := range users {
		if !u.HasDivision() {
			out = append(out, u)
		}
	}
	return out
}

// NameIndex maps division IDs to names for display lookups.
func NameIndex(divisions []Division) map[int64]string {
	idx := make(map[int64]string, len(divisions))
	for _, d := range divisions {
		idx[d.ID] = d.Name
	}
	return idx
}

// Find returns the division with the given ID.
func Find(divisions []Division, id int64) (Division, bool) {
	for _, d := range divisions {
		if d.ID == id {
			return d, true
		}
	}
	return Division{}, false
}
