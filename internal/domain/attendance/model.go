package attendance

import (
	"errors"

	"rohis/internal/domain/account"
	"rohis/internal/domain/session"
)

// Status constants
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
)

// ValidStatuses lists statuses in the order the marking table shows them.
var ValidStatuses = []string{StatusPresent, StatusAbsent, StatusExcused}

// Domain errors
var (
	ErrInvalidStatus = errors.New("attendance status must be present, absent or excused")
	ErrNoSession     = errors.New("a session must be selected")
	ErrNoRecords     = errors.New("no attendance has been marked")
)

// Record is one member's attendance for one session.
// User and Session are embedded only by some endpoints and stay nil otherwise.
type Record struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	SessionID int64            `json:"session_id"`
	Status    string           `json:"status"`
	MarkedBy  int64            `json:"marked_by"`
	MarkedAt  string           `json:"marked_at"`
	User      *account.User    `json:"user,omitempty"`
	Session   *session.Session `json:"session,omitempty"`
}

// SessionName returns the embedded session's name.
// PRE: none
// POST: returns false when the session was not embedded
func (r Record) SessionName() (string, bool) {
	if r.Session == nil {
		return "", false
	}
	return r.Session.Name, true
}

// SessionDate returns the embedded session's display date.
func (r Record) SessionDate() (string, bool) {
	if r.Session == nil {
		return "", false
	}
	return r.Session.DisplayDate(), true
}

// Summary is the backend-computed aggregate of a member's attendance. Displayed verbatim.
type Summary struct {
	TotalSessions  int     `json:"total_sessions"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Excused        int     `json:"excused"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// IsValidStatus reports whether s is one of ValidStatuses.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Roster is a session's member list plus the records already marked for it.
type Roster struct {
	Members []account.User `json:"members"`
	Records []Record       `json:"records"`
}

// StatusMap maps user IDs to statuses and remembers insertion order.
// Members with no entry are unset, not defaulted.
// INVARIANT: every key in order appears exactly once in statuses
type StatusMap struct {
	order    []int64
	statuses map[int64]string
}

// NewStatusMap returns an empty mapping.
func NewStatusMap() *StatusMap {
	return &StatusMap{statuses: make(map[int64]string)}
}

// Seed builds a mapping from existing records, in record order.
// Stored statuses are kept verbatim so a resubmission carries them back unchanged.
// PRE: none
// POST: every record with a user id and a non-empty status is present
func Seed(records []Record) *StatusMap {
	m := NewStatusMap()
	for _, r := range records {
		m.Restore(r.UserID, r.Status)
	}
	return m
}

// Restore records a status that came from the backend without validating it.
// Empty statuses and non-positive ids are ignored.
func (m *StatusMap) Restore(userID int64, status string) {
	if userID <= 0 || status == "" {
		return
	}
	if _, ok := m.statuses[userID]; !ok {
		m.order = append(m.order, userID)
	}
	m.statuses[userID] = status
}

// Set records a status for userID. Overwriting keeps the original position.
// PRE: none
// POST: returns ErrInvalidStatus and leaves the map unchanged for unknown statuses
func (m *StatusMap) Set(userID int64, status string) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	if _, ok := m.statuses[userID]; !ok {
		m.order = append(m.order, userID)
	}
	m.statuses[userID] = status
	return nil
}

// Get returns the status for userID and whether one is set.
func (m *StatusMap) Get(userID int64) (string, bool) {
	s, ok := m.statuses[userID]
	return s, ok
}

// Len returns the number of set entries.
func (m *StatusMap) Len() int {
	return len(m.order)
}

// Entry is a single user-id/status pair on the wire.
type Entry struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

// Entries returns the mapping in insertion order.
func (m *StatusMap) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, Entry{UserID: id, Status: m.statuses[id]})
	}
	return out
}

// BulkPayload is the single all-or-nothing submission for one session.
type BulkPayload struct {
	SessionID int64   `json:"session_id"`
	Records   []Entry `json:"records"`
}

// NewBulkPayload serializes a mapping for sessionID.
// PRE: sessionID > 0
// POST: records follow the mapping's insertion order
func NewBulkPayload(sessionID int64, m *StatusMap) (BulkPayload, error) {
	if sessionID <= 0 {
		return BulkPayload{}, ErrNoSession
	}
	if m == nil || m.Len() == 0 {
		return BulkPayload{}, ErrNoRecords
	}
	return BulkPayload{SessionID: sessionID, Records: m.Entries()}, nil
}
