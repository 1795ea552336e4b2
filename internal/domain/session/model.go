package session

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire format of session dates.
const DateLayout = "2006-01-02"

// Max length constants.
const (
	MaxNameLength = 120
)

// Domain errors
var (
	ErrEmptyName   = errors.New("session name cannot be empty")
	ErrInvalidDate = errors.New("session date must be YYYY-MM-DD")
)

// Session is a scheduled attendance-taking event (not an HTTP session).
type Session struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	CreatedBy int64  `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

// Day parses the session date. Backends may append a time part, which is ignored.
// PRE: none
// POST: returns the calendar day, or false when Date is not parseable
func (s Session) Day() (time.Time, bool) {
	raw := s.Date
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DisplayDate renders the date for tables and selects.
// PRE: none
// POST: returns a human date, or the raw value if it cannot be parsed
func (s Session) DisplayDate() string {
	d, ok := s.Day()
	if !ok {
		return s.Date
	}
	return d.Format("2 Jan 2006")
}

// Draft carries the fields needed to create a session.
type Draft struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Validate checks the draft's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if len(d.Name) > MaxNameLength {
		return errors.New("session name cannot exceed 120 characters")
	}
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Find returns the session with the given ID.
func Find(sessions []Session, id int64) (Session, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return Session{}, false
}
