package projections

import (
	"context"
	"time"

	domainAccount "rohis/internal/domain/account"
	domainAttendance "rohis/internal/domain/attendance"
	domainCalendar "rohis/internal/domain/calendar"
	domainDivision "rohis/internal/domain/division"
	domainSession "rohis/internal/domain/session"
)

// UserStore interface for user queries.
type UserStore interface {
	List(ctx context.Context) ([]domainAccount.User, error)
}

// DivisionStore interface for division queries.
type DivisionStore interface {
	List(ctx context.Context) ([]domainDivision.Division, error)
}

// SessionStore interface for attendance session queries.
type SessionStore interface {
	List(ctx context.Context) ([]domainSession.Session, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	Roster(ctx context.Context, sessionID int64) (domainAttendance.Roster, error)
	Mine(ctx context.Context) ([]domainAttendance.Record, error)
	MySummary(ctx context.Context) (domainAttendance.Summary, error)
}

// CalendarStore interface for calendar queries.
type CalendarStore interface {
	Events(ctx context.Context, year int, month time.Month) ([]domainCalendar.Event, error)
	Hijri(ctx context.Context) (string, error)
}
