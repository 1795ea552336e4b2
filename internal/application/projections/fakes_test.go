package projections

import (
	"context"
	"sync/atomic"
	"time"

	domainAccount "rohis/internal/domain/account"
	domainAttendance "rohis/internal/domain/attendance"
	domainCalendar "rohis/internal/domain/calendar"
	domainDivision "rohis/internal/domain/division"
	domainSession "rohis/internal/domain/session"
)

type fakeUserStore struct {
	users []domainAccount.User
	err   error
	calls atomic.Int32
}

// List returns the seeded users.
func (f *fakeUserStore) List(context.Context) ([]domainAccount.User, error) {
	f.calls.Add(1)
	return f.users, f.err
}

type fakeDivisionStore struct {
	divisions []domainDivision.Division
	err       error
	calls     atomic.Int32
}

// List returns the seeded divisions.
func (f *fakeDivisionStore) List(context.Context) ([]domainDivision.Division, error) {
	f.calls.Add(1)
	return f.divisions, f.err
}

type fakeSessionStore struct {
	sessions []domainSession.Session
	err      error
}

// List returns the seeded sessions.
func (f *fakeSessionStore) List(context.Context) ([]domainSession.Session, error) {
	return f.sessions, f.err
}

type fakeAttendanceStore struct {
	roster     domainAttendance.Roster
	rosterErr  error
	mine       []domainAttendance.Record
	mineErr    error
	summary    domainAttendance.Summary
	summaryErr error
}

// Roster returns the seeded roster.
func (f *fakeAttendanceStore) Roster(context.Context, int64) (domainAttendance.Roster, error) {
	return f.roster, f.rosterErr
}

// Mine returns the seeded history.
func (f *fakeAttendanceStore) Mine(context.Context) ([]domainAttendance.Record, error) {
	return f.mine, f.mineErr
}

// MySummary returns the seeded summary.
func (f *fakeAttendanceStore) MySummary(context.Context) (domainAttendance.Summary, error) {
	return f.summary, f.summaryErr
}

type fakeCalendarStore struct {
	events   []domainCalendar.Event
	hijri    string
	err      error
	gotYear  int
	gotMonth time.Month
}

// Events returns the seeded events and records the requested month.
func (f *fakeCalendarStore) Events(_ context.Context, year int, month time.Month) ([]domainCalendar.Event, error) {
	f.gotYear, f.gotMonth = year, month
	return f.events, f.err
}

// Hijri returns the seeded Hijri date.
func (f *fakeCalendarStore) Hijri(context.Context) (string, error) {
	return f.hijri, nil
}

func int64Ptr(v int64) *int64 { return &v }
