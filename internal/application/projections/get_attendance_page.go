package projections

import (
	"context"

	"golang.org/x/sync/errgroup"

	domainAccount "rohis/internal/domain/account"
	domainAttendance "rohis/internal/domain/attendance"
	domainSession "rohis/internal/domain/session"
)

// GetAttendancePageQuery carries query parameters.
type GetAttendancePageQuery struct {
	User domainAccount.User
}

// GetAttendancePageResult carries the query result.
type GetAttendancePageResult struct {
	Sessions []domainSession.Session
	History  []domainAttendance.Record
	Summary  domainAttendance.Summary
	CanMark  bool
}

// GetAttendancePageDeps holds dependencies for GetAttendancePage.
type GetAttendancePageDeps struct {
	SessionStore    SessionStore
	AttendanceStore AttendanceStore
}

// QueryGetAttendancePage loads sessions, the user's history and summary in parallel.
// PRE: query.User is the signed-in user
// POST: on error the lists are empty; CanMark is still set from the role
func QueryGetAttendancePage(ctx context.Context, query GetAttendancePageQuery, deps GetAttendancePageDeps) (GetAttendancePageResult, error) {
	result := GetAttendancePageResult{CanMark: query.User.CanMarkAttendance()}

	var (
		sessions []domainSession.Session
		history  []domainAttendance.Record
		summary  domainAttendance.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = deps.SessionStore.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = deps.AttendanceStore.Mine(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = deps.AttendanceStore.MySummary(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.Sessions = sessions
	result.History = history
	result.Summary = summary
	return result, nil
}

// GetSessionRosterQuery carries query parameters.
type GetSessionRosterQuery struct {
	SessionID int64
}

// RosterRow is one member line of the marking form.
type RosterRow struct {
	User   domainAccount.User
	Status string // "" when the member has no record yet
}

// GetSessionRosterResult carries the query result.
type GetSessionRosterResult struct {
	SessionID int64
	Rows      []RosterRow
	Marks     *domainAttendance.StatusMap
}

// GetSessionRosterDeps holds dependencies for GetSessionRoster.
type GetSessionRosterDeps struct {
	AttendanceStore AttendanceStore
}

// QueryGetSessionRoster loads a session's members and seeds the status mapping from its records.
// PRE: query.SessionID > 0
// POST: Rows follows the backend member order; members without a record have an empty Status
func QueryGetSessionRoster(ctx context.Context, query GetSessionRosterQuery, deps GetSessionRosterDeps) (GetSessionRosterResult, error) {
	if query.SessionID <= 0 {
		return GetSessionRosterResult{}, domainAttendance.ErrNoSession
	}
	roster, err := deps.AttendanceStore.Roster(ctx, query.SessionID)
	if err != nil {
		return GetSessionRosterResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return GetSessionRosterResult{}, err
	}

	marks := domainAttendance.Seed(roster.Records)
	rows := make([]RosterRow, 0, len(roster.Members))
	for _, m := range roster.Members {
		status, _ := marks.Get(m.ID)
		rows = append(rows, RosterRow{User: m, Status: status})
	}
	return GetSessionRosterResult{SessionID: query.SessionID, Rows: rows, Marks: marks}, nil
}
