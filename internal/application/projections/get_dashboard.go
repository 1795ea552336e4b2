package projections

import (
	"context"

	"golang.org/x/sync/errgroup"

	domainAccount "rohis/internal/domain/account"
	domainAttendance "rohis/internal/domain/attendance"
)

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	User domainAccount.User
}

// Stat is a dashboard number that may be unknown.
type Stat struct {
	Value int
	Known bool
}

// GetDashboardResult carries the query result.
type GetDashboardResult struct {
	Summary        domainAttendance.Summary
	SummaryKnown   bool
	ShowOrgStats   bool // admin, ketua, pembina
	TotalMembers   Stat
	TotalDivisions Stat
	TotalSessions  Stat
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	AttendanceStore AttendanceStore
	UserStore       UserStore
	DivisionStore   DivisionStore
	SessionStore    SessionStore
}

// QueryGetDashboard loads the signed-in user's summary and, for markers, organisation counts.
// PRE: query.User is the signed-in user
// POST: on error every stat is unknown; ShowOrgStats is still set from the role
// INVARIANT: fetches run in parallel and a single failure discards the batch
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	result := GetDashboardResult{ShowOrgStats: query.User.CanMarkAttendance()}

	var (
		summary                   domainAttendance.Summary
		members, divisions, sessC int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = deps.AttendanceStore.MySummary(gctx)
		return err
	})
	if result.ShowOrgStats {
		g.Go(func() error {
			users, err := deps.UserStore.List(gctx)
			members = len(users)
			return err
		})
		g.Go(func() error {
			list, err := deps.DivisionStore.List(gctx)
			divisions = len(list)
			return err
		})
		g.Go(func() error {
			list, err := deps.SessionStore.List(gctx)
			sessC = len(list)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.Summary = summary
	result.SummaryKnown = true
	if result.ShowOrgStats {
		result.TotalMembers = Stat{Value: members, Known: true}
		result.TotalDivisions = Stat{Value: divisions, Known: true}
		result.TotalSessions = Stat{Value: sessC, Known: true}
	}
	return result, nil
}
