package projections

import (
	"context"
	"errors"
	"testing"

	domainAccount "rohis/internal/domain/account"
	domainAttendance "rohis/internal/domain/attendance"
	domainDivision "rohis/internal/domain/division"
	domainSession "rohis/internal/domain/session"
)

func dashboardDeps() (GetDashboardDeps, *fakeUserStore) {
	users := &fakeUserStore{users: make([]domainAccount.User, 5)}
	return GetDashboardDeps{
		AttendanceStore: &fakeAttendanceStore{summary: domainAttendance.Summary{TotalSessions: 8, Present: 6, AttendanceRate: 75}},
		UserStore:       users,
		DivisionStore:   &fakeDivisionStore{divisions: make([]domainDivision.Division, 2)},
		SessionStore:    &fakeSessionStore{sessions: make([]domainSession.Session, 8)},
	}, users
}

// TestQueryGetDashboard_Member verifies members get only their own summary.
func TestQueryGetDashboard_Member(t *testing.T) {
	deps, users := dashboardDeps()
	result, err := QueryGetDashboard(context.Background(), GetDashboardQuery{User: domainAccount.User{Role: domainAccount.RoleMember}}, deps)
	if err != nil {
		t.Fatalf("QueryGetDashboard: %v", err)
	}
	if !result.SummaryKnown || result.Summary.AttendanceRate != 75 {
		t.Errorf("summary = %+v", result.Summary)
	}
	if result.ShowOrgStats || result.TotalMembers.Known {
		t.Error("members must not see organisation stats")
	}
	if users.calls.Load() != 0 {
		t.Error("user list should not be fetched for members")
	}
}

// TestQueryGetDashboard_Marker verifies the organisation counts.
func TestQueryGetDashboard_Marker(t *testing.T) {
	deps, _ := dashboardDeps()
	result, err := QueryGetDashboard(context.Background(), GetDashboardQuery{User: domainAccount.User{Role: domainAccount.RolePembina}}, deps)
	if err != nil {
		t.Fatalf("QueryGetDashboard: %v", err)
	}
	if result.TotalMembers != (Stat{Value: 5, Known: true}) ||
		result.TotalDivisions != (Stat{Value: 2, Known: true}) ||
		result.TotalSessions != (Stat{Value: 8, Known: true}) {
		t.Errorf("stats = %+v %+v %+v", result.TotalMembers, result.TotalDivisions, result.TotalSessions)
	}
}

// TestQueryGetDashboard_FailureDiscardsBatch verifies one failure leaves every stat unknown.
func TestQueryGetDashboard_FailureDiscardsBatch(t *testing.T) {
	deps, _ := dashboardDeps()
	deps.DivisionStore = &fakeDivisionStore{err: errors.New("boom")}
	result, err := QueryGetDashboard(context.Background(), GetDashboardQuery{User: domainAccount.User{Role: domainAccount.RoleAdmin}}, deps)
	if err == nil {
		t.Fatal("expected error")
	}
	if result.SummaryKnown || result.TotalMembers.Known || result.TotalSessions.Known {
		t.Errorf("partial results leaked: %+v", result)
	}
	if !result.ShowOrgStats {
		t.Error("ShowOrgStats should still follow the role")
	}
}

// TestQueryGetDashboard_CancelledContext verifies results of an abandoned load are discarded.
func TestQueryGetDashboard_CancelledContext(t *testing.T) {
	deps, _ := dashboardDeps()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := QueryGetDashboard(ctx, GetDashboardQuery{User: domainAccount.User{Role: domainAccount.RoleMember}}, deps)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result.SummaryKnown {
		t.Error("summary should be discarded")
	}
}
