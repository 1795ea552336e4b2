package orchestrators

import (
	"context"
	"log/slog"

	domainAttendance "rohis/internal/domain/attendance"
	domainSession "rohis/internal/domain/session"
)

// SessionStoreForOrchestrator defines the store interface needed by session orchestrators.
type SessionStoreForOrchestrator interface {
	Create(ctx context.Context, draft domainSession.Draft) error
	Delete(ctx context.Context, id int64) error
}

// --- Create Session ---

// CreateSessionInput carries input for the create session orchestrator.
type CreateSessionInput struct {
	Name      string `validate:"required,max=120" label:"Session name"`
	Date      string `validate:"required" label:"Date"`
	CreatedBy int64
}

// CreateSessionDeps holds dependencies for CreateSession.
type CreateSessionDeps struct {
	SessionStore SessionStoreForOrchestrator
}

// ExecuteCreateSession creates an attendance session.
// PRE: the caller holds a marker role
// POST: the backend holds a new session; the page re-fetches the list
func ExecuteCreateSession(ctx context.Context, input CreateSessionInput, deps CreateSessionDeps) error {
	input.Name = trimmed(input.Name)
	input.Date = trimmed(input.Date)
	if err := validateInput(input); err != nil {
		return err
	}
	draft := domainSession.Draft{Name: input.Name, Date: input.Date}
	if err := draft.Validate(); err != nil {
		return err
	}
	if err := deps.SessionStore.Create(ctx, draft); err != nil {
		return err
	}
	slog.Info("session_created", "name", draft.Name, "date", draft.Date, "created_by", input.CreatedBy)
	return nil
}

// --- Delete Session ---

// DeleteSessionInput carries input for the delete session orchestrator.
type DeleteSessionInput struct {
	ID int64 `validate:"gt=0" label:"Session"`
}

// DeleteSessionDeps holds dependencies for DeleteSession.
type DeleteSessionDeps struct {
	SessionStore SessionStoreForOrchestrator
}

// ExecuteDeleteSession deletes an attendance session.
func ExecuteDeleteSession(ctx context.Context, input DeleteSessionInput, deps DeleteSessionDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.SessionStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("session_deleted", "session_id", input.ID)
	return nil
}

// --- Mark Attendance ---

// AttendanceStoreForOrchestrator defines the store interface needed by MarkAttendance.
type AttendanceStoreForOrchestrator interface {
	SubmitBulk(ctx context.Context, payload domainAttendance.BulkPayload) error
}

// MarkAttendanceInput carries the marking form.
// Seeded lists the records present when the form was rendered, in record order,
// including users that have no roster row. Members lists every roster row in display order.
// Statuses maps user id to the status chosen on the form.
type MarkAttendanceInput struct {
	SessionID int64 `validate:"gt=0" label:"Session"`
	Seeded    []domainAttendance.Entry
	Members   []int64
	Statuses  map[int64]string
}

// MarkAttendanceDeps holds dependencies for MarkAttendance.
type MarkAttendanceDeps struct {
	AttendanceStore AttendanceStoreForOrchestrator
}

// BuildStatusMap rebuilds the ordered mapping from the marking form: seeded entries first,
// then every other row with a status, in row order. Rows left unset are omitted.
// A seeded entry with no status on the form keeps its stored status.
// PRE: none
// POST: returns ErrInvalidStatus for an unknown status chosen on the form
func BuildStatusMap(input MarkAttendanceInput) (*domainAttendance.StatusMap, error) {
	m := domainAttendance.NewStatusMap()
	for _, e := range input.Seeded {
		status, ok := input.Statuses[e.UserID]
		if !ok || status == "" {
			m.Restore(e.UserID, e.Status)
			continue
		}
		if err := m.Set(e.UserID, status); err != nil {
			return nil, err
		}
	}
	for _, id := range input.Members {
		status := input.Statuses[id]
		if status == "" {
			continue
		}
		if _, ok := m.Get(id); ok {
			continue
		}
		if err := m.Set(id, status); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ExecuteMarkAttendance submits every marked row for a session in one request.
// PRE: the caller holds a marker role
// POST: a single POST /api/attendance/bulk is issued; no per-row saves
func ExecuteMarkAttendance(ctx context.Context, input MarkAttendanceInput, deps MarkAttendanceDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	marks, err := BuildStatusMap(input)
	if err != nil {
		return err
	}
	payload, err := domainAttendance.NewBulkPayload(input.SessionID, marks)
	if err != nil {
		return err
	}
	if err := deps.AttendanceStore.SubmitBulk(ctx, payload); err != nil {
		return err
	}
	slog.Info("attendance_marked", "session_id", input.SessionID, "records", len(payload.Records))
	return nil
}
