package orchestrators

import (
	"context"
	"log/slog"

	domainDivision "rohis/internal/domain/division"
)

// DivisionStoreForOrchestrator defines the store interface needed by division orchestrators.
type DivisionStoreForOrchestrator interface {
	Create(ctx context.Context, name string) error
	Delete(ctx context.Context, id int64) error
	SetAttendancePermission(ctx context.Context, id int64, canMark bool) error
	AssignMember(ctx context.Context, id, userID int64) error
	RemoveMember(ctx context.Context, id, userID int64) error
}

// DivisionDeps holds dependencies for every division orchestrator.
type DivisionDeps struct {
	DivisionStore DivisionStoreForOrchestrator
}

// --- Create Division ---

// CreateDivisionInput carries input for the create division orchestrator.
type CreateDivisionInput struct {
	Name string `validate:"required,max=100" label:"Division name"`
}

// ExecuteCreateDivision creates a division.
// PRE: the caller holds a manager role
// POST: the backend holds a division named by the trimmed input
func ExecuteCreateDivision(ctx context.Context, input CreateDivisionInput, deps DivisionDeps) error {
	input.Name = trimmed(input.Name)
	if err := validateInput(input); err != nil {
		return err
	}
	if err := domainDivision.ValidateName(input.Name); err != nil {
		return err
	}
	if err := deps.DivisionStore.Create(ctx, input.Name); err != nil {
		return err
	}
	slog.Info("division_created", "name", input.Name)
	return nil
}

// --- Delete Division ---

// DivisionRef names a division.
type DivisionRef struct {
	ID int64 `validate:"gt=0" label:"Division"`
}

// ExecuteDeleteDivision deletes a division.
// PRE: the user ticked the confirmation box; the handler checks it
func ExecuteDeleteDivision(ctx context.Context, input DivisionRef, deps DivisionDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.DivisionStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("division_deleted", "division_id", input.ID)
	return nil
}

// --- Attendance Permission ---

// SetDivisionPermissionInput carries the toggled permission.
type SetDivisionPermissionInput struct {
	ID      int64 `validate:"gt=0" label:"Division"`
	CanMark bool
}

// ExecuteSetDivisionPermission grants or revokes a division's right to mark attendance.
func ExecuteSetDivisionPermission(ctx context.Context, input SetDivisionPermissionInput, deps DivisionDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.DivisionStore.SetAttendancePermission(ctx, input.ID, input.CanMark); err != nil {
		return err
	}
	slog.Info("division_permission_updated", "division_id", input.ID, "can_mark_attendance", input.CanMark)
	return nil
}

// --- Membership ---

// DivisionMemberInput names a division and a user.
type DivisionMemberInput struct {
	ID     int64 `validate:"gt=0" label:"Division"`
	UserID int64 `validate:"gt=0" label:"Member"`
}

// ExecuteAssignDivisionMember adds a user to a division.
// PRE: the user has no division; the form only offers such users
func ExecuteAssignDivisionMember(ctx context.Context, input DivisionMemberInput, deps DivisionDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.DivisionStore.AssignMember(ctx, input.ID, input.UserID); err != nil {
		return err
	}
	slog.Info("division_member_assigned", "division_id", input.ID, "user_id", input.UserID)
	return nil
}

// ExecuteRemoveDivisionMember removes a user from a division.
func ExecuteRemoveDivisionMember(ctx context.Context, input DivisionMemberInput, deps DivisionDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.DivisionStore.RemoveMember(ctx, input.ID, input.UserID); err != nil {
		return err
	}
	slog.Info("division_member_removed", "division_id", input.ID, "user_id", input.UserID)
	return nil
}
