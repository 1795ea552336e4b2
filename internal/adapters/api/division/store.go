package division

import (
	"context"

	domain "rohis/internal/domain/division"
)

// Store manages divisions and their membership.
type Store interface {
	List(ctx context.Context) ([]domain.Division, error)
	Create(ctx context.Context, name string) error
	Delete(ctx context.Context, id int64) error
	SetAttendancePermission(ctx context.Context, id int64, canMark bool) error
	AssignMember(ctx context.Context, id, userID int64) error
	RemoveMember(ctx context.Context, id, userID int64) error
}
