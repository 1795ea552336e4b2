package session

import (
	"context"

	domain "rohis/internal/domain/session"
)

// Store manages attendance sessions.
type Store interface {
	List(ctx context.Context) ([]domain.Session, error)
	Create(ctx context.Context, draft domain.Draft) error
	Delete(ctx context.Context, id int64) error
}
