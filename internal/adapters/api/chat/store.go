package chat

import "context"

// Store asks the backend assistant a question.
type Store interface {
	Ask(ctx context.Context, message string) (string, error)
}
