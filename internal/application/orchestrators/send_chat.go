package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"rohis/internal/domain/chat"
)

// ChatStore defines the store interface needed by SendChat.
type ChatStore interface {
	Ask(ctx context.Context, message string) (string, error)
}

// SendChatInput carries the page's transcript and the new prompt.
type SendChatInput struct {
	Transcript chat.Transcript
	Message    string
}

// SendChatDeps holds dependencies for SendChat.
type SendChatDeps struct {
	ChatStore ChatStore
	Now       func() time.Time
}

// ExecuteSendChat appends the user's message and the assistant's reply.
// PRE: none
// POST: on a blank or oversized prompt the transcript is returned unchanged with the validation error
// POST: a backend failure appends chat.ErrorReply; an empty answer appends chat.EmptyReply
func ExecuteSendChat(ctx context.Context, input SendChatInput, deps SendChatDeps) (chat.Transcript, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	msg, err := chat.NewUserMessage(input.Message, now())
	if err != nil {
		return input.Transcript, err
	}
	transcript := input.Transcript.Append(msg)

	reply, err := deps.ChatStore.Ask(ctx, msg.Content)
	if err != nil {
		slog.Error("chat_failed", "error", err)
		return transcript.Append(chat.NewAssistantMessage(chat.ErrorReply, now())), nil
	}
	return transcript.Append(chat.NewAssistantMessage(reply, now())), nil
}
