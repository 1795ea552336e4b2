package chat

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fallback replies shown in place of a backend answer.
const (
	EmptyReply = "Sorry, I could not process that."
	ErrorReply = "Sorry, an error occurred. Please try again."
)

// MaxMessages caps the transcript carried between requests. Older messages drop first.
const MaxMessages = 50

// MaxMessageLength bounds a single user prompt.
const MaxMessageLength = 2000

// Domain errors
var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message cannot exceed 2000 characters")
	ErrBadTranscript  = errors.New("chat transcript is malformed")
)

// Message is one chat bubble. Messages are never persisted.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// IsAssistant reports whether the message came from the assistant.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// NewUserMessage builds a trimmed user message.
// PRE: none
// POST: returns ErrEmptyMessage for blank input
func NewUserMessage(content string, now time.Time) (Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}
	if len(trimmed) > MaxMessageLength {
		return Message{}, ErrMessageTooLong
	}
	return Message{ID: uuid.New().String(), Role: RoleUser, Content: trimmed, Timestamp: now}, nil
}

// NewAssistantMessage builds the reply bubble. An empty reply becomes EmptyReply.
func NewAssistantMessage(reply string, now time.Time) Message {
	if strings.TrimSpace(reply) == "" {
		reply = EmptyReply
	}
	return Message{ID: uuid.New().String(), Role: RoleAssistant, Content: reply, Timestamp: now}
}

// Transcript is the ordered conversation of one chat page.
type Transcript []Message

// Append adds messages and drops the oldest beyond MaxMessages.
func (t Transcript) Append(msgs ...Message) Transcript {
	out := append(t, msgs...)
	if len(out) > MaxMessages {
		out = out[len(out)-MaxMessages:]
	}
	return out
}

// Encode serializes the transcript for a hidden form field.
// POST: the empty transcript encodes to ""
func (t Transcript) Encode() (string, error) {
	if len(t) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeTranscript parses a hidden form field produced by Encode.
// PRE: none
// POST: "" decodes to an empty transcript; messages with unknown roles are rejected
func DecodeTranscript(field string) (Transcript, error) {
	if field == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(field)
	if err != nil {
		return nil, ErrBadTranscript
	}
	var t Transcript
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, ErrBadTranscript
	}
	for _, m := range t {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return nil, ErrBadTranscript
		}
	}
	return t.Append(), nil
}
