package backend

import (
	"errors"
	"net/http"
)

// FallbackMessage is used when an error body cannot be parsed or the request never completed.
const FallbackMessage = "Request failed"

// Error is every failure at the backend boundary: transport errors (StatusCode 0),
// non-2xx responses and undecodable bodies.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

// Error returns the user-facing message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying transport or decode error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not a backend error
// or the request never got a response.
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the caller's session.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// Message returns the backend's message for err, or FallbackMessage for non-backend errors.
func Message(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return FallbackMessage
}
