// Package apperr classifies service failures so the API layer can map them to
// HTTP status codes without inspecting message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the failure classification exposed to callers.
type Kind int

const (
	// KindInternal is an unexpected failure; its cause is never surfaced to clients.
	KindInternal Kind = iota
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindInvalidRequest covers malformed input and permission violations. The
	// two share a kind on purpose: callers must not be able to distinguish
	// "doesn't exist" from "not yours to touch".
	KindInvalidRequest
	// KindConflict means a uniqueness constraint was violated.
	KindConflict
)

// Error carries a classification, a client-safe message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a client-safe message.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a classification and client-safe message to an underlying cause.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message for err. Unclassified errors get a
// generic message so internals never leak outward.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
