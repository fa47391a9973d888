package shared

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a form failed local validation.
	ErrValidation = errors.New("validation failed")
	// ErrSessionMissing occurs when no browser session is attached to a request.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// DefaultErrorMessage is shown when an error carries no user-facing text.
const DefaultErrorMessage = "Something went wrong. Please try again."

type userMessager interface {
	UserMessage() string
}

// UserSafeMessage returns text that can be shown to the user for err.
// Errors opt in by implementing UserMessage() string anywhere in their chain.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request took too long. Please try again."
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	if errors.Is(err, ErrNotFound) {
		return "The requested record could not be found."
	}
	return DefaultErrorMessage
}
