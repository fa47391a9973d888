package hrapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnauthorized matches any 401 response. The credential has already been
// cleared when a caller sees it.
var ErrUnauthorized = errors.New("hrapi: unauthorized")

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hrapi: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("hrapi: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage returns text safe to show in the UI.
func (e *Error) UserMessage() string {
	switch {
	case e.Status == http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case e.Status == http.StatusForbidden:
		return "You do not have permission to do that."
	case e.Status == http.StatusNotFound:
		return "The requested record could not be found."
	case e.Status >= 500:
		return "The HR service is having trouble right now. Please try again."
	case e.Message != "":
		return e.Message
	}
	return "The request was rejected."
}

// TransportError wraps network failures and timeouts.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hrapi: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the call hit the client timeout.
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// UserMessage returns text safe to show in the UI.
func (e *TransportError) UserMessage() string {
	if e.Timeout() {
		return "The HR service took too long to respond. Please try again."
	}
	return "We couldn't reach the HR service. Please check your connection and try again."
}

// IsTimeout reports whether err is a call that timed out.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout()
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

// readMessage extracts the backend's message: a string, a list of strings,
// or the error field.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if len(body.Message) > 0 {
		var single string
		if err := json.Unmarshal(body.Message, &single); err == nil && single != "" {
			return single
		}
		var list []string
		if err := json.Unmarshal(body.Message, &list); err == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}
	return body.Error
}
