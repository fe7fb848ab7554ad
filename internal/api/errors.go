package api

import (
	"fmt"
	"net/http"
)

// Static fallback when the response body carries no usable message
const GenericErrorMessage = "Something went wrong. Please try again."

// ConflictMessage is surfaced verbatim when an update loses the
// optimistic-concurrency check
const ConflictMessage = "Record has been modified by another user. Please refresh and try again."

// Error is a normalized failure response from the remote API
type Error struct {
	StatusCode int
	Message    string
	// Fields carries field-scoped messages for 400 validation rejections
	Fields map[string][]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

func (e *Error) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *Error) IsForbidden() bool    { return e.StatusCode == http.StatusForbidden }
func (e *Error) IsNotFound() bool     { return e.StatusCode == http.StatusNotFound }
func (e *Error) IsConflict() bool     { return e.StatusCode == http.StatusConflict }

// UserMessage maps the error onto the message shown to the user
func (e *Error) UserMessage() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "Your session has expired. Please log in again."
	case http.StatusForbidden:
		return "You do not have permission to perform this action."
	case http.StatusNotFound:
		return "The requested record was not found."
	case http.StatusConflict:
		return ConflictMessage
	}
	if e.Message != "" {
		return e.Message
	}
	return GenericErrorMessage
}

// AsError unwraps err into an *Error when it is one
func AsError(err error) (*Error, bool) {
	apiErr, ok := err.(*Error)
	return apiErr, ok
}
