package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sangamsetu/casedesk/internal/errors"
)

var (
	// ErrSessionExpired is wrapped by errors for 401 responses.
	ErrSessionExpired = errors.NewSentinel("session expired")
	// ErrForbidden is wrapped by errors for 403 responses.
	ErrForbidden = errors.NewSentinel("forbidden")
)

// Error is a non-2xx response from the case service.
type Error struct {
	Method string
	Path   string
	Status int
	// Detail and Message are the string fields of the same name in the response body, if any.
	Detail  string
	Message string
	Body    []byte
	kind    error
}

func newError(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, Status: status, Body: body, kind: nil} //nolint:exhaustruct // filled below
	var fields map[string]any
	if json.Unmarshal(body, &fields) == nil {
		e.Detail, _ = fields["detail"].(string)
		e.Message, _ = fields["message"].(string)
	}
	return e
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

// UserMessage returns the message to show to the user: the server detail, then the server message,
// then fallback.
func (e *Error) UserMessage(fallback string) string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	default:
		return fallback
	}
}

// UserMessage returns the user-facing message for any error returned by the gateway.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage(fallback)
	}
	return fallback
}
