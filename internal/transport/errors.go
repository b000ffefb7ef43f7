package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failed call: either the backend answered with a non-2xx status
// or the request never completed (Err set, StatusCode 0).
type Error struct {
	Endpoint   string
	StatusCode int
	// Message is the server-supplied message field, if any.
	Message string
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.StatusCode == http.StatusNotFound
}

// ServerMessage returns the server-supplied message carried by err, or "".
func ServerMessage(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Message
	}
	return ""
}
