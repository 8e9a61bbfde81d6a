package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// errorBody covers both error shapes the backend writes:
// {"error": "..."} and {"status": "error", "message": "..."}.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newError(status int, body []byte, requestID string) *Error {
	e := &Error{StatusCode: status, RequestID: requestID}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case strings.TrimSpace(eb.Error) != "":
			e.Message = eb.Error
		case strings.TrimSpace(eb.Message) != "":
			e.Message = eb.Message
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// Message returns the server-provided message carried by err, or fallback
// when err is not an *Error.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
