package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotAuthenticated is returned before sending an authenticated request
	// when no token is available.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches any 404 response.
	ErrNotFound = errors.New("not found")
)

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func newError(method, path string, status int, body []byte) *Error {
	return &Error{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    errorMessage(status, body),
	}
}

// errorMessage pulls the server's message out of a JSON error body. NestJS
// style bodies carry either a string or a list of validation messages.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Message) > 0 {
		var single string
		if err := json.Unmarshal(payload.Message, &single); err == nil && single != "" {
			return single
		}
		var many []string
		if err := json.Unmarshal(payload.Message, &many); err == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
	}
	if payload.Error != "" {
		return payload.Error
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}
