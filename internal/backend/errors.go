package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

// APIError is a non-2xx answer from the REST API. Message carries the body's
// "message" field when present.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("backend: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    errorMessage(body),
	}
}

// errorMessage extracts "message" which the API sends either as a string or
// as a list of validation messages.
func errorMessage(body []byte) string {
	var eb struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Message) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Message, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(eb.Message, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsUnavailable reports whether the circuit breaker rejected the call.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
