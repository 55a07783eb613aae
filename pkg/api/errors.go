package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/teamshiksha/accounts/pkg/httpx"
)

// Error represents a structured API error. It implements the error
// interface and can be used both by the server (to write HTTP responses)
// and by clients (to represent failures).
type Error struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this Error to an HTTP response writer.
func (e *Error) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidBody is returned when the request body is not valid JSON.
	ErrInvalidBody = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "the request body is malformed",
	}

	// ErrInvalidToken is returned for a missing, invalid, or expired
	// bearer token.
	ErrInvalidToken = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_token",
		Description: "invalid or expired token",
	}

	// ErrInvalidRefresh is returned when the refresh token is unknown,
	// expired, or revoked.
	ErrInvalidRefresh = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_refresh_token",
		Description: "refresh token is invalid or expired",
	}

	// ErrServerError is returned when the service hit an unexpected
	// internal failure.
	ErrServerError = &Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        "server_error",
		Description: "internal server error",
	}
)

// FieldErrors maps a request field to the list of reasons it was rejected.
// All failing fields of one request are reported together, so a client sees
// every invalid field at once.
type FieldErrors map[string][]string

// Add appends a message for a field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// HasErrors reports whether any field was rejected.
func (f FieldErrors) HasErrors() bool { return len(f) > 0 }

// Error implements the error interface.
func (f FieldErrors) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(f))
}

// WriteError writes the per-field error map as a 400 response.
func (f FieldErrors) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusBadRequest, f)
}
