// Package apierr defines the API error taxonomy shared by all handlers.
//
// An Error carries the HTTP status it should be rendered with alongside a
// human-readable message. Handlers construct errors through the named
// constructors and hand them to httputil.WriteAPIError, which is the single
// place errors become responses.
package apierr

import (
	"errors"
	"net/http"
)

// Error is an API-visible error with an HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with an explicit status.
func New(message string, status int) *Error {
	return &Error{Status: status, Message: message}
}

// Validation reports missing or invalid input (400).
func Validation(message string) *Error {
	return New(message, http.StatusBadRequest)
}

// NotFound reports an unknown resource (404).
func NotFound(message string) *Error {
	return New(message, http.StatusNotFound)
}

// AuthenticationFailed reports a failed identity-provider exchange (400).
func AuthenticationFailed(message string) *Error {
	return New(message, http.StatusBadRequest)
}

// InvalidCredential reports a credential the provider explicitly rejected (401).
func InvalidCredential(message string) *Error {
	return New(message, http.StatusUnauthorized)
}

// AccountBlocked reports a sign-in attempt against a blocked account (401).
func AccountBlocked(message string) *Error {
	return New(message, http.StatusUnauthorized)
}

// EmailNotVerified reports a sign-up with an unverified provider email (400).
func EmailNotVerified(message string) *Error {
	return New(message, http.StatusBadRequest)
}

// From extracts an *Error from err, or wraps it as a 500.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return New("internal server error", http.StatusInternalServerError)
}
