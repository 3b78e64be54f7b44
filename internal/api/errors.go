package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks local validation failures that never reach the
	// network, such as a malformed MFA code.
	ErrInvalidInput = errors.New("api: invalid input")

	// ErrAuthRejected marks 401-class responses; the persisted session has
	// already been purged by the time callers see it.
	ErrAuthRejected = errors.New("api: authentication rejected")

	// ErrAuthorizationDenied marks 403 responses; the session stays valid.
	ErrAuthorizationDenied = errors.New("api: authorization denied")

	// ErrValidationFailed marks 4xx responses carrying server detail text,
	// e.g. a duplicate registration or a bad role update.
	ErrValidationFailed = errors.New("api: validation failed")

	// ErrTransient marks network failures and 5xx responses; callers keep
	// stale data on screen and may retry.
	ErrTransient = errors.New("api: transient failure")
)

// APIError carries the HTTP status and the server-provided detail message.
type APIError struct {
	Status int
	Detail string
	kind   error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Unwrap lets errors.Is match the taxonomy sentinel for this status class.
func (e *APIError) Unwrap() error { return e.kind }

func classify(status int) error {
	switch {
	case status == 401:
		return ErrAuthRejected
	case status == 403:
		return ErrAuthorizationDenied
	case status >= 400 && status < 500:
		return ErrValidationFailed
	default:
		return ErrTransient
	}
}
