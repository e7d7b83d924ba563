// Package common defines shared constants and sentinel errors used across
// client and server layers of Vizzy. Callers should use errors.Is (and
// errors.As for ValidationError) to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Transport-level error: the server gave no usable response.
	ErrUnavailable = errors.New("server unavailable")

	// Send-pipeline local preconditions. Neither ever reaches the network.
	ErrEmptyMessage = errors.New("nothing to send")
	ErrBusy         = errors.New("a send is already in progress")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError is a rejection the server explained. Reason is a
// human-readable message safe to show to the user verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError wraps reason in a *ValidationError. An empty reason is
// replaced with a generic message so the presentation layer always has
// something to show.
func NewValidationError(reason string) error {
	if reason == "" {
		reason = "request rejected"
	}
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is (or wraps) a server-side validation
// rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationReason extracts the server-provided reason from err, or returns
// an empty string if err is not a validation rejection.
func ValidationReason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
