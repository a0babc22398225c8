package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so adapters can map it to a status without
// inspecting messages.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindServer     Kind = "server"
)

// Error is the single error type returned by the core services.
type Error struct {
	Kind   Kind
	Reason string
	Err    error // underlying cause, only set for server errors
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

// Internal wraps a storage or unexpected failure. Already classified errors
// pass through unchanged.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindServer, Reason: "internal server error", Err: err}
}

// KindOf reports the kind of err. Unclassified errors are server errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindServer
}

// ReasonOf returns the human readable reason for err.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return "internal server error"
}

// Reasons used by the ownership checks.
const (
	ReasonCardNotInCollection   = "card not in collection"
	ReasonInsufficientQuantity  = "insufficient collection quantity"
	ReasonWouldExceedAllocation = "would exceed allocations"
)

// ErrInvalidCredentials is returned by login for an unknown user or a bad
// password. It is not a *Error; adapters map it to 401.
var ErrInvalidCredentials = errors.New("invalid username or password")
