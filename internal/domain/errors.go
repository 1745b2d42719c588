package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected business failures.
// Use with errors.Is() for checking and fmt.Errorf("%w", ...) for wrapping with context.

var (
	// ErrValidation indicates malformed input caught before persistence
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the entity is absent or already purged
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the requester is authenticated but does not own the list
	ErrForbidden = errors.New("forbidden")

	// ErrNotDeleted indicates a restore was attempted on a live item
	ErrNotDeleted = errors.New("item is not deleted")

	// ErrUndoTimeout indicates a restore was attempted after the undo window elapsed
	ErrUndoTimeout = errors.New("undo window has expired")
)

// Identity resolution errors

var (
	// ErrUnauthenticated indicates no usable credentials were presented
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired indicates the session token is known but past its expiry
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError describes a single rejected input field.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Kind is the stable, transport-independent classification of an error.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindNotDeleted      Kind = "not_deleted"
	KindUndoTimeout     Kind = "undo_timeout"
	KindUnauthenticated Kind = "unauthenticated"
	KindSessionExpired  Kind = "session_expired"
	KindInternal        Kind = "internal"
)

// KindOf classifies err. A nil error has an empty kind; anything that is not
// one of the sentinels above is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotDeleted):
		return KindNotDeleted
	case errors.Is(err, ErrUndoTimeout):
		return KindUndoTimeout
	case errors.Is(err, ErrSessionExpired):
		return KindSessionExpired
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	default:
		return KindInternal
	}
}
