package schedule

import (
	"errors"
	"fmt"
)

// ErrorKind classifies scheduling errors so callers and the API layer can
// map them to a response without string matching.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation_error"
	KindConflict   ErrorKind = "conflict"
	KindPermission ErrorKind = "permission_denied"
	KindNotFound   ErrorKind = "not_found"
	KindState      ErrorKind = "state_error"
)

// Error carries an error kind plus a human-readable reason.
type Error struct {
	Kind   ErrorKind
	Reason string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Reason
}

// NewValidationError reports malformed input (bad rule string, inverted
// time range, exceeded expansion cap).
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

// NewConflictError reports a room double-booking detected during a
// reserving transition.
func NewConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

// NewPermissionError reports that the actor's roles do not satisfy a
// transition or edit guard.
func NewPermissionError(format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Reason: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing event or room.
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

// NewStateError reports a transition missing from the lifecycle table or
// an optimistic-concurrency mismatch.
func NewStateError(format string, args ...any) *Error {
	return &Error{Kind: KindState, Reason: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a scheduling Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind of err, or "" when err is not a scheduling Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
