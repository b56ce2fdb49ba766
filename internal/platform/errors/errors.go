package apperrors

import "errors"

// Constraint violations are expected, user-actionable outcomes. Callers
// surface them verbatim; they are never logged-and-ignored.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrReflectionPending blocks starting a new session while an ended,
	// unreflected session exists in the same practice area. The block has
	// no time limit; it lifts only when that session is reflected or deleted.
	ErrReflectionPending = errors.New("previous session is awaiting a reflection")

	// ErrSessionReflected blocks deleting a session that owns a reflection.
	ErrSessionReflected = errors.New("session has a reflection and cannot be deleted")

	// ErrAreaHasSessions blocks deleting a practice area that still owns
	// non-deleted sessions.
	ErrAreaHasSessions = errors.New("practice area still has sessions")

	ErrReflectionExists = errors.New("session already has a reflection")
	ErrSessionNotEnded  = errors.New("session has not ended")
	ErrEditWindowClosed = errors.New("reflection edit window has closed")
	ErrSessionDeleted   = errors.New("session is deleted")
	ErrAreaDeleted      = errors.New("practice area is deleted")
)
