package out

import (
	"context"

	"prax/internal/modules/practice/domain"
)

// Store owns all three entities. Read results are snapshots; no caller
// holds a mutable copy that outlives one operation.
type Store interface {
	SaveArea(ctx context.Context, area domain.Area) error
	FindArea(ctx context.Context, id string) (domain.Area, error)
	ListAreas(ctx context.Context) ([]domain.Area, error)
	MarkAreaDeleted(ctx context.Context, id string) error
	// HasLiveSessions reports whether the area owns any non-deleted session.
	HasLiveSessions(ctx context.Context, areaID string) (bool, error)

	SaveSession(ctx context.Context, session domain.Session) error
	UpdateSession(ctx context.Context, session domain.Session) error
	FindSession(ctx context.Context, id string) (domain.Session, error)
	// ListSessions returns the area's non-deleted sessions, newest first.
	ListSessions(ctx context.Context, areaID string) ([]domain.Session, error)
	// LatestSession is the most recent non-deleted session in the area.
	LatestSession(ctx context.Context, areaID string) (domain.Session, bool, error)
	// LatestUnreflected is the most recent ended, non-deleted session in
	// the area that has no reflection at all.
	LatestUnreflected(ctx context.Context, areaID string) (domain.Session, bool, error)
	MarkSessionDeleted(ctx context.Context, id string) error

	SaveReflection(ctx context.Context, reflection domain.Reflection) error
	UpdateReflection(ctx context.Context, reflection domain.Reflection) error
	FindReflection(ctx context.Context, sessionID string) (domain.Reflection, bool, error)
}

// NoteStore mirrors completed reflections into human-readable notes. The
// sqlite store stays authoritative; notes are advisory output.
type NoteStore interface {
	WriteReflectionNote(ctx context.Context, area domain.Area, session domain.Session, reflection domain.Reflection) (string, error)
}
