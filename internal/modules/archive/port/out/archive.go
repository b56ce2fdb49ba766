package out

import (
	"context"

	archivedomain "prax/internal/modules/archive/domain"
	practice "prax/internal/modules/practice/domain"
)

// Source reads the live entities an export covers. Soft-deleted areas and
// sessions are excluded: the interchange format has no is_deleted field.
type Source interface {
	Areas(ctx context.Context) ([]practice.Area, error)
	Sessions(ctx context.Context, areaID string) ([]practice.Session, error)
	Reflection(ctx context.Context, sessionID string) (practice.Reflection, bool, error)
}

// Restorer applies a validated snapshot to the store. Callers wrap it in a
// transaction; every statement must honor the transaction carried by ctx.
type Restorer interface {
	WipeAll(ctx context.Context) error
	InsertArea(ctx context.Context, area practice.Area) error
	InsertSession(ctx context.Context, session practice.Session) error
	InsertReflection(ctx context.Context, reflection practice.Reflection) error
}

// FileStore moves snapshots between disk and memory.
type FileStore interface {
	Write(ctx context.Context, path string, snapshot archivedomain.Snapshot) error
	Read(ctx context.Context, path string) ([]byte, error)
}
