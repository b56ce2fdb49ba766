package in

import (
	"context"

	"prax/internal/modules/practice/dto"
)

type Usecase interface {
	CreateArea(ctx context.Context, input dto.CreateAreaInput) (dto.AreaOutput, error)
	ListAreas(ctx context.Context) ([]dto.AreaOutput, error)
	GetArea(ctx context.Context, areaID string) (dto.AreaOutput, error)
	DeleteArea(ctx context.Context, areaID string) error

	StartSession(ctx context.Context, input dto.StartSessionInput) (dto.SessionOutput, error)
	StopSession(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	MoveSession(ctx context.Context, input dto.MoveSessionInput) (dto.SessionOutput, error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	ListSessions(ctx context.Context, areaID string) ([]dto.SessionOutput, error)
	PreviousContext(ctx context.Context, sessionID string) (dto.PreviousContextOutput, error)

	CreateReflection(ctx context.Context, input dto.ReflectInput) (dto.ReflectionOutput, error)
	EditReflection(ctx context.Context, input dto.EditReflectionInput) (dto.ReflectionOutput, error)
	GetReflection(ctx context.Context, sessionID string) (dto.ReflectionOutput, error)
}
