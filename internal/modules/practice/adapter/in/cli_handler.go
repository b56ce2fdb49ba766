package in

import (
	"context"

	"prax/internal/modules/practice/dto"
	practicein "prax/internal/modules/practice/port/in"
)

type CLIHandler struct {
	usecase practicein.Usecase
}

func NewCLIHandler(usecase practicein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) CreateArea(ctx context.Context, name, areaType string) (dto.AreaOutput, error) {
	return h.usecase.CreateArea(ctx, dto.CreateAreaInput{Name: name, Type: areaType})
}

func (h CLIHandler) ListAreas(ctx context.Context) ([]dto.AreaOutput, error) {
	return h.usecase.ListAreas(ctx)
}

func (h CLIHandler) DeleteArea(ctx context.Context, areaID string) error {
	return h.usecase.DeleteArea(ctx, areaID)
}

func (h CLIHandler) StartSession(ctx context.Context, areaID, intent string, targetSeconds int) (dto.SessionOutput, error) {
	return h.usecase.StartSession(ctx, dto.StartSessionInput{AreaID: areaID, Intent: intent, TargetSeconds: targetSeconds})
}

func (h CLIHandler) StopSession(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	return h.usecase.StopSession(ctx, sessionID)
}

func (h CLIHandler) MoveSession(ctx context.Context, sessionID, toAreaID string) (dto.SessionOutput, error) {
	return h.usecase.MoveSession(ctx, dto.MoveSessionInput{SessionID: sessionID, ToAreaID: toAreaID})
}

func (h CLIHandler) DeleteSession(ctx context.Context, sessionID string) error {
	return h.usecase.DeleteSession(ctx, sessionID)
}

func (h CLIHandler) GetSession(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	return h.usecase.GetSession(ctx, sessionID)
}

func (h CLIHandler) ListSessions(ctx context.Context, areaID string) ([]dto.SessionOutput, error) {
	return h.usecase.ListSessions(ctx, areaID)
}

func (h CLIHandler) PreviousContext(ctx context.Context, sessionID string) (dto.PreviousContextOutput, error) {
	return h.usecase.PreviousContext(ctx, sessionID)
}

func (h CLIHandler) CreateReflection(ctx context.Context, input dto.ReflectInput) (dto.ReflectionOutput, error) {
	return h.usecase.CreateReflection(ctx, input)
}

func (h CLIHandler) EditReflection(ctx context.Context, input dto.EditReflectionInput) (dto.ReflectionOutput, error) {
	return h.usecase.EditReflection(ctx, input)
}

func (h CLIHandler) GetReflection(ctx context.Context, sessionID string) (dto.ReflectionOutput, error) {
	return h.usecase.GetReflection(ctx, sessionID)
}
