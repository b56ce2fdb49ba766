package in

import (
	"context"

	"prax/internal/modules/coach/dto"
)

type Usecase interface {
	GeneratePrompt(ctx context.Context, input dto.PromptInput) (dto.PromptOutput, error)
	Status(ctx context.Context) (dto.CoachInfo, bool, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
}
