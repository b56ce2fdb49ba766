package in

import (
	"context"

	"prax/internal/modules/coach/dto"
	coachin "prax/internal/modules/coach/port/in"
)

type CLIHandler struct {
	usecase coachin.Usecase
}

func NewCLIHandler(usecase coachin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) GeneratePrompt(ctx context.Context, input dto.PromptInput) (dto.PromptOutput, error) {
	return h.usecase.GeneratePrompt(ctx, input)
}

func (h CLIHandler) Status(ctx context.Context) (dto.CoachInfo, bool, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
