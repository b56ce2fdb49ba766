package usecase

import (
	"context"

	"prax/internal/modules/coach/dto"
	coachin "prax/internal/modules/coach/port/in"
	"prax/internal/modules/coach/service"
)

type Interactor struct {
	svc *service.CoachService
}

var _ coachin.Usecase = (*Interactor)(nil)

func NewInteractor(svc *service.CoachService) *Interactor {
	return &Interactor{svc: svc}
}

func (i *Interactor) GeneratePrompt(ctx context.Context, input dto.PromptInput) (dto.PromptOutput, error) {
	return i.svc.GeneratePrompt(ctx, input)
}

func (i *Interactor) Status(ctx context.Context) (dto.CoachInfo, bool, error) {
	return i.svc.Status(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}
