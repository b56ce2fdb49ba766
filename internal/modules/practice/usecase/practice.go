package usecase

import (
	"context"
	"fmt"
	"strings"

	"prax/internal/modules/practice/domain"
	"prax/internal/modules/practice/dto"
	practicein "prax/internal/modules/practice/port/in"
	"prax/internal/modules/practice/service"
	apperrors "prax/internal/platform/errors"
)

type Interactor struct {
	svc *service.PracticeService
}

func NewInteractor(svc *service.PracticeService) practicein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) CreateArea(ctx context.Context, input dto.CreateAreaInput) (dto.AreaOutput, error) {
	area, err := i.svc.CreateArea(ctx, input.Name, domain.AreaType(input.Type))
	if err != nil {
		return dto.AreaOutput{}, err
	}
	return toAreaOutput(area), nil
}

func (i *Interactor) ListAreas(ctx context.Context) ([]dto.AreaOutput, error) {
	areas, err := i.svc.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AreaOutput, 0, len(areas))
	for _, area := range areas {
		out = append(out, toAreaOutput(area))
	}
	return out, nil
}

func (i *Interactor) GetArea(ctx context.Context, areaID string) (dto.AreaOutput, error) {
	area, err := i.svc.GetArea(ctx, areaID)
	if err != nil {
		return dto.AreaOutput{}, err
	}
	return toAreaOutput(area), nil
}

func (i *Interactor) DeleteArea(ctx context.Context, areaID string) error {
	if strings.TrimSpace(areaID) == "" {
		return fmt.Errorf("%w: area id is required", apperrors.ErrInvalidInput)
	}
	return i.svc.DeleteArea(ctx, areaID)
}

func (i *Interactor) StartSession(ctx context.Context, input dto.StartSessionInput) (dto.SessionOutput, error) {
	if input.TargetSeconds < 0 {
		return dto.SessionOutput{}, fmt.Errorf("%w: target must be non-negative", apperrors.ErrInvalidInput)
	}
	session, err := i.svc.StartSession(ctx, input.AreaID, input.Intent, input.TargetSeconds)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return i.toSessionOutput(session, nil), nil
}

func (i *Interactor) StopSession(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	session, err := i.svc.StopSession(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return i.toSessionOutput(session, nil), nil
}

func (i *Interactor) MoveSession(ctx context.Context, input dto.MoveSessionInput) (dto.SessionOutput, error) {
	session, err := i.svc.MoveSession(ctx, input.SessionID, input.ToAreaID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return i.toSessionOutput(session, nil), nil
}

func (i *Interactor) DeleteSession(ctx context.Context, sessionID string) error {
	return i.svc.DeleteSession(ctx, sessionID)
}

func (i *Interactor) GetSession(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	session, reflection, err := i.svc.GetSession(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return i.toSessionOutput(session, reflection), nil
}

func (i *Interactor) ListSessions(ctx context.Context, areaID string) ([]dto.SessionOutput, error) {
	sessions, err := i.svc.ListSessions(ctx, areaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		full, reflection, err := i.svc.GetSession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, i.toSessionOutput(full, reflection))
	}
	return out, nil
}

func (i *Interactor) PreviousContext(ctx context.Context, sessionID string) (dto.PreviousContextOutput, error) {
	previous, err := i.svc.PreviousContext(ctx, sessionID)
	if err != nil {
		return dto.PreviousContextOutput{}, err
	}
	return dto.PreviousContextOutput{
		Status:     string(previous.Status),
		Intent:     previous.Intent,
		NextAction: previous.NextAction,
		AreaID:     previous.AreaID,
	}, nil
}

func (i *Interactor) CreateReflection(ctx context.Context, input dto.ReflectInput) (dto.ReflectionOutput, error) {
	reflection := domain.Reflection{
		SessionID:      input.SessionID,
		Tone:           domain.CoachingTone(input.Tone),
		AIAssisted:     input.AIAssisted,
		WhatHappened:   input.WhatHappened,
		Lesson:         input.Lesson,
		NextAction:     input.NextAction,
		AIRequestCount: input.AIRequestCount,
		AIAcceptCount:  input.AIAcceptCount,
		FeedbackNote:   input.FeedbackNote,
	}
	if input.FeedbackRating != nil {
		rating := domain.FeedbackRating(*input.FeedbackRating)
		reflection.FeedbackRating = &rating
	}
	saved, err := i.svc.CreateReflection(ctx, reflection)
	if err != nil {
		return dto.ReflectionOutput{}, err
	}
	return toReflectionOutput(saved), nil
}

func (i *Interactor) EditReflection(ctx context.Context, input dto.EditReflectionInput) (dto.ReflectionOutput, error) {
	saved, err := i.svc.EditReflection(ctx, input.SessionID, func(r *domain.Reflection) {
		if input.Tone != 0 {
			r.Tone = domain.CoachingTone(input.Tone)
		}
		if strings.TrimSpace(input.WhatHappened) != "" {
			r.WhatHappened = input.WhatHappened
		}
		if strings.TrimSpace(input.Lesson) != "" {
			r.Lesson = input.Lesson
		}
		if strings.TrimSpace(input.NextAction) != "" {
			r.NextAction = input.NextAction
		}
		if input.FeedbackRating != nil {
			rating := domain.FeedbackRating(*input.FeedbackRating)
			r.FeedbackRating = &rating
		}
		if input.FeedbackNote != "" {
			r.FeedbackNote = input.FeedbackNote
		}
	})
	if err != nil {
		return dto.ReflectionOutput{}, err
	}
	return toReflectionOutput(saved), nil
}

func (i *Interactor) GetReflection(ctx context.Context, sessionID string) (dto.ReflectionOutput, error) {
	reflection, err := i.svc.GetReflection(ctx, sessionID)
	if err != nil {
		return dto.ReflectionOutput{}, err
	}
	return toReflectionOutput(reflection), nil
}

func (i *Interactor) toSessionOutput(session domain.Session, reflection *domain.Reflection) dto.SessionOutput {
	state := i.svc.StateOf(session, reflection)
	return dto.SessionOutput{
		ID:            session.ID,
		AreaID:        session.AreaID,
		PreviousID:    session.PreviousID,
		Intent:        session.Intent,
		TargetSeconds: session.TargetSeconds,
		StartedAt:     session.StartedAt,
		EndedAt:       session.EndedAt,
		Ended:         session.Ended(),
		ActualSeconds: session.ActualSeconds(),
		State: dto.StateOutput{
			Status:           string(state.Status),
			CanEdit:          state.CanEdit,
			IsEdited:         state.IsEdited,
			HoursRemaining:   state.HoursRemaining,
			HoursUntilExpiry: state.HoursUntilExpiry,
		},
	}
}

func toAreaOutput(area domain.Area) dto.AreaOutput {
	return dto.AreaOutput{
		ID:        area.ID,
		Name:      area.Name,
		Type:      string(area.Type),
		TypeLabel: area.Type.Label(),
		CreatedAt: area.CreatedAt,
	}
}

func toReflectionOutput(reflection domain.Reflection) dto.ReflectionOutput {
	out := dto.ReflectionOutput{
		ID:             reflection.ID,
		SessionID:      reflection.SessionID,
		Tone:           int(reflection.Tone),
		ToneLabel:      reflection.Tone.Label(),
		AIAssisted:     reflection.AIAssisted,
		WhatHappened:   reflection.WhatHappened,
		Lesson:         reflection.Lesson,
		NextAction:     reflection.NextAction,
		AIRequestCount: reflection.AIRequestCount,
		AIAcceptCount:  reflection.AIAcceptCount,
		FeedbackNote:   reflection.FeedbackNote,
		CompletedAt:    reflection.CompletedAt,
		UpdatedAt:      reflection.UpdatedAt,
		Edited:         reflection.Edited(),
	}
	if reflection.FeedbackRating != nil {
		rating := int(*reflection.FeedbackRating)
		out.FeedbackRating = &rating
		out.FeedbackLabel = reflection.FeedbackRating.Label()
	}
	return out
}
