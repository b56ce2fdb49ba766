package out

import (
	"context"

	"prax/internal/modules/coach/domain"
	coachout "prax/internal/modules/coach/port/out"
	practicein "prax/internal/modules/practice/port/in"
)

// PracticeContextSource assembles the prompt context from the journal. The
// degraded predecessor states simply yield an empty previous next-action;
// the coach asks a question either way.
type PracticeContextSource struct {
	practice practicein.Usecase
}

var _ coachout.ContextSource = (*PracticeContextSource)(nil)

func NewPracticeContextSource(practice practicein.Usecase) *PracticeContextSource {
	return &PracticeContextSource{practice: practice}
}

func (s *PracticeContextSource) SessionContext(ctx context.Context, sessionID string) (domain.SessionContext, error) {
	session, err := s.practice.GetSession(ctx, sessionID)
	if err != nil {
		return domain.SessionContext{}, err
	}
	area, err := s.practice.GetArea(ctx, session.AreaID)
	if err != nil {
		return domain.SessionContext{}, err
	}
	sessionContext := domain.SessionContext{
		AreaName:      area.Name,
		AreaType:      area.Type,
		SessionIntent: session.Intent,
	}
	previous, err := s.practice.PreviousContext(ctx, sessionID)
	if err != nil {
		return domain.SessionContext{}, err
	}
	if previous.Status == "resolved" {
		sessionContext.PreviousNextAction = previous.NextAction
	}
	return sessionContext, nil
}
