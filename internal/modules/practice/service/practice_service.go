package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"prax/internal/modules/practice/domain"
	practiceout "prax/internal/modules/practice/port/out"
	"prax/internal/platform/clock"
	apperrors "prax/internal/platform/errors"
	"prax/internal/platform/id"
)

type PracticeService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  practiceout.Store
	notes  practiceout.NoteStore
	logger *zap.Logger
}

func NewPracticeService(clock clock.Clock, idGen id.Generator, store practiceout.Store, notes practiceout.NoteStore, logger *zap.Logger) *PracticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PracticeService{clock: clock, idGen: idGen, store: store, notes: notes, logger: logger}
}

func (s *PracticeService) CreateArea(ctx context.Context, name string, areaType domain.AreaType) (domain.Area, error) {
	area := domain.Area{
		ID:        s.idGen.New(),
		Name:      strings.TrimSpace(name),
		Type:      areaType,
		CreatedAt: s.clock.Now(),
	}
	if err := area.Validate(); err != nil {
		return domain.Area{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}
	if err := s.store.SaveArea(ctx, area); err != nil {
		return domain.Area{}, err
	}
	return area, nil
}

func (s *PracticeService) ListAreas(ctx context.Context) ([]domain.Area, error) {
	return s.store.ListAreas(ctx)
}

func (s *PracticeService) GetArea(ctx context.Context, areaID string) (domain.Area, error) {
	return s.store.FindArea(ctx, areaID)
}

// DeleteArea soft-deletes an area. An area owning any non-deleted session
// is rejected, not cascaded.
func (s *PracticeService) DeleteArea(ctx context.Context, areaID string) error {
	area, err := s.store.FindArea(ctx, areaID)
	if err != nil {
		return err
	}
	if area.Deleted {
		return apperrors.ErrAreaDeleted
	}
	owns, err := s.store.HasLiveSessions(ctx, areaID)
	if err != nil {
		return err
	}
	if owns {
		return apperrors.ErrAreaHasSessions
	}
	return s.store.MarkAreaDeleted(ctx, areaID)
}

// StartSession links a new session onto the area's chain. Creation is
// refused while any ended, unreflected session exists in the area. The
// refusal is unconditional: it holds even after the 48h reflection window
// has lapsed, until that session is reflected or deleted.
func (s *PracticeService) StartSession(ctx context.Context, areaID, intent string, targetSeconds int) (domain.Session, error) {
	area, err := s.store.FindArea(ctx, areaID)
	if err != nil {
		return domain.Session{}, err
	}
	if area.Deleted {
		return domain.Session{}, apperrors.ErrAreaDeleted
	}
	if _, found, err := s.store.LatestUnreflected(ctx, areaID); err != nil {
		return domain.Session{}, err
	} else if found {
		return domain.Session{}, apperrors.ErrReflectionPending
	}

	previousID := ""
	if tail, found, err := s.store.LatestSession(ctx, areaID); err != nil {
		return domain.Session{}, err
	} else if found {
		previousID = tail.ID
	}

	session := domain.Session{
		ID:            s.idGen.New(),
		AreaID:        areaID,
		PreviousID:    previousID,
		Intent:        strings.TrimSpace(intent),
		TargetSeconds: targetSeconds,
		StartedAt:     s.clock.Now(),
	}
	if err := session.Validate(); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *PracticeService) StopSession(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if session.Ended() {
		return domain.Session{}, fmt.Errorf("%w: session already ended", apperrors.ErrInvalidInput)
	}
	session.EndedAt = s.clock.Now()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// MoveSession re-parents a session to another area. The moved session
// becomes the new tail of the destination chain. The source chain is not
// repaired: the session that used to follow the moved one keeps its now
// dangling previous pointer, which PreviousContext classifies explicitly.
func (s *PracticeService) MoveSession(ctx context.Context, sessionID, toAreaID string) (domain.Session, error) {
	session, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if session.AreaID == toAreaID {
		return domain.Session{}, fmt.Errorf("%w: session is already in area %s", apperrors.ErrInvalidInput, toAreaID)
	}
	target, err := s.store.FindArea(ctx, toAreaID)
	if err != nil {
		return domain.Session{}, err
	}
	if target.Deleted {
		return domain.Session{}, apperrors.ErrAreaDeleted
	}

	previousID := ""
	if tail, found, err := s.store.LatestSession(ctx, toAreaID); err != nil {
		return domain.Session{}, err
	} else if found {
		previousID = tail.ID
	}

	session.AreaID = toAreaID
	session.PreviousID = previousID
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// DeleteSession soft-deletes an unreflected session. A reflected session is
// never deleted, partially or otherwise.
func (s *PracticeService) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, found, err := s.store.FindReflection(ctx, session.ID); err != nil {
		return err
	} else if found {
		return apperrors.ErrSessionReflected
	}
	return s.store.MarkSessionDeleted(ctx, sessionID)
}

func (s *PracticeService) GetSession(ctx context.Context, sessionID string) (domain.Session, *domain.Reflection, error) {
	session, err := s.store.FindSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, nil, err
	}
	reflection, found, err := s.store.FindReflection(ctx, sessionID)
	if err != nil {
		return domain.Session{}, nil, err
	}
	if !found {
		return session, nil, nil
	}
	return session, &reflection, nil
}

func (s *PracticeService) ListSessions(ctx context.Context, areaID string) ([]domain.Session, error) {
	if _, err := s.store.FindArea(ctx, areaID); err != nil {
		return nil, err
	}
	return s.store.ListSessions(ctx, areaID)
}

// PreviousContext resolves a session's predecessor into one of the named
// chain states. Degraded chains are classified, never an error.
func (s *PracticeService) PreviousContext(ctx context.Context, sessionID string) (domain.PredecessorContext, error) {
	session, err := s.store.FindSession(ctx, sessionID)
	if err != nil {
		return domain.PredecessorContext{}, err
	}

	var predecessor *domain.Session
	if session.PreviousID != "" {
		prev, err := s.store.FindSession(ctx, session.PreviousID)
		switch {
		case err == nil:
			predecessor = &prev
		case errors.Is(err, apperrors.ErrNotFound):
			predecessor = nil
		default:
			return domain.PredecessorContext{}, err
		}
	}

	out := domain.PredecessorContext{Status: domain.ClassifyPredecessor(session, predecessor)}
	switch out.Status {
	case domain.PredecessorResolved:
		out.Intent = predecessor.Intent
		if reflection, found, err := s.store.FindReflection(ctx, predecessor.ID); err != nil {
			return domain.PredecessorContext{}, err
		} else if found {
			out.NextAction = reflection.NextAction
		}
	case domain.PredecessorMoved:
		out.AreaID = predecessor.AreaID
	}
	return out, nil
}

// CreateReflection records the one reflection a session may have. Writing
// after the 48h window is permitted so no practice goes unrecorded; the UI
// messages the window as closed.
func (s *PracticeService) CreateReflection(ctx context.Context, input domain.Reflection) (domain.Reflection, error) {
	session, err := s.liveSession(ctx, input.SessionID)
	if err != nil {
		return domain.Reflection{}, err
	}
	if !session.Ended() {
		return domain.Reflection{}, apperrors.ErrSessionNotEnded
	}
	if _, found, err := s.store.FindReflection(ctx, session.ID); err != nil {
		return domain.Reflection{}, err
	} else if found {
		return domain.Reflection{}, apperrors.ErrReflectionExists
	}

	reflection := input
	reflection.ID = s.idGen.New()
	reflection.CompletedAt = s.clock.Now()
	reflection.UpdatedAt = time.Time{}
	if err := reflection.Validate(); err != nil {
		return domain.Reflection{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}
	if err := s.store.SaveReflection(ctx, reflection); err != nil {
		return domain.Reflection{}, err
	}
	s.writeNote(ctx, session, reflection)
	return reflection, nil
}

// EditReflection updates answers within the 48h edit window. CompletedAt is
// immutable; UpdatedAt moves to now and never precedes CompletedAt.
func (s *PracticeService) EditReflection(ctx context.Context, sessionID string, apply func(*domain.Reflection)) (domain.Reflection, error) {
	session, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return domain.Reflection{}, err
	}
	reflection, found, err := s.store.FindReflection(ctx, sessionID)
	if err != nil {
		return domain.Reflection{}, err
	}
	if !found {
		return domain.Reflection{}, fmt.Errorf("reflection for session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	now := s.clock.Now()
	state := domain.StateOf(session, &reflection, now)
	if !state.CanEdit {
		return domain.Reflection{}, apperrors.ErrEditWindowClosed
	}

	completedAt := reflection.CompletedAt
	apply(&reflection)
	reflection.CompletedAt = completedAt
	reflection.UpdatedAt = now
	if reflection.UpdatedAt.Before(reflection.CompletedAt) {
		reflection.UpdatedAt = reflection.CompletedAt
	}
	if err := reflection.Validate(); err != nil {
		return domain.Reflection{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}
	if err := s.store.UpdateReflection(ctx, reflection); err != nil {
		return domain.Reflection{}, err
	}
	s.writeNote(ctx, session, reflection)
	return reflection, nil
}

func (s *PracticeService) GetReflection(ctx context.Context, sessionID string) (domain.Reflection, error) {
	reflection, found, err := s.store.FindReflection(ctx, sessionID)
	if err != nil {
		return domain.Reflection{}, err
	}
	if !found {
		return domain.Reflection{}, fmt.Errorf("reflection for session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	return reflection, nil
}

func (s *PracticeService) StateOf(session domain.Session, reflection *domain.Reflection) domain.ReflectionState {
	return domain.StateOf(session, reflection, s.clock.Now())
}

func (s *PracticeService) liveSession(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := s.store.FindSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if session.Deleted {
		return domain.Session{}, apperrors.ErrSessionDeleted
	}
	return session, nil
}

// writeNote mirrors the reflection into a markdown note. Notes are advisory
// output; a write failure is logged, not propagated.
func (s *PracticeService) writeNote(ctx context.Context, session domain.Session, reflection domain.Reflection) {
	if s.notes == nil {
		return
	}
	area, err := s.store.FindArea(ctx, session.AreaID)
	if err != nil {
		s.logger.Warn("reflection note skipped", zap.String("session_id", session.ID), zap.Error(err))
		return
	}
	if _, err := s.notes.WriteReflectionNote(ctx, area, session, reflection); err != nil {
		s.logger.Warn("reflection note write failed", zap.String("session_id", session.ID), zap.Error(err))
	}
}
