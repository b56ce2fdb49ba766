package domain_test

import (
	"testing"
	"time"

	"prax/internal/modules/practice/domain"
)

func TestClassifyPredecessor(t *testing.T) {
	t.Parallel()
	session := domain.Session{ID: "s2", AreaID: "area-1", PreviousID: "s1"}

	if got := domain.ClassifyPredecessor(domain.Session{ID: "s1", AreaID: "area-1"}, nil); got != domain.PredecessorFirstInArea {
		t.Fatalf("no previous id: want first_in_area, got %s", got)
	}
	if got := domain.ClassifyPredecessor(session, nil); got != domain.PredecessorNotFound {
		t.Fatalf("dangling previous id: want not_found, got %s", got)
	}
	if got := domain.ClassifyPredecessor(session, &domain.Session{ID: "s1", AreaID: "area-1", Deleted: true}); got != domain.PredecessorDeleted {
		t.Fatalf("deleted predecessor: want deleted, got %s", got)
	}
	if got := domain.ClassifyPredecessor(session, &domain.Session{ID: "s1", AreaID: "area-2"}); got != domain.PredecessorMoved {
		t.Fatalf("moved predecessor: want moved, got %s", got)
	}
	if got := domain.ClassifyPredecessor(session, &domain.Session{ID: "s1", AreaID: "area-1"}); got != domain.PredecessorResolved {
		t.Fatalf("healthy chain: want resolved, got %s", got)
	}
}

func TestSessionDerivedDurations(t *testing.T) {
	t.Parallel()
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session := domain.Session{ID: "s1", AreaID: "a1", Intent: "drill", StartedAt: started, TargetSeconds: 600}

	if session.ActualSeconds() != 0 {
		t.Fatalf("active session has no actual duration")
	}
	if _, ok := session.MetTarget(); ok {
		t.Fatalf("met_target is undefined while active")
	}

	session.EndedAt = started.Add(10*time.Minute + 30*time.Second + 700*time.Millisecond)
	if got := session.ActualSeconds(); got != 630 {
		t.Fatalf("actual seconds must floor to 630, got %d", got)
	}
	met, ok := session.MetTarget()
	if !ok || !met {
		t.Fatalf("630s against 600s target must meet target, got met=%v ok=%v", met, ok)
	}

	session.TargetSeconds = 0
	if _, ok := session.MetTarget(); ok {
		t.Fatalf("met_target is undefined for untimed sessions")
	}
}

func TestEnumLabelsRegenerateFromCodes(t *testing.T) {
	t.Parallel()
	tones := map[domain.CoachingTone]string{
		domain.ToneFacilitative: "Facilitative",
		domain.ToneSocratic:     "Socratic",
		domain.ToneSupportive:   "Supportive",
	}
	for tone, want := range tones {
		if err := tone.Validate(); err != nil {
			t.Fatalf("tone %d: %v", tone, err)
		}
		if got := tone.Label(); got != want {
			t.Fatalf("tone %d label: want %q got %q", tone, want, got)
		}
	}
	if err := domain.CoachingTone(4).Validate(); err == nil {
		t.Fatalf("tone 4 must be invalid")
	}

	for rating := domain.RatingNotHelpful; rating <= domain.RatingExtremelyHelpful; rating++ {
		if err := rating.Validate(); err != nil {
			t.Fatalf("rating %d: %v", rating, err)
		}
		if rating.Label() == "" {
			t.Fatalf("rating %d has no label", rating)
		}
	}
	if err := domain.FeedbackRating(5).Validate(); err == nil {
		t.Fatalf("rating 5 must be invalid")
	}

	for _, at := range []domain.AreaType{domain.AreaTypeSoloSkill, domain.AreaTypePerformance, domain.AreaTypeInterpersonal, domain.AreaTypeCreative} {
		if err := at.Validate(); err != nil {
			t.Fatalf("area type %s: %v", at, err)
		}
		if at.Label() == "" {
			t.Fatalf("area type %s has no label", at)
		}
	}
	if err := domain.AreaType("musical").Validate(); err == nil {
		t.Fatalf("unknown area type must be invalid")
	}
}
