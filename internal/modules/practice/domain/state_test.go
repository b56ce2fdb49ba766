package domain_test

import (
	"testing"
	"time"

	"prax/internal/modules/practice/domain"
)

func endedSession(endedAt time.Time) domain.Session {
	return domain.Session{
		ID:        "sess-1",
		AreaID:    "area-1",
		Intent:    "practice scales",
		StartedAt: endedAt.Add(-30 * time.Minute),
		EndedAt:   endedAt,
	}
}

func TestReflectionWindowsOverTime(t *testing.T) {
	t.Parallel()
	endedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session := endedSession(endedAt)

	state := domain.StateOf(session, nil, endedAt.Add(10*time.Hour))
	if state.Status != domain.StatusPending || state.HoursRemaining != 14 {
		t.Fatalf("at +10h expected pending with 14h remaining, got %+v", state)
	}

	state = domain.StateOf(session, nil, endedAt.Add(30*time.Hour))
	if state.Status != domain.StatusOverdue || state.HoursUntilExpiry != 18 {
		t.Fatalf("at +30h expected overdue with 18h until expiry, got %+v", state)
	}

	state = domain.StateOf(session, nil, endedAt.Add(50*time.Hour))
	if state.Status != domain.StatusExpired {
		t.Fatalf("at +50h expected expired, got %+v", state)
	}

	reflection := &domain.Reflection{
		ID:          "refl-1",
		SessionID:   session.ID,
		CompletedAt: endedAt.Add(30 * time.Hour),
		UpdatedAt:   endedAt.Add(40 * time.Hour),
	}
	state = domain.StateOf(session, reflection, endedAt.Add(40*time.Hour))
	if state.Status != domain.StatusCompleted || !state.CanEdit || !state.IsEdited {
		t.Fatalf("at +40h expected completed, editable, edited, got %+v", state)
	}

	state = domain.StateOf(session, reflection, endedAt.Add(49*time.Hour))
	if state.Status != domain.StatusCompleted || state.CanEdit {
		t.Fatalf("past 48h the edit window must be closed, got %+v", state)
	}
}

func TestActiveSessionAlwaysPendingZero(t *testing.T) {
	t.Parallel()
	session := domain.Session{
		ID:        "sess-1",
		AreaID:    "area-1",
		Intent:    "open-ended run",
		StartedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	for _, offset := range []time.Duration{0, time.Hour, 25 * time.Hour, 100 * time.Hour, 24 * 365 * time.Hour} {
		state := domain.StateOf(session, nil, session.StartedAt.Add(offset))
		if state.Status != domain.StatusPending || state.HoursRemaining != 0 {
			t.Fatalf("active session at +%s must be pending with 0h remaining, got %+v", offset, state)
		}
	}
}

func TestStateHourCountersStayInRange(t *testing.T) {
	t.Parallel()
	endedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session := endedSession(endedAt)
	// Sweep in 20-minute steps across both thresholds, including a clock
	// that reads before the session ended.
	for minutes := -120; minutes <= 60*60; minutes += 20 {
		now := endedAt.Add(time.Duration(minutes) * time.Minute)
		state := domain.StateOf(session, nil, now)
		switch state.Status {
		case domain.StatusPending:
			if state.HoursRemaining < 0 || state.HoursRemaining > 24 {
				t.Fatalf("pending hours out of range at %+dm: %+v", minutes, state)
			}
		case domain.StatusOverdue:
			if state.HoursUntilExpiry < 0 || state.HoursUntilExpiry > 24 {
				t.Fatalf("overdue hours out of range at %+dm: %+v", minutes, state)
			}
		case domain.StatusExpired:
			if minutes <= 48*60 {
				t.Fatalf("expired too early at %+dm", minutes)
			}
		default:
			t.Fatalf("unexpected status %q without a reflection", state.Status)
		}
	}
}

func TestWindowBoundaries(t *testing.T) {
	t.Parallel()
	endedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session := endedSession(endedAt)

	state := domain.StateOf(session, nil, endedAt.Add(24*time.Hour))
	if state.Status != domain.StatusPending || state.HoursRemaining != 0 {
		t.Fatalf("exactly 24h is still pending with 0h remaining, got %+v", state)
	}
	state = domain.StateOf(session, nil, endedAt.Add(24*time.Hour+time.Second))
	if state.Status != domain.StatusOverdue {
		t.Fatalf("just past 24h must be overdue, got %+v", state)
	}
	state = domain.StateOf(session, nil, endedAt.Add(48*time.Hour))
	if state.Status != domain.StatusOverdue || state.HoursUntilExpiry != 0 {
		t.Fatalf("exactly 48h is still overdue with 0h until expiry, got %+v", state)
	}
	state = domain.StateOf(session, nil, endedAt.Add(48*time.Hour+time.Second))
	if state.Status != domain.StatusExpired {
		t.Fatalf("just past 48h must be expired, got %+v", state)
	}
}

func TestCompletedEditedFlag(t *testing.T) {
	t.Parallel()
	endedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session := endedSession(endedAt)
	reflection := &domain.Reflection{ID: "refl-1", SessionID: session.ID, CompletedAt: endedAt.Add(2 * time.Hour)}

	state := domain.StateOf(session, reflection, endedAt.Add(3*time.Hour))
	if state.Status != domain.StatusCompleted || state.IsEdited || !state.CanEdit {
		t.Fatalf("unedited reflection inside window: got %+v", state)
	}

	reflection.UpdatedAt = reflection.CompletedAt
	if domain.StateOf(session, reflection, endedAt.Add(3*time.Hour)).IsEdited {
		t.Fatalf("updated_at equal to completed_at must not count as edited")
	}
}
