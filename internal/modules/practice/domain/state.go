package domain

import (
	"math"
	"time"
)

// Reflection windows. A reflection is expected within 24h of the session
// ending and may still be written or edited until 48h. After that the UI
// messages the window as closed, but writing a late reflection is still
// permitted so no practice goes unrecorded.
const (
	PendingWindow = 24 * time.Hour
	EditWindow    = 48 * time.Hour
)

type ReflectionStatus string

const (
	StatusCompleted ReflectionStatus = "completed"
	StatusPending   ReflectionStatus = "pending"
	StatusOverdue   ReflectionStatus = "overdue"
	StatusExpired   ReflectionStatus = "expired"
)

// ReflectionState is the derived reflection status of a session. It is
// computed on demand from wall-clock time and never written back, so there
// is nothing to reconcile if the app was closed mid-window.
type ReflectionState struct {
	Status ReflectionStatus

	// Completed only.
	CanEdit  bool
	IsEdited bool

	// Pending only, ceil(24h - elapsed) in hours, within [0, 24].
	HoursRemaining int

	// Overdue only, ceil(48h - elapsed) in hours, within [0, 24].
	HoursUntilExpiry int
}

// StateOf is a total function over (session, reflection, now); it never
// fails. A still-active session is always Pending with zero hours
// remaining: its clock has not started.
func StateOf(session Session, reflection *Reflection, now time.Time) ReflectionState {
	if reflection != nil {
		return ReflectionState{
			Status:   StatusCompleted,
			CanEdit:  !session.Ended() || elapsedSince(session.EndedAt, now) <= EditWindow,
			IsEdited: reflection.Edited(),
		}
	}
	if !session.Ended() {
		return ReflectionState{Status: StatusPending, HoursRemaining: 0}
	}
	elapsed := elapsedSince(session.EndedAt, now)
	switch {
	case elapsed <= PendingWindow:
		return ReflectionState{Status: StatusPending, HoursRemaining: hoursCeil(PendingWindow - elapsed)}
	case elapsed <= EditWindow:
		return ReflectionState{Status: StatusOverdue, HoursUntilExpiry: hoursCeil(EditWindow - elapsed)}
	default:
		return ReflectionState{Status: StatusExpired}
	}
}

func elapsedSince(endedAt, now time.Time) time.Duration {
	elapsed := now.Sub(endedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func hoursCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours()))
}
