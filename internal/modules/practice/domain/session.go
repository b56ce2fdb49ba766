package domain

import (
	"fmt"
	"strings"
	"time"
)

// Session is one practice instance inside an area. Sessions in an area form
// a singly-linked chain through PreviousID. The chain is mutable: a move
// re-parents the session to the destination's tail and deliberately leaves
// a gap in the source chain, which predecessor lookups classify instead of
// repairing.
type Session struct {
	ID            string
	AreaID        string
	PreviousID    string // empty for the first session in an area or a broken link
	Intent        string
	TargetSeconds int // 0 means untimed stopwatch mode
	StartedAt     time.Time
	EndedAt       time.Time // zero while the session is active
	Deleted       bool
}

func (s Session) Ended() bool {
	return !s.EndedAt.IsZero()
}

func (s Session) HasTarget() bool {
	return s.TargetSeconds > 0
}

// ActualSeconds is the elapsed practice time, floor-truncated to whole
// seconds. Meaningful only once the session has ended.
func (s Session) ActualSeconds() int {
	if !s.Ended() {
		return 0
	}
	d := s.EndedAt.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// MetTarget reports whether the session ran at least as long as its target.
// Undefined (false, false) while untimed or still active.
func (s Session) MetTarget() (met bool, ok bool) {
	if !s.Ended() || !s.HasTarget() {
		return false, false
	}
	return s.ActualSeconds() >= s.TargetSeconds, true
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(s.AreaID) == "" {
		return fmt.Errorf("session area id is required")
	}
	if strings.TrimSpace(s.Intent) == "" {
		return fmt.Errorf("session intent is required")
	}
	if s.TargetSeconds < 0 {
		return fmt.Errorf("session target must be non-negative")
	}
	if s.StartedAt.IsZero() {
		return fmt.Errorf("session start time is required")
	}
	return nil
}

// PredecessorStatus classifies the result of resolving a session's
// predecessor. Degraded chains (moved or deleted predecessors, dangling
// ids) resolve to an explicit status, never to an error and never to
// silently wrong data.
type PredecessorStatus string

const (
	PredecessorResolved    PredecessorStatus = "resolved"
	PredecessorFirstInArea PredecessorStatus = "first_in_area"
	PredecessorNotFound    PredecessorStatus = "not_found"
	PredecessorDeleted     PredecessorStatus = "deleted"
	PredecessorMoved       PredecessorStatus = "moved"
)

type PredecessorContext struct {
	Status PredecessorStatus
	// Intent and NextAction carry the predecessor's intent and its
	// reflection's next-action answer when Status is resolved.
	Intent     string
	NextAction string
	// AreaID is where the predecessor lives now when Status is moved.
	AreaID string
}

// ClassifyPredecessor is the pure classification rule behind predecessor
// lookups. predecessor is nil when the referenced session does not exist.
func ClassifyPredecessor(session Session, predecessor *Session) PredecessorStatus {
	if session.PreviousID == "" {
		return PredecessorFirstInArea
	}
	if predecessor == nil {
		return PredecessorNotFound
	}
	if predecessor.Deleted {
		return PredecessorDeleted
	}
	if predecessor.AreaID != session.AreaID {
		return PredecessorMoved
	}
	return PredecessorResolved
}
