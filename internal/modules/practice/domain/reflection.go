package domain

import (
	"fmt"
	"strings"
	"time"
)

type CoachingTone int

const (
	ToneFacilitative CoachingTone = 1
	ToneSocratic     CoachingTone = 2
	ToneSupportive   CoachingTone = 3
)

func (t CoachingTone) Validate() error {
	switch t {
	case ToneFacilitative, ToneSocratic, ToneSupportive:
		return nil
	default:
		return fmt.Errorf("unsupported coaching tone %d", int(t))
	}
}

// Label is the single label lookup for coaching tones. The numeric code is
// authoritative for round-tripping; labels are presentation only.
func (t CoachingTone) Label() string {
	switch t {
	case ToneFacilitative:
		return "Facilitative"
	case ToneSocratic:
		return "Socratic"
	case ToneSupportive:
		return "Supportive"
	default:
		return fmt.Sprintf("Tone %d", int(t))
	}
}

type FeedbackRating int

const (
	RatingNotHelpful FeedbackRating = iota
	RatingSlightlyHelpful
	RatingModeratelyHelpful
	RatingVeryHelpful
	RatingExtremelyHelpful
)

func (r FeedbackRating) Validate() error {
	if r < RatingNotHelpful || r > RatingExtremelyHelpful {
		return fmt.Errorf("feedback rating must be between 0 and 4, got %d", int(r))
	}
	return nil
}

func (r FeedbackRating) Label() string {
	switch r {
	case RatingNotHelpful:
		return "Not helpful"
	case RatingSlightlyHelpful:
		return "Slightly helpful"
	case RatingModeratelyHelpful:
		return "Moderately helpful"
	case RatingVeryHelpful:
		return "Very helpful"
	case RatingExtremelyHelpful:
		return "Extremely helpful"
	default:
		return fmt.Sprintf("Rating %d", int(r))
	}
}

// Reflection is the structured post-session write-up. At most one exists
// per session. CompletedAt is immutable once set; UpdatedAt is set only on
// edit and is never earlier than CompletedAt.
type Reflection struct {
	ID             string
	SessionID      string
	Tone           CoachingTone
	AIAssisted     bool
	WhatHappened   string // step 2
	Lesson         string // step 3
	NextAction     string // step 4
	AIRequestCount int
	AIAcceptCount  int
	FeedbackRating *FeedbackRating
	FeedbackNote   string
	CompletedAt    time.Time
	UpdatedAt      time.Time // zero until first edit
}

func (r Reflection) Edited() bool {
	return !r.UpdatedAt.IsZero() && r.UpdatedAt.After(r.CompletedAt)
}

func (r Reflection) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("reflection id is required")
	}
	if strings.TrimSpace(r.SessionID) == "" {
		return fmt.Errorf("reflection session id is required")
	}
	if err := r.Tone.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.WhatHappened) == "" {
		return fmt.Errorf("reflection step2 answer is required")
	}
	if strings.TrimSpace(r.Lesson) == "" {
		return fmt.Errorf("reflection step3 answer is required")
	}
	if strings.TrimSpace(r.NextAction) == "" {
		return fmt.Errorf("reflection step4 answer is required")
	}
	if r.AIRequestCount < 0 || r.AIAcceptCount < 0 {
		return fmt.Errorf("reflection ai counters must be non-negative")
	}
	if r.FeedbackRating != nil {
		if err := r.FeedbackRating.Validate(); err != nil {
			return err
		}
	}
	if r.CompletedAt.IsZero() {
		return fmt.Errorf("reflection completion time is required")
	}
	if !r.UpdatedAt.IsZero() && r.UpdatedAt.Before(r.CompletedAt) {
		return fmt.Errorf("reflection update time must not precede completion")
	}
	return nil
}
