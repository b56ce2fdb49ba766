package domain

import (
	"time"

	"github.com/google/uuid"

	practice "prax/internal/modules/practice/domain"
)

// Snapshot is the versioned interchange format. Field names are a stable
// contract: renaming any of them breaks every previously exported file.
type Snapshot struct {
	Metadata      Metadata     `json:"metadata"`
	PracticeAreas []AreaRecord `json:"practice_areas"`
}

type Metadata struct {
	ExportDate         time.Time `json:"export_date"`
	AppVersion         string    `json:"app_version"`
	TotalPracticeAreas int       `json:"total_practice_areas"`
	TotalSessions      int       `json:"total_sessions"`
	TotalReflections   int       `json:"total_reflections"`
}

type AreaRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	TypeLabel string          `json:"type_label"`
	CreatedAt time.Time       `json:"created_at"`
	Sessions  []SessionRecord `json:"sessions"`
}

type SessionRecord struct {
	ID                    string            `json:"id"`
	PreviousSessionID     *string           `json:"previous_session_id"`
	Intent                string            `json:"intent"`
	StartedAt             time.Time         `json:"started_at"`
	EndedAt               *time.Time        `json:"ended_at"`
	TargetDurationSeconds *int              `json:"target_duration_seconds"`
	ActualDurationSeconds *int              `json:"actual_duration_seconds"`
	MetTarget             *bool             `json:"met_target"`
	Reflection            *ReflectionRecord `json:"reflection"`
}

// ReflectionRecord carries both numeric codes and their labels. The code is
// authoritative for round-tripping; labels are regenerated from codes on
// import, never read back.
type ReflectionRecord struct {
	CoachingTone        int        `json:"coaching_tone"`
	CoachingToneLabel   string     `json:"coaching_tone_label"`
	AIAssisted          bool       `json:"ai_assisted"`
	Step2               string     `json:"step2"`
	Step3               string     `json:"step3"`
	Step4               string     `json:"step4"`
	AIRequestCount      int        `json:"ai_request_count"`
	AIAcceptCount       int        `json:"ai_accept_count"`
	FeedbackRating      *int       `json:"feedback_rating"`
	FeedbackRatingLabel *string    `json:"feedback_rating_label"`
	FeedbackNote        *string    `json:"feedback_note"`
	CompletedAt         time.Time  `json:"completed_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
	IsEdited            bool       `json:"is_edited"`
}

// reflectionNamespace seeds the deterministic reflection ids minted on
// import. Changing it would make re-imports stop being idempotent against
// already-restored data.
var reflectionNamespace = uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")

// RestoredReflectionID derives a stable reflection id from the owning
// session id, so importing the same file twice upserts rather than
// duplicates.
func RestoredReflectionID(sessionID string) string {
	return uuid.NewSHA1(reflectionNamespace, []byte(sessionID)).String()
}

func NewAreaRecord(area practice.Area) AreaRecord {
	return AreaRecord{
		ID:        area.ID,
		Name:      area.Name,
		Type:      string(area.Type),
		TypeLabel: area.Type.Label(),
		CreatedAt: area.CreatedAt.UTC(),
		Sessions:  []SessionRecord{},
	}
}

func NewSessionRecord(session practice.Session, reflection *practice.Reflection) SessionRecord {
	record := SessionRecord{
		ID:        session.ID,
		Intent:    session.Intent,
		StartedAt: session.StartedAt.UTC(),
	}
	if session.PreviousID != "" {
		previous := session.PreviousID
		record.PreviousSessionID = &previous
	}
	if session.HasTarget() {
		target := session.TargetSeconds
		record.TargetDurationSeconds = &target
	}
	if session.Ended() {
		ended := session.EndedAt.UTC()
		record.EndedAt = &ended
		actual := session.ActualSeconds()
		record.ActualDurationSeconds = &actual
	}
	if met, ok := session.MetTarget(); ok {
		record.MetTarget = &met
	}
	if reflection != nil {
		reflectionRecord := NewReflectionRecord(*reflection)
		record.Reflection = &reflectionRecord
	}
	return record
}

func NewReflectionRecord(reflection practice.Reflection) ReflectionRecord {
	record := ReflectionRecord{
		CoachingTone:      int(reflection.Tone),
		CoachingToneLabel: reflection.Tone.Label(),
		AIAssisted:        reflection.AIAssisted,
		Step2:             reflection.WhatHappened,
		Step3:             reflection.Lesson,
		Step4:             reflection.NextAction,
		AIRequestCount:    reflection.AIRequestCount,
		AIAcceptCount:     reflection.AIAcceptCount,
		CompletedAt:       reflection.CompletedAt.UTC(),
		IsEdited:          reflection.Edited(),
	}
	if reflection.FeedbackRating != nil {
		rating := int(*reflection.FeedbackRating)
		label := reflection.FeedbackRating.Label()
		record.FeedbackRating = &rating
		record.FeedbackRatingLabel = &label
	}
	if reflection.FeedbackNote != "" {
		note := reflection.FeedbackNote
		record.FeedbackNote = &note
	}
	if !reflection.UpdatedAt.IsZero() {
		updated := reflection.UpdatedAt.UTC()
		record.UpdatedAt = &updated
	}
	return record
}

// Entities converts a validated record tree back into store entities. The
// reflection id is minted deterministically; everything else is preserved
// exactly as given, including chain pointers.
func (r AreaRecord) Entities() (practice.Area, []practice.Session, []practice.Reflection) {
	area := practice.Area{
		ID:        r.ID,
		Name:      r.Name,
		Type:      practice.AreaType(r.Type),
		CreatedAt: r.CreatedAt,
	}
	sessions := make([]practice.Session, 0, len(r.Sessions))
	reflections := []practice.Reflection{}
	for _, s := range r.Sessions {
		session := practice.Session{
			ID:        s.ID,
			AreaID:    r.ID,
			Intent:    s.Intent,
			StartedAt: s.StartedAt,
		}
		if s.PreviousSessionID != nil {
			session.PreviousID = *s.PreviousSessionID
		}
		if s.TargetDurationSeconds != nil {
			session.TargetSeconds = *s.TargetDurationSeconds
		}
		if s.EndedAt != nil {
			session.EndedAt = *s.EndedAt
		}
		sessions = append(sessions, session)
		if s.Reflection != nil {
			reflections = append(reflections, s.Reflection.entity(s.ID))
		}
	}
	return area, sessions, reflections
}

func (r ReflectionRecord) entity(sessionID string) practice.Reflection {
	reflection := practice.Reflection{
		ID:             RestoredReflectionID(sessionID),
		SessionID:      sessionID,
		Tone:           practice.CoachingTone(r.CoachingTone),
		AIAssisted:     r.AIAssisted,
		WhatHappened:   r.Step2,
		Lesson:         r.Step3,
		NextAction:     r.Step4,
		AIRequestCount: r.AIRequestCount,
		AIAcceptCount:  r.AIAcceptCount,
		CompletedAt:    r.CompletedAt,
	}
	if r.FeedbackRating != nil {
		rating := practice.FeedbackRating(*r.FeedbackRating)
		reflection.FeedbackRating = &rating
	}
	if r.FeedbackNote != nil {
		reflection.FeedbackNote = *r.FeedbackNote
	}
	if r.UpdatedAt != nil {
		reflection.UpdatedAt = *r.UpdatedAt
	}
	return reflection
}
