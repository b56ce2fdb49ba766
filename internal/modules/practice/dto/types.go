package dto

import "time"

type CreateAreaInput struct {
	Name string
	Type string
}

type AreaOutput struct {
	ID        string
	Name      string
	Type      string
	TypeLabel string
	CreatedAt time.Time
}

type StartSessionInput struct {
	AreaID        string
	Intent        string
	TargetSeconds int
}

type StateOutput struct {
	Status           string
	CanEdit          bool
	IsEdited         bool
	HoursRemaining   int
	HoursUntilExpiry int
}

type SessionOutput struct {
	ID            string
	AreaID        string
	PreviousID    string
	Intent        string
	TargetSeconds int
	StartedAt     time.Time
	EndedAt       time.Time
	Ended         bool
	ActualSeconds int
	State         StateOutput
}

type MoveSessionInput struct {
	SessionID string
	ToAreaID  string
}

type ReflectInput struct {
	SessionID      string
	Tone           int
	AIAssisted     bool
	WhatHappened   string
	Lesson         string
	NextAction     string
	AIRequestCount int
	AIAcceptCount  int
	FeedbackRating *int
	FeedbackNote   string
}

type EditReflectionInput struct {
	SessionID      string
	Tone           int // 0 leaves the tone unchanged
	WhatHappened   string
	Lesson         string
	NextAction     string
	FeedbackRating *int
	FeedbackNote   string
}

type ReflectionOutput struct {
	ID             string
	SessionID      string
	Tone           int
	ToneLabel      string
	AIAssisted     bool
	WhatHappened   string
	Lesson         string
	NextAction     string
	AIRequestCount int
	AIAcceptCount  int
	FeedbackRating *int
	FeedbackLabel  string
	FeedbackNote   string
	CompletedAt    time.Time
	UpdatedAt      time.Time
	Edited         bool
}

type PreviousContextOutput struct {
	Status     string
	Intent     string
	NextAction string
	AreaID     string
}
