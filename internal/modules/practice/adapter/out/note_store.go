package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"prax/internal/modules/practice/domain"
	practiceout "prax/internal/modules/practice/port/out"
	"prax/internal/platform/markdown"
	"prax/internal/platform/slug"
)

// MarkdownNoteStore mirrors each reflection into a dated markdown note so
// the journal stays readable outside the app. Rewritten in full on every
// edit; the sqlite store remains authoritative.
type MarkdownNoteStore struct {
	notesPath string
}

func NewMarkdownNoteStore(notesPath string) practiceout.NoteStore {
	return &MarkdownNoteStore{notesPath: notesPath}
}

func (s *MarkdownNoteStore) WriteReflectionNote(_ context.Context, area domain.Area, session domain.Session, reflection domain.Reflection) (string, error) {
	date := session.StartedAt
	dir := filepath.Join(s.notesPath, date.Format("2006"), date.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create notes dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("02-150405"), slug.Make(area.Name))
	path := filepath.Join(dir, name)

	meta := map[string]any{
		"session_id":    session.ID,
		"area":          area.Name,
		"area_type":     string(area.Type),
		"intent":        session.Intent,
		"started_at":    session.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		"ended_at":      session.EndedAt.Format("2006-01-02T15:04:05Z07:00"),
		"coaching_tone": reflection.Tone.Label(),
		"ai_assisted":   reflection.AIAssisted,
		"completed_at":  reflection.CompletedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	body := fmt.Sprintf(
		"# %s — %s\n\n## Intent\n\n%s\n\n## What happened\n\n%s\n\n## Lesson\n\n%s\n\n## Next action\n\n%s\n",
		area.Name, date.Format("2006-01-02"), session.Intent,
		reflection.WhatHappened, reflection.Lesson, reflection.NextAction,
	)
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write reflection note: %w", err)
	}
	return path, nil
}
