package usecase_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	archivein "prax/internal/modules/archive/adapter/in"
	archiveout "prax/internal/modules/archive/adapter/out"
	archiveservice "prax/internal/modules/archive/service"
	archiveusecase "prax/internal/modules/archive/usecase"
	practiceadapter "prax/internal/modules/practice/adapter/out"
	practicedomain "prax/internal/modules/practice/domain"
	practicedto "prax/internal/modules/practice/dto"
	practiceport "prax/internal/modules/practice/port/in"
	practiceservice "prax/internal/modules/practice/service"
	practiceusecase "prax/internal/modules/practice/usecase"
	apperrors "prax/internal/platform/errors"
	"prax/internal/platform/tx"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

type seqID struct {
	prefix string
	n      int
}

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("%s-%04d", s.prefix, s.n)
}

type harness struct {
	clk      *fakeClock
	practice practiceport.Usecase
	archive  archivein.CLIHandler
	store    *practiceadapter.SQLiteStore
	db       *sql.DB
	dir      string
}

func newHarness(t *testing.T, idPrefix string) *harness {
	t.Helper()
	dir := t.TempDir()
	db, err := practiceadapter.Open(filepath.Join(dir, "prax.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := practiceadapter.NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	clk := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	notes := practiceadapter.NewMarkdownNoteStore(filepath.Join(dir, "notes"))
	practiceSvc := practiceservice.NewPracticeService(clk, &seqID{prefix: idPrefix}, store, notes, zap.NewNop())

	sqlArchive := archiveout.NewSQLiteArchive(db)
	archiveSvc := archiveservice.NewArchiveService(
		clk, "0.3.0", sqlArchive, sqlArchive,
		archiveout.NewJSONFileStore(), tx.NewSQLManager(db), zap.NewNop(),
	)
	return &harness{
		clk:      clk,
		practice: practiceusecase.NewInteractor(practiceSvc),
		archive:  archivein.NewCLIHandler(archiveusecase.NewInteractor(archiveSvc)),
		store:    store,
		db:       db,
		dir:      dir,
	}
}

// populate builds a small journal: two areas, a reflected timed session, an
// untimed reflected session with feedback, and one still-active session.
func populate(t *testing.T, h *harness) {
	t.Helper()
	ctx := context.Background()
	guitar, err := h.practice.CreateArea(ctx, practicedto.CreateAreaInput{Name: "Guitar", Type: "solo_skill"})
	if err != nil {
		t.Fatalf("create guitar: %v", err)
	}
	voice, err := h.practice.CreateArea(ctx, practicedto.CreateAreaInput{Name: "Voice", Type: "performance"})
	if err != nil {
		t.Fatalf("create voice: %v", err)
	}

	s1, err := h.practice.StartSession(ctx, practicedto.StartSessionInput{AreaID: guitar.ID, Intent: "chord changes", TargetSeconds: 900})
	if err != nil {
		t.Fatalf("start s1: %v", err)
	}
	h.clk.advance(20 * time.Minute)
	if _, err := h.practice.StopSession(ctx, s1.ID); err != nil {
		t.Fatalf("stop s1: %v", err)
	}
	rating := 3
	if _, err := h.practice.CreateReflection(ctx, practicedto.ReflectInput{
		SessionID:      s1.ID,
		Tone:           2,
		AIAssisted:     true,
		WhatHappened:   "kept tempo under pressure",
		Lesson:         "slow practice first",
		NextAction:     "metronome at 80bpm",
		AIRequestCount: 2,
		AIAcceptCount:  1,
		FeedbackRating: &rating,
		FeedbackNote:   "prompts were on point",
	}); err != nil {
		t.Fatalf("reflect s1: %v", err)
	}
	h.clk.advance(2 * time.Hour)
	if _, err := h.practice.EditReflection(ctx, practicedto.EditReflectionInput{SessionID: s1.ID, Lesson: "slow practice, then speed"}); err != nil {
		t.Fatalf("edit reflection: %v", err)
	}

	v1, err := h.practice.StartSession(ctx, practicedto.StartSessionInput{AreaID: voice.ID, Intent: "breath support"})
	if err != nil {
		t.Fatalf("start v1: %v", err)
	}
	h.clk.advance(15 * time.Minute)
	if _, err := h.practice.StopSession(ctx, v1.ID); err != nil {
		t.Fatalf("stop v1: %v", err)
	}
	if _, err := h.practice.CreateReflection(ctx, practicedto.ReflectInput{
		SessionID:    v1.ID,
		Tone:         3,
		WhatHappened: "sustained phrases longer",
		Lesson:       "posture matters",
		NextAction:   "record tomorrow's warmup",
	}); err != nil {
		t.Fatalf("reflect v1: %v", err)
	}

	h.clk.advance(time.Hour)
	if _, err := h.practice.StartSession(ctx, practicedto.StartSessionInput{AreaID: guitar.ID, Intent: "barre chords"}); err != nil {
		t.Fatalf("start active session: %v", err)
	}
}

// dump flattens the store into comparable entity values, keyed for
// field-by-field comparison across databases.
func dump(t *testing.T, h *harness) (map[string]practicedomain.Area, map[string]practicedomain.Session, map[string]practicedomain.Reflection) {
	t.Helper()
	ctx := context.Background()
	areas := map[string]practicedomain.Area{}
	sessions := map[string]practicedomain.Session{}
	reflections := map[string]practicedomain.Reflection{}
	list, err := h.store.ListAreas(ctx)
	if err != nil {
		t.Fatalf("list areas: %v", err)
	}
	for _, area := range list {
		areas[area.ID] = area
		areaSessions, err := h.store.ListSessions(ctx, area.ID)
		if err != nil {
			t.Fatalf("list sessions: %v", err)
		}
		for _, session := range areaSessions {
			sessions[session.ID] = session
			reflection, found, err := h.store.FindReflection(ctx, session.ID)
			if err != nil {
				t.Fatalf("find reflection: %v", err)
			}
			if found {
				// Reflection ids are re-minted on import; key by session.
				reflections[session.ID] = reflection
			}
		}
	}
	return areas, sessions, reflections
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	source := newHarness(t, "src")
	populate(t, source)
	path := filepath.Join(source.dir, "export.json")

	exported, err := source.archive.Export(ctx, path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.PracticeAreas != 2 || exported.Sessions != 3 || exported.Reflections != 2 {
		t.Fatalf("unexpected export counts: %+v", exported)
	}

	target := newHarness(t, "dst")
	imported, err := target.archive.Import(ctx, path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.PracticeAreas != 2 || imported.Sessions != 3 || imported.Reflections != 2 {
		t.Fatalf("unexpected import counts: %+v", imported)
	}

	wantAreas, wantSessions, wantReflections := dump(t, source)
	gotAreas, gotSessions, gotReflections := dump(t, target)

	if len(gotAreas) != len(wantAreas) || len(gotSessions) != len(wantSessions) || len(gotReflections) != len(wantReflections) {
		t.Fatalf("entity counts differ after round trip")
	}
	for id, want := range wantAreas {
		got, ok := gotAreas[id]
		if !ok {
			t.Fatalf("area %s missing after import", id)
		}
		if got.Name != want.Name || got.Type != want.Type || !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("area %s differs: want %+v got %+v", id, want, got)
		}
	}
	for id, want := range wantSessions {
		got, ok := gotSessions[id]
		if !ok {
			t.Fatalf("session %s missing after import", id)
		}
		if got.AreaID != want.AreaID || got.PreviousID != want.PreviousID || got.Intent != want.Intent ||
			got.TargetSeconds != want.TargetSeconds || !got.StartedAt.Equal(want.StartedAt) || !got.EndedAt.Equal(want.EndedAt) {
			t.Fatalf("session %s differs: want %+v got %+v", id, want, got)
		}
	}
	for sessionID, want := range wantReflections {
		got, ok := gotReflections[sessionID]
		if !ok {
			t.Fatalf("reflection for session %s missing after import", sessionID)
		}
		if got.Tone != want.Tone || got.AIAssisted != want.AIAssisted ||
			got.WhatHappened != want.WhatHappened || got.Lesson != want.Lesson || got.NextAction != want.NextAction ||
			got.AIRequestCount != want.AIRequestCount || got.AIAcceptCount != want.AIAcceptCount ||
			got.FeedbackNote != want.FeedbackNote ||
			!got.CompletedAt.Equal(want.CompletedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
			t.Fatalf("reflection for %s differs: want %+v got %+v", sessionID, want, got)
		}
		if (got.FeedbackRating == nil) != (want.FeedbackRating == nil) {
			t.Fatalf("reflection for %s rating presence differs", sessionID)
		}
		if got.FeedbackRating != nil && *got.FeedbackRating != *want.FeedbackRating {
			t.Fatalf("reflection for %s rating differs", sessionID)
		}
	}

	// Re-importing the same file is idempotent: same entities, same
	// deterministic reflection ids.
	firstIDs := map[string]string{}
	for sessionID, reflection := range gotReflections {
		firstIDs[sessionID] = reflection.ID
	}
	if _, err := target.archive.Import(ctx, path); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	_, _, again := dump(t, target)
	for sessionID, reflection := range again {
		if firstIDs[sessionID] != reflection.ID {
			t.Fatalf("reflection id for %s changed across imports: %s vs %s", sessionID, firstIDs[sessionID], reflection.ID)
		}
	}
}

func TestImportValidationLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, "src")
	populate(t, h)
	wantAreas, wantSessions, wantReflections := dump(t, h)

	path := filepath.Join(h.dir, "broken.json")
	payload := `{
  "metadata": {"export_date": "2026-04-02T10:00:00Z", "app_version": "0.3.0",
    "total_practice_areas": 1, "total_sessions": 1, "total_reflections": 0},
  "practice_areas": [{
    "id": "a1", "name": "Guitar", "type": "solo_skill", "type_label": "Solo Skill",
    "created_at": "2026-03-01T08:00:00Z",
    "sessions": [{
      "id": "s1", "previous_session_id": null,
      "started_at": "2026-03-10T09:00:00Z", "ended_at": null,
      "target_duration_seconds": null, "actual_duration_seconds": null,
      "met_target": null, "reflection": null
    }]
  }]
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	_, err := h.archive.Import(ctx, path)
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "practice_areas[0].sessions[0].intent") {
		t.Fatalf("error must name the offending path, got %q", err)
	}

	gotAreas, gotSessions, gotReflections := dump(t, h)
	if len(gotAreas) != len(wantAreas) || len(gotSessions) != len(wantSessions) || len(gotReflections) != len(wantReflections) {
		t.Fatalf("failed import must leave the store untouched")
	}
}

func TestImportApplyFailureRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, "src")
	populate(t, h)
	wantAreas, wantSessions, _ := dump(t, h)

	// Structurally valid, but the duplicate session id violates the
	// primary key mid-apply. The transaction must roll back in full.
	session := `{
      "id": "dup", "previous_session_id": null, "intent": "x",
      "started_at": "2026-03-10T09:00:00Z", "ended_at": null,
      "target_duration_seconds": null, "actual_duration_seconds": null,
      "met_target": null, "reflection": null
    }`
	payload := fmt.Sprintf(`{
  "metadata": {"export_date": "2026-04-02T10:00:00Z", "app_version": "0.3.0",
    "total_practice_areas": 1, "total_sessions": 2, "total_reflections": 0},
  "practice_areas": [{
    "id": "a1", "name": "Guitar", "type": "solo_skill", "type_label": "Solo Skill",
    "created_at": "2026-03-01T08:00:00Z",
    "sessions": [%s, %s]
  }]
}`, session, session)
	path := filepath.Join(h.dir, "duplicate.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	_, err := h.archive.Import(ctx, path)
	if err == nil {
		t.Fatalf("duplicate ids must fail the apply phase")
	}
	if !strings.Contains(err.Error(), "existing data preserved") {
		t.Fatalf("apply failures must report preservation, got %q", err)
	}

	gotAreas, gotSessions, _ := dump(t, h)
	if len(gotAreas) != len(wantAreas) || len(gotSessions) != len(wantSessions) {
		t.Fatalf("rolled-back import must not change the store")
	}
	for id := range wantSessions {
		if _, ok := gotSessions[id]; !ok {
			t.Fatalf("session %s lost after rollback", id)
		}
	}
}
