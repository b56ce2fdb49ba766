package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"prax/internal/modules/practice/domain"
	practiceout "prax/internal/modules/practice/port/out"
	apperrors "prax/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// Open creates the database file (and its directory) and returns a handle
// shared by every store bound to it.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// SQLiteStore is the single row-to-struct mapping boundary for the three
// entity tables. Invalid shapes are caught here, not in business logic.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS practice_areas (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  created_at TEXT NOT NULL,
  is_deleted INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  practice_area_id TEXT NOT NULL,
  previous_session_id TEXT,
  intent TEXT NOT NULL,
  target_duration_seconds INTEGER,
  started_at TEXT NOT NULL,
  ended_at TEXT,
  is_deleted INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_area_started ON sessions(practice_area_id, started_at);
CREATE TABLE IF NOT EXISTS reflections (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL UNIQUE,
  coaching_tone INTEGER NOT NULL,
  ai_assisted INTEGER NOT NULL,
  step2 TEXT NOT NULL,
  step3 TEXT NOT NULL,
  step4 TEXT NOT NULL,
  ai_request_count INTEGER NOT NULL DEFAULT 0,
  ai_accept_count INTEGER NOT NULL DEFAULT 0,
  feedback_rating INTEGER,
  feedback_note TEXT,
  completed_at TEXT NOT NULL,
  updated_at TEXT
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create entity tables: %w", err)
	}
	return nil
}

var _ practiceout.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) SaveArea(ctx context.Context, area domain.Area) error {
	const stmt = `INSERT INTO practice_areas (id, name, type, created_at, is_deleted) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt, area.ID, area.Name, string(area.Type), area.CreatedAt.UTC().Format(timeLayout), boolInt(area.Deleted))
	if err != nil {
		return fmt.Errorf("insert practice area: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindArea(ctx context.Context, id string) (domain.Area, error) {
	const query = `SELECT id, name, type, created_at, is_deleted FROM practice_areas WHERE id = ?`
	area, err := scanArea(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return domain.Area{}, fmt.Errorf("practice area %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Area{}, fmt.Errorf("find practice area: %w", err)
	}
	return area, nil
}

func (s *SQLiteStore) ListAreas(ctx context.Context) ([]domain.Area, error) {
	const query = `SELECT id, name, type, created_at, is_deleted FROM practice_areas WHERE is_deleted = 0 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list practice areas: %w", err)
	}
	defer rows.Close()
	areas := []domain.Area{}
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan practice area: %w", err)
		}
		areas = append(areas, area)
	}
	return areas, rows.Err()
}

func (s *SQLiteStore) MarkAreaDeleted(ctx context.Context, id string) error {
	const stmt = `UPDATE practice_areas SET is_deleted = 1 WHERE id = ?`
	result, err := s.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete practice area: %w", err)
	}
	return requireRow(result, "practice area", id)
}

func (s *SQLiteStore) HasLiveSessions(ctx context.Context, areaID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM sessions WHERE practice_area_id = ? AND is_deleted = 0)`
	var exists int
	if err := s.db.QueryRowContext(ctx, query, areaID).Scan(&exists); err != nil {
		return false, fmt.Errorf("count area sessions: %w", err)
	}
	return exists == 1, nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, session domain.Session) error {
	const stmt = `
INSERT INTO sessions (id, practice_area_id, previous_session_id, intent, target_duration_seconds, started_at, ended_at, is_deleted)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt,
		session.ID,
		session.AreaID,
		nullString(session.PreviousID),
		session.Intent,
		nullInt(session.TargetSeconds),
		session.StartedAt.UTC().Format(timeLayout),
		nullTime(session.EndedAt),
		boolInt(session.Deleted),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateSession persists the only mutations sessions undergo: ending and
// moving. Intent, target and start time are write-once.
func (s *SQLiteStore) UpdateSession(ctx context.Context, session domain.Session) error {
	const stmt = `UPDATE sessions SET practice_area_id = ?, previous_session_id = ?, ended_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, stmt, session.AreaID, nullString(session.PreviousID), nullTime(session.EndedAt), session.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return requireRow(result, "session", session.ID)
}

func (s *SQLiteStore) FindSession(ctx context.Context, id string) (domain.Session, error) {
	const query = `
SELECT id, practice_area_id, previous_session_id, intent, target_duration_seconds, started_at, ended_at, is_deleted
FROM sessions WHERE id = ?`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("find session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, areaID string) ([]domain.Session, error) {
	const query = `
SELECT id, practice_area_id, previous_session_id, intent, target_duration_seconds, started_at, ended_at, is_deleted
FROM sessions WHERE practice_area_id = ? AND is_deleted = 0 ORDER BY started_at DESC`
	rows, err := s.db.QueryContext(ctx, query, areaID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) LatestSession(ctx context.Context, areaID string) (domain.Session, bool, error) {
	const query = `
SELECT id, practice_area_id, previous_session_id, intent, target_duration_seconds, started_at, ended_at, is_deleted
FROM sessions WHERE practice_area_id = ? AND is_deleted = 0 ORDER BY started_at DESC LIMIT 1`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, areaID))
	if err == sql.ErrNoRows {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("latest session: %w", err)
	}
	return session, true, nil
}

func (s *SQLiteStore) LatestUnreflected(ctx context.Context, areaID string) (domain.Session, bool, error) {
	const query = `
SELECT id, practice_area_id, previous_session_id, intent, target_duration_seconds, started_at, ended_at, is_deleted
FROM sessions
WHERE practice_area_id = ? AND is_deleted = 0 AND ended_at IS NOT NULL
  AND id NOT IN (SELECT session_id FROM reflections)
ORDER BY started_at DESC LIMIT 1`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, areaID))
	if err == sql.ErrNoRows {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("latest unreflected session: %w", err)
	}
	return session, true, nil
}

func (s *SQLiteStore) MarkSessionDeleted(ctx context.Context, id string) error {
	const stmt = `UPDATE sessions SET is_deleted = 1 WHERE id = ?`
	result, err := s.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireRow(result, "session", id)
}

func (s *SQLiteStore) SaveReflection(ctx context.Context, reflection domain.Reflection) error {
	const stmt = `
INSERT INTO reflections (id, session_id, coaching_tone, ai_assisted, step2, step3, step4,
  ai_request_count, ai_accept_count, feedback_rating, feedback_note, completed_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt,
		reflection.ID,
		reflection.SessionID,
		int(reflection.Tone),
		boolInt(reflection.AIAssisted),
		reflection.WhatHappened,
		reflection.Lesson,
		reflection.NextAction,
		reflection.AIRequestCount,
		reflection.AIAcceptCount,
		nullRating(reflection.FeedbackRating),
		nullString(reflection.FeedbackNote),
		reflection.CompletedAt.UTC().Format(timeLayout),
		nullTime(reflection.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert reflection: %w", err)
	}
	return nil
}

// UpdateReflection deliberately leaves completed_at out of the SET list;
// completion time is immutable once written.
func (s *SQLiteStore) UpdateReflection(ctx context.Context, reflection domain.Reflection) error {
	const stmt = `
UPDATE reflections SET coaching_tone = ?, ai_assisted = ?, step2 = ?, step3 = ?, step4 = ?,
  ai_request_count = ?, ai_accept_count = ?, feedback_rating = ?, feedback_note = ?, updated_at = ?
WHERE session_id = ?`
	result, err := s.db.ExecContext(ctx, stmt,
		int(reflection.Tone),
		boolInt(reflection.AIAssisted),
		reflection.WhatHappened,
		reflection.Lesson,
		reflection.NextAction,
		reflection.AIRequestCount,
		reflection.AIAcceptCount,
		nullRating(reflection.FeedbackRating),
		nullString(reflection.FeedbackNote),
		nullTime(reflection.UpdatedAt),
		reflection.SessionID,
	)
	if err != nil {
		return fmt.Errorf("update reflection: %w", err)
	}
	return requireRow(result, "reflection for session", reflection.SessionID)
}

func (s *SQLiteStore) FindReflection(ctx context.Context, sessionID string) (domain.Reflection, bool, error) {
	const query = `
SELECT id, session_id, coaching_tone, ai_assisted, step2, step3, step4,
  ai_request_count, ai_accept_count, feedback_rating, feedback_note, completed_at, updated_at
FROM reflections WHERE session_id = ?`
	reflection, err := scanReflection(s.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return domain.Reflection{}, false, nil
	}
	if err != nil {
		return domain.Reflection{}, false, fmt.Errorf("find reflection: %w", err)
	}
	return reflection, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArea(row rowScanner) (domain.Area, error) {
	var (
		area      domain.Area
		areaType  string
		createdAt string
		deleted   int
	)
	if err := row.Scan(&area.ID, &area.Name, &areaType, &createdAt, &deleted); err != nil {
		return domain.Area{}, err
	}
	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Area{}, fmt.Errorf("parse area created_at: %w", err)
	}
	area.Type = domain.AreaType(areaType)
	area.CreatedAt = created
	area.Deleted = deleted == 1
	return area, nil
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session   domain.Session
		previous  sql.NullString
		target    sql.NullInt64
		startedAt string
		endedAt   sql.NullString
		deleted   int
	)
	if err := row.Scan(&session.ID, &session.AreaID, &previous, &session.Intent, &target, &startedAt, &endedAt, &deleted); err != nil {
		return domain.Session{}, err
	}
	started, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse session started_at: %w", err)
	}
	session.PreviousID = previous.String
	session.TargetSeconds = int(target.Int64)
	session.StartedAt = started
	session.Deleted = deleted == 1
	if endedAt.Valid {
		ended, err := time.Parse(timeLayout, endedAt.String)
		if err != nil {
			return domain.Session{}, fmt.Errorf("parse session ended_at: %w", err)
		}
		session.EndedAt = ended
	}
	return session, nil
}

func scanReflection(row rowScanner) (domain.Reflection, error) {
	var (
		reflection  domain.Reflection
		tone        int
		aiAssisted  int
		rating      sql.NullInt64
		note        sql.NullString
		completedAt string
		updatedAt   sql.NullString
	)
	if err := row.Scan(&reflection.ID, &reflection.SessionID, &tone, &aiAssisted,
		&reflection.WhatHappened, &reflection.Lesson, &reflection.NextAction,
		&reflection.AIRequestCount, &reflection.AIAcceptCount, &rating, &note, &completedAt, &updatedAt); err != nil {
		return domain.Reflection{}, err
	}
	completed, err := time.Parse(timeLayout, completedAt)
	if err != nil {
		return domain.Reflection{}, fmt.Errorf("parse reflection completed_at: %w", err)
	}
	reflection.Tone = domain.CoachingTone(tone)
	reflection.AIAssisted = aiAssisted == 1
	reflection.FeedbackNote = note.String
	reflection.CompletedAt = completed
	if rating.Valid {
		value := domain.FeedbackRating(rating.Int64)
		reflection.FeedbackRating = &value
	}
	if updatedAt.Valid {
		updated, err := time.Parse(timeLayout, updatedAt.String)
		if err != nil {
			return domain.Reflection{}, fmt.Errorf("parse reflection updated_at: %w", err)
		}
		reflection.UpdatedAt = updated
	}
	return reflection, nil
}

func requireRow(result sql.Result, kind, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
	}
	return nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func nullRating(r *domain.FeedbackRating) any {
	if r == nil {
		return nil
	}
	return int(*r)
}
