package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	archiveout "prax/internal/modules/archive/port/out"
	practice "prax/internal/modules/practice/domain"
	"prax/internal/platform/tx"
)

const timeLayout = time.RFC3339Nano

// SQLiteArchive reads and restores the entity tables for export/import. It
// shares the database handle with the entity store but owns its own
// statements: restore statements run against the transaction carried by
// ctx so a failed import rolls back in full.
type SQLiteArchive struct {
	db *sql.DB
}

var (
	_ archiveout.Source   = (*SQLiteArchive)(nil)
	_ archiveout.Restorer = (*SQLiteArchive)(nil)
)

func NewSQLiteArchive(db *sql.DB) *SQLiteArchive {
	return &SQLiteArchive{db: db}
}

func (a *SQLiteArchive) Areas(ctx context.Context) ([]practice.Area, error) {
	const query = `SELECT id, name, type, created_at FROM practice_areas WHERE is_deleted = 0 ORDER BY created_at`
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read practice areas: %w", err)
	}
	defer rows.Close()
	areas := []practice.Area{}
	for rows.Next() {
		var (
			area      practice.Area
			areaType  string
			createdAt string
		)
		if err := rows.Scan(&area.ID, &area.Name, &areaType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan practice area: %w", err)
		}
		created, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse area created_at: %w", err)
		}
		area.Type = practice.AreaType(areaType)
		area.CreatedAt = created
		areas = append(areas, area)
	}
	return areas, rows.Err()
}

func (a *SQLiteArchive) Sessions(ctx context.Context, areaID string) ([]practice.Session, error) {
	const query = `
SELECT id, practice_area_id, previous_session_id, intent, target_duration_seconds, started_at, ended_at
FROM sessions WHERE practice_area_id = ? AND is_deleted = 0 ORDER BY started_at`
	rows, err := a.db.QueryContext(ctx, query, areaID)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer rows.Close()
	sessions := []practice.Session{}
	for rows.Next() {
		var (
			session   practice.Session
			previous  sql.NullString
			target    sql.NullInt64
			startedAt string
			endedAt   sql.NullString
		)
		if err := rows.Scan(&session.ID, &session.AreaID, &previous, &session.Intent, &target, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		started, err := time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse session started_at: %w", err)
		}
		session.PreviousID = previous.String
		session.TargetSeconds = int(target.Int64)
		session.StartedAt = started
		if endedAt.Valid {
			ended, err := time.Parse(timeLayout, endedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse session ended_at: %w", err)
			}
			session.EndedAt = ended
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (a *SQLiteArchive) Reflection(ctx context.Context, sessionID string) (practice.Reflection, bool, error) {
	const query = `
SELECT id, session_id, coaching_tone, ai_assisted, step2, step3, step4,
  ai_request_count, ai_accept_count, feedback_rating, feedback_note, completed_at, updated_at
FROM reflections WHERE session_id = ?`
	var (
		reflection  practice.Reflection
		tone        int
		aiAssisted  int
		rating      sql.NullInt64
		note        sql.NullString
		completedAt string
		updatedAt   sql.NullString
	)
	err := a.db.QueryRowContext(ctx, query, sessionID).Scan(
		&reflection.ID, &reflection.SessionID, &tone, &aiAssisted,
		&reflection.WhatHappened, &reflection.Lesson, &reflection.NextAction,
		&reflection.AIRequestCount, &reflection.AIAcceptCount, &rating, &note, &completedAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return practice.Reflection{}, false, nil
	}
	if err != nil {
		return practice.Reflection{}, false, fmt.Errorf("read reflection: %w", err)
	}
	completed, err := time.Parse(timeLayout, completedAt)
	if err != nil {
		return practice.Reflection{}, false, fmt.Errorf("parse reflection completed_at: %w", err)
	}
	reflection.Tone = practice.CoachingTone(tone)
	reflection.AIAssisted = aiAssisted == 1
	reflection.FeedbackNote = note.String
	reflection.CompletedAt = completed
	if rating.Valid {
		value := practice.FeedbackRating(rating.Int64)
		reflection.FeedbackRating = &value
	}
	if updatedAt.Valid {
		updated, err := time.Parse(timeLayout, updatedAt.String)
		if err != nil {
			return practice.Reflection{}, false, fmt.Errorf("parse reflection updated_at: %w", err)
		}
		reflection.UpdatedAt = updated
	}
	return reflection, true, nil
}

// WipeAll clears the three tables in reference order.
func (a *SQLiteArchive) WipeAll(ctx context.Context) error {
	q := tx.From(ctx, a.db)
	for _, stmt := range []string{
		`DELETE FROM reflections`,
		`DELETE FROM sessions`,
		`DELETE FROM practice_areas`,
	} {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wipe store: %w", err)
		}
	}
	return nil
}

func (a *SQLiteArchive) InsertArea(ctx context.Context, area practice.Area) error {
	const stmt = `INSERT INTO practice_areas (id, name, type, created_at, is_deleted) VALUES (?, ?, ?, ?, 0)`
	q := tx.From(ctx, a.db)
	if _, err := q.ExecContext(ctx, stmt, area.ID, area.Name, string(area.Type), area.CreatedAt.UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("restore practice area %s: %w", area.ID, err)
	}
	return nil
}

func (a *SQLiteArchive) InsertSession(ctx context.Context, session practice.Session) error {
	const stmt = `
INSERT INTO sessions (id, practice_area_id, previous_session_id, intent, target_duration_seconds, started_at, ended_at, is_deleted)
VALUES (?, ?, ?, ?, ?, ?, ?, 0)`
	q := tx.From(ctx, a.db)
	_, err := q.ExecContext(ctx, stmt,
		session.ID,
		session.AreaID,
		nullString(session.PreviousID),
		session.Intent,
		nullInt(session.TargetSeconds),
		session.StartedAt.UTC().Format(timeLayout),
		nullTime(session.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("restore session %s: %w", session.ID, err)
	}
	return nil
}

func (a *SQLiteArchive) InsertReflection(ctx context.Context, reflection practice.Reflection) error {
	const stmt = `
INSERT INTO reflections (id, session_id, coaching_tone, ai_assisted, step2, step3, step4,
  ai_request_count, ai_accept_count, feedback_rating, feedback_note, completed_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	q := tx.From(ctx, a.db)
	_, err := q.ExecContext(ctx, stmt,
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
		return fmt.Errorf("restore reflection for session %s: %w", reflection.SessionID, err)
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

func nullRating(r *practice.FeedbackRating) any {
	if r == nil {
		return nil
	}
	return int(*r)
}
