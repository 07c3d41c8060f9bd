package repository

import (
	"context"
	"database/sql"
	"fmt"

	"betterme/backend/internal/model"
)

type PomodoroRepository struct {
	db *sql.DB
}

func NewPomodoroRepository(db *sql.DB) *PomodoroRepository {
	return &PomodoroRepository{db: db}
}

const sessionColumns = `id, user_id, duration_seconds, started_at, ended_at, status, created_at, updated_at`

// CreateSession inserts the session only if the user has no other
// non-completed session. The check and the insert run as one statement, so
// two concurrent starts cannot both succeed; the loser sees
// ErrActiveSessionExists.
func (r *PomodoroRepository) CreateSession(ctx context.Context, session *model.PomodoroSession) error {
	result, err := r.db.ExecContext(
		ctx,
		`INSERT INTO pomodoro_sessions (`+sessionColumns+`)
		 SELECT ?, ?, ?, ?, NULL, ?, ?, ?
		 WHERE NOT EXISTS (
		     SELECT 1 FROM pomodoro_sessions
		     WHERE user_id = ? AND status != ?
		 )`,
		session.ID,
		session.UserID,
		session.DurationSeconds,
		formatTime(session.StartedAt),
		session.Status,
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
		session.UserID,
		model.StatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create session rows: %w", err)
	}
	if affected == 0 {
		return ErrActiveSessionExists
	}
	return nil
}

func (r *PomodoroRepository) GetSession(ctx context.Context, id, userID string) (*model.PomodoroSession, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM pomodoro_sessions
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanSession(row)
}

// GetLastSession returns the user's most recent session by creation time.
func (r *PomodoroRepository) GetLastSession(ctx context.Context, userID string) (*model.PomodoroSession, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM pomodoro_sessions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		userID,
	)
	return scanSession(row)
}

func (r *PomodoroRepository) UpdateSession(ctx context.Context, session *model.PomodoroSession) error {
	var endedAt interface{}
	if session.EndedAt != nil {
		endedAt = formatTime(*session.EndedAt)
	}

	result, err := r.db.ExecContext(
		ctx,
		`UPDATE pomodoro_sessions
		 SET ended_at = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		endedAt,
		session.Status,
		formatTime(session.UpdatedAt),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionStatus flips the session status only when the current status
// matches fromStatus, so concurrent transitions cannot double-apply.
func (r *PomodoroRepository) TransitionStatus(ctx context.Context, id, fromStatus, toStatus string, endedAt *string, updatedAt string) (bool, error) {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE pomodoro_sessions
		 SET status = ?, ended_at = COALESCE(?, ended_at), updated_at = ?
		 WHERE id = ? AND status = ?`,
		toStatus,
		endedAt,
		updatedAt,
		id,
		fromStatus,
	)
	if err != nil {
		return false, fmt.Errorf("transition session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition session rows: %w", err)
	}
	return affected > 0, nil
}

func (r *PomodoroRepository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM pomodoro_sessions WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessions returns one page of the user's sessions, newest first, along
// with the total number of sessions for pagination metadata.
func (r *PomodoroRepository) ListSessions(ctx context.Context, userID string, skip, limit int) ([]model.PomodoroSession, int, error) {
	var total int
	if err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM pomodoro_sessions WHERE user_id = ?`,
		userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM pomodoro_sessions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID,
		limit,
		skip,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.PomodoroSession, 0, limit)
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, total, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(s scanner) (*model.PomodoroSession, error) {
	session := model.PomodoroSession{}
	var startedAt string
	var endedAt sql.NullString
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&session.DurationSeconds,
		&startedAt,
		&endedAt,
		&session.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	parsedStartedAt, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session started_at: %w", err)
	}
	session.StartedAt = parsedStartedAt

	if endedAt.Valid {
		parsedEndedAt, parseErr := parseTime(endedAt.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse session ended_at: %w", parseErr)
		}
		session.EndedAt = &parsedEndedAt
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse session created_at: %w", err)
	}
	session.CreatedAt = parsedCreatedAt

	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session updated_at: %w", err)
	}
	session.UpdatedAt = parsedUpdatedAt

	return &session, nil
}
