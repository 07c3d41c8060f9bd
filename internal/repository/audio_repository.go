package repository

import (
	"context"
	"database/sql"
	"fmt"

	"betterme/backend/internal/model"
)

type AudioRepository struct {
	db *sql.DB
}

func NewAudioRepository(db *sql.DB) *AudioRepository {
	return &AudioRepository{db: db}
}

const audioColumns = `id, source_url, storage_url, status, last_error, created_by, requested_count, created_at, updated_at`

// CreatePending inserts a pending mapping unless one already exists for the
// same source URL. The unique index on source_url makes the race between two
// concurrent first requests resolve to a single row; the loser gets
// ErrAlreadyExists.
func (r *AudioRepository) CreatePending(ctx context.Context, mapping *model.AudioMapping) error {
	result, err := r.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO audio_mappings (`+audioColumns+`)
		 VALUES (?, ?, '', ?, '', ?, 0, ?, ?)`,
		mapping.ID,
		mapping.SourceURL,
		model.AudioStatusPending,
		mapping.CreatedBy,
		formatTime(mapping.CreatedAt),
		formatTime(mapping.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create audio mapping: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create audio mapping rows: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *AudioRepository) GetBySourceURL(ctx context.Context, sourceURL string) (*model.AudioMapping, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+audioColumns+`
		 FROM audio_mappings WHERE source_url = ?`,
		sourceURL,
	)
	return scanAudioMapping(row)
}

// MarkReady records the finished artifact. The worker may race a concurrent
// request that already created the pending row, so this is an upsert keyed on
// source_url.
func (r *AudioRepository) MarkReady(ctx context.Context, mapping *model.AudioMapping) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO audio_mappings (`+audioColumns+`)
		 VALUES (?, ?, ?, ?, '', ?, 0, ?, ?)
		 ON CONFLICT(source_url) DO UPDATE SET
		     storage_url = excluded.storage_url,
		     status = excluded.status,
		     last_error = '',
		     updated_at = excluded.updated_at`,
		mapping.ID,
		mapping.SourceURL,
		mapping.StorageURL,
		model.AudioStatusReady,
		mapping.CreatedBy,
		formatTime(mapping.CreatedAt),
		formatTime(mapping.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("mark audio ready: %w", err)
	}
	return nil
}

// MarkFailed leaves a terminal failure record with the error reason so an
// operator can see and re-trigger the job.
func (r *AudioRepository) MarkFailed(ctx context.Context, sourceURL, reason, updatedAt string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE audio_mappings
		 SET status = ?, last_error = ?, updated_at = ?
		 WHERE source_url = ?`,
		model.AudioStatusFailed,
		reason,
		updatedAt,
		sourceURL,
	)
	if err != nil {
		return fmt.Errorf("mark audio failed: %w", err)
	}
	return nil
}

// ResetToPending re-arms a failed mapping for another download attempt.
// Returns false when the mapping is not currently failed.
func (r *AudioRepository) ResetToPending(ctx context.Context, sourceURL, updatedAt string) (bool, error) {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE audio_mappings
		 SET status = ?, last_error = '', updated_at = ?
		 WHERE source_url = ? AND status = ?`,
		model.AudioStatusPending,
		updatedAt,
		sourceURL,
		model.AudioStatusFailed,
	)
	if err != nil {
		return false, fmt.Errorf("reset audio mapping: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reset audio mapping rows: %w", err)
	}
	return affected > 0, nil
}

func (r *AudioRepository) Delete(ctx context.Context, sourceURL string) error {
	if _, err := r.db.ExecContext(
		ctx,
		`DELETE FROM audio_mappings WHERE source_url = ?`,
		sourceURL,
	); err != nil {
		return fmt.Errorf("delete audio mapping: %w", err)
	}
	return nil
}

// IncrementRequestedCount is best-effort bookkeeping; callers ignore errors.
func (r *AudioRepository) IncrementRequestedCount(ctx context.Context, sourceURL string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE audio_mappings
		 SET requested_count = requested_count + 1
		 WHERE source_url = ?`,
		sourceURL,
	)
	if err != nil {
		return fmt.Errorf("increment requested count: %w", err)
	}
	return nil
}

func scanAudioMapping(row *sql.Row) (*model.AudioMapping, error) {
	mapping := model.AudioMapping{}
	var createdBy sql.NullString
	var createdAt string
	var updatedAt string
	err := row.Scan(
		&mapping.ID,
		&mapping.SourceURL,
		&mapping.StorageURL,
		&mapping.Status,
		&mapping.LastError,
		&createdBy,
		&mapping.RequestedCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan audio mapping: %w", err)
	}

	if createdBy.Valid {
		mapping.CreatedBy = createdBy.String
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse audio created_at: %w", err)
	}
	mapping.CreatedAt = parsedCreatedAt

	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse audio updated_at: %w", err)
	}
	mapping.UpdatedAt = parsedUpdatedAt

	return &mapping, nil
}
