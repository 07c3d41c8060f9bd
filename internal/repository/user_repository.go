package repository

import (
	"context"
	"database/sql"
	"fmt"

	"betterme/backend/internal/model"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT id, email, password_hash, created_at, updated_at
		 FROM users WHERE email = ?`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT id, email, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id)
}

func (r *UserRepository) getOne(ctx context.Context, query, arg string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	var user model.User
	var createdAt string
	var updatedAt string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse user created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse user updated_at: %w", err)
	}
	user.CreatedAt = parsedCreatedAt
	user.UpdatedAt = parsedUpdatedAt

	return &user, nil
}

func (r *UserRepository) CreateDefaultSettings(ctx context.Context, userID string, now string) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO user_settings (user_id, pomodoro_study_time, updated_at)
		 VALUES (?, ?, ?)`,
		userID,
		model.DefaultStudyDurationSeconds,
		now,
	)
	if err != nil {
		return fmt.Errorf("create default settings: %w", err)
	}
	return nil
}

func (r *UserRepository) GetSettings(ctx context.Context, userID string) (*model.UserSettings, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT user_id, pomodoro_study_time, updated_at
		 FROM user_settings WHERE user_id = ?`,
		userID,
	)

	var settings model.UserSettings
	var updatedAt string
	if err := row.Scan(&settings.UserID, &settings.PomodoroStudyTime, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse settings updated_at: %w", err)
	}
	settings.UpdatedAt = parsedUpdatedAt

	return &settings, nil
}

func (r *UserRepository) UpdateSettings(ctx context.Context, settings *model.UserSettings) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE user_settings
		 SET pomodoro_study_time = ?, updated_at = ?
		 WHERE user_id = ?`,
		settings.PomodoroStudyTime,
		formatTime(settings.UpdatedAt),
		settings.UserID,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update settings rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
