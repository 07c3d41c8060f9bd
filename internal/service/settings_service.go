package service

import (
	"context"
	"time"

	apperrors "betterme/backend/internal/errors"
	"betterme/backend/internal/model"
	"betterme/backend/internal/repository"
)

type SettingsService struct {
	userRepo *repository.UserRepository
}

func NewSettingsService(userRepo *repository.UserRepository) *SettingsService {
	return &SettingsService{userRepo: userRepo}
}

func (s *SettingsService) Get(ctx context.Context, userID string) (*model.UserSettings, *apperrors.APIError) {
	settings, err := s.userRepo.GetSettings(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("settings_not_found", "user settings not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to read settings")
	}
	return settings, nil
}

// Update changes the configured study duration. Running sessions keep the
// duration they snapshotted at creation.
func (s *SettingsService) Update(ctx context.Context, userID string, studyTimeSeconds int) (*model.UserSettings, *apperrors.APIError) {
	if studyTimeSeconds < model.MinStudyDurationSeconds || studyTimeSeconds > model.MaxStudyDurationSeconds {
		return nil, apperrors.BadRequest("invalid_duration", "pomodoro study time out of range")
	}

	settings := model.UserSettings{
		UserID:            userID,
		PomodoroStudyTime: studyTimeSeconds,
		UpdatedAt:         time.Now().UTC(),
	}

	err := s.userRepo.UpdateSettings(ctx, &settings)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("settings_not_found", "user settings not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to update settings")
	}
	return &settings, nil
}
