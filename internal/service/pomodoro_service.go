package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "betterme/backend/internal/errors"
	"betterme/backend/internal/model"
	"betterme/backend/internal/repository"
)

// PomodoroService owns the study-session state machine:
//
//	STARTED --pause--> PAUSED --resume--> STARTED --complete--> COMPLETED
//
// COMPLETED is terminal, and each user holds at most one non-completed
// session at a time.
type PomodoroService struct {
	sessionRepo *repository.PomodoroRepository
	userRepo    *repository.UserRepository
	clock       func() time.Time
}

func NewPomodoroService(sessionRepo *repository.PomodoroRepository, userRepo *repository.UserRepository) *PomodoroService {
	return &PomodoroService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		clock:       func() time.Time { return time.Now().UTC() },
	}
}

// Create starts a new session with the user's configured study duration
// snapshotted into it. The repository insert is conditional on no other
// active session existing, so concurrent starts cannot both succeed.
func (s *PomodoroService) Create(ctx context.Context, userID string) (*model.PomodoroSession, *apperrors.APIError) {
	duration := model.DefaultStudyDurationSeconds
	settings, err := s.userRepo.GetSettings(ctx, userID)
	if err == nil {
		duration = settings.PomodoroStudyTime
	} else if err != repository.ErrNotFound {
		return nil, apperrors.Internal("failed to read user settings")
	}

	now := s.clock()
	session := model.PomodoroSession{
		ID:              uuid.NewString(),
		UserID:          userID,
		DurationSeconds: duration,
		StartedAt:       now,
		Status:          model.StatusStarted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.sessionRepo.CreateSession(ctx, &session); err != nil {
		if err == repository.ErrActiveSessionExists ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperrors.InvalidState("invalid pomodoro section")
		}
		return nil, apperrors.Internal("failed to create session")
	}

	return &session, nil
}

func (s *PomodoroService) Get(ctx context.Context, id, userID string) (*model.PomodoroSession, *apperrors.APIError) {
	session, err := s.sessionRepo.GetSession(ctx, id, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("pomodoro_not_found", "pomodoro not exist")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}
	return session, nil
}

// Apply runs one state-machine action against the session. Action values
// reuse the status names: STARTED resumes, PAUSED pauses, COMPLETED ends.
func (s *PomodoroService) Apply(ctx context.Context, id, userID, action string) *apperrors.APIError {
	session, apiErr := s.Get(ctx, id, userID)
	if apiErr != nil {
		return apiErr
	}

	switch action {
	case model.StatusPaused:
		return s.pause(ctx, session)
	case model.StatusStarted:
		return s.resume(ctx, session)
	case model.StatusCompleted:
		return s.complete(ctx, session)
	default:
		return apperrors.BadRequest("invalid_action", "action must be one of STARTED, PAUSED, COMPLETED")
	}
}

// pause is idempotent: re-pausing a paused session succeeds.
func (s *PomodoroService) pause(ctx context.Context, session *model.PomodoroSession) *apperrors.APIError {
	if session.Status == model.StatusCompleted {
		return apperrors.InvalidState("invalid pomodoro section")
	}
	if session.Status == model.StatusPaused {
		return nil
	}

	session.Status = model.StatusPaused
	session.UpdatedAt = s.clock()
	if err := s.sessionRepo.UpdateSession(ctx, session); err != nil {
		return apperrors.Internal("failed to update session")
	}
	return nil
}

// resume moves PAUSED back to STARTED. Resuming a running session is a no-op.
func (s *PomodoroService) resume(ctx context.Context, session *model.PomodoroSession) *apperrors.APIError {
	if session.Status == model.StatusCompleted {
		return apperrors.InvalidState("invalid pomodoro section")
	}
	if session.Status == model.StatusStarted {
		return nil
	}

	session.Status = model.StatusStarted
	session.UpdatedAt = s.clock()
	if err := s.sessionRepo.UpdateSession(ctx, session); err != nil {
		return apperrors.Internal("failed to update session")
	}
	return nil
}

// complete is only legal from STARTED and only once the timer has run down
// to within the grace window of its nominal end.
func (s *PomodoroService) complete(ctx context.Context, session *model.PomodoroSession) *apperrors.APIError {
	now := s.clock()

	if session.Status != model.StatusStarted {
		return apperrors.InvalidState("invalid pomodoro section")
	}

	earliestEnd := session.StartedAt.Add(
		time.Duration(session.DurationSeconds-model.CompletionGraceSeconds) * time.Second,
	)
	if now.Before(earliestEnd) {
		return apperrors.InvalidState("invalid pomodoro section")
	}

	endedAt := now.Format(time.RFC3339Nano)
	applied, err := s.sessionRepo.TransitionStatus(
		ctx,
		session.ID,
		model.StatusStarted,
		model.StatusCompleted,
		&endedAt,
		endedAt,
	)
	if err != nil {
		return apperrors.Internal("failed to complete session")
	}
	if !applied {
		// Lost a race with another transition; the state moved under us.
		return apperrors.InvalidState("invalid pomodoro section")
	}
	return nil
}

// DeleteLast removes the user's most recent session unless it is completed.
func (s *PomodoroService) DeleteLast(ctx context.Context, userID string) *apperrors.APIError {
	session, err := s.sessionRepo.GetLastSession(ctx, userID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("pomodoro_not_found", "pomodoro not exist")
	}
	if err != nil {
		return apperrors.Internal("failed to read session")
	}

	if session.Status == model.StatusCompleted {
		return apperrors.InvalidState("can not delete completed pomodoro section")
	}

	if err := s.sessionRepo.DeleteSession(ctx, session.ID); err != nil && err != repository.ErrNotFound {
		return apperrors.Internal("failed to delete session")
	}
	return nil
}

type SessionPage struct {
	Items []model.PomodoroSession `json:"items"`
	Total int                     `json:"total"`
}

func (s *PomodoroService) List(ctx context.Context, userID string, skip, limit int) (*SessionPage, *apperrors.APIError) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	items, total, err := s.sessionRepo.ListSessions(ctx, userID, skip, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list sessions")
	}
	return &SessionPage{Items: items, Total: total}, nil
}
