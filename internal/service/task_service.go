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

type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) Create(ctx context.Context, userID, title string) (*model.Task, *apperrors.APIError) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.BadRequest("invalid_title", "title is required")
	}
	if len(title) > 500 {
		return nil, apperrors.BadRequest("invalid_title", "title is too long")
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, apperrors.Internal("failed to create task")
	}
	return &task, nil
}

func (s *TaskService) List(ctx context.Context, userID string) ([]model.Task, *apperrors.APIError) {
	tasks, err := s.taskRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list tasks")
	}
	return tasks, nil
}

type TaskUpdate struct {
	Title *string
	Done  *bool
}

func (s *TaskService) Update(ctx context.Context, id, userID string, update TaskUpdate) (*model.Task, *apperrors.APIError) {
	task, err := s.taskRepo.Get(ctx, id, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "task not exist")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to read task")
	}

	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			return nil, apperrors.BadRequest("invalid_title", "title is required")
		}
		task.Title = trimmed
	}
	if update.Done != nil {
		task.Done = *update.Done
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, apperrors.Internal("failed to update task")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id, userID string) *apperrors.APIError {
	err := s.taskRepo.Delete(ctx, id, userID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("task_not_found", "task not exist")
	}
	if err != nil {
		return apperrors.Internal("failed to delete task")
	}
	return nil
}
