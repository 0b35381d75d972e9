package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tasktrack/apiserver/internal/domain"
	"github.com/tasktrack/apiserver/internal/repository"
	"github.com/tasktrack/apiserver/pkg/pagination"
	"github.com/tasktrack/apiserver/pkg/validator"
)

// TaskService implements task CRUD for the authenticated user. Ownership is
// enforced by the repository, which scopes every query to the caller.
type TaskService struct {
	tasks  repository.TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		logger: logger,
	}
}

// CreateTaskInput holds the parameters for creating a task.
type CreateTaskInput struct {
	Title       string `validate:"required,min=1,max=200"`
	Description string
	Completed   bool
	Priority    string `validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskInput holds the parameters for a partial task update. Nil fields
// are left unchanged.
type UpdateTaskInput struct {
	Title       *string `validate:"omitempty,min=1,max=200"`
	Description *string
	Completed   *bool
	Priority    *string `validate:"omitempty,oneof=low medium high"`
}

// Create stores a new task for the user. Priority defaults to medium.
func (s *TaskService) Create(ctx context.Context, userID int64, input CreateTaskInput) (*domain.Task, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		Priority:    input.Priority,
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.InfoContext(ctx, "task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", userID),
	)

	return task, nil
}

// Get retrieves one of the user's tasks.
func (s *TaskService) Get(ctx context.Context, id, userID int64) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// List returns one page of the user's tasks.
func (s *TaskService) List(ctx context.Context, userID int64, filters repository.TaskFilters, params pagination.Params) (*pagination.Result[domain.Task], error) {
	tasks, total, err := s.tasks.ListByUserID(ctx, userID, filters, params.PerPage, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	result := pagination.NewResult(tasks, total, params)
	return &result, nil
}

// Update applies a partial update to one of the user's tasks.
func (s *TaskService) Update(ctx context.Context, id, userID int64, input UpdateTaskInput) (*domain.Task, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get task for update: %w", err)
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.InfoContext(ctx, "task updated",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", userID),
	)

	return task, nil
}

// Delete removes one of the user's tasks.
func (s *TaskService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.tasks.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.InfoContext(ctx, "task deleted",
		slog.Int64("task_id", id),
		slog.Int64("user_id", userID),
	)

	return nil
}
