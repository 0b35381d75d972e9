package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/apiserver/internal/domain"
	"github.com/tasktrack/apiserver/internal/repository"
	apperrors "github.com/tasktrack/apiserver/pkg/errors"
	"github.com/tasktrack/apiserver/pkg/pagination"
	"github.com/tasktrack/apiserver/pkg/validator"
)

// --- Mock Task Repository ---

type mockTaskRepository struct {
	mock.Mock
}

func (m *mockTaskRepository) Insert(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepository) FindByID(ctx context.Context, id, userID int64) (*domain.Task, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *mockTaskRepository) ListByUserID(ctx context.Context, userID int64, filters repository.TaskFilters, limit, offset int) ([]domain.Task, int, error) {
	args := m.Called(ctx, userID, filters, limit, offset)
	return args.Get(0).([]domain.Task), args.Int(1), args.Error(2)
}

func (m *mockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepository) Delete(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func newTestTaskService(tasks *mockTaskRepository) *TaskService {
	return NewTaskService(tasks, newTestLogger())
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestTaskCreate_DefaultsPriorityToMedium(t *testing.T) {
	tasks := &mockTaskRepository{}
	svc := newTestTaskService(tasks)

	tasks.On("Insert", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
		return tk.Priority == domain.PriorityMedium && tk.UserID == 7
	})).Return(nil)

	task, err := svc.Create(context.Background(), 7, CreateTaskInput{Title: "write report"})

	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	tasks.AssertExpectations(t)
}

func TestTaskCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		input CreateTaskInput
	}{
		{"missing title", CreateTaskInput{}},
		{"title too long", CreateTaskInput{Title: string(make([]byte, 201))}},
		{"bad priority", CreateTaskInput{Title: "x", Priority: "urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &mockTaskRepository{}
			svc := newTestTaskService(tasks)

			_, err := svc.Create(context.Background(), 7, tt.input)

			require.Error(t, err)
			var vErr *validator.ValidationError
			assert.True(t, errors.As(err, &vErr), "expected validation error, got: %v", err)
			tasks.AssertNotCalled(t, "Insert")
		})
	}
}

// ---------------------------------------------------------------------------
// Get / List
// ---------------------------------------------------------------------------

func TestTaskGet_NotFoundForOtherOwner(t *testing.T) {
	tasks := &mockTaskRepository{}
	svc := newTestTaskService(tasks)

	tasks.On("FindByID", mock.Anything, int64(3), int64(99)).Return(nil, apperrors.NotFound("task", 3))

	_, err := svc.Get(context.Background(), 3, 99)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestTaskList_PassesFiltersAndPagination(t *testing.T) {
	tasks := &mockTaskRepository{}
	svc := newTestTaskService(tasks)

	completed := false
	filters := repository.TaskFilters{Completed: &completed, Priority: domain.PriorityHigh}
	stored := []domain.Task{{ID: 3, UserID: 7, Title: "write report", Priority: domain.PriorityHigh}}

	tasks.On("ListByUserID", mock.Anything, int64(7), filters, 10, 10).Return(stored, 25, nil)

	result, err := svc.List(context.Background(), 7, filters, pagination.Params{Page: 2, PerPage: 10, Offset: 10})

	require.NoError(t, err)
	assert.Equal(t, 25, result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrev)
	require.Len(t, result.Data, 1)
	assert.Equal(t, stored[0], result.Data[0])
}

// ---------------------------------------------------------------------------
// Update / Delete
// ---------------------------------------------------------------------------

func TestTaskUpdate_PartialFields(t *testing.T) {
	tasks := &mockTaskRepository{}
	svc := newTestTaskService(tasks)

	existing := &domain.Task{ID: 3, UserID: 7, Title: "write report", Priority: domain.PriorityMedium}
	tasks.On("FindByID", mock.Anything, int64(3), int64(7)).Return(existing, nil)
	tasks.On("Update", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
		return tk.Completed && tk.Title == "write report"
	})).Return(nil)

	done := true
	updated, err := svc.Update(context.Background(), 3, 7, UpdateTaskInput{Completed: &done})

	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "write report", updated.Title, "unset fields stay unchanged")
}

func TestTaskUpdate_InvalidPriority(t *testing.T) {
	tasks := &mockTaskRepository{}
	svc := newTestTaskService(tasks)

	bad := "urgent"
	_, err := svc.Update(context.Background(), 3, 7, UpdateTaskInput{Priority: &bad})

	require.Error(t, err)
	var vErr *validator.ValidationError
	assert.True(t, errors.As(err, &vErr))
	tasks.AssertNotCalled(t, "FindByID")
}

func TestTaskDelete(t *testing.T) {
	tasks := &mockTaskRepository{}
	svc := newTestTaskService(tasks)

	tasks.On("Delete", mock.Anything, int64(3), int64(7)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 3, 7))
	tasks.AssertExpectations(t)
}

func TestTaskDelete_NotFound(t *testing.T) {
	tasks := &mockTaskRepository{}
	svc := newTestTaskService(tasks)

	tasks.On("Delete", mock.Anything, int64(3), int64(7)).Return(apperrors.NotFound("task", 3))

	err := svc.Delete(context.Background(), 3, 7)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
