package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/apiserver/internal/domain"
	"github.com/tasktrack/apiserver/internal/repository"
	apperrors "github.com/tasktrack/apiserver/pkg/errors"
)

func newTaskTestFixture(t *testing.T) (*TaskRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewTaskRepository(mock)
	return repo, mock
}

func sampleTask() *domain.Task {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Task{
		ID:          3,
		UserID:      7,
		Title:       "write report",
		Description: "quarterly numbers",
		Completed:   false,
		Priority:    domain.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func taskColumns() []string {
	return []string{
		"id", "user_id", "title", "description",
		"completed", "priority", "created_at", "updated_at",
	}
}

func taskRow(tk *domain.Task) *pgxmock.Rows {
	return pgxmock.NewRows(taskColumns()).AddRow(
		tk.ID, tk.UserID, tk.Title, tk.Description,
		tk.Completed, tk.Priority, tk.CreatedAt, tk.UpdatedAt,
	)
}

func TestTaskRepository_Insert_Success(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC()
	tk := &domain.Task{
		UserID:   7,
		Title:    "write report",
		Priority: domain.PriorityHigh,
	}

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs(tk.UserID, tk.Title, tk.Description, tk.Completed, tk.Priority).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(3), now, now))

	err := repo.Insert(context.Background(), tk)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tk.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_FindByID_ScopedToOwner(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	tk := sampleTask()

	mock.ExpectQuery("SELECT .+ FROM tasks WHERE id = .+ AND user_id =").
		WithArgs(tk.ID, tk.UserID).
		WillReturnRows(taskRow(tk))

	got, err := repo.FindByID(context.Background(), tk.ID, tk.UserID)
	require.NoError(t, err)
	assert.Equal(t, tk, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_FindByID_OtherOwnerLooksAbsent(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM tasks WHERE id = .+ AND user_id =").
		WithArgs(int64(3), int64(99)).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.FindByID(context.Background(), 3, 99)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByUserID_NoFilters(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	tk := sampleTask()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(tk.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM tasks WHERE user_id = .+ ORDER BY created_at DESC").
		WithArgs(tk.UserID, 20, 0).
		WillReturnRows(taskRow(tk))

	tasks, total, err := repo.ListByUserID(context.Background(), tk.UserID, repository.TaskFilters{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, *tk, tasks[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByUserID_WithFilters(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	completed := true
	filters := repository.TaskFilters{Completed: &completed, Priority: domain.PriorityHigh}

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(7), true, domain.PriorityHigh).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT .+ FROM tasks WHERE user_id = .+ AND completed = .+ AND priority =").
		WithArgs(int64(7), true, domain.PriorityHigh, 20, 0).
		WillReturnRows(pgxmock.NewRows(taskColumns()))

	tasks, total, err := repo.ListByUserID(context.Background(), 7, filters, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update_Success(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	tk := sampleTask()
	tk.Completed = true

	mock.ExpectExec("UPDATE tasks").
		WithArgs(tk.Title, tk.Description, tk.Completed, tk.Priority, pgxmock.AnyArg(), tk.ID, tk.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), tk)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update_NotFound(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	tk := sampleTask()

	mock.ExpectExec("UPDATE tasks").
		WithArgs(tk.Title, tk.Description, tk.Completed, tk.Priority, pgxmock.AnyArg(), tk.ID, tk.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), tk)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_Success(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM tasks WHERE id = .+ AND user_id =").
		WithArgs(int64(3), int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), 3, 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM tasks WHERE id = .+ AND user_id =").
		WithArgs(int64(3), int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 3, 7)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
