package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tasktrack/apiserver/internal/domain"
	"github.com/tasktrack/apiserver/internal/repository"
	"github.com/tasktrack/apiserver/pkg/database"
	apperrors "github.com/tasktrack/apiserver/pkg/errors"
)

// TaskRepository implements repository.TaskRepository using PostgreSQL.
// Every query is scoped by user_id so ownership is enforced at the SQL level.
type TaskRepository struct {
	db database.DBTX
}

// NewTaskRepository creates a new PostgreSQL-backed task repository.
func NewTaskRepository(db database.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// Insert stores a new task and fills in the generated ID and timestamps.
func (r *TaskRepository) Insert(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, description, completed, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		t.UserID,
		t.Title,
		t.Description,
		t.Completed,
		t.Priority,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// FindByID retrieves a task owned by the given user.
func (r *TaskRepository) FindByID(ctx context.Context, id, userID int64) (*domain.Task, error) {
	query := taskSelect + ` WHERE id = $1 AND user_id = $2`

	var t domain.Task
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&t.Priority,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("task", id)
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	return &t, nil
}

// ListByUserID returns one page of the user's tasks plus the total count
// matching the filters, newest first.
func (r *TaskRepository) ListByUserID(ctx context.Context, userID int64, filters repository.TaskFilters, limit, offset int) ([]domain.Task, int, error) {
	where := ` WHERE user_id = $1`
	args := []any{userID}

	if filters.Completed != nil {
		args = append(args, *filters.Completed)
		where += ` AND completed = $` + strconv.Itoa(len(args))
	}
	if filters.Priority != "" {
		args = append(args, filters.Priority)
		where += ` AND priority = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	args = append(args, limit, offset)
	query := taskSelect + where +
		` ORDER BY created_at DESC, id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Description,
			&t.Completed,
			&t.Priority,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate task rows: %w", err)
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	return tasks, total, nil
}

// Update modifies a task owned by the given user.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, priority = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7`

	ct, err := r.db.Exec(ctx, query,
		t.Title,
		t.Description,
		t.Completed,
		t.Priority,
		t.UpdatedAt,
		t.ID,
		t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("task", t.ID)
	}

	return nil
}

// Delete removes a task owned by the given user.
func (r *TaskRepository) Delete(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	ct, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("task", id)
	}

	return nil
}

const taskSelect = `
	SELECT id, user_id, title, description, completed, priority, created_at, updated_at
	FROM tasks`
