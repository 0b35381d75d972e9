package repository

import (
	"context"

	"github.com/tasktrack/apiserver/internal/domain"
)

// TaskFilters narrows task listings. Nil/empty fields are ignored.
type TaskFilters struct {
	Completed *bool
	Priority  string
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Insert stores a new user and fills in its generated ID and timestamps.
	Insert(ctx context.Context, user *domain.User) error

	// FindByID retrieves a user by their unique identifier.
	FindByID(ctx context.Context, id int64) (*domain.User, error)

	// FindByUsername retrieves a user by their username.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByEmail retrieves a user by their email address.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error
}

// TaskRepository defines the interface for task persistence operations.
// Every read and write is scoped to the owning user.
type TaskRepository interface {
	// Insert stores a new task and fills in its generated ID and timestamps.
	Insert(ctx context.Context, task *domain.Task) error

	// FindByID retrieves a task owned by the given user. A task owned by
	// another user is reported as not found.
	FindByID(ctx context.Context, id, userID int64) (*domain.Task, error)

	// ListByUserID returns one page of the user's tasks plus the total count
	// matching the filters.
	ListByUserID(ctx context.Context, userID int64, filters TaskFilters, limit, offset int) ([]domain.Task, int, error)

	// Update modifies a task owned by the given user.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task owned by the given user.
	Delete(ctx context.Context, id, userID int64) error
}
