package repositories

import (
	"context"
	"time"

	"github.com/splittab/split_tab_app/internal/core/domain"
)

// TaskReader defines read operations for task data
type TaskReader interface {
	// FindTaskByID retrieves a specific task by its unique identifier.
	FindTaskByID(ctx context.Context, taskID string) (*domain.Task, error)

	// ListTasksByGroupID retrieves all tasks of a group, optionally filtered by status.
	ListTasksByGroupID(ctx context.Context, groupID string, status *domain.TaskStatus) ([]domain.Task, error)

	// ListTasksByAssigneeID retrieves all tasks assigned to a user across groups.
	ListTasksByAssigneeID(ctx context.Context, assigneeID string, status *domain.TaskStatus) ([]domain.Task, error)
}

// TaskWriter defines write operations for task data
type TaskWriter interface {
	// SaveTask persists a new task.
	SaveTask(ctx context.Context, task domain.Task) error

	// UpdateTaskStatus sets the status of a task.
	UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus, updatedByUserID string, updatedAt time.Time) error
}

// TaskRepositoryFacade combines all task-related repository interfaces
type TaskRepositoryFacade interface {
	TaskReader
	TaskWriter
}

// TaskRepositoryWithTx extends TaskRepositoryFacade with transaction capabilities
type TaskRepositoryWithTx interface {
	TaskRepositoryFacade
	TransactionManager
}
