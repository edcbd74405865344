package services

import (
	"context"

	"github.com/splittab/split_tab_app/internal/core/domain"
	"github.com/splittab/split_tab_app/internal/dto"
)

// TaskReaderSvc defines read operations for task data
type TaskReaderSvc interface {
	// GetTaskByID retrieves a task; active members only.
	GetTaskByID(ctx context.Context, groupID string, taskID string, requestingUserID string) (*domain.Task, error)

	// ListGroupTasks retrieves a group's tasks, optionally filtered by status.
	ListGroupTasks(ctx context.Context, groupID string, requestingUserID string, params dto.ListTasksParams) ([]domain.Task, error)

	// ListAssignedTasks retrieves the tasks assigned to the requesting user
	// across all groups, optionally filtered by status.
	ListAssignedTasks(ctx context.Context, requestingUserID string, params dto.ListTasksParams) ([]domain.Task, error)
}

// TaskWriterSvc defines write operations for task data
type TaskWriterSvc interface {
	// CreateTask assigns a task to an active member of the group.
	CreateTask(ctx context.Context, groupID string, req dto.CreateTaskRequest, assignerUserID string) (*domain.Task, error)

	// UpdateTaskStatus transitions a PENDING task. FINISHED and DECLINED are the
	// assignee's moves; CANCELLED is the assigner's.
	UpdateTaskStatus(ctx context.Context, groupID string, taskID string, status domain.TaskStatus, requestingUserID string) (*domain.Task, error)
}

// TaskSvcFacade combines all task-related service interfaces
type TaskSvcFacade interface {
	TaskReaderSvc
	TaskWriterSvc
}
