package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/authz"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/dto"
	"github.com/splittab/split_tab_app/internal/middleware"
)

var (
	ErrTaskNotPending    = errors.New("task is not in a pending state")
	ErrAssigneeNotMember = errors.New("assignee is not an active member of the group")
	ErrNotTaskParty      = errors.New("only the assigner or assignee may change this task")
)

// taskService provides group task assignment and status transitions.
type taskService struct {
	taskRepo    portsrepo.TaskRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	groupRepo   portsrepo.GroupRepositoryFacade
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo portsrepo.TaskRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, groupRepo portsrepo.GroupRepositoryFacade) portssvc.TaskSvcFacade {
	return &taskService{
		taskRepo:    taskRepo,
		accountRepo: accountRepo,
		groupRepo:   groupRepo,
	}
}

// Ensure taskService implements the portssvc.TaskSvcFacade interface
var _ portssvc.TaskSvcFacade = (*taskService)(nil)

func (s *taskService) loadMembership(ctx context.Context, groupID string) ([]domain.Account, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group %s: %w", groupID, err)
	}
	if !group.Enabled {
		return nil, apperrors.ErrNotFound
	}
	accounts, err := s.accountRepo.FindAccountsByGroupID(ctx, groupID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for group %s: %w", groupID, err)
	}
	return accounts, nil
}

// CreateTask assigns a task to an active member of the group.
func (s *taskService) CreateTask(ctx context.Context, groupID string, req dto.CreateTaskRequest, assignerUserID string) (*domain.Task, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.loadMembership(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(assignerUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}
	if !authz.IsActiveMember(req.AssigneeID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAssigneeNotMember)
	}

	now := time.Now().UTC()
	task := domain.Task{
		TaskID:      uuid.NewString(),
		GroupID:     groupID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Status:      domain.TaskPending,
		AssignerID:  assignerUserID,
		AssigneeID:  req.AssigneeID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     assignerUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: assignerUserID,
		},
	}

	if err := s.taskRepo.SaveTask(ctx, task); err != nil {
		logger.Error("Failed to save task", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	logger.Info("Task created successfully", slog.String("task_id", task.TaskID), slog.String("group_id", groupID))
	return &task, nil
}

// GetTaskByID retrieves a task; active members only.
func (s *taskService) GetTaskByID(ctx context.Context, groupID string, taskID string, requestingUserID string) (*domain.Task, error) {
	accounts, err := s.loadMembership(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	task, err := s.taskRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task %s: %w", taskID, err)
	}
	if task.GroupID != groupID {
		return nil, apperrors.ErrNotFound
	}
	return task, nil
}

// ListGroupTasks retrieves a group's tasks, optionally filtered by status.
func (s *taskService) ListGroupTasks(ctx context.Context, groupID string, requestingUserID string, params dto.ListTasksParams) ([]domain.Task, error) {
	accounts, err := s.loadMembership(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	tasks, err := s.taskRepo.ListTasksByGroupID(ctx, groupID, params.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for group %s: %w", groupID, err)
	}
	return tasks, nil
}

// ListAssignedTasks retrieves the requesting user's tasks across all groups.
func (s *taskService) ListAssignedTasks(ctx context.Context, requestingUserID string, params dto.ListTasksParams) ([]domain.Task, error) {
	tasks, err := s.taskRepo.ListTasksByAssigneeID(ctx, requestingUserID, params.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for user %s: %w", requestingUserID, err)
	}
	return tasks, nil
}

// UpdateTaskStatus transitions a PENDING task. FINISHED and DECLINED are the
// assignee's moves; CANCELLED is the assigner's.
func (s *taskService) UpdateTaskStatus(ctx context.Context, groupID string, taskID string, status domain.TaskStatus, requestingUserID string) (*domain.Task, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.loadMembership(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	task, err := s.taskRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task %s: %w", taskID, err)
	}
	if task.GroupID != groupID {
		return nil, apperrors.ErrNotFound
	}
	if task.Status != domain.TaskPending {
		return nil, fmt.Errorf("%w: %s (current status %s)", apperrors.ErrConflict, ErrTaskNotPending, task.Status)
	}

	switch status {
	case domain.TaskFinished, domain.TaskDeclined:
		if task.AssigneeID != requestingUserID {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotTaskParty)
		}
	case domain.TaskCancelled:
		if task.AssignerID != requestingUserID {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotTaskParty)
		}
	default:
		return nil, fmt.Errorf("%w: invalid target status %s", apperrors.ErrValidation, status)
	}

	now := time.Now().UTC()
	if err := s.taskRepo.UpdateTaskStatus(ctx, taskID, status, requestingUserID, now); err != nil {
		logger.Error("Failed to update task status", slog.String("error", err.Error()), slog.String("task_id", taskID))
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	task.Status = status
	task.LastUpdatedAt = now
	task.LastUpdatedBy = requestingUserID

	logger.Info("Task status updated", slog.String("task_id", taskID), slog.String("status", string(status)))
	return task, nil
}
