package dto

import (
	"time"

	"github.com/splittab/split_tab_app/internal/core/domain"
)

// CreateTaskRequest defines the data needed to create a task.
type CreateTaskRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	AssigneeID  string    `json:"assigneeID" binding:"required"`
}

// UpdateTaskStatusRequest defines the data for a task status change.
type UpdateTaskStatusRequest struct {
	Status domain.TaskStatus `json:"status" binding:"required,oneof=FINISHED DECLINED CANCELLED"`
}

// TaskResponse defines the data returned for a task.
type TaskResponse struct {
	TaskID      string            `json:"taskID"`
	GroupID     string            `json:"groupID"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Deadline    time.Time         `json:"deadline"`
	Status      domain.TaskStatus `json:"status"`
	AssignerID  string            `json:"assignerID"`
	AssigneeID  string            `json:"assigneeID"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ToTaskResponse converts a domain.Task to TaskResponse DTO
func ToTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		TaskID:      t.TaskID,
		GroupID:     t.GroupID,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline,
		Status:      t.Status,
		AssignerID:  t.AssignerID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
	}
}

// ListTasksParams defines query parameters for listing tasks.
type ListTasksParams struct {
	Status *domain.TaskStatus `form:"status" binding:"omitempty,oneof=PENDING FINISHED DECLINED CANCELLED"`
}

// ListTasksResponse wraps the list of tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// ToListTasksResponse converts a slice of domain.Task to DTO.
func ToListTasksResponse(ts []domain.Task) ListTasksResponse {
	list := make([]TaskResponse, len(ts))
	for i, t := range ts {
		list[i] = ToTaskResponse(&t)
	}
	return ListTasksResponse{Tasks: list}
}
