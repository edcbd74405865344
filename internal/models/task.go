package models

import "time"

// TaskStatus mirrors the domain task statuses.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskFinished  TaskStatus = "FINISHED"
	TaskDeclined  TaskStatus = "DECLINED"
	TaskCancelled TaskStatus = "CANCELLED"
)

// Task row in the tasks table.
type Task struct {
	TaskID      string     `db:"task_id"`
	GroupID     string     `db:"group_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Deadline    time.Time  `db:"deadline"`
	Status      TaskStatus `db:"status"`
	AssignerID  string     `db:"assigner_id"`
	AssigneeID  string     `db:"assignee_id"`
	AuditFields
}
