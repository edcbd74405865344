package domain

import "time"

// TaskStatus is the lifecycle state of a group task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskFinished  TaskStatus = "FINISHED"
	TaskDeclined  TaskStatus = "DECLINED"
	TaskCancelled TaskStatus = "CANCELLED"
)

// Task is a chore assigned by one group member to another.
type Task struct {
	TaskID      string     `json:"taskID"`  // Primary Key (UUID)
	GroupID     string     `json:"groupID"` // FK -> groups.group_id
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	Status      TaskStatus `json:"status"`
	AssignerID  string     `json:"assignerID"` // FK -> users.user_id
	AssigneeID  string     `json:"assigneeID"` // FK -> users.user_id
	AuditFields
}
