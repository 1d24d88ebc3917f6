package domain

import (
	"context"
	"errors"
	"time"
)

// ErrTaskNotFound is returned by TaskRepository.BulkUpdateTasks when an
// entry targets a task that does not exist or is not owned by the caller.
var ErrTaskNotFound = errors.New("task not found")

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Task is a unit of work owned by a user.
type Task struct {
	ID                int64        `json:"id"`
	UserID            int64        `json:"user_id"`
	Title             string       `json:"title"`
	Description       *string      `json:"description,omitempty"`
	Priority          TaskPriority `json:"priority"`
	Status            TaskStatus   `json:"status"`
	DueDate           *time.Time   `json:"due_date,omitempty"`
	EstimatedDuration *int         `json:"estimated_duration,omitempty"` // minutes
	ActualDuration    *int         `json:"actual_duration,omitempty"`    // minutes
	AIGenerated       bool         `json:"ai_generated"`
	Tags              []string     `json:"tags,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         *time.Time   `json:"updated_at,omitempty"`
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title             *string       `json:"title,omitempty"`
	Description       *string       `json:"description,omitempty"`
	Priority          *TaskPriority `json:"priority,omitempty"`
	Status            *TaskStatus   `json:"status,omitempty"`
	DueDate           *time.Time    `json:"due_date,omitempty"`
	EstimatedDuration *int          `json:"estimated_duration,omitempty"`
	ActualDuration    *int          `json:"actual_duration,omitempty"`
	Tags              *[]string     `json:"tags,omitempty"`
}

// TaskBulkEntry pairs a task id with a partial update for batch application.
type TaskBulkEntry struct {
	ID      int64      `json:"id"`
	Updates TaskUpdate `json:"updates"`
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status   *TaskStatus
	Priority *TaskPriority
}

// TaskRepository is the port for task persistence.
type TaskRepository interface {
	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, userID, id int64) (*Task, error)
	ListTasks(ctx context.Context, userID int64, f TaskFilter, offset, limit int) ([]Task, int, error)
	UpdateTask(ctx context.Context, userID, id int64, u TaskUpdate) (*Task, error)
	DeleteTask(ctx context.Context, userID, id int64) (bool, error)
	// BulkUpdateTasks applies every entry atomically: either all entries
	// match a task owned by userID and all are applied, or nothing is.
	BulkUpdateTasks(ctx context.Context, userID int64, entries []TaskBulkEntry) ([]Task, error)
}
