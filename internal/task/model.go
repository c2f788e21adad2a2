package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPriority = errors.New("priority must be one of Low, Medium, High")
	ErrInvalidStatus   = errors.New("status must be one of Pending, In Progress, Completed")
)

// Priority is the task priority level.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// IsValid reports whether p is one of the known priority values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is the task lifecycle status.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a single task owned by exactly one user. The owner is never
// serialized; clients only ever see their own tasks.
type Task struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	DueDate     *Date     `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput holds the validated fields for a new task. Defaults are
// applied by the service before the store sees it.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    Priority
	Status      Status
	DueDate     *Date
}

// UpdatePatch holds a partial update. Nil fields are left untouched.
// DueDateSet distinguishes "clear the due date" (true, nil DueDate)
// from "leave it alone" (false).
type UpdatePatch struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *Priority
	Status      *Status
	DueDate     *Date
	DueDateSet  bool
}
