package domain

import "time"

// TaskStatus is the state of a representative work item.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskOverdue   TaskStatus = "overdue"
)

// Task represents a representative-owned activity item.
type Task struct {
	ID               int64      `json:"id"`
	RepresentativeID int64      `json:"representative_id"`
	CustomerID       *int64     `json:"customer_id,omitempty"`
	Status           TaskStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskCompleted
}

// CompletionHours is the elapsed time between creation and completion. The
// second return is false for tasks that are not completed or lack a timestamp.
func (t *Task) CompletionHours() (float64, bool) {
	if !t.IsCompleted() || t.CompletedAt == nil {
		return 0, false
	}
	return t.CompletedAt.Sub(t.CreatedAt).Hours(), true
}
