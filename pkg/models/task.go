package models

import "time"

// TaskStatus represents the current lifecycle state of a task and is the
// single source of truth for which board column the task sits in.
type TaskStatus string

const (
	StatusBacklog   TaskStatus = "backlog"
	StatusAssigned  TaskStatus = "assigned"
	StatusCompleted TaskStatus = "completed"
)

// CompletionDetails records how a task was finished. Present iff the
// task's status is completed.
type CompletionDetails struct {
	HoursSpent float64 `json:"hoursSpent"`
	GitCommit  string  `json:"gitCommit"`
	Comments   string  `json:"comments"`
}

// Task represents one unit of work on the board. The bounty in Points is
// credited to whichever developer completes the task.
type Task struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Points            int                `json:"points"`
	Status            TaskStatus         `json:"status"`
	AssignedTo        string             `json:"assignedTo,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	CompletedAt       *time.Time         `json:"completedAt,omitempty"`
	CompletionDetails *CompletionDetails `json:"completionDetails,omitempty"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		out.CompletedAt = &ts
	}
	if t.CompletionDetails != nil {
		cd := *t.CompletionDetails
		out.CompletionDetails = &cd
	}
	return out
}
