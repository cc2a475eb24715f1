package models

// Developer represents a team member with a column on the board.
// TotalPoints, CompletedTasks, and TotalHours are aggregates recomputed
// from the task list after every mutation; they are never independently
// trusted.
type Developer struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	TotalPoints    int     `json:"totalPoints"`
	CompletedTasks int     `json:"completedTasks"`
	TotalHours     float64 `json:"totalHours"`
}
