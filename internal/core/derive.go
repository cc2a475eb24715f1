package core

import "github.com/valter-silva-au/bounty-board/pkg/models"

// deriveDevelopers recomputes every developer's aggregate fields from the
// task list. Aggregates are a pure function of (tasks, developer id):
// totalPoints, completedTasks, and totalHours are summed over tasks
// assigned to that developer with status completed. Developers with no
// completed tasks keep zeroed aggregates. Developer records are never
// created or removed here; that happens only through explicit add/delete
// operations and task-assignment provisioning, so deleting a developer
// with completed history does not resurrect the record on the next
// derivation pass.
func deriveDevelopers(tasks []models.Task, developers []models.Developer) []models.Developer {
	type agg struct {
		points int
		count  int
		hours  float64
	}
	sums := make(map[string]agg, len(developers))
	for _, t := range tasks {
		if t.Status != models.StatusCompleted || t.AssignedTo == "" {
			continue
		}
		a := sums[t.AssignedTo]
		a.points += t.Points
		a.count++
		if t.CompletionDetails != nil {
			a.hours += t.CompletionDetails.HoursSpent
		}
		sums[t.AssignedTo] = a
	}

	out := make([]models.Developer, len(developers))
	for i, d := range developers {
		a := sums[d.ID]
		out[i] = models.Developer{
			ID:             d.ID,
			Name:           d.Name,
			TotalPoints:    a.points,
			CompletedTasks: a.count,
			TotalHours:     a.hours,
		}
	}
	return out
}
