package core

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

var allStatuses = []models.TaskStatus{
	models.StatusBacklog,
	models.StatusAssigned,
	models.StatusCompleted,
}

// randomTasks generates tasks assigned among a small pool of developer ids.
func randomTasks(rt *rapid.T, devIDs []string) []models.Task {
	n := rapid.IntRange(0, 20).Draw(rt, "taskCount")
	tasks := make([]models.Task, 0, n)
	for i := 0; i < n; i++ {
		status := allStatuses[rapid.IntRange(0, len(allStatuses)-1).Draw(rt, fmt.Sprintf("status%d", i))]
		task := models.Task{
			ID:        fmt.Sprintf("t%d", i),
			Name:      fmt.Sprintf("Task %d", i),
			Points:    rapid.IntRange(1, 100).Draw(rt, fmt.Sprintf("points%d", i)),
			Status:    status,
			CreatedAt: time.Now().UTC(),
		}
		if status != models.StatusBacklog {
			idx := rapid.IntRange(0, len(devIDs)-1).Draw(rt, fmt.Sprintf("assignee%d", i))
			task.AssignedTo = devIDs[idx]
		}
		if status == models.StatusCompleted {
			now := time.Now().UTC()
			task.CompletedAt = &now
			task.CompletionDetails = &models.CompletionDetails{
				HoursSpent: float64(rapid.IntRange(1, 40).Draw(rt, fmt.Sprintf("hours%d", i))),
				GitCommit:  "abcdef",
				Comments:   "done",
			}
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// Property: derived developer aggregates always equal a brute-force
// recomputation over the completed tasks, regardless of board history.
func TestProperty_DerivedAggregatesMatchTasks(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		devIDs := []string{"dev-a", "dev-b", "dev-c"}

		state := models.EmptyState()
		for _, id := range devIDs {
			state.Developers = append(state.Developers, models.Developer{ID: id, Name: "Developer " + id})
		}
		state.Tasks = randomTasks(rt, devIDs)

		b := NewBoard(state)
		got := b.State()

		for _, dev := range got.Developers {
			var points int
			var count int
			var hours float64
			for _, task := range got.Tasks {
				if task.Status != models.StatusCompleted || task.AssignedTo != dev.ID {
					continue
				}
				points += task.Points
				count++
				if task.CompletionDetails != nil {
					hours += task.CompletionDetails.HoursSpent
				}
			}
			if dev.TotalPoints != points {
				t.Fatalf("developer %s: points %d, want %d", dev.ID, dev.TotalPoints, points)
			}
			if dev.CompletedTasks != count {
				t.Fatalf("developer %s: completed %d, want %d", dev.ID, dev.CompletedTasks, count)
			}
			if dev.TotalHours != hours {
				t.Fatalf("developer %s: hours %v, want %v", dev.ID, dev.TotalHours, hours)
			}
		}
	})
}

// Property: after deleting a developer, none of their unfinished tasks
// remain assigned, every completed task keeps its history, and the
// developer record never reappears.
func TestProperty_DeleteDeveloperInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		devIDs := []string{"dev-a", "dev-b"}

		state := models.EmptyState()
		for _, id := range devIDs {
			state.Developers = append(state.Developers, models.Developer{ID: id, Name: "Developer " + id})
		}
		state.Tasks = randomTasks(rt, devIDs)

		b := NewBoard(state)
		victim := devIDs[rapid.IntRange(0, len(devIDs)-1).Draw(rt, "victim")]
		b.DeleteDeveloper(victim)

		got := b.State()
		for _, dev := range got.Developers {
			if dev.ID == victim {
				t.Fatalf("deleted developer %s reappeared", victim)
			}
		}
		for _, task := range got.Tasks {
			if task.Status == models.StatusCompleted {
				continue
			}
			if task.AssignedTo == victim {
				t.Fatalf("task %s still assigned to deleted developer %s (status %s)",
					task.ID, victim, task.Status)
			}
		}
	})
}

// Property: a sweep never touches completed tasks and leaves the board
// with no orphaned assignments.
func TestProperty_SweepClearsAllOrphans(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		devIDs := []string{"dev-a", "ghost-1", "ghost-2"}

		state := models.EmptyState()
		// Only dev-a exists; ghost assignments are orphans.
		state.Developers = []models.Developer{{ID: "dev-a", Name: "Developer A"}}
		state.Tasks = randomTasks(rt, devIDs)

		b := NewBoard(state)
		before := b.State()
		b.ReconcileOrphans()
		after := b.State()

		known := map[string]bool{"dev-a": true}
		for _, task := range after.Tasks {
			if task.Status == models.StatusCompleted {
				continue
			}
			if task.AssignedTo != "" && !known[task.AssignedTo] {
				t.Fatalf("task %s still orphaned on %s after sweep", task.ID, task.AssignedTo)
			}
		}

		// Completed tasks must be byte-for-byte untouched.
		for i, task := range after.Tasks {
			if task.Status != models.StatusCompleted {
				continue
			}
			if task.AssignedTo != before.Tasks[i].AssignedTo {
				t.Fatalf("sweep changed completed task %s assignee from %q to %q",
					task.ID, before.Tasks[i].AssignedTo, task.AssignedTo)
			}
		}
	})
}
