package storage

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

func taskGenerator(i int) *rapid.Generator[models.Task] {
	return rapid.Custom(func(rt *rapid.T) models.Task {
		statuses := []models.TaskStatus{models.StatusBacklog, models.StatusAssigned, models.StatusCompleted}
		status := statuses[rapid.IntRange(0, 2).Draw(rt, "status")]

		task := models.Task{
			ID:          fmt.Sprintf("t%d", i),
			Name:        rapid.StringMatching(`[A-Za-z ]{1,30}`).Draw(rt, "name"),
			Description: rapid.StringMatching(`[A-Za-z ]{0,50}`).Draw(rt, "description"),
			Points:      rapid.IntRange(1, 100).Draw(rt, "points"),
			Status:      status,
			CreatedAt:   time.Unix(rapid.Int64Range(0, 2_000_000_000).Draw(rt, "createdAt"), 0).UTC(),
		}
		if status != models.StatusBacklog {
			task.AssignedTo = rapid.StringMatching(`dev-[a-z]{1,8}`).Draw(rt, "assignedTo")
		}
		if status == models.StatusCompleted {
			done := task.CreatedAt.Add(time.Hour)
			task.CompletedAt = &done
			task.CompletionDetails = &models.CompletionDetails{
				HoursSpent: float64(rapid.IntRange(1, 160).Draw(rt, "hours")),
				GitCommit:  rapid.StringMatching(`[a-f0-9]{6,40}`).Draw(rt, "commit"),
				Comments:   rapid.StringMatching(`[A-Za-z ]{1,40}`).Draw(rt, "comments"),
			}
		}
		return task
	})
}

func stateGenerator() *rapid.Generator[models.AppState] {
	return rapid.Custom(func(rt *rapid.T) models.AppState {
		state := models.EmptyState()
		nTasks := rapid.IntRange(0, 15).Draw(rt, "taskCount")
		for i := 0; i < nTasks; i++ {
			state.Tasks = append(state.Tasks, taskGenerator(i).Draw(rt, fmt.Sprintf("task%d", i)))
		}
		nDevs := rapid.IntRange(0, 5).Draw(rt, "devCount")
		for i := 0; i < nDevs; i++ {
			state.Developers = append(state.Developers, models.Developer{
				ID:             fmt.Sprintf("dev-%d", i),
				Name:           rapid.StringMatching(`[A-Za-z ]{1,20}`).Draw(rt, fmt.Sprintf("devName%d", i)),
				TotalPoints:    rapid.IntRange(0, 1000).Draw(rt, fmt.Sprintf("devPoints%d", i)),
				CompletedTasks: rapid.IntRange(0, 50).Draw(rt, fmt.Sprintf("devCompleted%d", i)),
				TotalHours:     float64(rapid.IntRange(0, 2000).Draw(rt, fmt.Sprintf("devHours%d", i))),
			})
		}
		return state
	})
}

// Property: importing an exported snapshot reproduces the state exactly.
func TestProperty_SnapshotRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		want := stateGenerator().Draw(rt, "state")

		data, err := ExportSnapshot(want)
		if err != nil {
			t.Fatalf("ExportSnapshot failed: %v", err)
		}
		got, err := ImportSnapshot(data)
		if err != nil {
			t.Fatalf("ImportSnapshot failed: %v", err)
		}

		if len(got.Tasks) != len(want.Tasks) {
			t.Fatalf("task count changed: %d -> %d", len(want.Tasks), len(got.Tasks))
		}
		for i := range want.Tasks {
			w, g := want.Tasks[i], got.Tasks[i]
			if g.ID != w.ID || g.Name != w.Name || g.Description != w.Description ||
				g.Points != w.Points || g.Status != w.Status || g.AssignedTo != w.AssignedTo {
				t.Fatalf("task %d changed: %+v -> %+v", i, w, g)
			}
			if !g.CreatedAt.Equal(w.CreatedAt) {
				t.Fatalf("task %d createdAt changed: %v -> %v", i, w.CreatedAt, g.CreatedAt)
			}
			if (w.CompletedAt == nil) != (g.CompletedAt == nil) {
				t.Fatalf("task %d completedAt presence changed", i)
			}
			if w.CompletedAt != nil && !g.CompletedAt.Equal(*w.CompletedAt) {
				t.Fatalf("task %d completedAt changed: %v -> %v", i, w.CompletedAt, g.CompletedAt)
			}
			if (w.CompletionDetails == nil) != (g.CompletionDetails == nil) {
				t.Fatalf("task %d completion details presence changed", i)
			}
			if w.CompletionDetails != nil && *g.CompletionDetails != *w.CompletionDetails {
				t.Fatalf("task %d completion details changed: %+v -> %+v",
					i, w.CompletionDetails, g.CompletionDetails)
			}
		}

		if len(got.Developers) != len(want.Developers) {
			t.Fatalf("developer count changed: %d -> %d", len(want.Developers), len(got.Developers))
		}
		for i := range want.Developers {
			if got.Developers[i] != want.Developers[i] {
				t.Fatalf("developer %d changed: %+v -> %+v", i, want.Developers[i], got.Developers[i])
			}
		}
	})
}
