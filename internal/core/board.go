// Package core contains the business logic for the bounty board:
// the state reconciler, developer aggregate derivation, auto-provision
// naming, form validation, the debounced writer, and configuration.
package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// DefaultSweepInterval is how often the consistency sweep reconciles
// orphaned task assignments.
const DefaultSweepInterval = 30 * time.Second

// TaskPatch describes a partial update to a task. Nil fields are left
// unchanged. Setting AssignedTo to a pointer to the empty string clears
// the assignment.
type TaskPatch struct {
	Name              *string
	Description       *string
	Points            *int
	Status            *models.TaskStatus
	AssignedTo        *string
	CompletedAt       *time.Time
	CompletionDetails *models.CompletionDetails
}

// Board owns the authoritative in-memory board state. All mutation
// methods rebuild the affected collections rather than editing in place,
// re-derive developer aggregates, and then publish the new state to
// subscribers. Board is safe for concurrent use.
type Board struct {
	mu    sync.RWMutex
	state models.AppState
	subs  []func(models.AppState)
}

// NewBoard creates a Board holding the given initial state.
func NewBoard(initial models.AppState) *Board {
	st := initial.Clone()
	if st.Tasks == nil {
		st.Tasks = []models.Task{}
	}
	if st.Developers == nil {
		st.Developers = []models.Developer{}
	}
	st.Developers = deriveDevelopers(st.Tasks, st.Developers)
	return &Board{state: st}
}

// State returns a copy of the current board state.
func (b *Board) State() models.AppState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Clone()
}

// Subscribe registers fn to be called with a copy of the new state after
// every mutation. Subscribers are invoked synchronously, in registration
// order, while no lock is held.
func (b *Board) Subscribe(fn func(models.AppState)) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// publish must be called without holding b.mu.
func (b *Board) publish(state models.AppState) {
	b.mu.RLock()
	subs := make([]func(models.AppState), len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(state.Clone())
	}
}

// setLocked derives aggregates and installs the next state. Caller holds
// b.mu for writing and publishes the returned state after unlocking, so
// concurrent mutations serialize their read-modify-write instead of
// computing from a shared snapshot and losing the earlier commit.
func (b *Board) setLocked(tasks []models.Task, developers []models.Developer) models.AppState {
	next := models.AppState{
		Tasks:      tasks,
		Developers: deriveDevelopers(tasks, developers),
	}
	b.state = next
	return next
}

// AddTask appends a task to the board. If the task is assigned to a
// developer id that does not exist yet, a developer record is provisioned
// with a generated placeholder name; the provisioned record is returned
// so callers can surface the implicit creation rather than treating it as
// a hidden side effect.
func (b *Board) AddTask(task models.Task) (*models.Developer, error) {
	b.mu.Lock()
	for _, t := range b.state.Tasks {
		if t.ID == task.ID {
			b.mu.Unlock()
			return nil, fmt.Errorf("adding task: task %s already exists", task.ID)
		}
	}
	tasks := append(cloneTasks(b.state.Tasks), task.Clone())
	developers, provisioned := provisionAssignee(b.state.Developers, task.AssignedTo)
	next := b.setLocked(tasks, developers)
	b.mu.Unlock()

	b.publish(next)
	return provisioned, nil
}

// UpdateTask merges the patch into the task with the given id. An unknown
// id is a no-op. If the patch assigns the task to an unknown developer id,
// a developer record is provisioned and returned.
func (b *Board) UpdateTask(id string, patch TaskPatch) (*models.Developer, error) {
	b.mu.Lock()
	idx := -1
	for i, t := range b.state.Tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return nil, nil
	}

	tasks := cloneTasks(b.state.Tasks)
	applyPatch(&tasks[idx], patch)

	developers := b.state.Developers
	var provisioned *models.Developer
	if patch.AssignedTo != nil && *patch.AssignedTo != "" {
		developers, provisioned = provisionAssignee(developers, *patch.AssignedTo)
	}
	next := b.setLocked(tasks, developers)
	b.mu.Unlock()

	b.publish(next)
	return provisioned, nil
}

// DeleteTask removes the task with the given id. Unknown ids are ignored.
func (b *Board) DeleteTask(id string) {
	b.mu.Lock()
	tasks := make([]models.Task, 0, len(b.state.Tasks))
	for _, t := range b.state.Tasks {
		if t.ID != id {
			tasks = append(tasks, t.Clone())
		}
	}
	next := b.setLocked(tasks, b.state.Developers)
	b.mu.Unlock()

	b.publish(next)
}

// AddDeveloper adds an explicitly created developer. A duplicate id is
// rejected and leaves the board untouched.
func (b *Board) AddDeveloper(dev models.Developer) error {
	b.mu.Lock()
	for _, d := range b.state.Developers {
		if d.ID == dev.ID {
			b.mu.Unlock()
			return fmt.Errorf("adding developer: developer %s already exists", dev.ID)
		}
	}
	developers := append(cloneDevelopers(b.state.Developers), dev)
	next := b.setLocked(cloneTasks(b.state.Tasks), developers)
	b.mu.Unlock()

	b.publish(next)
	return nil
}

// UpdateDeveloper upserts a developer by id. Only the name is taken from
// the argument; aggregate fields are always re-derived from tasks.
func (b *Board) UpdateDeveloper(dev models.Developer) {
	b.mu.Lock()
	developers := cloneDevelopers(b.state.Developers)
	found := false
	for i := range developers {
		if developers[i].ID == dev.ID {
			developers[i].Name = dev.Name
			found = true
			break
		}
	}
	if !found {
		developers = append(developers, dev)
	}
	next := b.setLocked(cloneTasks(b.state.Tasks), developers)
	b.mu.Unlock()

	b.publish(next)
}

// DeleteDeveloper removes a developer. Every non-completed task assigned
// to that developer returns to the backlog with its assignment cleared.
// Completed tasks keep their historical assignedTo so payout records
// survive the deletion.
func (b *Board) DeleteDeveloper(id string) {
	b.mu.Lock()
	developers := make([]models.Developer, 0, len(b.state.Developers))
	for _, d := range b.state.Developers {
		if d.ID != id {
			developers = append(developers, d)
		}
	}
	tasks := cloneTasks(b.state.Tasks)
	for i := range tasks {
		if tasks[i].AssignedTo == id && tasks[i].Status != models.StatusCompleted {
			tasks[i].AssignedTo = ""
			tasks[i].Status = models.StatusBacklog
		}
	}
	next := b.setLocked(tasks, developers)
	b.mu.Unlock()

	b.publish(next)
}

// Replace swaps in a whole new state (the snapshot-import path) and
// re-derives aggregates.
func (b *Board) Replace(state models.AppState) {
	st := state.Clone()
	if st.Tasks == nil {
		st.Tasks = []models.Task{}
	}
	if st.Developers == nil {
		st.Developers = []models.Developer{}
	}

	b.mu.Lock()
	next := b.setLocked(st.Tasks, st.Developers)
	b.mu.Unlock()

	b.publish(next)
}

// TasksByStatus returns copies of all tasks in the given status.
func (b *Board) TasksByStatus(status models.TaskStatus) []models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []models.Task
	for _, t := range b.state.Tasks {
		if t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out
}

// TasksByDeveloper returns copies of all tasks assigned to the developer.
func (b *Board) TasksByDeveloper(id string) []models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []models.Task
	for _, t := range b.state.Tasks {
		if t.AssignedTo == id {
			out = append(out, t.Clone())
		}
	}
	return out
}

// DeveloperByID returns the developer with the given id, or nil.
func (b *Board) DeveloperByID(id string) *models.Developer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, d := range b.state.Developers {
		if d.ID == id {
			dev := d
			return &dev
		}
	}
	return nil
}

// TaskByID returns the task with the given id, or nil.
func (b *Board) TaskByID(id string) *models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.state.Tasks {
		if t.ID == id {
			task := t.Clone()
			return &task
		}
	}
	return nil
}

// IsDeveloperNameAvailable reports whether no developer other than
// excludeID already uses the name, compared case-insensitively.
func (b *Board) IsDeveloperNameAvailable(name, excludeID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return nameAvailable(b.state.Developers, name, excludeID)
}

// ReconcileOrphans resets any non-completed task whose assignedTo names a
// developer no longer on the board. It compensates for paths that removed
// a developer without going through DeleteDeveloper (for example a
// concurrent client writing a smaller developer list). It reports how
// many tasks were reset.
func (b *Board) ReconcileOrphans() int {
	b.mu.Lock()
	known := make(map[string]bool, len(b.state.Developers))
	for _, d := range b.state.Developers {
		known[d.ID] = true
	}
	tasks := cloneTasks(b.state.Tasks)
	reset := 0
	for i := range tasks {
		if tasks[i].AssignedTo != "" && tasks[i].Status != models.StatusCompleted && !known[tasks[i].AssignedTo] {
			tasks[i].AssignedTo = ""
			tasks[i].Status = models.StatusBacklog
			reset++
		}
	}
	if reset == 0 {
		b.mu.Unlock()
		return 0
	}
	next := b.setLocked(tasks, b.state.Developers)
	b.mu.Unlock()

	b.publish(next)
	return reset
}

// RunSweeper runs ReconcileOrphans on the given interval until the
// context is cancelled. A non-positive interval uses the default.
func (b *Board) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.ReconcileOrphans()
		}
	}
}

// provisionAssignee returns the developer list with a record for the
// assignee id, provisioning one when the id is unknown. The returned
// pointer is non-nil only when a record was provisioned.
func provisionAssignee(developers []models.Developer, assignee string) ([]models.Developer, *models.Developer) {
	if assignee == "" {
		return cloneDevelopers(developers), nil
	}
	for _, d := range developers {
		if d.ID == assignee {
			return cloneDevelopers(developers), nil
		}
	}
	dev := models.Developer{
		ID:   assignee,
		Name: generateDeveloperName(assignee, developers),
	}
	return append(cloneDevelopers(developers), dev), &dev
}

func applyPatch(t *models.Task, patch TaskPatch) {
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Points != nil {
		t.Points = *patch.Points
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = *patch.AssignedTo
	}
	if patch.CompletedAt != nil {
		ts := *patch.CompletedAt
		t.CompletedAt = &ts
	}
	if patch.CompletionDetails != nil {
		cd := *patch.CompletionDetails
		t.CompletionDetails = &cd
	}
}

func nameAvailable(developers []models.Developer, name, excludeID string) bool {
	for _, d := range developers {
		if d.ID == excludeID {
			continue
		}
		if strings.EqualFold(d.Name, name) {
			return false
		}
	}
	return true
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func cloneDevelopers(developers []models.Developer) []models.Developer {
	out := make([]models.Developer, len(developers))
	copy(out, developers)
	return out
}
