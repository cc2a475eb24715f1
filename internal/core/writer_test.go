package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// countingSaver records every state it is asked to persist.
type countingSaver struct {
	mu     sync.Mutex
	states []models.AppState
	err    error
}

func (s *countingSaver) Save(_ context.Context, state models.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
	return s.err
}

func (s *countingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *countingSaver) last() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[len(s.states)-1]
}

func stateWithTasks(names ...string) models.AppState {
	st := models.EmptyState()
	for i, n := range names {
		st.Tasks = append(st.Tasks, models.Task{
			ID: n, Name: n, Points: i + 1,
			Status: models.StatusBacklog, CreatedAt: time.Now().UTC(),
		})
	}
	return st
}

func TestDebounceCollapsesBurst(t *testing.T) {
	saver := &countingSaver{}
	w := NewDebouncedWriter(saver, 30*time.Millisecond, nil)
	defer func() { _ = w.Close(context.Background()) }()

	w.Notify(stateWithTasks("a"))
	w.Notify(stateWithTasks("a", "b"))
	w.Notify(stateWithTasks("a", "b", "c"))

	// Inside the window nothing has been written yet.
	if saver.count() != 0 {
		t.Fatalf("save fired inside the debounce window: %d saves", saver.count())
	}

	deadline := time.Now().Add(2 * time.Second)
	for saver.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if saver.count() != 1 {
		t.Fatalf("burst should collapse into one save, got %d", saver.count())
	}
	if got := saver.last(); len(got.Tasks) != 3 {
		t.Fatalf("last value must win: saved %d tasks, want 3", len(got.Tasks))
	}
}

func TestForceSaveCancelsPending(t *testing.T) {
	saver := &countingSaver{}
	w := NewDebouncedWriter(saver, 50*time.Millisecond, nil)
	defer func() { _ = w.Close(context.Background()) }()

	w.Notify(stateWithTasks("pending"))
	if err := w.ForceSave(context.Background(), stateWithTasks("forced", "now")); err != nil {
		t.Fatalf("ForceSave failed: %v", err)
	}

	if saver.count() != 1 {
		t.Fatalf("expected exactly one save, got %d", saver.count())
	}
	if got := saver.last(); len(got.Tasks) != 2 {
		t.Fatalf("forced state must win, saved %d tasks", len(got.Tasks))
	}

	// The pending debounce must not fire later.
	time.Sleep(100 * time.Millisecond)
	if saver.count() != 1 {
		t.Fatalf("cancelled debounce still fired: %d saves", saver.count())
	}

	if w.LastSavedAt().IsZero() {
		t.Fatal("LastSavedAt should be set after a successful save")
	}
}

func TestCloseFlushesPending(t *testing.T) {
	saver := &countingSaver{}
	w := NewDebouncedWriter(saver, time.Hour, nil)

	w.Notify(stateWithTasks("unflushed"))
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if saver.count() != 1 {
		t.Fatalf("Close must flush the pending write, got %d saves", saver.count())
	}

	// After close, notifications are dropped.
	w.Notify(stateWithTasks("late"))
	time.Sleep(20 * time.Millisecond)
	if saver.count() != 1 {
		t.Fatalf("Notify after Close still saved: %d saves", saver.count())
	}
}

func TestOnResultSeesFailures(t *testing.T) {
	saver := &countingSaver{err: errors.New("store down")}

	results := make(chan error, 1)
	w := NewDebouncedWriter(saver, 10*time.Millisecond, func(err error) {
		results <- err
	})
	defer func() { _ = w.Close(context.Background()) }()

	w.Notify(stateWithTasks("doomed"))

	select {
	case err := <-results:
		if err == nil {
			t.Fatal("expected the save error to be reported")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onResult was never called")
	}

	if !w.LastSavedAt().IsZero() {
		t.Fatal("failed save must not update LastSavedAt")
	}
}
