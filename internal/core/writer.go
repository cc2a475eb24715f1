package core

import (
	"context"
	"sync"
	"time"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// DefaultSaveDebounce is the quiet period before a burst of mutations is
// persisted as a single write.
const DefaultSaveDebounce = 500 * time.Millisecond

// Saver persists a full board state. Implemented by storage.Store.
type Saver interface {
	Save(ctx context.Context, state models.AppState) error
}

// DebouncedWriter coalesces rapid state mutations into a single save
// after a quiet period. Each save serializes the state captured at send
// time, so a later save naturally includes earlier mutations
// (last-write-wins, no explicit locking against other clients).
type DebouncedWriter struct {
	saver    Saver
	delay    time.Duration
	onResult func(error)

	mu          sync.Mutex
	pending     *models.AppState
	timer       *time.Timer
	saving      bool
	lastSavedAt time.Time
	closed      bool
}

// NewDebouncedWriter wraps saver with a debounce window. A non-positive
// delay uses the default. onResult, if non-nil, is called with the
// outcome of every background save so failures can be surfaced.
func NewDebouncedWriter(saver Saver, delay time.Duration, onResult func(error)) *DebouncedWriter {
	if delay <= 0 {
		delay = DefaultSaveDebounce
	}
	return &DebouncedWriter{saver: saver, delay: delay, onResult: onResult}
}

// Notify buffers the state and (re)arms the debounce timer. Within a
// burst the last value wins.
func (w *DebouncedWriter) Notify(state models.AppState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	st := state.Clone()
	w.pending = &st
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flushPending)
}

// ForceSave bypasses the debounce window: any pending write is absorbed
// into this one and the result is returned synchronously.
func (w *DebouncedWriter) ForceSave(ctx context.Context, state models.AppState) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.saving = true
	w.mu.Unlock()

	err := w.saver.Save(ctx, state.Clone())
	w.finish(err)
	return err
}

// Saving reports whether a save is currently in flight.
func (w *DebouncedWriter) Saving() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saving
}

// LastSavedAt returns the time of the most recent successful save, or
// the zero time if nothing has been saved yet.
func (w *DebouncedWriter) LastSavedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSavedAt
}

// Close flushes any pending write synchronously and stops the writer.
// Further Notify calls are ignored.
func (w *DebouncedWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	st := w.pending
	w.pending = nil
	w.mu.Unlock()

	if st == nil {
		return nil
	}
	err := w.saver.Save(ctx, *st)
	w.finish(err)
	return err
}

func (w *DebouncedWriter) flushPending() {
	w.mu.Lock()
	st := w.pending
	w.pending = nil
	w.timer = nil
	if st == nil || w.closed {
		w.mu.Unlock()
		return
	}
	w.saving = true
	w.mu.Unlock()

	err := w.saver.Save(context.Background(), *st)
	w.finish(err)
	if w.onResult != nil {
		w.onResult(err)
	}
}

func (w *DebouncedWriter) finish(err error) {
	w.mu.Lock()
	w.saving = false
	if err == nil {
		w.lastSavedAt = time.Now().UTC()
	}
	w.mu.Unlock()
}
