package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

const (
	// DefaultMaxAttempts bounds load and save retries against the store.
	DefaultMaxAttempts = 3
	// retryBaseDelay is multiplied by the attempt number, giving a
	// linearly increasing backoff (1s, 2s, 3s).
	retryBaseDelay = 1 * time.Second
)

// CorruptStateError reports that the stored document failed structural
// validation. The state returned alongside it is still usable: either
// the entries salvaged from the document, or an empty board. The raw
// document was written to a backup key before being discarded.
type CorruptStateError struct {
	Reason   string
	Salvaged bool
	BackedUp bool
}

func (e *CorruptStateError) Error() string {
	outcome := "reset to empty state"
	if e.Salvaged {
		outcome = "partially recovered"
	}
	return fmt.Sprintf("stored board document is corrupted (%s): %s", outcome, e.Reason)
}

// Store wraps a Client with bounded retries, backoff, and corrupted
// document recovery. Load always returns a usable state even when it
// also returns an error, so callers stay functional after store trouble.
type Store struct {
	client      *Client
	maxAttempts int

	// sleep is injectable for tests; the default honors ctx cancellation.
	sleep func(ctx context.Context, d time.Duration)
}

// NewStore wraps client with retry and recovery behavior. A
// non-positive maxAttempts uses the default.
func NewStore(client *Client, maxAttempts int) *Store {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Store{
		client:      client,
		maxAttempts: maxAttempts,
		sleep:       ctxSleep,
	}
}

func ctxSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Load fetches the board, retrying transport failures with linearly
// increasing delay. On retry exhaustion it returns an empty state plus a
// descriptive error. On a corrupted document it backs up the raw bytes,
// salvages what it can, and returns the result with a *CorruptStateError.
func (s *Store) Load(ctx context.Context) (models.AppState, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		raw, err := s.client.LoadRaw(ctx)
		if err != nil {
			lastErr = err
			if attempt < s.maxAttempts {
				s.sleep(ctx, retryBaseDelay*time.Duration(attempt))
			}
			continue
		}

		if len(bytes.TrimSpace(raw)) == 0 {
			return models.EmptyState(), nil
		}

		state, err := decodeDocument(raw)
		if err != nil {
			// The document will not get better with retries; back it up
			// and salvage entries instead.
			return s.recover(ctx, raw, err)
		}
		return state, nil
	}
	return models.EmptyState(), fmt.Errorf("loading board data after %d attempts: %w", s.maxAttempts, lastErr)
}

// Save writes the board, retrying with the same backoff as Load. On
// exhaustion the error is returned and the caller's in-memory state is
// untouched, so unsaved edits remain visible and are re-attempted on the
// next mutation.
func (s *Store) Save(ctx context.Context, state models.AppState) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.client.Save(ctx, state); err != nil {
			lastErr = err
			if attempt < s.maxAttempts {
				s.sleep(ctx, retryBaseDelay*time.Duration(attempt))
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to save board data after %d attempts (changes may be lost): %w", s.maxAttempts, lastErr)
}

// Clear deletes the stored document without retries.
func (s *Store) Clear(ctx context.Context) error {
	return s.client.Clear(ctx)
}

// recover backs up a corrupted document and filters its tasks and
// developers arrays for well-formed entries.
func (s *Store) recover(ctx context.Context, raw []byte, cause error) (models.AppState, error) {
	backedUp := s.client.Backup(ctx, raw) == nil

	state := salvageState(raw)
	salvaged := len(state.Tasks) > 0 || len(state.Developers) > 0

	return state, &CorruptStateError{
		Reason:   cause.Error(),
		Salvaged: salvaged,
		BackedUp: backedUp,
	}
}

// salvageState independently filters the tasks and developers arrays of
// a structurally invalid document, keeping entries whose required fields
// are present and sane. If nothing is recoverable the result is empty.
func salvageState(raw []byte) models.AppState {
	state := models.EmptyState()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return state
	}

	var rawTasks []json.RawMessage
	if err := json.Unmarshal(fields["tasks"], &rawTasks); err == nil {
		for _, rt := range rawTasks {
			var t models.Task
			if err := json.Unmarshal(rt, &t); err != nil {
				continue
			}
			if wellFormedTask(t) {
				state.Tasks = append(state.Tasks, t)
			}
		}
	}

	var rawDevs []json.RawMessage
	if err := json.Unmarshal(fields["developers"], &rawDevs); err == nil {
		for _, rd := range rawDevs {
			var d models.Developer
			if err := json.Unmarshal(rd, &d); err != nil {
				continue
			}
			if d.ID != "" && d.Name != "" {
				state.Developers = append(state.Developers, d)
			}
		}
	}

	return state
}

func wellFormedTask(t models.Task) bool {
	if t.ID == "" || t.Name == "" || t.Points <= 0 {
		return false
	}
	switch t.Status {
	case models.StatusBacklog, models.StatusAssigned, models.StatusCompleted:
		return true
	default:
		return false
	}
}
