package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/valter-silva-au/bounty-board/internal/core"
	"github.com/valter-silva-au/bounty-board/internal/observability"
	"github.com/valter-silva-au/bounty-board/internal/storage"
	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// openBoard loads the board from the store and wires it to the debounced
// writer. Recovery outcomes (corrupted document, unreachable store) are
// reported on stderr but never prevent the command from running; the
// returned board is always usable.
func openBoard(ctx context.Context) (*core.Board, error) {
	if Store == nil {
		return nil, fmt.Errorf("store not initialized")
	}

	state, err := Store.Load(ctx)
	if err != nil {
		var corrupt *storage.CorruptStateError
		if errors.As(err, &corrupt) {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", corrupt)
			observability.Record(EventLog, observability.EventStateRecovered,
				"recovered from corrupted document", map[string]any{
					"salvaged":  corrupt.Salvaged,
					"backed_up": corrupt.BackedUp,
				})
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %v (starting from an empty board; unsaved data is not lost on the store)\n", err)
		}
	}

	board := core.NewBoard(state)
	if Writer != nil {
		board.Subscribe(Writer.Notify)
	}
	return board, nil
}

// persistBoard force-saves the board, bypassing the debounce window, so
// one-shot commands exit with their mutation confirmed on the store.
func persistBoard(ctx context.Context, board *core.Board) error {
	if Writer == nil {
		return fmt.Errorf("writer not initialized")
	}
	if err := Writer.ForceSave(ctx, board.State()); err != nil {
		observability.RecordError(EventLog, observability.EventStateSaveFailed,
			"save failed", map[string]any{"error": err.Error()})
		return err
	}
	observability.Record(EventLog, observability.EventStateSaved, "board saved", nil)
	return nil
}

// newTaskID generates a random task identifier like task-3fa81c52.
func newTaskID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("generating task id: %v", err))
	}
	return "task-" + hex.EncodeToString(b[:])
}

// printFieldErrors writes structured validation errors one per line.
func printFieldErrors(result core.ValidationResult) {
	for _, fe := range result.Errors {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
	}
}

// reportProvisioned announces an auto-provisioned developer record.
func reportProvisioned(dev *models.Developer) {
	if dev == nil {
		return
	}
	fmt.Printf("Provisioned developer %s (%q) for this assignment\n", dev.ID, dev.Name)
	observability.Record(EventLog, observability.EventDeveloperProvisioned,
		"developer auto-provisioned", map[string]any{"id": dev.ID, "name": dev.Name})
}
