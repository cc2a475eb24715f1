package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// ImportFormatError describes why a user-supplied snapshot could not be
// imported. It is surfaced directly to the user; the board state is left
// untouched.
type ImportFormatError struct {
	Reason string
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("invalid snapshot format: %s", e.Reason)
}

// ExportSnapshot serializes the state as an indented, versioned wire
// document suitable for a manual backup file.
func ExportSnapshot(state models.AppState) ([]byte, error) {
	data, err := json.MarshalIndent(state.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exporting snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// ImportSnapshot parses and structurally validates a snapshot document.
// Malformed input yields an *ImportFormatError.
func ImportSnapshot(data []byte) (models.AppState, error) {
	state, err := decodeDocument(data)
	if err != nil {
		return models.AppState{}, &ImportFormatError{Reason: err.Error()}
	}
	return state, nil
}

// decodeDocument parses a wire document, enforcing that tasks and
// developers are present as JSON arrays before trusting the payload.
func decodeDocument(data []byte) (models.AppState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.AppState{}, fmt.Errorf("document is not a JSON object: %w", err)
	}
	if err := requireArray(fields, "tasks"); err != nil {
		return models.AppState{}, err
	}
	if err := requireArray(fields, "developers"); err != nil {
		return models.AppState{}, err
	}

	var doc models.BoardDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.AppState{}, fmt.Errorf("decoding document: %w", err)
	}

	state := models.AppState{Tasks: doc.Tasks, Developers: doc.Developers}
	if state.Tasks == nil {
		state.Tasks = []models.Task{}
	}
	if state.Developers == nil {
		state.Developers = []models.Developer{}
	}
	return state, nil
}

// requireArray checks that the named field exists and is a JSON array.
func requireArray(fields map[string]json.RawMessage, name string) error {
	raw, ok := fields[name]
	if !ok {
		return fmt.Errorf("missing %q array", name)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("%q must be an array", name)
	}
	return nil
}
