package models

// SchemaVersion tags the wire document for forward migration. It carries
// no optimistic-concurrency meaning; writes are last-document-wins.
const SchemaVersion = "1.0"

// AppState is the entire board: every task and every developer. It is
// always read and written as one document under one store key.
type AppState struct {
	Tasks      []Task      `json:"tasks"`
	Developers []Developer `json:"developers"`
}

// BoardDocument is the wire shape of the persisted board.
type BoardDocument struct {
	Tasks      []Task      `json:"tasks"`
	Developers []Developer `json:"developers"`
	Version    string      `json:"version"`
}

// EmptyState returns a usable zero-value board.
func EmptyState() AppState {
	return AppState{Tasks: []Task{}, Developers: []Developer{}}
}

// Clone returns a deep copy of the state so callers can hold a snapshot
// without observing later mutations.
func (s AppState) Clone() AppState {
	out := AppState{
		Tasks:      make([]Task, len(s.Tasks)),
		Developers: make([]Developer, len(s.Developers)),
	}
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	copy(out.Developers, s.Developers)
	return out
}

// Document wraps the state in the versioned wire shape. Nil slices are
// normalized to empty arrays so the document always validates on read.
func (s AppState) Document() BoardDocument {
	doc := BoardDocument{Tasks: s.Tasks, Developers: s.Developers, Version: SchemaVersion}
	if doc.Tasks == nil {
		doc.Tasks = []Task{}
	}
	if doc.Developers == nil {
		doc.Developers = []Developer{}
	}
	return doc
}
