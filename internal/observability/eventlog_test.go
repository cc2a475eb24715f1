package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("NewJSONLEventLog failed: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log, path
}

func TestWriteAndReadEvents(t *testing.T) {
	log, _ := newTestLog(t)

	now := time.Now().UTC()
	events := []Event{
		{Time: now, Level: "INFO", Type: EventTaskCreated, Message: "task created",
			Data: map[string]any{"id": "t1", "points": 5}},
		{Time: now.Add(time.Second), Level: "INFO", Type: EventTaskCompleted, Message: "task completed",
			Data: map[string]any{"id": "t1", "points": 5, "hours_spent": 2.5}},
		{Time: now.Add(2 * time.Second), Level: "ERROR", Type: EventStateSaveFailed, Message: "save failed"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Type != EventTaskCreated || got[2].Level != "ERROR" {
		t.Fatalf("events out of order or mangled: %+v", got)
	}
	if got[1].Data["hours_spent"] != 2.5 {
		t.Fatalf("event data lost: %+v", got[1].Data)
	}
}

func TestReadFilters(t *testing.T) {
	log, _ := newTestLog(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		level := "INFO"
		eventType := EventTaskCreated
		if i%2 == 1 {
			level = "ERROR"
			eventType = EventStateSaveFailed
		}
		if err := log.Write(Event{
			Time: base.Add(time.Duration(i) * time.Minute), Level: level, Type: eventType,
		}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	byType, err := log.Read(EventFilter{Type: EventStateSaveFailed})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("type filter: expected 2 events, got %d", len(byType))
	}

	byLevel, err := log.Read(EventFilter{Level: "INFO"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(byLevel) != 3 {
		t.Fatalf("level filter: expected 3 events, got %d", len(byLevel))
	}

	since := base.Add(3 * time.Minute)
	until := base.Add(4 * time.Minute)
	byWindow, err := log.Read(EventFilter{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(byWindow) != 2 {
		t.Fatalf("window filter: expected 2 events, got %d", len(byWindow))
	}
}

func TestReadSkipsMalformedLines(t *testing.T) {
	log, path := newTestLog(t)

	if err := log.Write(Event{Time: time.Now().UTC(), Level: "INFO", Type: EventTaskCreated}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening log for corruption: %v", err)
	}
	if _, err := f.WriteString("{this line is broken\n"); err != nil {
		t.Fatalf("appending junk: %v", err)
	}
	_ = f.Close()

	if err := log.Write(Event{Time: time.Now().UTC(), Level: "INFO", Type: EventTaskDeleted}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the 2 valid events, got %d", len(got))
	}
}

func TestRecordHelpersNilSafe(t *testing.T) {
	// Must not panic with a nil log.
	Record(nil, EventTaskCreated, "ignored", nil)
	RecordError(nil, EventStateSaveFailed, "ignored", nil)

	log, _ := newTestLog(t)
	Record(log, EventTaskCreated, "created", map[string]any{"id": "t1"})
	RecordError(log, EventStateSaveFailed, "boom", nil)

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Level != "INFO" || got[1].Level != "ERROR" {
		t.Fatalf("helper levels wrong: %s, %s", got[0].Level, got[1].Level)
	}
	if got[0].Time.IsZero() {
		t.Fatal("Record must timestamp the event")
	}
}

func TestReadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("NewJSONLEventLog failed: %v", err)
	}
	defer func() { _ = log.Close() }()

	_ = os.Remove(path)
	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read of missing file should not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no events, got %d", len(got))
	}
}
