package observability

import (
	"testing"
	"time"
)

func populateLog(t *testing.T, log EventLog, base time.Time) {
	t.Helper()
	events := []Event{
		{Time: base, Type: EventTaskCreated, Data: map[string]any{"id": "t1", "points": 10}},
		{Time: base.Add(time.Minute), Type: EventTaskCreated, Data: map[string]any{"id": "t2", "points": 5}},
		{Time: base.Add(2 * time.Minute), Type: EventDeveloperProvisioned, Data: map[string]any{"id": "dev-1"}},
		{Time: base.Add(3 * time.Minute), Type: EventTaskCompleted,
			Data: map[string]any{"id": "t1", "points": 10, "hours_spent": 4.5}},
		{Time: base.Add(4 * time.Minute), Type: EventTaskDeleted, Data: map[string]any{"id": "t2"}},
		{Time: base.Add(5 * time.Minute), Type: EventStateSaveFailed, Level: "ERROR"},
		{Time: base.Add(6 * time.Minute), Type: EventSweepReset, Data: map[string]any{"reset": 3}},
		{Time: base.Add(7 * time.Minute), Type: EventStateSaved},
	}
	for _, e := range events {
		if e.Level == "" {
			e.Level = "INFO"
		}
		if err := log.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
}

func TestCalculateMetrics(t *testing.T) {
	log, _ := newTestLog(t)
	base := time.Now().UTC().Add(-time.Hour)
	populateLog(t, log, base)

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(base.Add(-time.Minute))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if m.TasksCreated != 2 {
		t.Fatalf("TasksCreated = %d, want 2", m.TasksCreated)
	}
	if m.TasksCompleted != 1 {
		t.Fatalf("TasksCompleted = %d, want 1", m.TasksCompleted)
	}
	if m.TasksDeleted != 1 {
		t.Fatalf("TasksDeleted = %d, want 1", m.TasksDeleted)
	}
	if m.PointsAwarded != 10 {
		t.Fatalf("PointsAwarded = %d, want 10", m.PointsAwarded)
	}
	if m.HoursLogged != 4.5 {
		t.Fatalf("HoursLogged = %v, want 4.5", m.HoursLogged)
	}
	if m.DevelopersProvisioned != 1 {
		t.Fatalf("DevelopersProvisioned = %d, want 1", m.DevelopersProvisioned)
	}
	if m.SaveFailures != 1 {
		t.Fatalf("SaveFailures = %d, want 1", m.SaveFailures)
	}
	if m.SweepResets != 3 {
		t.Fatalf("SweepResets = %d, want 3", m.SweepResets)
	}
	if m.EventCount != 8 {
		t.Fatalf("EventCount = %d, want 8", m.EventCount)
	}
	if m.OldestEvent == nil || m.NewestEvent == nil {
		t.Fatal("event window bounds should be set")
	}
	if !m.NewestEvent.After(*m.OldestEvent) {
		t.Fatalf("window bounds inverted: %v .. %v", m.OldestEvent, m.NewestEvent)
	}
}

func TestCalculateMetricsWindow(t *testing.T) {
	log, _ := newTestLog(t)
	base := time.Now().UTC().Add(-time.Hour)
	populateLog(t, log, base)

	// A window opening after the completion event sees no points.
	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(base.Add(4 * time.Minute))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if m.TasksCreated != 0 {
		t.Fatalf("TasksCreated = %d, want 0 in narrow window", m.TasksCreated)
	}
	if m.PointsAwarded != 0 {
		t.Fatalf("PointsAwarded = %d, want 0 in narrow window", m.PointsAwarded)
	}
	if m.SweepResets != 3 {
		t.Fatalf("SweepResets = %d, want 3", m.SweepResets)
	}
}

func TestCalculateMetricsEmptyLog(t *testing.T) {
	log, _ := newTestLog(t)

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if m.EventCount != 0 || m.TasksCreated != 0 {
		t.Fatalf("empty log should yield zero metrics, got %+v", m)
	}
	if m.OldestEvent != nil || m.NewestEvent != nil {
		t.Fatal("empty log should have no window bounds")
	}
}

func TestParseSince(t *testing.T) {
	now := time.Now().UTC()

	got, err := ParseSince("7d")
	if err != nil {
		t.Fatalf("ParseSince(7d) failed: %v", err)
	}
	if d := now.Sub(got); d < 6*24*time.Hour || d > 8*24*time.Hour {
		t.Fatalf("7d parsed to %v ago", d)
	}

	if _, err := ParseSince("24h"); err != nil {
		t.Fatalf("ParseSince(24h) failed: %v", err)
	}
	for _, bad := range []string{"", "d", "7w", "x7d"} {
		if _, err := ParseSince(bad); err == nil {
			t.Fatalf("ParseSince(%q) should fail", bad)
		}
	}
}

// JSON round-trips numbers as float64; counters must still accumulate.
func TestCalculateMetricsFloatData(t *testing.T) {
	log, _ := newTestLog(t)
	now := time.Now().UTC()
	if err := log.Write(Event{
		Time: now, Level: "INFO", Type: EventTaskCompleted,
		Data: map[string]any{"points": float64(7), "hours_spent": float64(2)},
	}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if m.PointsAwarded != 7 || m.HoursLogged != 2 {
		t.Fatalf("float data not accumulated: %+v", m)
	}
}
