package observability

import (
	"fmt"
	"time"
)

// Metrics holds board activity derived from the event log. These are
// historical counters over the log window; current developer standings
// live on the board itself as derived aggregates.
type Metrics struct {
	TasksCreated          int        `json:"tasks_created"`
	TasksCompleted        int        `json:"tasks_completed"`
	TasksDeleted          int        `json:"tasks_deleted"`
	PointsAwarded         int        `json:"points_awarded"`
	HoursLogged           float64    `json:"hours_logged"`
	DevelopersProvisioned int        `json:"developers_provisioned"`
	SaveFailures          int        `json:"save_failures"`
	SweepResets           int        `json:"sweep_resets"`
	EventCount            int        `json:"event_count"`
	OldestEvent           *time.Time `json:"oldest_event,omitempty"`
	NewestEvent           *time.Time `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from the
// given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventTaskCreated:
			m.TasksCreated++
		case EventTaskCompleted:
			m.TasksCompleted++
			if points, ok := asInt(event.Data["points"]); ok {
				m.PointsAwarded += points
			}
			if hours, ok := event.Data["hours_spent"].(float64); ok {
				m.HoursLogged += hours
			}
		case EventTaskDeleted:
			m.TasksDeleted++
		case EventDeveloperProvisioned:
			m.DevelopersProvisioned++
		case EventStateSaveFailed:
			m.SaveFailures++
		case EventSweepReset:
			if n, ok := asInt(event.Data["reset"]); ok {
				m.SweepResets += n
			}
		}
	}

	return m, nil
}

// ParseSince parses a human-friendly metrics window like "7d", "30d",
// or "24h" into the corresponding time in the past.
func ParseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}

// asInt handles the fact that JSON round-trips numbers as float64.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
