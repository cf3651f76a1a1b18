// api/analytics/window.go
package analytics

import (
	"time"

	"stallpoint/api/models"
)

// DefaultLookbackDays is the lookback applied when a caller does not ask
// for a specific window.
const DefaultLookbackDays = 30

// Window is an inclusive time range. All window-scoped aggregators operate
// over the events selected by one Window.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastNDays builds the window [now - n days, now].
func LastNDays(n int, now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -n), End: now}
}

// Contains reports whether t falls inside the window, both ends inclusive.
// An inverted window (Start after End) contains nothing.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Filter returns the events whose timestamps fall inside the window,
// preserving input order. The result is never nil.
func (w Window) Filter(events []models.VisitEvent) []models.VisitEvent {
	selected := make([]models.VisitEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e.Timestamp) {
			selected = append(selected, e)
		}
	}
	return selected
}
