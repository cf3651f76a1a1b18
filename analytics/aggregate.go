// api/analytics/aggregate.go
//
// Pure reductions over a slice of visit events. Each function is stateless
// and independent of the others, so they can be tested with synthetic event
// sequences and run in any order over the same selection.
package analytics

import (
	"sort"
	"time"

	"stallpoint/api/models"
)

// PopularPageLimit caps the all-time page ranking.
const PopularPageLimit = 10

// dayFormat is the wire format for day buckets. UTC is used for day
// truncation so results stay deterministic regardless of server locale.
const dayFormat = "2006-01-02"

// TotalVisits counts the events in the selection.
func TotalVisits(events []models.VisitEvent) int {
	return len(events)
}

// AverageSessionDuration returns the integer mean of the session durations.
// Events with an unknown duration count as zero seconds and stay in the
// denominator; an empty selection averages to 0 rather than erroring.
func AverageSessionDuration(events []models.VisitEvent) int64 {
	if len(events) == 0 {
		return 0
	}
	var total int64
	for _, e := range events {
		total += e.SessionDuration
	}
	return total / int64(len(events))
}

// CountByDevice groups the selection by device category. Events whose
// device is unknown or unrecognized contribute to none of the counters.
func CountByDevice(events []models.VisitEvent) models.DeviceBreakdown {
	var breakdown models.DeviceBreakdown
	for _, e := range events {
		switch e.DeviceType {
		case models.DeviceDesktop:
			breakdown.Desktop++
		case models.DeviceMobile:
			breakdown.Mobile++
		case models.DeviceTablet:
			breakdown.Tablet++
		}
	}
	return breakdown
}

// RankPages counts events per path and returns the paths ordered by visit
// count descending, truncated to limit. Ties keep the order in which the
// paths first appeared in the input.
func RankPages(events []models.VisitEvent, limit int) []models.PageVisits {
	counts := make(map[string]int, len(events))
	order := make([]string, 0, len(events))
	for _, e := range events {
		if _, seen := counts[e.Path]; !seen {
			order = append(order, e.Path)
		}
		counts[e.Path]++
	}

	ranked := make([]models.PageVisits, 0, len(order))
	for _, path := range order {
		ranked = append(ranked, models.PageVisits{Path: path, Visits: counts[path]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Visits > ranked[j].Visits
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// BucketByDay groups the selection by UTC calendar day and returns the
// buckets sorted ascending by date. Days without events are omitted, so the
// series is sparse and never carries a zero entry.
func BucketByDay(events []models.VisitEvent) []models.DailyVisits {
	counts := make(map[string]int)
	for _, e := range events {
		counts[dayKey(e.Timestamp)]++
	}

	days := make([]models.DailyVisits, 0, len(counts))
	for date, visits := range counts {
		days = append(days, models.DailyVisits{Date: date, Visits: visits})
	}
	// ISO dates sort lexicographically in chronological order.
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

func dayKey(t time.Time) string {
	return t.UTC().Format(dayFormat)
}
