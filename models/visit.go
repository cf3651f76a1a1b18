// api/models/visit.go
package models

import "time"

// DeviceType classifies the client that produced a page view.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
)

// ParseDeviceType maps a raw device string onto one of the known categories.
// Anything else (including the empty string) is reported as unknown.
func ParseDeviceType(raw string) (DeviceType, bool) {
	switch DeviceType(raw) {
	case DeviceDesktop, DeviceMobile, DeviceTablet:
		return DeviceType(raw), true
	default:
		return "", false
	}
}

// VisitEvent is a single recorded page view. Events are append-only: once
// written they are never mutated or deleted, and every analytics result is
// recomputed from them on demand.
type VisitEvent struct {
	ID              string     `json:"id"`
	Path            string     `json:"path"`
	Timestamp       time.Time  `json:"timestamp"`
	SessionDuration int64      `json:"sessionDuration"`
	DeviceType      DeviceType `json:"deviceType,omitempty"`
}

// TrackVisitRequest is the ingestion payload for a page view.
type TrackVisitRequest struct {
	Path            string `json:"path" binding:"required"`
	SessionDuration int64  `json:"sessionDuration" binding:"omitempty,gte=0"`
	DeviceType      string `json:"deviceType" binding:"omitempty,oneof=desktop mobile tablet"`
}

// DeviceBreakdown counts visits per recognized device category. Unknown
// devices contribute to none of the counters.
type DeviceBreakdown struct {
	Desktop int `json:"desktop"`
	Mobile  int `json:"mobile"`
	Tablet  int `json:"tablet"`
}

// PageVisits is one entry of the all-time page ranking.
type PageVisits struct {
	Path   string `json:"path"`
	Visits int    `json:"visits"`
}

// DailyVisits is one day bucket of the visits time series.
// Date is formatted as YYYY-MM-DD in UTC.
type DailyVisits struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

// AnalyticsSummary is the composite report served to the admin dashboard.
// It is computed fresh on every request and never cached here.
type AnalyticsSummary struct {
	TotalVisits            int             `json:"totalVisits"`
	AverageSessionDuration int64           `json:"averageSessionDuration"`
	DeviceBreakdown        DeviceBreakdown `json:"deviceBreakdown"`
	PopularPages           []PageVisits    `json:"popularPages"`
	VisitsByDay            []DailyVisits   `json:"visitsByDay"`
}

// VisitSnapshot is one row of the daily rollup table written by the
// snapshot job. It is a materialized cache outside the analytics core.
type VisitSnapshot struct {
	ID              int64     `db:"id" json:"id"`
	SnapshotDate    time.Time `db:"snapshot_date" json:"snapshotDate"`
	TotalVisits     int64     `db:"total_visits" json:"totalVisits"`
	AverageDuration int64     `db:"average_duration" json:"averageDuration"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}
