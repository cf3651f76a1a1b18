package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"stallpoint/api/models"
)

// memorySource is an in-memory EventSource for exercising the service
// without a database.
type memorySource struct {
	events    []models.VisitEvent
	failReads bool
}

var errSourceDown = errors.New("event store unavailable")

func (m *memorySource) Append(_ context.Context, event models.VisitEvent) (string, error) {
	if m.failReads {
		return "", errSourceDown
	}
	m.events = append(m.events, event)
	return event.ID, nil
}

func (m *memorySource) CountAll(_ context.Context) (int64, error) {
	if m.failReads {
		return 0, errSourceDown
	}
	return int64(len(m.events)), nil
}

func (m *memorySource) CountByPath(_ context.Context, path string) (int64, error) {
	if m.failReads {
		return 0, errSourceDown
	}
	var n int64
	for _, e := range m.events {
		if e.Path == path {
			n++
		}
	}
	return n, nil
}

func (m *memorySource) SelectRange(_ context.Context, start, end time.Time) ([]models.VisitEvent, error) {
	if m.failReads {
		return nil, errSourceDown
	}
	return Window{Start: start, End: end}.Filter(m.events), nil
}

func (m *memorySource) SelectAll(_ context.Context) ([]models.VisitEvent, error) {
	if m.failReads {
		return nil, errSourceDown
	}
	return append([]models.VisitEvent(nil), m.events...), nil
}

func newTestService(source *memorySource, now time.Time) *Service {
	s := NewService(source, zap.NewNop().Sugar())
	s.now = func() time.Time { return now }
	return s
}

func TestSummaryEmptyStore(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s := newTestService(&memorySource{}, now)

	summary, err := s.Summary(context.Background(), DefaultLookbackDays)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.TotalVisits != 0 {
		t.Errorf("Expected 0 total visits, got %d", summary.TotalVisits)
	}
	if summary.AverageSessionDuration != 0 {
		t.Errorf("Expected 0 average duration, got %d", summary.AverageSessionDuration)
	}
	if summary.DeviceBreakdown != (models.DeviceBreakdown{}) {
		t.Errorf("Expected zero device breakdown, got %+v", summary.DeviceBreakdown)
	}
	if summary.PopularPages == nil || len(summary.PopularPages) != 0 {
		t.Errorf("Expected empty popular pages, got %v", summary.PopularPages)
	}
	if summary.VisitsByDay == nil || len(summary.VisitsByDay) != 0 {
		t.Errorf("Expected empty daily series, got %v", summary.VisitsByDay)
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	day := now.Add(-2 * time.Hour)

	source := &memorySource{events: []models.VisitEvent{
		{ID: "1", Path: "/a", Timestamp: day, SessionDuration: 10, DeviceType: models.DeviceDesktop},
		{ID: "2", Path: "/a", Timestamp: day, SessionDuration: 20, DeviceType: models.DeviceMobile},
		{ID: "3", Path: "/b", Timestamp: day, SessionDuration: 0},
	}}
	s := newTestService(source, now)

	summary, err := s.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.TotalVisits != 3 {
		t.Errorf("Expected 3 total visits, got %d", summary.TotalVisits)
	}
	if summary.AverageSessionDuration != 10 {
		t.Errorf("Expected average 10, got %d", summary.AverageSessionDuration)
	}
	if want := (models.DeviceBreakdown{Desktop: 1, Mobile: 1, Tablet: 0}); summary.DeviceBreakdown != want {
		t.Errorf("Expected breakdown %+v, got %+v", want, summary.DeviceBreakdown)
	}
	if len(summary.PopularPages) != 2 ||
		summary.PopularPages[0] != (models.PageVisits{Path: "/a", Visits: 2}) ||
		summary.PopularPages[1] != (models.PageVisits{Path: "/b", Visits: 1}) {
		t.Errorf("Unexpected popular pages: %v", summary.PopularPages)
	}
	if len(summary.VisitsByDay) != 1 || summary.VisitsByDay[0] != (models.DailyVisits{Date: "2026-03-15", Visits: 3}) {
		t.Errorf("Unexpected daily series: %v", summary.VisitsByDay)
	}
}

func TestSummaryRejectsInvalidLookback(t *testing.T) {
	s := newTestService(&memorySource{}, time.Now().UTC())

	for _, days := range []int{0, -1, -30} {
		if _, err := s.Summary(context.Background(), days); !errors.Is(err, ErrInvalidLookback) {
			t.Errorf("Summary(%d): expected ErrInvalidLookback, got %v", days, err)
		}
	}
}

func TestPopularPagesIgnoreWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// One recent event, many visits on a page last touched a year ago.
	source := &memorySource{events: []models.VisitEvent{
		{ID: "old-1", Path: "/archive", Timestamp: now.AddDate(-1, 0, 0)},
		{ID: "old-2", Path: "/archive", Timestamp: now.AddDate(-1, 0, 0)},
		{ID: "new-1", Path: "/fresh", Timestamp: now.Add(-time.Hour)},
	}}
	s := newTestService(source, now)

	summary, err := s.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.TotalVisits != 1 {
		t.Errorf("Expected 1 windowed visit, got %d", summary.TotalVisits)
	}
	if len(summary.PopularPages) != 2 || summary.PopularPages[0].Path != "/archive" {
		t.Errorf("Expected all-time ranking led by /archive, got %v", summary.PopularPages)
	}

	// The standalone ranking matches the summary's.
	ranked, err := s.PopularPages(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(ranked) != len(summary.PopularPages) {
		t.Errorf("Standalone ranking disagrees with summary: %v vs %v", ranked, summary.PopularPages)
	}
}

func TestVisitsByRangeInverted(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	source := &memorySource{events: []models.VisitEvent{
		{ID: "1", Path: "/a", Timestamp: now.Add(-time.Hour)},
	}}
	s := newTestService(source, now)

	days, err := s.VisitsByRange(context.Background(), now, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("Expected no error for inverted range, got %v", err)
	}
	if days == nil || len(days) != 0 {
		t.Errorf("Expected empty series for inverted range, got %v", days)
	}
}

func TestSummaryFailsWholesale(t *testing.T) {
	s := newTestService(&memorySource{failReads: true}, time.Now().UTC())

	summary, err := s.Summary(context.Background(), 7)
	if !errors.Is(err, errSourceDown) {
		t.Fatalf("Expected the store error to propagate, got %v", err)
	}
	if summary != nil {
		t.Errorf("Expected no partial summary, got %+v", summary)
	}
}

func TestRecordVisit(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	source := &memorySource{}
	s := newTestService(source, now)

	event, err := s.RecordVisit(context.Background(), "/products/7", 30, "mobile")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event.ID == "" {
		t.Error("Expected an assigned event ID")
	}
	if !event.Timestamp.Equal(now) {
		t.Errorf("Expected timestamp %v, got %v", now, event.Timestamp)
	}
	if event.DeviceType != models.DeviceMobile {
		t.Errorf("Expected mobile device, got %q", event.DeviceType)
	}
	if len(source.events) != 1 {
		t.Fatalf("Expected 1 stored event, got %d", len(source.events))
	}

	// Unrecognized devices are stored as unknown, not rejected.
	event, err = s.RecordVisit(context.Background(), "/products/7", 0, "console")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event.DeviceType != "" {
		t.Errorf("Expected unknown device, got %q", event.DeviceType)
	}

	if _, err := s.RecordVisit(context.Background(), "", 0, ""); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Expected ErrEmptyPath for empty path, got %v", err)
	}
}

func TestCountByPage(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	source := &memorySource{events: []models.VisitEvent{
		{ID: "1", Path: "/a", Timestamp: now},
		{ID: "2", Path: "/a", Timestamp: now},
		{ID: "3", Path: "/b", Timestamp: now},
	}}
	s := newTestService(source, now)

	total, err := s.TotalCount(context.Background())
	if err != nil || total != 3 {
		t.Errorf("Expected total 3, got %d (err %v)", total, err)
	}
	count, err := s.CountByPage(context.Background(), "/a")
	if err != nil || count != 2 {
		t.Errorf("Expected 2 visits for /a, got %d (err %v)", count, err)
	}
	if _, err := s.CountByPage(context.Background(), ""); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Expected ErrEmptyPath, got %v", err)
	}
}
