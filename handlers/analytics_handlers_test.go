package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stallpoint/api/analytics"
	"stallpoint/api/models"
)

// fakeVisitSource is an in-memory event log for handler tests.
type fakeVisitSource struct {
	events []models.VisitEvent
}

func (f *fakeVisitSource) Append(_ context.Context, event models.VisitEvent) (string, error) {
	f.events = append(f.events, event)
	return event.ID, nil
}

func (f *fakeVisitSource) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.events)), nil
}

func (f *fakeVisitSource) CountByPath(_ context.Context, path string) (int64, error) {
	var n int64
	for _, e := range f.events {
		if e.Path == path {
			n++
		}
	}
	return n, nil
}

func (f *fakeVisitSource) SelectRange(_ context.Context, start, end time.Time) ([]models.VisitEvent, error) {
	return analytics.Window{Start: start, End: end}.Filter(f.events), nil
}

func (f *fakeVisitSource) SelectAll(_ context.Context) ([]models.VisitEvent, error) {
	return append([]models.VisitEvent(nil), f.events...), nil
}

func setupAnalyticsRouter(t *testing.T, source *fakeVisitSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop().Sugar()
	service := analytics.NewService(source, logger)
	analyticsHandlers := NewAnalyticsHandlers(service, nil, logger)
	trackHandlers := NewTrackHandlers(service, logger)

	r := gin.New()
	r.POST("/api/track", trackHandlers.TrackVisit)
	stats := r.Group("/api/admin/stats")
	{
		stats.GET("/summary", analyticsHandlers.GetSummary)
		stats.GET("/popular-pages", analyticsHandlers.GetPopularPages)
		stats.GET("/visits", analyticsHandlers.GetVisitsByRange)
		stats.GET("/count", analyticsHandlers.GetVisitsCount)
		stats.GET("/count-by-page", analyticsHandlers.GetVisitsCountByPage)
	}
	return r
}

func TestGetSummaryDefaults(t *testing.T) {
	now := time.Now().UTC()
	source := &fakeVisitSource{events: []models.VisitEvent{
		{ID: "1", Path: "/a", Timestamp: now.Add(-time.Hour), SessionDuration: 10, DeviceType: models.DeviceDesktop},
		{ID: "2", Path: "/a", Timestamp: now.Add(-2 * time.Hour), SessionDuration: 20, DeviceType: models.DeviceMobile},
		{ID: "3", Path: "/b", Timestamp: now.Add(-3 * time.Hour)},
	}}
	r := setupAnalyticsRouter(t, source)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats/summary", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var summary models.AnalyticsSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.TotalVisits != 3 {
		t.Errorf("Expected 3 total visits, got %d", summary.TotalVisits)
	}
	if summary.AverageSessionDuration != 10 {
		t.Errorf("Expected average 10, got %d", summary.AverageSessionDuration)
	}
	if want := (models.DeviceBreakdown{Desktop: 1, Mobile: 1}); summary.DeviceBreakdown != want {
		t.Errorf("Expected breakdown %+v, got %+v", want, summary.DeviceBreakdown)
	}
	if len(summary.PopularPages) != 2 || summary.PopularPages[0].Path != "/a" {
		t.Errorf("Unexpected popular pages: %v", summary.PopularPages)
	}

	// The wire shape always carries all three device keys.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("Failed to decode raw summary: %v", err)
	}
	var breakdown map[string]int
	if err := json.Unmarshal(raw["deviceBreakdown"], &breakdown); err != nil {
		t.Fatalf("Failed to decode breakdown: %v", err)
	}
	for _, key := range []string{"desktop", "mobile", "tablet"} {
		if _, ok := breakdown[key]; !ok {
			t.Errorf("Expected %q key in device breakdown, got %v", key, breakdown)
		}
	}
}

func TestGetSummaryInvalidDays(t *testing.T) {
	r := setupAnalyticsRouter(t, &fakeVisitSource{})

	for _, days := range []string{"0", "-5", "abc", "1.5"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats/summary?days="+days, nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("days=%s: expected 400, got %d", days, w.Code)
		}
	}
}

func TestGetSummaryEmptyStore(t *testing.T) {
	r := setupAnalyticsRouter(t, &fakeVisitSource{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats/summary?days=7", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	var summary models.AnalyticsSummary
	if err := json.Unmarshal([]byte(body), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.TotalVisits != 0 || summary.AverageSessionDuration != 0 {
		t.Errorf("Expected zeroed summary, got %+v", summary)
	}
	if summary.PopularPages == nil || summary.VisitsByDay == nil {
		t.Errorf("Expected empty arrays (not null) in %s", body)
	}
}

func TestGetVisitsByRange(t *testing.T) {
	day := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &fakeVisitSource{events: []models.VisitEvent{
		{ID: "1", Path: "/a", Timestamp: day},
		{ID: "2", Path: "/b", Timestamp: day.Add(time.Hour)},
		{ID: "3", Path: "/c", Timestamp: day.AddDate(0, 0, 5)},
	}}
	r := setupAnalyticsRouter(t, source)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats/visits?start=2026-03-09&end=2026-03-10", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var days []models.DailyVisits
	if err := json.Unmarshal(w.Body.Bytes(), &days); err != nil {
		t.Fatalf("Failed to decode series: %v", err)
	}
	if len(days) != 1 || days[0] != (models.DailyVisits{Date: "2026-03-10", Visits: 2}) {
		t.Errorf("Unexpected series: %v", days)
	}
}

func TestGetVisitsByRangeEndOfDay(t *testing.T) {
	// A visit in the final second of the end date still belongs to the
	// inclusive range, sub-second precision included.
	source := &fakeVisitSource{events: []models.VisitEvent{
		{ID: "1", Path: "/a", Timestamp: time.Date(2026, 3, 10, 23, 59, 59, 500_000_000, time.UTC)},
	}}
	r := setupAnalyticsRouter(t, source)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats/visits?start=2026-03-10&end=2026-03-10", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var days []models.DailyVisits
	if err := json.Unmarshal(w.Body.Bytes(), &days); err != nil {
		t.Fatalf("Failed to decode series: %v", err)
	}
	if len(days) != 1 || days[0] != (models.DailyVisits{Date: "2026-03-10", Visits: 1}) {
		t.Errorf("Unexpected series: %v", days)
	}
}

func TestGetVisitsByRangeInverted(t *testing.T) {
	day := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &fakeVisitSource{events: []models.VisitEvent{
		{ID: "1", Path: "/a", Timestamp: day},
	}}
	r := setupAnalyticsRouter(t, source)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats/visits?start=2026-03-20&end=2026-03-01", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for inverted range, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("Expected empty array, got %s", body)
	}
}

func TestGetVisitsByRangeValidation(t *testing.T) {
	r := setupAnalyticsRouter(t, &fakeVisitSource{})

	tests := []struct {
		name string
		url  string
	}{
		{name: "missing params", url: "/api/admin/stats/visits"},
		{name: "bad start", url: "/api/admin/stats/visits?start=03-10-2026&end=2026-03-12"},
		{name: "bad end", url: "/api/admin/stats/visits?start=2026-03-10&end=soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}

func TestTrackVisit(t *testing.T) {
	source := &fakeVisitSource{}
	r := setupAnalyticsRouter(t, source)

	body, _ := json.Marshal(models.TrackVisitRequest{
		Path:            "/products/42",
		SessionDuration: 30,
		DeviceType:      "tablet",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/track", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var event models.VisitEvent
	if err := json.Unmarshal(w.Body.Bytes(), &event); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if event.ID == "" || event.Path != "/products/42" || event.DeviceType != models.DeviceTablet {
		t.Errorf("Unexpected event: %+v", event)
	}
	if len(source.events) != 1 {
		t.Fatalf("Expected 1 stored event, got %d", len(source.events))
	}
}

func TestTrackVisitValidation(t *testing.T) {
	r := setupAnalyticsRouter(t, &fakeVisitSource{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing path", body: `{"sessionDuration": 5}`},
		{name: "negative duration", body: `{"path": "/a", "sessionDuration": -1}`},
		{name: "bad device", body: `{"path": "/a", "deviceType": "toaster"}`},
		{name: "not json", body: `path=/a`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/track", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}

func TestGetVisitCounts(t *testing.T) {
	now := time.Now().UTC()
	source := &fakeVisitSource{events: []models.VisitEvent{
		{ID: "1", Path: "/a", Timestamp: now},
		{ID: "2", Path: "/a", Timestamp: now},
		{ID: "3", Path: "/b", Timestamp: now},
	}}
	r := setupAnalyticsRouter(t, source)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats/count", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var countResp struct {
		TotalVisits int64 `json:"totalVisits"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &countResp); err != nil {
		t.Fatalf("Failed to decode count: %v", err)
	}
	if countResp.TotalVisits != 3 {
		t.Errorf("Expected 3 visits, got %d", countResp.TotalVisits)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/stats/count-by-page?path=/a", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var pageResp struct {
		Path   string `json:"path"`
		Visits int64  `json:"visits"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &pageResp); err != nil {
		t.Fatalf("Failed to decode page count: %v", err)
	}
	if pageResp.Visits != 2 {
		t.Errorf("Expected 2 visits for /a, got %d", pageResp.Visits)
	}

	// Missing path parameter is a caller error.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/stats/count-by-page", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without path, got %d", w.Code)
	}
}
