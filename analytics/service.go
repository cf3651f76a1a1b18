// api/analytics/service.go
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stallpoint/api/models"
)

// ErrInvalidLookback is returned when a caller asks for a non-positive
// number of lookback days. The default of 30 applies only when the argument
// is entirely absent, never as a silent correction.
var ErrInvalidLookback = errors.New("lookback days must be a positive integer")

// ErrEmptyPath is returned when a visit is recorded without a page path.
var ErrEmptyPath = errors.New("visit path cannot be empty")

// EventSource is the append-only visit log the analytics service reads
// from. Implementations must never mutate or delete stored events.
type EventSource interface {
	// Append persists one event and returns its assigned ID.
	Append(ctx context.Context, event models.VisitEvent) (string, error)

	// CountAll returns the number of events ever recorded.
	CountAll(ctx context.Context) (int64, error)

	// CountByPath returns the number of events recorded for one path.
	CountByPath(ctx context.Context, path string) (int64, error)

	// SelectRange returns the events with timestamps in [start, end],
	// both ends inclusive, ordered by timestamp ascending.
	SelectRange(ctx context.Context, start, end time.Time) ([]models.VisitEvent, error)

	// SelectAll returns every recorded event ordered by timestamp ascending.
	SelectAll(ctx context.Context) ([]models.VisitEvent, error)
}

// Service ingests visit events and computes summary reports over them.
// Every query recomputes from the event source; the service itself holds
// no mutable state, so calls are idempotent for an unchanged event log.
type Service struct {
	events EventSource
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewService creates an analytics service over the given event source.
func NewService(events EventSource, logger *zap.SugaredLogger) *Service {
	return &Service{
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// RecordVisit appends one page-view event, stamping it with the current
// UTC time and a fresh ID. An unknown device string is stored as unknown
// rather than rejected.
func (s *Service) RecordVisit(ctx context.Context, path string, sessionDuration int64, device string) (*models.VisitEvent, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if sessionDuration < 0 {
		sessionDuration = 0
	}

	deviceType, _ := models.ParseDeviceType(device)
	event := models.VisitEvent{
		ID:              uuid.New().String(),
		Path:            path,
		Timestamp:       s.now().UTC(),
		SessionDuration: sessionDuration,
		DeviceType:      deviceType,
	}

	if _, err := s.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record visit: %w", err)
	}
	s.logger.Debugw("visit recorded", "path", event.Path, "device", string(event.DeviceType))
	return &event, nil
}

// Summary computes the composite analytics report for the last `days`
// days. Total visits, average session duration, device breakdown and the
// daily series are scoped to that window; the popular-pages ranking is
// always computed over the full event history. Composition is
// all-or-nothing: if any read fails, no partial summary is returned.
func (s *Service) Summary(ctx context.Context, days int) (*models.AnalyticsSummary, error) {
	if days <= 0 {
		return nil, ErrInvalidLookback
	}

	window := LastNDays(days, s.now().UTC())
	windowEvents, err := s.events.SelectRange(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to select window events: %w", err)
	}
	allEvents, err := s.events.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select event history: %w", err)
	}

	return &models.AnalyticsSummary{
		TotalVisits:            TotalVisits(windowEvents),
		AverageSessionDuration: AverageSessionDuration(windowEvents),
		DeviceBreakdown:        CountByDevice(windowEvents),
		PopularPages:           RankPages(allEvents, PopularPageLimit),
		VisitsByDay:            BucketByDay(windowEvents),
	}, nil
}

// PopularPages returns the all-time top pages, independent of any window.
func (s *Service) PopularPages(ctx context.Context) ([]models.PageVisits, error) {
	events, err := s.events.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select event history: %w", err)
	}
	return RankPages(events, PopularPageLimit), nil
}

// VisitsByRange returns the daily visit series for [start, end], both ends
// inclusive. An inverted range yields an empty series, not an error;
// callers own range well-formedness.
func (s *Service) VisitsByRange(ctx context.Context, start, end time.Time) ([]models.DailyVisits, error) {
	if start.After(end) {
		return []models.DailyVisits{}, nil
	}
	events, err := s.events.SelectRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to select events in range: %w", err)
	}
	return BucketByDay(events), nil
}

// TotalCount returns the number of visits ever recorded.
func (s *Service) TotalCount(ctx context.Context) (int64, error) {
	return s.events.CountAll(ctx)
}

// CountByPage returns the number of visits ever recorded for one path.
func (s *Service) CountByPage(ctx context.Context, path string) (int64, error) {
	if path == "" {
		return 0, ErrEmptyPath
	}
	return s.events.CountByPath(ctx, path)
}
