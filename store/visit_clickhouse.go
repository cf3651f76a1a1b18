// api/store/visit_clickhouse.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"stallpoint/api/database"
	"stallpoint/api/models"
)

// ClickHouseVisitStore keeps the site_visits log in ClickHouse. It only
// materializes event slices; all grouping and ranking happens in the
// analytics package so the reductions stay testable without a database.
//
// Expected table:
//
//	CREATE TABLE site_visits (
//	    id               String,
//	    path             String,
//	    timestamp        DateTime('UTC'),
//	    session_duration Int64,
//	    device_type      LowCardinality(String)
//	) ENGINE = MergeTree ORDER BY timestamp
type ClickHouseVisitStore struct {
	DB     *database.ClickHouseClient
	logger *zap.SugaredLogger
}

func NewClickHouseVisitStore(chClient *database.ClickHouseClient, logger *zap.SugaredLogger) *ClickHouseVisitStore {
	return &ClickHouseVisitStore{DB: chClient, logger: logger}
}

func (s *ClickHouseVisitStore) Append(ctx context.Context, event models.VisitEvent) (string, error) {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO site_visits (id, path, timestamp, session_duration, device_type)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare visit insert: %w", err)
	}
	if err := batch.Append(
		event.ID,
		event.Path,
		event.Timestamp,
		event.SessionDuration,
		string(event.DeviceType),
	); err != nil {
		return "", fmt.Errorf("failed to append visit (ID: %s): %w", event.ID, err)
	}
	if err := batch.Send(); err != nil {
		return "", fmt.Errorf("failed to insert visit: %w", err)
	}
	return event.ID, nil
}

func (s *ClickHouseVisitStore) CountAll(ctx context.Context) (int64, error) {
	var count uint64
	err := s.DB.Conn.QueryRow(ctx, `SELECT count() FROM site_visits`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return int64(count), nil
}

func (s *ClickHouseVisitStore) CountByPath(ctx context.Context, path string) (int64, error) {
	var count uint64
	err := s.DB.Conn.QueryRow(ctx, `SELECT count() FROM site_visits WHERE path = ?`, path).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits for path %s: %w", path, err)
	}
	return int64(count), nil
}

func (s *ClickHouseVisitStore) SelectRange(ctx context.Context, start, end time.Time) ([]models.VisitEvent, error) {
	rows, err := s.DB.Conn.Query(ctx, `
		SELECT id, path, timestamp, session_duration, device_type
		FROM site_visits
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits in range: %w", err)
	}
	defer rows.Close()
	return s.scanVisits(rows)
}

func (s *ClickHouseVisitStore) SelectAll(ctx context.Context) ([]models.VisitEvent, error) {
	rows, err := s.DB.Conn.Query(ctx, `
		SELECT id, path, timestamp, session_duration, device_type
		FROM site_visits
		ORDER BY timestamp ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query visit history: %w", err)
	}
	defer rows.Close()
	return s.scanVisits(rows)
}

func (s *ClickHouseVisitStore) scanVisits(rows driver.Rows) ([]models.VisitEvent, error) {
	events := make([]models.VisitEvent, 0)
	for rows.Next() {
		var (
			event    models.VisitEvent
			ts       time.Time
			duration int64
			device   string
		)
		if err := rows.Scan(&event.ID, &event.Path, &ts, &duration, &device); err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		event.Timestamp = ts.UTC()
		event.SessionDuration = duration
		event.DeviceType, _ = models.ParseDeviceType(device)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during visit query: %w", err)
	}
	return events, nil
}
