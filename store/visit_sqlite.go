// api/store/visit_sqlite.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // CGO-free SQLite

	"stallpoint/api/models"
)

// SQLiteVisitStore keeps the site_visits log in a local SQLite file. It is
// the default backend for development and tests; production deployments
// point VISITS_BACKEND at ClickHouse instead.
type SQLiteVisitStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func NewSQLiteVisitStore(databasePath string, logger *zap.SugaredLogger) (*SQLiteVisitStore, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", databasePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open visits database: %w", err)
	}

	if err := createVisitTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteVisitStore{db: db, logger: logger}, nil
}

func createVisitTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS site_visits(
	  id               TEXT    PRIMARY KEY,
	  path             TEXT    NOT NULL,
	  ts_utc           INTEGER NOT NULL,
	  session_duration INTEGER NOT NULL DEFAULT 0,
	  device_type      TEXT    NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_site_visits_ts   ON site_visits(ts_utc);
	CREATE INDEX IF NOT EXISTS idx_site_visits_path ON site_visits(path);
	`)
	if err != nil {
		return fmt.Errorf("failed to create visits tables: %w", err)
	}
	return nil
}

func (s *SQLiteVisitStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteVisitStore) Append(ctx context.Context, event models.VisitEvent) (string, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO site_visits(id, path, ts_utc, session_duration, device_type) VALUES(?,?,?,?,?)`,
		event.ID,
		event.Path,
		event.Timestamp.UTC().Unix(),
		event.SessionDuration,
		string(event.DeviceType),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert visit: %w", err)
	}
	return event.ID, nil
}

func (s *SQLiteVisitStore) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM site_visits`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return count, nil
}

func (s *SQLiteVisitStore) CountByPath(ctx context.Context, path string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM site_visits WHERE path = ?`, path).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits for path %s: %w", path, err)
	}
	return count, nil
}

func (s *SQLiteVisitStore) SelectRange(ctx context.Context, start, end time.Time) ([]models.VisitEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, ts_utc, session_duration, device_type
		FROM site_visits
		WHERE ts_utc >= ? AND ts_utc <= ?
		ORDER BY ts_utc ASC
	`, start.UTC().Unix(), end.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query visits in range: %w", err)
	}
	defer rows.Close()
	return scanSQLiteVisits(rows)
}

func (s *SQLiteVisitStore) SelectAll(ctx context.Context) ([]models.VisitEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, ts_utc, session_duration, device_type
		FROM site_visits
		ORDER BY ts_utc ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query visit history: %w", err)
	}
	defer rows.Close()
	return scanSQLiteVisits(rows)
}

func scanSQLiteVisits(rows *sql.Rows) ([]models.VisitEvent, error) {
	events := make([]models.VisitEvent, 0)
	for rows.Next() {
		var (
			event  models.VisitEvent
			tsUTC  int64
			device string
		)
		if err := rows.Scan(&event.ID, &event.Path, &tsUTC, &event.SessionDuration, &device); err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		event.Timestamp = time.Unix(tsUTC, 0).UTC()
		event.DeviceType, _ = models.ParseDeviceType(device)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during visit query: %w", err)
	}
	return events, nil
}
