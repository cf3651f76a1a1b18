package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stallpoint/api/models"
)

// SnapshotStore keeps the daily visit rollups written by the snapshot job.
// One row per calendar day; re-running the job for a day overwrites that
// day's row so the job stays idempotent.
type SnapshotStore struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

func NewSnapshotStore(db *sqlx.DB, logger *zap.SugaredLogger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

func (s *SnapshotStore) UpsertSnapshot(ctx context.Context, date time.Time, totalVisits, averageDuration int64) error {
	query := `
		INSERT INTO visit_snapshots (snapshot_date, total_visits, average_duration)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_date)
		DO UPDATE SET total_visits = EXCLUDED.total_visits,
		              average_duration = EXCLUDED.average_duration;
	`
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if _, err := s.db.ExecContext(ctx, query, day, totalVisits, averageDuration); err != nil {
		return fmt.Errorf("failed to upsert visit snapshot: %w", err)
	}
	s.logger.Infow("visit snapshot stored", "date", day.Format("2006-01-02"), "visits", totalVisits)
	return nil
}

// ListRecent returns the latest n snapshots, newest first.
func (s *SnapshotStore) ListRecent(ctx context.Context, n int) ([]models.VisitSnapshot, error) {
	if n < 1 {
		n = 30
	}
	snapshots := make([]models.VisitSnapshot, 0, n)
	query := `
		SELECT id, snapshot_date, total_visits, average_duration, created_at
		FROM visit_snapshots
		ORDER BY snapshot_date DESC
		LIMIT $1;
	`
	if err := s.db.SelectContext(ctx, &snapshots, query, n); err != nil {
		return nil, fmt.Errorf("failed to list visit snapshots: %w", err)
	}
	return snapshots, nil
}
