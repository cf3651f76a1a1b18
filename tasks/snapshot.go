// api/tasks/snapshot.go
package tasks

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stallpoint/api/analytics"
)

// snapshotSchedule runs the rollup shortly after midnight UTC, when the
// previous day's bucket is complete.
const snapshotSchedule = "0 3 * * *"

// SnapshotWriter is the slice of the snapshot store the job writes to.
type SnapshotWriter interface {
	UpsertSnapshot(ctx context.Context, date time.Time, totalVisits, averageDuration int64) error
}

// SnapshotJob materializes yesterday's visit totals into the
// visit_snapshots table. The snapshot is a cache outside the analytics
// core: the core keeps recomputing from the raw event log, the dashboard
// reads the rollups for cheap history charts.
type SnapshotJob struct {
	events    analytics.EventSource
	snapshots SnapshotWriter
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewSnapshotJob(events analytics.EventSource, snapshots SnapshotWriter, logger *zap.SugaredLogger) *SnapshotJob {
	return &SnapshotJob{
		events:    events,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Run computes and stores the rollup for yesterday (UTC).
func (j *SnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := j.now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	end := yesterday.Add(24*time.Hour - time.Nanosecond)

	events, err := j.events.SelectRange(ctx, yesterday, end)
	if err != nil {
		j.logger.Errorw("snapshot job: failed to select events", "date", yesterday, "error", err)
		return
	}

	totalVisits := int64(analytics.TotalVisits(events))
	averageDuration := analytics.AverageSessionDuration(events)

	if err := j.snapshots.UpsertSnapshot(ctx, yesterday, totalVisits, averageDuration); err != nil {
		j.logger.Errorw("snapshot job: failed to store snapshot", "date", yesterday, "error", err)
		return
	}

	j.logger.Infow("snapshot job finished", "date", yesterday.Format("2006-01-02"), "visits", totalVisits)
}

// NewScheduler wires the daily jobs onto a cron runner. The caller owns
// Start/Stop.
func NewScheduler(snapshotJob *SnapshotJob, logger *zap.SugaredLogger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(snapshotSchedule, snapshotJob); err != nil {
		return nil, err
	}
	logger.Infow("scheduler configured", "snapshot_schedule", snapshotSchedule)
	return c, nil
}
