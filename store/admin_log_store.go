package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stallpoint/api/models"
)

const (
	defaultLogPageLimit = 20
	maxLogPageLimit     = 100
)

// AdminLogStore keeps the append-only audit trail shown on the admin
// dashboard. Entries are only ever inserted and listed, never edited.
type AdminLogStore struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

func NewAdminLogStore(db *sqlx.DB, logger *zap.SugaredLogger) *AdminLogStore {
	return &AdminLogStore{db: db, logger: logger}
}

func (s *AdminLogStore) Record(ctx context.Context, userID int, action, detail string) error {
	query := `INSERT INTO admin_logs (user_id, action, detail) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, userID, action, detail); err != nil {
		// Audit logging must not fail the action it describes.
		s.logger.Errorw("failed to record admin log", "action", action, "error", err)
		return fmt.Errorf("failed to record admin log: %w", err)
	}
	return nil
}

// ListPage returns one page of the audit trail, newest entries first.
// Page numbers start at 1; limit is clamped to [1, 100].
func (s *AdminLogStore) ListPage(ctx context.Context, page, limit int) (*models.AdminLogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLogPageLimit
	}
	if limit > maxLogPageLimit {
		limit = maxLogPageLimit
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admin_logs`); err != nil {
		return nil, fmt.Errorf("failed to count admin logs: %w", err)
	}

	logs := make([]models.AdminLog, 0, limit)
	query := `
		SELECT id, user_id, action, detail, created_at
		FROM admin_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2;
	`
	offset := (page - 1) * limit
	if err := s.db.SelectContext(ctx, &logs, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list admin logs: %w", err)
	}

	return &models.AdminLogPage{
		Logs:    logs,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+len(logs)) < total,
	}, nil
}
