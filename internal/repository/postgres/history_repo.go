package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/models"
)

// GetHistory reads the audit log for a task, newest first. History is
// supplementary: any failure is logged and an empty list is returned
// so a missing or broken audit relation never breaks the dashboard.
func (s *Storage) GetHistory(ctx context.Context, taskID uuid.UUID) ([]*models.HistoryEntry, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx,
		`SELECT id, task_id, field_changed, old_value, new_value, changed_by, changed_at
		FROM task_history
		WHERE task_id = $1
		ORDER BY changed_at DESC`, taskID)
	if err != nil {
		logger.Warn("Repository: audit log unavailable",
			zap.String("task_id", taskID.String()),
			zap.Error(err))
		return []*models.HistoryEntry{}, nil
	}
	defer rows.Close()

	entries := []*models.HistoryEntry{}
	for rows.Next() {
		e := &models.HistoryEntry{}
		err := rows.Scan(
			&e.ID,
			&e.TaskID,
			&e.FieldChanged,
			&e.OldValue,
			&e.NewValue,
			&e.ChangedBy,
			&e.ChangedAt,
		)
		if err != nil {
			logger.Warn("Repository: scanning history row", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		logger.Warn("Repository: iterating history rows", zap.Error(err))
		return []*models.HistoryEntry{}, nil
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return entries, nil
}
