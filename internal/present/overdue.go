// Package present holds the pure derived-data transforms of the
// dashboard: overdue detection, display ordering, badges, name
// resolution and history sentences. Nothing here performs I/O.
package present

import (
	"time"

	"taskboard/internal/models"
)

// IsOverdue reports whether a task is past due: not completed, has a
// due date, and that date is strictly before today. Both sides are
// compared as calendar dates in today's location, never as timestamps,
// to avoid timezone off-by-one errors.
func IsOverdue(t *models.Task, today time.Time) bool {
	if t.Status == models.StatusCompleted || t.DueDate == nil {
		return false
	}

	dy, dm, dd := t.DueDate.Date()
	ty, tm, td := today.Date()
	if dy != ty {
		return dy < ty
	}
	if dm != tm {
		return dm < tm
	}
	return dd < td
}

// SortForDisplay stably partitions the list so that overdue tasks come
// first. Within each partition the input order (the store's due-date
// ordering) is preserved; this is a reordering, not a re-sort.
func SortForDisplay(tasks []*models.Task, today time.Time) []*models.Task {
	overdue := make([]*models.Task, 0, len(tasks))
	rest := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if IsOverdue(t, today) {
			overdue = append(overdue, t)
		} else {
			rest = append(rest, t)
		}
	}
	return append(overdue, rest...)
}
