package present

import (
	"time"

	"taskboard/internal/models"
)

// Badge is the status label of a task card. "Overdue" overrides the
// plain status label whenever the overdue predicate holds.
func Badge(t *models.Task, today time.Time) string {
	if IsOverdue(t, today) {
		return "Overdue"
	}
	switch t.Status {
	case models.StatusPending:
		return "Pending"
	case models.StatusInProgress:
		return "In Progress"
	case models.StatusCompleted:
		return "Completed"
	}
	return string(t.Status)
}
