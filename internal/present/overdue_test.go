package present_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"taskboard/internal/models"
	"taskboard/internal/present"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestIsOverdue(t *testing.T) {
	tests := []struct {
		name    string
		status  models.Status
		due     *time.Time
		today   time.Time
		overdue bool
	}{
		{
			name:    "due date in the past",
			status:  models.StatusPending,
			due:     datePtr(2024, time.January, 1),
			today:   date(2024, time.June, 1),
			overdue: true,
		},
		{
			name:    "due yesterday",
			status:  models.StatusInProgress,
			due:     datePtr(2024, time.May, 31),
			today:   date(2024, time.June, 1),
			overdue: true,
		},
		{
			name:    "due today is not overdue",
			status:  models.StatusPending,
			due:     datePtr(2024, time.June, 1),
			today:   date(2024, time.June, 1),
			overdue: false,
		},
		{
			name:    "due in the future",
			status:  models.StatusPending,
			due:     datePtr(2024, time.June, 2),
			today:   date(2024, time.June, 1),
			overdue: false,
		},
		{
			name:    "completed tasks are never overdue",
			status:  models.StatusCompleted,
			due:     datePtr(2024, time.January, 1),
			today:   date(2024, time.June, 1),
			overdue: false,
		},
		{
			name:    "no due date",
			status:  models.StatusPending,
			due:     nil,
			today:   date(2024, time.June, 1),
			overdue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &models.Task{
				ID:      uuid.New(),
				Title:   "Ship report",
				Status:  tt.status,
				DueDate: tt.due,
			}
			assert.Equal(t, tt.overdue, present.IsOverdue(task, tt.today))
		})
	}
}

// Timestamps on either side must not shift the calendar comparison:
// 23:59 local on the due day is still "due today", not overdue.
func TestIsOverdueComparesCalendarDates(t *testing.T) {
	due := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	task := &models.Task{Status: models.StatusPending, DueDate: &due}

	lateEvening := time.Date(2024, time.June, 1, 23, 59, 0, 0, time.Local)
	assert.False(t, present.IsOverdue(task, lateEvening))

	nextMorning := time.Date(2024, time.June, 2, 0, 1, 0, 0, time.Local)
	assert.True(t, present.IsOverdue(task, nextMorning))
}

func TestBadge(t *testing.T) {
	today := date(2024, time.June, 1)

	overdueTask := &models.Task{
		Title:   "Ship report",
		Status:  models.StatusPending,
		DueDate: datePtr(2024, time.January, 1),
	}
	assert.Equal(t, "Overdue", present.Badge(overdueTask, today), "overdue overrides the pending badge")

	completedLate := &models.Task{
		Status:  models.StatusCompleted,
		DueDate: datePtr(2024, time.January, 1),
	}
	assert.Equal(t, "Completed", present.Badge(completedLate, today))

	assert.Equal(t, "Pending", present.Badge(&models.Task{Status: models.StatusPending}, today))
	assert.Equal(t, "In Progress", present.Badge(&models.Task{Status: models.StatusInProgress}, today))
}

func TestSortForDisplayPartition(t *testing.T) {
	today := date(2024, time.June, 1)

	a := &models.Task{Title: "a", Status: models.StatusPending, DueDate: datePtr(2024, time.May, 1)}
	b := &models.Task{Title: "b", Status: models.StatusPending, DueDate: datePtr(2024, time.July, 1)}
	c := &models.Task{Title: "c", Status: models.StatusInProgress, DueDate: datePtr(2024, time.May, 20)}
	d := &models.Task{Title: "d", Status: models.StatusCompleted, DueDate: datePtr(2024, time.January, 1)}

	sorted := present.SortForDisplay([]*models.Task{a, b, c, d}, today)

	// Overdue first (a then c, input order kept), then the rest (b, d).
	assert.Equal(t, []*models.Task{a, c, b, d}, sorted)
}
