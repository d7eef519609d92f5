package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskOption mutates one field during a partial update. Only the
// options supplied to UpdateTask are applied; everything else keeps
// its stored value.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(t *Task) {
		t.Title = title
	}
}

func WithDescription(description *string) TaskOption {
	return func(t *Task) {
		t.Description = description
	}
}

func WithStatus(status Status) TaskOption {
	return func(t *Task) {
		t.Status = status
	}
}

// WithAssignee sets or, with nil, clears the assignee.
func WithAssignee(id *uuid.UUID) TaskOption {
	return func(t *Task) {
		t.AssignedTo = id
		t.Assignee = nil
	}
}

func WithDueDate(due *time.Time) TaskOption {
	return func(t *Task) {
		t.DueDate = due
	}
}
