package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Human renders the stored value for display ("in_progress" -> "in progress").
func (s Status) Human() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      Status     `json:"status" db:"status"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" db:"assigned_to"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	// Assignee is populated by the joined read; nil when unassigned.
	Assignee *Profile `json:"assignee,omitempty" db:"-"`
}

// NewTask carries the client-supplied fields of a create request.
// The store assigns ID and CreatedAt; an empty Status means pending.
type NewTask struct {
	Title       string
	Description *string
	Status      Status
	AssignedTo  *uuid.UUID
	DueDate     *time.Time
}

// Filter selects the task list view. FilterAll is the unconstrained view,
// the other values match a single status.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterPending    Filter = Filter(StatusPending)
	FilterInProgress Filter = Filter(StatusInProgress)
	FilterCompleted  Filter = Filter(StatusCompleted)
)

func (f Filter) Valid() bool {
	return f == FilterAll || Status(f).Valid()
}

// Status returns the status constraint of the filter, false for FilterAll.
func (f Filter) Status() (Status, bool) {
	if f == FilterAll {
		return "", false
	}
	return Status(f), true
}

// Counts are the four aggregates over the full unfiltered dataset.
type Counts struct {
	All        int `json:"all"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}
