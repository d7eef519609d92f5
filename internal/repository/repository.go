// Package repository defines the contracts against the external task
// store. Persistence and row-level authorization live in the store
// itself; implementations here only move rows in and out.
package repository

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/models"
)

type TaskStore interface {
	// GetTasks is a single joined fetch resolving the assignee profile,
	// ordered by due date ascending with null due dates last.
	GetTasks(ctx context.Context, filter models.Filter) ([]*models.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	CreateTask(ctx context.Context, n models.NewTask) (*models.Task, error)
	// UpdateTask applies only the supplied options; ErrNotFound when the
	// id does not exist.
	UpdateTask(ctx context.Context, id uuid.UUID, opts ...models.TaskOption) (*models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	// CountByStatus aggregates over the full unfiltered dataset.
	CountByStatus(ctx context.Context) (models.Counts, error)
	// GetHistory returns audit entries newest first. History is
	// supplementary: implementations return an empty list rather than an
	// error when the audit relation is unavailable.
	GetHistory(ctx context.Context, taskID uuid.UUID) ([]*models.HistoryEntry, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
}

// Store is the full surface of one backend.
type Store interface {
	TaskStore
	ProfileStore
	HealthCheck(ctx context.Context) error
}
