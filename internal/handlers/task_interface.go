package handlers

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/dashboard"
	"taskboard/internal/models"
)

type Dashboard interface {
	Load(ctx context.Context, filter models.Filter) (dashboard.State, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status models.Status) (dashboard.State, error)
	ChangeAssignee(ctx context.Context, id uuid.UUID, assignee string) (dashboard.State, error)
	Claim(ctx context.Context, id uuid.UUID, principal uuid.UUID) (dashboard.State, error)
	Delete(ctx context.Context, id uuid.UUID, confirmed bool) (dashboard.State, error)
	Create(ctx context.Context, n models.NewTask) (*models.Task, dashboard.State, error)
	History(ctx context.Context, id uuid.UUID) ([]*models.HistoryEntry, error)
}

type Directory interface {
	Lookup(id uuid.UUID) (*models.Profile, bool)
	All() []*models.Profile
}
