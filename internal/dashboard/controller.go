// Package dashboard orchestrates the task board: loading and filtering
// tasks, count aggregation, and mutations with their reconciliation
// policies. Local state is a non-authoritative copy of the store, kept
// consistent by resyncing rather than by diffing.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

type Controller struct {
	store repository.TaskStore

	mu    sync.Mutex
	state State
	// seq/applied implement monotonic request sequencing: a load result
	// older than the last applied one is discarded, so rapid filter
	// changes cannot be overwritten by a stale response.
	seq     uint64
	applied uint64
}

func New(store repository.TaskStore) *Controller {
	return &Controller{
		store: store,
		state: State{Filter: models.FilterAll},
	}
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot()
}

func (c *Controller) filter() models.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Filter
}

// Load fetches the task list for the filter plus the unfiltered counts
// and applies both, unless a newer load finished in the meantime. On
// fetch failure the previous list stays visible and the error is
// recorded on the state.
func (c *Controller) Load(ctx context.Context, filter models.Filter) (State, error) {
	if !filter.Valid() {
		return c.Snapshot(), NewValidationError("status", "unknown filter "+string(filter))
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	tasks, err := c.store.GetTasks(ctx, filter)

	var counts models.Counts
	var countsErr error
	if err == nil {
		counts, countsErr = c.store.CountByStatus(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq <= c.applied {
		logger.Info("Dashboard: discarding stale load",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", c.applied),
			zap.String("filter", string(filter)))
		return c.state.snapshot(), nil
	}
	c.applied = seq

	c.state.Filter = filter
	if err != nil {
		logger.Error("Dashboard: load failed, keeping previous task list", err,
			zap.String("filter", string(filter)))
		c.state.LastError = "failed to load tasks"
		return c.state.snapshot(), NewRemoteUnavailable(err)
	}

	c.state.Tasks = tasks
	c.state.LastError = ""
	if countsErr != nil {
		logger.Warn("Dashboard: count refresh failed, keeping previous counts", zap.Error(countsErr))
	} else {
		c.state.Counts = counts
	}
	return c.state.snapshot(), nil
}

// ChangeStatus applies the change optimistically to local state, then
// persists. A persistence failure rolls back via a full reload from the
// store, not by undoing the local edit.
func (c *Controller) ChangeStatus(ctx context.Context, id uuid.UUID, status models.Status) (State, error) {
	if !status.Valid() {
		return c.Snapshot(), NewValidationError("status", "unknown status "+string(status))
	}

	c.mu.Lock()
	for i, t := range c.state.Tasks {
		if t.ID == id {
			cp := *t
			cp.Status = status
			c.state.Tasks[i] = &cp
			break
		}
	}
	filter := c.state.Filter
	c.mu.Unlock()

	if _, err := c.store.UpdateTask(ctx, id, models.WithStatus(status)); err != nil {
		logger.Warn("Dashboard: status change failed, resyncing",
			zap.String("task_id", id.String()),
			zap.String("outcome", string(MutationRolledBack)),
			zap.Error(err))
		state, _ := c.Load(ctx, filter)
		return state, c.mapStoreError(err, id)
	}

	logger.Info("Dashboard: status changed",
		zap.String("task_id", id.String()),
		zap.String("status", string(status)),
		zap.String("outcome", string(MutationCommitted)))

	// A task changed into a status outside the active filter leaves the
	// view; counts shift either way.
	if filter != models.FilterAll && filter != models.Filter(status) {
		return c.Load(ctx, filter)
	}
	c.refreshCounts(ctx)
	return c.Snapshot(), nil
}

// ChangeAssignee persists first and touches local state only on
// success. An empty assignee means unassign, never an empty-string
// user.
func (c *Controller) ChangeAssignee(ctx context.Context, id uuid.UUID, assignee string) (State, error) {
	var target *uuid.UUID
	if strings.TrimSpace(assignee) != "" {
		parsed, err := uuid.Parse(assignee)
		if err != nil {
			return c.Snapshot(), NewValidationError("assigned_to", "not a valid user id")
		}
		target = &parsed
	}

	updated, err := c.store.UpdateTask(ctx, id, models.WithAssignee(target))
	if err != nil {
		logger.Warn("Dashboard: assignee change failed, state unchanged",
			zap.String("task_id", id.String()),
			zap.Error(err))
		return c.Snapshot(), c.mapStoreError(err, id)
	}

	c.mu.Lock()
	for i, t := range c.state.Tasks {
		if t.ID == id {
			c.state.Tasks[i] = updated
			break
		}
	}
	c.mu.Unlock()

	logger.Info("Dashboard: assignee changed",
		zap.String("task_id", id.String()),
		zap.String("outcome", string(MutationCommitted)))
	return c.Snapshot(), nil
}

// Claim assigns the task to the acting principal.
func (c *Controller) Claim(ctx context.Context, id uuid.UUID, principal uuid.UUID) (State, error) {
	return c.ChangeAssignee(ctx, id, principal.String())
}

// Delete refuses unconfirmed requests and removes the task from local
// state only after the store call succeeds. A NotFound removes nothing.
func (c *Controller) Delete(ctx context.Context, id uuid.UUID, confirmed bool) (State, error) {
	if !confirmed {
		return c.Snapshot(), NewValidationError("confirm", "deletion requires explicit confirmation")
	}

	if err := c.store.DeleteTask(ctx, id); err != nil {
		logger.Warn("Dashboard: delete failed, state unchanged",
			zap.String("task_id", id.String()),
			zap.Error(err))
		return c.Snapshot(), c.mapStoreError(err, id)
	}

	c.mu.Lock()
	for i, t := range c.state.Tasks {
		if t.ID == id {
			c.state.Tasks = append(c.state.Tasks[:i], c.state.Tasks[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	logger.Info("Dashboard: task deleted", zap.String("task_id", id.String()))
	c.refreshCounts(ctx)
	return c.Snapshot(), nil
}

// Create validates, persists, then fully reloads the current filter
// view; counts and ordering have to be recomputed anyway. New tasks
// always start pending.
func (c *Controller) Create(ctx context.Context, n models.NewTask) (*models.Task, State, error) {
	if strings.TrimSpace(n.Title) == "" {
		return nil, c.Snapshot(), NewValidationError("title", "must not be empty")
	}
	n.Status = models.StatusPending

	created, err := c.store.CreateTask(ctx, n)
	if err != nil {
		logger.Error("Dashboard: create failed", err)
		return nil, c.Snapshot(), NewRemoteUnavailable(err)
	}

	logger.Info("Dashboard: task created", zap.String("task_id", created.ID.String()))
	state, loadErr := c.Load(ctx, c.filter())
	return created, state, loadErr
}

// History passes the audit log through; the store already degrades to
// an empty list when the audit mechanism is unavailable.
func (c *Controller) History(ctx context.Context, id uuid.UUID) ([]*models.HistoryEntry, error) {
	return c.store.GetHistory(ctx, id)
}

func (c *Controller) refreshCounts(ctx context.Context) {
	counts, err := c.store.CountByStatus(ctx)
	if err != nil {
		logger.Warn("Dashboard: count refresh failed, keeping previous counts", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.state.Counts = counts
	c.mu.Unlock()
}

func (c *Controller) mapStoreError(err error, id uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NewNotFound("task", id.String())
	}
	return NewRemoteUnavailable(err)
}
