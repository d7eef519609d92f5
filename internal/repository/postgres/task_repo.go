package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

const slowQuery = 100 * time.Millisecond

// taskColumns is the joined projection shared by every task read. The
// explicit NULLS LAST keeps unscheduled tasks at the bottom regardless
// of server defaults.
const taskColumns = `t.id, t.title, t.description, t.status, t.assigned_to, t.due_date, t.created_at,
				p.id, p.role, p.display_name, p.created_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{}
	var (
		assigneeID      *uuid.UUID
		assigneeRole    *string
		assigneeName    *string
		assigneeCreated *time.Time
	)

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.AssignedTo,
		&t.DueDate,
		&t.CreatedAt,
		&assigneeID,
		&assigneeRole,
		&assigneeName,
		&assigneeCreated,
	)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		t.Assignee = &models.Profile{
			ID:          *assigneeID,
			Role:        models.Role(*assigneeRole),
			DisplayName: assigneeName,
			CreatedAt:   *assigneeCreated,
		}
	}
	return t, nil
}

func (s *Storage) GetTasks(ctx context.Context, filter models.Filter) ([]*models.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
			FROM tasks t
			LEFT JOIN profiles p ON p.id = t.assigned_to`
	args := []any{}

	if status, ok := filter.Status(); ok {
		query += ` WHERE t.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY t.due_date ASC NULLS LAST`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: fetching tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: scanning task row", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating task rows", err)
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
			FROM tasks t
			LEFT JOIN profiles p ON p.id = t.assigned_to
			WHERE t.id = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: fetching task", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("fetching task: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

func (s *Storage) CreateTask(ctx context.Context, n models.NewTask) (*models.Task, error) {
	start := time.Now()

	status := n.Status
	if status == "" {
		status = models.StatusPending
	}

	query := `INSERT INTO tasks (id, title, description, status, assigned_to, due_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at`

	t := &models.Task{
		ID:          uuid.New(),
		Title:       n.Title,
		Description: n.Description,
		Status:      status,
		AssignedTo:  n.AssignedTo,
		DueDate:     n.DueDate,
	}

	err := s.withActor(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query,
			t.ID,
			t.Title,
			t.Description,
			t.Status,
			t.AssignedTo,
			t.DueDate,
		).Scan(&t.CreatedAt)
	})
	if err != nil {
		logger.Error("Repository: creating task", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

// UpdateTask is a read-modify-write: the current row is loaded inside
// the transaction, the options are applied, and every mutable column
// is written back. Last write wins at the row level.
func (s *Storage) UpdateTask(ctx context.Context, id uuid.UUID, opts ...models.TaskOption) (*models.Task, error) {
	start := time.Now()

	var updated *models.Task
	err := s.withActor(ctx, func(tx pgx.Tx) error {
		current := &models.Task{}
		err := tx.QueryRow(ctx,
			`SELECT id, title, description, status, assigned_to, due_date, created_at
			FROM tasks WHERE id = $1 FOR UPDATE`, id,
		).Scan(
			&current.ID,
			&current.Title,
			&current.Description,
			&current.Status,
			&current.AssignedTo,
			&current.DueDate,
			&current.CreatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("loading task: %w", err)
		}

		for _, opt := range opts {
			opt(current)
		}

		_, err = tx.Exec(ctx,
			`UPDATE tasks
			SET title = $1, description = $2, status = $3, assigned_to = $4, due_date = $5
			WHERE id = $6`,
			current.Title,
			current.Description,
			current.Status,
			current.AssignedTo,
			current.DueDate,
			current.ID,
		)
		if err != nil {
			return fmt.Errorf("updating task: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Repository: task not found on update", zap.String("task_id", id.String()))
			return nil, err
		}
		logger.Error("Repository: updating task", err, zap.Duration("ms", time.Since(start)))
		return nil, err
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	_ = updated

	// Re-read joined so the caller gets the resolved assignee.
	return s.GetTask(ctx, id)
}

func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: deleting task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		logger.Warn("Repository: task not found on delete", zap.String("task_id", id.String()))
		return repository.ErrNotFound
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// CountByStatus issues four independent aggregates so the counts always
// reflect the full dataset, never the currently filtered view.
func (s *Storage) CountByStatus(ctx context.Context) (models.Counts, error) {
	start := time.Now()

	var counts models.Counts
	targets := []struct {
		status *models.Status
		dest   *int
	}{
		{nil, &counts.All},
		{ptr(models.StatusPending), &counts.Pending},
		{ptr(models.StatusInProgress), &counts.InProgress},
		{ptr(models.StatusCompleted), &counts.Completed},
	}

	for _, target := range targets {
		var err error
		if target.status == nil {
			err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(target.dest)
		} else {
			err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status = $1`, *target.status).Scan(target.dest)
		}
		if err != nil {
			logger.Error("Repository: counting tasks", err, zap.Duration("ms", time.Since(start)))
			return models.Counts{}, fmt.Errorf("counting tasks: %w", err)
		}
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return counts, nil
}

func ptr(s models.Status) *models.Status { return &s }

// withActor runs fn in a transaction, forwarding the mutating principal
// to the audit trigger through a transaction-local setting.
func (s *Storage) withActor(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if actor, ok := repository.ActorFrom(ctx); ok {
		if _, err := tx.Exec(ctx, `SELECT set_config('taskboard.actor', $1, true)`, actor.String()); err != nil {
			return fmt.Errorf("setting actor: %w", err)
		}
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
