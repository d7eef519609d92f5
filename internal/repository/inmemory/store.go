// Package inmemory is a mutex-guarded stand-in for the external store,
// used by tests and the dev repository mode. It mirrors the backend's
// observable behavior, including the audit trigger on task updates.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/models"
	"taskboard/internal/repository"
)

type Store struct {
	mtx      sync.RWMutex
	tasks    map[uuid.UUID]*models.Task
	order    []uuid.UUID
	profiles map[uuid.UUID]*models.Profile
	history  []*models.HistoryEntry
	now      func() time.Time
}

func New() *Store {
	return &Store{
		tasks:    make(map[uuid.UUID]*models.Task),
		profiles: make(map[uuid.UUID]*models.Profile),
		now:      time.Now,
	}
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// AddProfile seeds a directory record, standing in for the signup
// trigger of the real backend.
func (s *Store) AddProfile(p *models.Profile) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.profiles[p.ID] = p
}

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	profiles := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := *p
		profiles = append(profiles, &cp)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (s *Store) CreateTask(ctx context.Context, n models.NewTask) (*models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	status := n.Status
	if status == "" {
		status = models.StatusPending
	}

	t := &models.Task{
		ID:          uuid.New(),
		Title:       n.Title,
		Description: n.Description,
		Status:      status,
		AssignedTo:  n.AssignedTo,
		DueDate:     n.DueDate,
		CreatedAt:   s.now(),
	}
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	return s.withAssignee(t), nil
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.withAssignee(t), nil
}

func (s *Store) GetTasks(ctx context.Context, filter models.Filter) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.Task{}
	for _, id := range s.order {
		t := s.tasks[id]
		if status, ok := filter.Status(); ok && t.Status != status {
			continue
		}
		res = append(res, s.withAssignee(t))
	}

	// Due date ascending, null due dates last, ties keep insertion order.
	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i].DueDate, res[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return res, nil
}

func (s *Store) UpdateTask(ctx context.Context, id uuid.UUID, opts ...models.TaskOption) (*models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	before := *t
	for _, opt := range opts {
		opt(t)
	}
	s.recordChanges(ctx, &before, t)
	return s.withAssignee(t), nil
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) CountByStatus(ctx context.Context) (models.Counts, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	counts := models.Counts{All: len(s.tasks)}
	for _, t := range s.tasks {
		switch t.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusInProgress:
			counts.InProgress++
		case models.StatusCompleted:
			counts.Completed++
		}
	}
	return counts, nil
}

func (s *Store) GetHistory(ctx context.Context, taskID uuid.UUID) ([]*models.HistoryEntry, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	entries := []*models.HistoryEntry{}
	for _, e := range s.history {
		if e.TaskID == taskID {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ChangedAt.After(entries[j].ChangedAt)
	})
	return entries, nil
}

// withAssignee resolves the joined profile. Caller must hold the lock.
func (s *Store) withAssignee(t *models.Task) *models.Task {
	cp := *t
	cp.Assignee = nil
	if cp.AssignedTo != nil {
		if p, ok := s.profiles[*cp.AssignedTo]; ok {
			pc := *p
			cp.Assignee = &pc
		}
	}
	return &cp
}

// recordChanges mirrors the audit trigger of the real store: one entry
// per changed field, attributed to the actor on the context, skipped
// when no actor is attached. Caller must hold the lock.
func (s *Store) recordChanges(ctx context.Context, before, after *models.Task) {
	actor, ok := repository.ActorFrom(ctx)
	if !ok {
		return
	}

	append_ := func(field string, oldV, newV *string) {
		s.history = append(s.history, &models.HistoryEntry{
			ID:           uuid.New(),
			TaskID:       after.ID,
			FieldChanged: field,
			OldValue:     oldV,
			NewValue:     newV,
			ChangedBy:    actor,
			ChangedAt:    s.now(),
		})
	}

	if before.Title != after.Title {
		append_("title", strPtr(before.Title), strPtr(after.Title))
	}
	if !strEq(before.Description, after.Description) {
		append_("description", before.Description, after.Description)
	}
	if before.Status != after.Status {
		append_("status", strPtr(string(before.Status)), strPtr(string(after.Status)))
	}
	if !uuidEq(before.AssignedTo, after.AssignedTo) {
		append_("assigned_to", uuidStr(before.AssignedTo), uuidStr(after.AssignedTo))
	}
	if !dateEq(before.DueDate, after.DueDate) {
		append_("due_date", dateStr(before.DueDate), dateStr(after.DueDate))
	}
}

func strPtr(s string) *string { return &s }

func strEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uuidEq(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uuidStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func dateEq(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func dateStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
