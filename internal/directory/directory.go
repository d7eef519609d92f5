// Package directory caches the profile directory for name resolution
// and assignee dropdowns. Lookups never touch the remote store; a
// background worker keeps the snapshot fresh.
package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/models"
	"taskboard/internal/repository"
)

type Directory struct {
	store repository.ProfileStore

	mu       sync.RWMutex
	profiles map[uuid.UUID]*models.Profile
	ordered  []*models.Profile
}

func New(store repository.ProfileStore) *Directory {
	return &Directory{
		store:    store,
		profiles: make(map[uuid.UUID]*models.Profile),
	}
}

// Refresh replaces the snapshot from the store. On failure the previous
// snapshot is kept, stale names being preferable to no names.
func (d *Directory) Refresh(ctx context.Context) error {
	profiles, err := d.store.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("refreshing directory: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	d.mu.Lock()
	d.profiles = byID
	d.ordered = profiles
	d.mu.Unlock()
	return nil
}

func (d *Directory) Lookup(id uuid.UUID) (*models.Profile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.profiles[id]
	return p, ok
}

// All returns the snapshot in store order.
func (d *Directory) All() []*models.Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*models.Profile, len(d.ordered))
	copy(out, d.ordered)
	return out
}
