package directory_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/directory"
	"taskboard/internal/models"
)

type stubProfileStore struct {
	profiles []*models.Profile
	err      error
	calls    atomic.Int32
}

func (s *stubProfileStore) GetProfile(context.Context, uuid.UUID) (*models.Profile, error) {
	return nil, errors.New("not used")
}

func (s *stubProfileStore) ListProfiles(context.Context) ([]*models.Profile, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

func TestRefreshAndLookup(t *testing.T) {
	alice := &models.Profile{ID: uuid.New(), Role: models.RoleStaff}
	bob := &models.Profile{ID: uuid.New(), Role: models.RoleAdmin}
	store := &stubProfileStore{profiles: []*models.Profile{alice, bob}}

	dir := directory.New(store)
	require.NoError(t, dir.Refresh(context.Background()))

	got, ok := dir.Lookup(alice.ID)
	require.True(t, ok)
	assert.Equal(t, alice, got)

	_, ok = dir.Lookup(uuid.New())
	assert.False(t, ok)

	all := dir.All()
	require.Len(t, all, 2)
	assert.Equal(t, alice, all[0], "store order is preserved")
	assert.Equal(t, bob, all[1])
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	alice := &models.Profile{ID: uuid.New(), Role: models.RoleStaff}
	store := &stubProfileStore{profiles: []*models.Profile{alice}}

	dir := directory.New(store)
	require.NoError(t, dir.Refresh(context.Background()))

	store.err = errors.New("connection refused")
	require.Error(t, dir.Refresh(context.Background()))

	got, ok := dir.Lookup(alice.ID)
	require.True(t, ok, "stale snapshot survives a failed refresh")
	assert.Equal(t, alice, got)
	assert.Len(t, dir.All(), 1)
}

func TestEmptyDirectory(t *testing.T) {
	dir := directory.New(&stubProfileStore{})

	_, ok := dir.Lookup(uuid.New())
	assert.False(t, ok)
	assert.Empty(t, dir.All())
}

func TestRefreshWorkerTicksAndStops(t *testing.T) {
	store := &stubProfileStore{}
	dir := directory.New(store)
	worker := directory.NewRefreshWorker(dir, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return store.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
