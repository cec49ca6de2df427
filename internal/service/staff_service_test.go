package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/directory"
	"github.com/spec-kit/rank-service/internal/events"
	"github.com/spec-kit/rank-service/internal/observability"
	"github.com/spec-kit/rank-service/internal/playerstore"
	"github.com/spec-kit/rank-service/internal/repository"
	"github.com/spec-kit/rank-service/internal/staff"
)

type staffFixture struct {
	svc     *StaffService
	repo    *repository.MemoryStaffRepository
	dir     *directory.MemoryDirectory
	players *playerstore.Store
	events  []events.Event
}

func newStaffFixture(t *testing.T) *staffFixture {
	t.Helper()
	f := &staffFixture{
		repo: repository.NewMemoryStaffRepository(),
		dir:  directory.NewMemoryDirectory(),
	}
	f.players = playerstore.NewStore(filepath.Join(t.TempDir(), "players.json"), zap.NewNop())
	registry := staff.NewRegistry(context.Background(), f.repo, time.Minute, zap.NewNop(), observability.NewMetrics())
	dispatcher := events.NewInMemoryDispatcher()
	capture := func(_ context.Context, event events.Event) error {
		f.events = append(f.events, event)
		return nil
	}
	dispatcher.Subscribe(events.EventStaffAdded, capture)
	dispatcher.Subscribe(events.EventStaffRemoved, capture)
	f.svc = NewStaffService(registry, f.dir, f.players, dispatcher, "staff", zap.NewNop())
	return f
}

func TestStaffAdd(t *testing.T) {
	ctx := context.Background()
	alex := uuid.New()

	t.Run("adds to roster, directory and player store", func(t *testing.T) {
		f := newStaffFixture(t)

		require.NoError(t, f.svc.Add(ctx, alex, "Alex"))

		roster, err := f.svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[uuid.UUID]string{alex: "Alex"}, roster)
		assert.Equal(t, []string{"staff"}, f.dir.Membership(alex))

		id, ok := f.players.Lookup("alex")
		require.True(t, ok)
		assert.Equal(t, alex, id)

		require.Len(t, f.events, 1)
		assert.Equal(t, events.EventStaffAdded, f.events[0].Type)
	})

	t.Run("duplicate add conflicts", func(t *testing.T) {
		f := newStaffFixture(t)
		require.NoError(t, f.svc.Add(ctx, alex, "Alex"))

		err := f.svc.Add(ctx, alex, "Alex")
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", domainCode(t, err))
		assert.Len(t, f.events, 1)
	})

	t.Run("roster outage surfaces as unavailable", func(t *testing.T) {
		f := newStaffFixture(t)
		f.repo.FailNext = 1

		err := f.svc.Add(ctx, alex, "Alex")
		require.Error(t, err)
		assert.Equal(t, "DEPENDENCY_UNAVAILABLE", domainCode(t, err))
		assert.Empty(t, f.events)
	})

	t.Run("a directory failure does not undo the roster insert", func(t *testing.T) {
		f := newStaffFixture(t)
		f.dir.FailLoads = true

		require.NoError(t, f.svc.Add(ctx, alex, "Alex"))

		roster, err := f.svc.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, roster, alex)
		assert.Empty(t, f.dir.Membership(alex))
	})
}

func TestStaffRemove(t *testing.T) {
	ctx := context.Background()
	alex := uuid.New()

	t.Run("removes from the roster but keeps the group", func(t *testing.T) {
		f := newStaffFixture(t)
		require.NoError(t, f.svc.Add(ctx, alex, "Alex"))

		require.NoError(t, f.svc.Remove(ctx, alex))

		roster, err := f.svc.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, roster, alex)
		// The next promotion sweep reassigns; the group is not stripped here.
		assert.Equal(t, []string{"staff"}, f.dir.Membership(alex))

		require.Len(t, f.events, 2)
		assert.Equal(t, events.EventStaffRemoved, f.events[1].Type)
	})

	t.Run("removing an absent member is not found", func(t *testing.T) {
		f := newStaffFixture(t)
		err := f.svc.Remove(ctx, uuid.New())
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})
}
