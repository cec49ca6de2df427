package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/config"
	"github.com/spec-kit/rank-service/internal/directory"
	"github.com/spec-kit/rank-service/internal/ledger"
	"github.com/spec-kit/rank-service/internal/observability"
	"github.com/spec-kit/rank-service/internal/playerstore"
	"github.com/spec-kit/rank-service/internal/presence"
	"github.com/spec-kit/rank-service/internal/promotion"
	"github.com/spec-kit/rank-service/internal/rank"
)

type stubStaff struct {
	staff map[uuid.UUID]bool
	err   error
}

func (s *stubStaff) IsStaff(_ context.Context, identity uuid.UUID) (bool, error) {
	return s.staff[identity], s.err
}

type schedulerFixture struct {
	scheduler *Scheduler
	tracker   *presence.Tracker
	points    *ledger.MemoryLedger
	dir       *directory.MemoryDirectory
	staff     *stubStaff
	players   *playerstore.Store
	metrics   *observability.Metrics
	storePath string
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ranks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`ranks:
  - name: novice
    points: 0
  - name: veteran
    points: 500
`), 0o644))
	table, err := rank.NewTable(path, "ranks", zap.NewNop())
	require.NoError(t, err)

	f := &schedulerFixture{
		tracker:   presence.NewTracker(),
		points:    ledger.NewMemoryLedger(),
		dir:       directory.NewMemoryDirectory(),
		staff:     &stubStaff{staff: map[uuid.UUID]bool{}},
		metrics:   observability.NewMetrics(),
		storePath: filepath.Join(t.TempDir(), "players.json"),
	}
	f.players = playerstore.NewStore(f.storePath, zap.NewNop())

	engine := promotion.NewEngine(table, f.staff, f.points, f.dir, nil, promotion.Config{
		DefaultGroup: "default",
		StaffGroup:   "staff",
	}, zap.NewNop(), f.metrics)

	cfg := config.SchedulerConfig{PointAmount: 5}
	f.scheduler = NewScheduler(cfg, f.tracker, f.staff, f.points, engine, f.players, zap.NewNop(), f.metrics)
	return f
}

func TestPointTick(t *testing.T) {
	ctx := context.Background()

	t.Run("awards the configured amount to connected players", func(t *testing.T) {
		f := newSchedulerFixture(t)
		alex, casey := uuid.New(), uuid.New()
		f.tracker.Connect(alex, "Alex")
		f.tracker.Connect(casey, "Casey")

		f.scheduler.pointTick(ctx)
		f.scheduler.pointTick(ctx)

		total, err := f.points.GetPoints(ctx, alex)
		require.NoError(t, err)
		assert.Equal(t, 10, total)
		total, err = f.points.GetPoints(ctx, casey)
		require.NoError(t, err)
		assert.Equal(t, 10, total)
	})

	t.Run("staff never accrue", func(t *testing.T) {
		f := newSchedulerFixture(t)
		alex, mod := uuid.New(), uuid.New()
		f.staff.staff[mod] = true
		f.tracker.Connect(alex, "Alex")
		f.tracker.Connect(mod, "Mod")

		f.scheduler.pointTick(ctx)

		total, err := f.points.GetPoints(ctx, alex)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		total, err = f.points.GetPoints(ctx, mod)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("an unanswerable staff check skips the player", func(t *testing.T) {
		f := newSchedulerFixture(t)
		alex := uuid.New()
		f.tracker.Connect(alex, "Alex")
		f.staff.err = errors.New("roster unavailable")

		f.scheduler.pointTick(ctx)

		f.staff.err = nil
		total, err := f.points.GetPoints(ctx, alex)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("disconnected players are not awarded", func(t *testing.T) {
		f := newSchedulerFixture(t)
		alex := uuid.New()
		f.tracker.Connect(alex, "Alex")
		f.tracker.Disconnect(alex)

		f.scheduler.pointTick(ctx)

		total, err := f.points.GetPoints(ctx, alex)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestPromotionTick(t *testing.T) {
	ctx := context.Background()

	t.Run("sweeps every connected player", func(t *testing.T) {
		f := newSchedulerFixture(t)
		alex, casey := uuid.New(), uuid.New()
		require.NoError(t, f.points.SetPoints(ctx, alex, 650))
		require.NoError(t, f.points.SetPoints(ctx, casey, 10))
		f.tracker.Connect(alex, "Alex")
		f.tracker.Connect(casey, "Casey")

		f.scheduler.promotionTick(ctx)

		assert.Equal(t, []string{"veteran"}, f.dir.Membership(alex))
		assert.Equal(t, []string{"novice"}, f.dir.Membership(casey))
	})

	t.Run("one broken evaluation does not abort the sweep", func(t *testing.T) {
		f := newSchedulerFixture(t)
		alex := uuid.New()
		require.NoError(t, f.points.SetPoints(ctx, alex, 650))
		f.tracker.Connect(alex, "Alex")
		f.staff.err = errors.New("roster unavailable")

		f.scheduler.promotionTick(ctx)
		assert.Equal(t, int64(1), f.metrics.Snapshot()["sweep_errors"])

		f.staff.err = nil
		f.scheduler.promotionTick(ctx)
		assert.Equal(t, []string{"veteran"}, f.dir.Membership(alex))
	})
}

func TestAutosaveTick(t *testing.T) {
	f := newSchedulerFixture(t)
	alex := uuid.New()
	f.players.Record("Alex", alex)

	f.scheduler.autosaveTick(context.Background())

	reloaded := playerstore.NewStore(f.storePath, zap.NewNop())
	id, ok := reloaded.Lookup("alex")
	require.True(t, ok)
	assert.Equal(t, alex, id)
}
