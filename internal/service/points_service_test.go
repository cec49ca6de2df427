package service

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

	"github.com/spec-kit/rank-service/internal/ledger"
	"github.com/spec-kit/rank-service/internal/playerstore"
	"github.com/spec-kit/rank-service/internal/rank"
	apperrors "github.com/spec-kit/rank-service/pkg/util/errorutil"
)

type stubStaff struct {
	isStaff bool
	err     error
}

func (s *stubStaff) IsStaff(context.Context, uuid.UUID) (bool, error) {
	return s.isStaff, s.err
}

type pointsFixture struct {
	svc    *PointsService
	points *ledger.MemoryLedger
	staff  *stubStaff
	alex   uuid.UUID
}

func newPointsFixture(t *testing.T, givePoints bool) *pointsFixture {
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

	f := &pointsFixture{
		points: ledger.NewMemoryLedger(),
		staff:  &stubStaff{},
		alex:   uuid.New(),
	}
	players := playerstore.NewStore(filepath.Join(t.TempDir(), "players.json"), zap.NewNop())
	players.Record("Alex", f.alex)
	f.svc = NewPointsService(f.points, table, players, f.staff, givePoints, zap.NewNop())
	return f
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestPointsReadWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("add then get", func(t *testing.T) {
		f := newPointsFixture(t, false)

		total, err := f.svc.AddPoints(ctx, "Alex", 25)
		require.NoError(t, err)
		assert.Equal(t, 25, total)

		total, err = f.svc.AddPoints(ctx, "alex", 5)
		require.NoError(t, err)
		assert.Equal(t, 30, total)

		total, err = f.svc.GetPoints(ctx, "ALEX")
		require.NoError(t, err)
		assert.Equal(t, 30, total)
	})

	t.Run("set overwrites", func(t *testing.T) {
		f := newPointsFixture(t, false)
		require.NoError(t, f.svc.SetPoints(ctx, "Alex", 100))

		total, err := f.svc.GetPoints(ctx, "Alex")
		require.NoError(t, err)
		assert.Equal(t, 100, total)
	})

	t.Run("negative set is rejected", func(t *testing.T) {
		f := newPointsFixture(t, false)
		err := f.svc.SetPoints(ctx, "Alex", -1)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	})

	t.Run("unknown player", func(t *testing.T) {
		f := newPointsFixture(t, false)
		_, err := f.svc.GetPoints(ctx, "Nobody")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})

	t.Run("ledger outage surfaces as unavailable", func(t *testing.T) {
		f := newPointsFixture(t, false)
		f.points.Fail = true
		_, err := f.svc.GetPoints(ctx, "Alex")
		require.Error(t, err)
		assert.Equal(t, "DEPENDENCY_UNAVAILABLE", domainCode(t, err))
	})
}

func TestStaffPointPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("staff writes are forbidden by default", func(t *testing.T) {
		f := newPointsFixture(t, false)
		f.staff.isStaff = true

		_, err := f.svc.AddPoints(ctx, "Alex", 10)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", domainCode(t, err))

		err = f.svc.SetPoints(ctx, "Alex", 10)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", domainCode(t, err))
	})

	t.Run("give-points policy bypasses the staff check", func(t *testing.T) {
		f := newPointsFixture(t, true)
		f.staff.isStaff = true

		total, err := f.svc.AddPoints(ctx, "Alex", 10)
		require.NoError(t, err)
		assert.Equal(t, 10, total)
	})

	t.Run("staff reads are always allowed", func(t *testing.T) {
		f := newPointsFixture(t, false)
		f.staff.isStaff = true

		_, err := f.svc.GetPoints(ctx, "Alex")
		require.NoError(t, err)
	})

	t.Run("an unanswerable staff check blocks the write", func(t *testing.T) {
		f := newPointsFixture(t, false)
		f.staff.err = errors.New("roster unavailable")

		_, err := f.svc.AddPoints(ctx, "Alex", 10)
		require.Error(t, err)
		assert.Equal(t, "DEPENDENCY_UNAVAILABLE", domainCode(t, err))

		total, err := f.points.GetPoints(ctx, f.alex)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestProgressReporting(t *testing.T) {
	ctx := context.Background()
	f := newPointsFixture(t, false)
	require.NoError(t, f.points.SetPoints(ctx, f.alex, 200))

	total, progress, err := f.svc.Progress(ctx, "Alex")
	require.NoError(t, err)
	assert.Equal(t, 200, total)
	require.NotNil(t, progress.Current)
	assert.Equal(t, "novice", progress.Current.Name)
	require.NotNil(t, progress.Next)
	assert.Equal(t, "veteran", progress.Next.Name)
	assert.Equal(t, 300, progress.Remaining)
}
