package rank

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/directory"
)

func TestSyncToDirectory(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing groups with ordered weights", func(t *testing.T) {
		table := newTestTable(t, testRanks)
		dir := directory.NewMemoryDirectory()

		require.NoError(t, table.SyncToDirectory(ctx, dir))

		names, err := dir.ListGroupsOnTrack(ctx, "ranks")
		require.NoError(t, err)
		assert.Equal(t, []string{"novice", "veteran", "elite"}, names)

		group, ok := dir.GroupAttributes("veteran")
		require.True(t, ok)
		assert.Equal(t, "[VETERAN] ", group.Prefix)
		assert.Equal(t, 2, group.Weight)
		assert.Equal(t, table.Fingerprint(), group.Fingerprint)
	})

	t.Run("never modifies existing groups", func(t *testing.T) {
		table := newTestTable(t, testRanks)
		dir := directory.NewMemoryDirectory()
		customized := directory.Group{Name: "veteran", Track: "ranks", Prefix: "[VIP] ", Weight: 99}
		require.NoError(t, dir.CreateGroup(ctx, customized))

		require.NoError(t, table.SyncToDirectory(ctx, dir))

		group, ok := dir.GroupAttributes("veteran")
		require.True(t, ok)
		assert.Equal(t, "[VIP] ", group.Prefix)
		assert.Equal(t, 99, group.Weight)
	})

	t.Run("underscores become spaces in prefixes", func(t *testing.T) {
		assert.Equal(t, "[HIGH COUNCIL] ", groupPrefix("high_council"))
	})
}

func TestReload(t *testing.T) {
	ctx := context.Background()

	t.Run("unchanged file skips the directory", func(t *testing.T) {
		path := writeRanksFile(t, testRanks)
		table, err := NewTable(path, "ranks", zap.NewNop())
		require.NoError(t, err)
		dir := directory.NewMemoryDirectory()
		require.NoError(t, table.SyncToDirectory(ctx, dir))

		require.NoError(t, table.Reload(ctx, dir))

		names, err := dir.ListGroupsOnTrack(ctx, "ranks")
		require.NoError(t, err)
		assert.Len(t, names, 3)
	})

	t.Run("changed file re-syncs new groups", func(t *testing.T) {
		path := writeRanksFile(t, testRanks)
		table, err := NewTable(path, "ranks", zap.NewNop())
		require.NoError(t, err)
		dir := directory.NewMemoryDirectory()
		require.NoError(t, table.SyncToDirectory(ctx, dir))

		updated := testRanks + "  - name: legend\n    points: 2000\n"
		require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

		require.NoError(t, table.Reload(ctx, dir))

		assert.Equal(t, 4, table.Len())
		exists, err := dir.GroupExists(ctx, "legend")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("a broken file fails reload and keeps the old table", func(t *testing.T) {
		path := writeRanksFile(t, testRanks)
		table, err := NewTable(path, "ranks", zap.NewNop())
		require.NoError(t, err)
		dir := directory.NewMemoryDirectory()
		require.NoError(t, table.SyncToDirectory(ctx, dir))

		require.NoError(t, os.WriteFile(path, []byte("ranks: [unclosed"), 0o644))
		require.Error(t, table.Reload(ctx, dir))
		assert.Equal(t, 3, table.Len())
	})
}
