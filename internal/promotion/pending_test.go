package promotion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/rank-service/internal/domain"
)

func TestPendingStore(t *testing.T) {
	player := uuid.New()

	t.Run("take consumes the entry", func(t *testing.T) {
		store := NewPendingStore()
		store.Set(player, "New rank: veteran.", domain.ChangePromotion)
		require.True(t, store.Has(player))

		entry, ok := store.Take(player)
		require.True(t, ok)
		assert.Equal(t, "New rank: veteran.", entry.Message)
		assert.Equal(t, domain.ChangePromotion, entry.Kind)
		assert.Equal(t, player, entry.Identity)

		_, ok = store.Take(player)
		assert.False(t, ok, "an entry is delivered at most once")
	})

	t.Run("a newer change overwrites the older one", func(t *testing.T) {
		store := NewPendingStore()
		store.Set(player, "New rank: veteran.", domain.ChangePromotion)
		store.Set(player, "Rank changed: novice.", domain.ChangeDemotion)
		assert.Equal(t, 1, store.Len())

		entry, ok := store.Take(player)
		require.True(t, ok)
		assert.Equal(t, "Rank changed: novice.", entry.Message)
		assert.Equal(t, domain.ChangeDemotion, entry.Kind)
	})

	t.Run("take on an empty store", func(t *testing.T) {
		store := NewPendingStore()
		_, ok := store.Take(uuid.New())
		assert.False(t, ok)
		assert.Zero(t, store.Len())
	})

	t.Run("entries are per identity", func(t *testing.T) {
		store := NewPendingStore()
		other := uuid.New()
		store.Set(player, "a", domain.ChangePromotion)
		store.Set(other, "b", domain.ChangeDemotion)
		assert.Equal(t, 2, store.Len())

		entry, ok := store.Take(other)
		require.True(t, ok)
		assert.Equal(t, "b", entry.Message)
		assert.True(t, store.Has(player))
	})
}
