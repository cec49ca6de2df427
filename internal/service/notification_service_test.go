package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/domain"
	"github.com/spec-kit/rank-service/internal/events"
	"github.com/spec-kit/rank-service/internal/presence"
	"github.com/spec-kit/rank-service/internal/promotion"
)

type capturePublisher struct {
	fail     bool
	channels []string
	payloads [][]byte
}

func (p *capturePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if p.fail {
		return errors.New("pubsub down")
	}
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}

type notifyFixture struct {
	svc        *NotificationService
	publisher  *capturePublisher
	tracker    *presence.Tracker
	pending    *promotion.PendingStore
	dispatcher events.Dispatcher
}

func newNotifyFixture() *notifyFixture {
	f := &notifyFixture{
		publisher:  &capturePublisher{},
		tracker:    presence.NewTracker(),
		pending:    promotion.NewPendingStore(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.svc = NewNotificationService(f.dispatcher, f.publisher, f.tracker, f.pending, zap.NewNop())
	f.svc.RegisterHandlers()
	return f
}

func TestNotify(t *testing.T) {
	ctx := context.Background()
	player := uuid.New()

	t.Run("online players get an immediate publish", func(t *testing.T) {
		f := newNotifyFixture()
		f.tracker.Connect(player, "Alex")

		f.svc.Notify(ctx, player, "Alex", "New rank: veteran.", domain.ChangePromotion)

		require.Len(t, f.publisher.payloads, 1)
		assert.Equal(t, NotificationChannel, f.publisher.channels[0])
		var wire Notification
		require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &wire))
		assert.Equal(t, player, wire.Identity)
		assert.Equal(t, "Alex", wire.Name)
		assert.Equal(t, domain.ChangePromotion, wire.Kind)
		assert.Equal(t, "New rank: veteran.", wire.Message)
		assert.False(t, f.pending.Has(player))
	})

	t.Run("offline players get a deferred entry", func(t *testing.T) {
		f := newNotifyFixture()

		f.svc.Notify(ctx, player, "Alex", "New rank: veteran.", domain.ChangePromotion)

		assert.Empty(t, f.publisher.payloads)
		assert.True(t, f.pending.Has(player))
	})

	t.Run("a failed publish degrades to deferral", func(t *testing.T) {
		f := newNotifyFixture()
		f.publisher.fail = true
		f.tracker.Connect(player, "Alex")

		f.svc.Notify(ctx, player, "Alex", "New rank: veteran.", domain.ChangePromotion)

		assert.True(t, f.pending.Has(player))
	})
}

func TestDeliverPending(t *testing.T) {
	ctx := context.Background()
	player := uuid.New()

	t.Run("delivers and consumes the stored entry", func(t *testing.T) {
		f := newNotifyFixture()
		f.pending.Set(player, "New rank: veteran.", domain.ChangePromotion)

		assert.True(t, f.svc.DeliverPending(ctx, player, "Alex"))
		assert.Len(t, f.publisher.payloads, 1)
		assert.False(t, f.pending.Has(player))

		assert.False(t, f.svc.DeliverPending(ctx, player, "Alex"), "nothing left to deliver")
	})

	t.Run("re-defers when the publish fails", func(t *testing.T) {
		f := newNotifyFixture()
		f.publisher.fail = true
		f.pending.Set(player, "New rank: veteran.", domain.ChangePromotion)

		assert.False(t, f.svc.DeliverPending(ctx, player, "Alex"))
		assert.True(t, f.pending.Has(player))
	})

	t.Run("no-op without a pending entry", func(t *testing.T) {
		f := newNotifyFixture()
		assert.False(t, f.svc.DeliverPending(ctx, player, "Alex"))
		assert.Empty(t, f.publisher.payloads)
	})
}

func TestRankChangedEventRouting(t *testing.T) {
	ctx := context.Background()
	player := uuid.New()

	f := newNotifyFixture()
	err := f.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventRankChanged,
		Identity:  player,
		Name:      "Alex",
		Timestamp: time.Now(),
		Payload: events.RankChangedPayload{
			Kind:     domain.ChangePromotion,
			NewGroup: "veteran",
			Message:  "New rank: veteran.",
		},
	})
	require.NoError(t, err)

	// The player is offline, so the routed event lands in the store.
	assert.True(t, f.pending.Has(player))
}
