package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/domain"
	"github.com/spec-kit/rank-service/internal/events"
	"github.com/spec-kit/rank-service/internal/presence"
	"github.com/spec-kit/rank-service/internal/promotion"
)

// NotificationChannel is the pub/sub channel game-facing processes watch
// for rank-change popups.
const NotificationChannel = "rank.notifications"

// Publisher fans a notification out to whatever displays it to the player.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisPublisher publishes over Redis pub/sub.
type RedisPublisher struct {
	Client *redis.Client
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.Client.Publish(ctx, channel, payload).Err()
}

// Notification is the wire shape sent to subscribers.
type Notification struct {
	Identity uuid.UUID         `json:"identity"`
	Name     string            `json:"name,omitempty"`
	Kind     domain.ChangeKind `json:"kind"`
	Message  string            `json:"message"`
}

// NotificationService decouples "a rank change happened" from "the player
// is present to be told". Online players get an immediate publish; offline
// players get a deferred entry consumed on next login. Delivery failures
// always degrade to deferral, never to an error.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	tracker    *presence.Tracker
	pending    *promotion.PendingStore
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(
	dispatcher events.Dispatcher,
	publisher Publisher,
	tracker *presence.Tracker,
	pending *promotion.PendingStore,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		tracker:    tracker,
		pending:    pending,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRankChanged, n.handleRankChanged)
}

func (n *NotificationService) handleRankChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RankChangedPayload)
	if !ok {
		return nil
	}
	n.Notify(ctx, event.Identity, event.Name, payload.Message, payload.Kind)
	return nil
}

// Notify delivers immediately when the player is online, otherwise defers.
func (n *NotificationService) Notify(ctx context.Context, identity uuid.UUID, name, message string, kind domain.ChangeKind) {
	if !n.tracker.IsOnline(identity) {
		n.pending.Set(identity, message, kind)
		n.logger.Debug("deferred rank notification",
			zap.String("player", name), zap.String("kind", string(kind)))
		return
	}
	if !n.publish(ctx, identity, name, message, kind) {
		// Player went away or the channel is down: keep it for later.
		n.pending.Set(identity, message, kind)
	}
}

// DeliverPending pushes any stored notification to a just-logged-in player
// and consumes it. On publish failure the entry is re-deferred.
func (n *NotificationService) DeliverPending(ctx context.Context, identity uuid.UUID, name string) bool {
	entry, ok := n.pending.Take(identity)
	if !ok {
		return false
	}
	if !n.publish(ctx, identity, name, entry.Message, entry.Kind) {
		n.pending.Set(identity, entry.Message, entry.Kind)
		return false
	}
	n.logger.Info("delivered deferred rank notification",
		zap.String("player", name), zap.String("kind", string(entry.Kind)))
	return true
}

func (n *NotificationService) publish(ctx context.Context, identity uuid.UUID, name, message string, kind domain.ChangeKind) bool {
	if n.publisher == nil {
		return false
	}
	payload, err := json.Marshal(Notification{
		Identity: identity,
		Name:     name,
		Kind:     kind,
		Message:  message,
	})
	if err != nil {
		n.logger.Error("failed to encode notification", zap.Error(err))
		return false
	}
	if err := n.publisher.Publish(ctx, NotificationChannel, payload); err != nil {
		n.logger.Warn("notification publish failed", zap.String("player", name), zap.Error(err))
		return false
	}
	return true
}
