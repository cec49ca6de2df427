package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rankpoints:"

// RedisLedger stores point totals as integer keys in Redis.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger builds the production ledger adapter.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func pointsKey(identity uuid.UUID) string {
	return keyPrefix + identity.String()
}

// GetPoints returns the accumulated total, zero for unknown identities.
func (l *RedisLedger) GetPoints(ctx context.Context, identity uuid.UUID) (int, error) {
	val, err := l.client.Get(ctx, pointsKey(identity)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

// AddPoints increments the total by delta (delta may be negative).
func (l *RedisLedger) AddPoints(ctx context.Context, identity uuid.UUID, delta int) error {
	if err := l.client.IncrBy(ctx, pointsKey(identity), int64(delta)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SetPoints overwrites the total.
func (l *RedisLedger) SetPoints(ctx context.Context, identity uuid.UUID, value int) error {
	if err := l.client.Set(ctx, pointsKey(identity), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
