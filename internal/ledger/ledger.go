package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUnavailable wraps ledger backend failures so callers can apply the
// default-group fallback instead of stripping membership.
var ErrUnavailable = errors.New("points ledger unavailable")

// PointsLedger is the external key-value point accumulator.
type PointsLedger interface {
	GetPoints(ctx context.Context, identity uuid.UUID) (int, error)
	AddPoints(ctx context.Context, identity uuid.UUID, delta int) error
	SetPoints(ctx context.Context, identity uuid.UUID, value int) error
}
