package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/domain"
	"github.com/spec-kit/rank-service/internal/ledger"
	"github.com/spec-kit/rank-service/internal/playerstore"
	"github.com/spec-kit/rank-service/internal/rank"
	apperrors "github.com/spec-kit/rank-service/pkg/util/errorutil"
)

// StaffChecker answers staff membership for the points policy.
type StaffChecker interface {
	IsStaff(ctx context.Context, identity uuid.UUID) (bool, error)
}

// PointsService exposes the administrative point operations. Writes honor
// the staff give-points policy; reads are unrestricted.
type PointsService struct {
	points     ledger.PointsLedger
	table      *rank.Table
	players    *playerstore.Store
	staff      StaffChecker
	givePoints bool
	logger     *zap.Logger
}

// NewPointsService constructs the service.
func NewPointsService(
	points ledger.PointsLedger,
	table *rank.Table,
	players *playerstore.Store,
	staff StaffChecker,
	givePoints bool,
	logger *zap.Logger,
) *PointsService {
	return &PointsService{
		points:     points,
		table:      table,
		players:    players,
		staff:      staff,
		givePoints: givePoints,
		logger:     logger,
	}
}

// Resolve maps a player name to its identity via the offline store.
func (s *PointsService) Resolve(name string) (uuid.UUID, error) {
	identity, ok := s.players.Lookup(name)
	if !ok {
		return uuid.Nil, apperrors.NewNotFound("player", map[string]any{"name": name})
	}
	return identity, nil
}

// GetPoints returns the current total for a player name.
func (s *PointsService) GetPoints(ctx context.Context, name string) (int, error) {
	identity, err := s.Resolve(name)
	if err != nil {
		return 0, err
	}
	total, err := s.points.GetPoints(ctx, identity)
	if err != nil {
		return 0, apperrors.NewUnavailable("points ledger unavailable", err)
	}
	return total, nil
}

// AddPoints adds delta to a player's total.
func (s *PointsService) AddPoints(ctx context.Context, name string, delta int) (int, error) {
	identity, err := s.Resolve(name)
	if err != nil {
		return 0, err
	}
	if err := s.checkStaffPolicy(ctx, identity, name); err != nil {
		return 0, err
	}
	if err := s.points.AddPoints(ctx, identity, delta); err != nil {
		return 0, apperrors.NewUnavailable("points ledger unavailable", err)
	}
	total, err := s.points.GetPoints(ctx, identity)
	if err != nil {
		return 0, apperrors.NewUnavailable("points ledger unavailable", err)
	}
	s.logger.Info("points adjusted", zap.String("player", name), zap.Int("delta", delta), zap.Int("total", total))
	return total, nil
}

// SetPoints overwrites a player's total.
func (s *PointsService) SetPoints(ctx context.Context, name string, value int) error {
	identity, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if value < 0 {
		return apperrors.NewValidationError("points must not be negative", map[string]any{"value": value})
	}
	if err := s.checkStaffPolicy(ctx, identity, name); err != nil {
		return err
	}
	if err := s.points.SetPoints(ctx, identity, value); err != nil {
		return apperrors.NewUnavailable("points ledger unavailable", err)
	}
	s.logger.Info("points set", zap.String("player", name), zap.Int("value", value))
	return nil
}

// Progress reports current/next rank and remaining points for a player.
func (s *PointsService) Progress(ctx context.Context, name string) (int, domain.RankProgress, error) {
	identity, err := s.Resolve(name)
	if err != nil {
		return 0, domain.RankProgress{}, err
	}
	total, err := s.points.GetPoints(ctx, identity)
	if err != nil {
		return 0, domain.RankProgress{}, apperrors.NewUnavailable("points ledger unavailable", err)
	}
	return total, s.table.Progress(total), nil
}

// checkStaffPolicy rejects point writes for staff identities unless the
// give-points policy allows them. An unanswerable staff check blocks the
// write rather than guessing.
func (s *PointsService) checkStaffPolicy(ctx context.Context, identity uuid.UUID, name string) error {
	if s.givePoints {
		return nil
	}
	isStaff, err := s.staff.IsStaff(ctx, identity)
	if err != nil {
		return apperrors.NewUnavailable("staff roster unavailable", err)
	}
	if isStaff {
		return apperrors.NewForbidden("staff members do not collect points")
	}
	return nil
}
