package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/config"
	"github.com/spec-kit/rank-service/internal/ledger"
	"github.com/spec-kit/rank-service/internal/observability"
	"github.com/spec-kit/rank-service/internal/playerstore"
	"github.com/spec-kit/rank-service/internal/presence"
	"github.com/spec-kit/rank-service/internal/promotion"
)

// Scheduler runs the periodic drivers: point accrual, promotion sweep and
// offline-store autosave. The three tickers are independent; each tick body
// runs on its own goroutine so a slow iteration (storage latency) cannot
// starve the other timers. Overlapping runs of the same task are skipped.
type Scheduler struct {
	cfg     config.SchedulerConfig
	tracker *presence.Tracker
	staff   promotion.StaffChecker
	points  ledger.PointsLedger
	engine  *promotion.Engine
	players *playerstore.Store
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewScheduler wires the periodic drivers.
func NewScheduler(
	cfg config.SchedulerConfig,
	tracker *presence.Tracker,
	staffChecker promotion.StaffChecker,
	points ledger.PointsLedger,
	engine *promotion.Engine,
	players *playerstore.Store,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		tracker: tracker,
		staff:   staffChecker,
		points:  points,
		engine:  engine,
		players: players,
		logger:  logger,
		metrics: metrics,
	}
}

// Start launches all drivers; they stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("starting point reward task",
		zap.Duration("interval", s.cfg.PointInterval()),
		zap.Int("amount", s.cfg.PointAmount))
	go s.runEvery(ctx, s.cfg.PointInterval(), "points", s.pointTick)

	s.logger.Info("starting promotion check task",
		zap.Duration("interval", s.cfg.PromotionInterval()))
	go s.runEvery(ctx, s.cfg.PromotionInterval(), "promotion", s.promotionTick)

	s.logger.Info("starting offline player autosave task",
		zap.Duration("interval", s.cfg.AutosaveInterval()))
	go s.runEvery(ctx, s.cfg.AutosaveInterval(), "autosave", s.autosaveTick)
}

// runEvery fires task on the given period, dispatching each tick onto its
// own goroutine. A tick that outlives its period causes the next one to be
// skipped instead of piling up.
func (s *Scheduler) runEvery(ctx context.Context, period time.Duration, name string, task func(context.Context)) {
	if period <= 0 {
		s.logger.Warn("task disabled, non-positive interval", zap.String("task", name))
		return
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	running := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case running <- struct{}{}:
			default:
				s.logger.Debug("previous run still active, skipping tick", zap.String("task", name))
				continue
			}
			go func() {
				defer func() { <-running }()
				task(ctx)
			}()
		}
	}
}

// pointTick awards points to every connected non-staff player. An identity
// whose staff status cannot be determined is skipped, never charged.
func (s *Scheduler) pointTick(ctx context.Context) {
	for _, session := range s.tracker.Connected() {
		isStaff, err := s.staff.IsStaff(ctx, session.Identity)
		if err != nil {
			s.logger.Warn("staff check failed, skipping player",
				zap.String("player", session.Name), zap.Error(err))
			continue
		}
		if isStaff {
			continue
		}
		if err := s.points.AddPoints(ctx, session.Identity, s.cfg.PointAmount); err != nil {
			s.logger.Warn("failed to award points",
				zap.String("player", session.Name), zap.Error(err))
		}
	}
}

// promotionTick evaluates every connected player. Per-identity failures are
// isolated: one broken evaluation never aborts the sweep.
func (s *Scheduler) promotionTick(ctx context.Context) {
	for _, session := range s.tracker.Connected() {
		if _, err := s.engine.Evaluate(ctx, session.Identity, session.Name); err != nil {
			s.metrics.RecordSweepError()
			s.logger.Warn("promotion check failed",
				zap.String("player", session.Name), zap.Error(err))
		}
	}
}

func (s *Scheduler) autosaveTick(_ context.Context) {
	if err := s.players.Save(); err != nil {
		s.logger.Error("offline player autosave failed", zap.Error(err))
	}
}
