package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/domain"
	"github.com/spec-kit/rank-service/internal/playerstore"
	"github.com/spec-kit/rank-service/internal/presence"
	"github.com/spec-kit/rank-service/internal/promotion"
)

// SessionService handles player connect/disconnect and the login-time
// promotion check.
type SessionService struct {
	tracker       *presence.Tracker
	players       *playerstore.Store
	staff         StaffChecker
	engine        *promotion.Engine
	notifications *NotificationService
	logger        *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(
	tracker *presence.Tracker,
	players *playerstore.Store,
	staffChecker StaffChecker,
	engine *promotion.Engine,
	notifications *NotificationService,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		tracker:       tracker,
		players:       players,
		staff:         staffChecker,
		engine:        engine,
		notifications: notifications,
		logger:        logger,
	}
}

// Login records the player online, delivers any deferred notification and
// runs an immediate promotion check. Staff get neither; if the staff check
// cannot be answered, promotion is skipped as a precaution.
func (s *SessionService) Login(ctx context.Context, identity uuid.UUID, name string) {
	s.players.Record(name, identity)
	s.tracker.Connect(identity, name)

	isStaff, err := s.staff.IsStaff(ctx, identity)
	if err != nil {
		s.logger.Warn("could not check stafflist on login, skipping promotion",
			zap.String("player", name), zap.Error(err))
		return
	}
	if isStaff {
		s.logger.Info("player is on the stafflist, skipping promotion",
			zap.String("player", name))
		return
	}

	s.notifications.DeliverPending(ctx, identity, name)

	if _, err := s.engine.Evaluate(ctx, identity, name); err != nil {
		s.logger.Warn("login promotion check failed",
			zap.String("player", name), zap.Error(err))
	}
}

// Logout removes the player from the connected set.
func (s *SessionService) Logout(identity uuid.UUID) bool {
	return s.tracker.Disconnect(identity)
}

// Connected lists active sessions.
func (s *SessionService) Connected() []domain.Session {
	return s.tracker.Connected()
}
