package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/directory"
	"github.com/spec-kit/rank-service/internal/events"
	"github.com/spec-kit/rank-service/internal/playerstore"
	"github.com/spec-kit/rank-service/internal/staff"
	apperrors "github.com/spec-kit/rank-service/pkg/util/errorutil"
)

// StaffService manages the exclusion roster. Adding a member also pins the
// staff group in the directory, so staff keep their permissions even while
// the promotion engine ignores them.
type StaffService struct {
	registry   *staff.Registry
	dir        directory.GroupDirectory
	players    *playerstore.Store
	dispatcher events.Dispatcher
	staffGroup string
	logger     *zap.Logger
}

// NewStaffService constructs the service.
func NewStaffService(
	registry *staff.Registry,
	dir directory.GroupDirectory,
	players *playerstore.Store,
	dispatcher events.Dispatcher,
	staffGroup string,
	logger *zap.Logger,
) *StaffService {
	return &StaffService{
		registry:   registry,
		dir:        dir,
		players:    players,
		dispatcher: dispatcher,
		staffGroup: staffGroup,
		logger:     logger,
	}
}

// Add puts an identity on the roster and ensures the staff group. The
// roster insert is the source of truth; a directory failure afterwards is
// logged but does not undo the roster change.
func (s *StaffService) Add(ctx context.Context, identity uuid.UUID, name string) error {
	added, err := s.registry.Add(ctx, identity, name)
	if err != nil {
		return apperrors.NewUnavailable("staff roster unavailable", err)
	}
	if !added {
		return apperrors.NewConflict("already on the stafflist", map[string]any{"name": name})
	}

	s.players.Record(name, identity)

	if err := s.ensureStaffGroup(ctx, identity); err != nil {
		s.logger.Error("staff added but group assignment failed",
			zap.String("player", name), zap.Error(err))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventStaffAdded,
			Identity:  identity,
			Name:      name,
			Timestamp: time.Now(),
			Payload:   events.StaffChangedPayload{StaffGroup: s.staffGroup},
		})
	}
	return nil
}

// Remove takes an identity off the roster. The staff group itself is left
// in place; the next promotion sweep reassigns a rank-table group.
func (s *StaffService) Remove(ctx context.Context, identity uuid.UUID) error {
	removed, err := s.registry.Remove(ctx, identity)
	if err != nil {
		return apperrors.NewUnavailable("staff roster unavailable", err)
	}
	if !removed {
		return apperrors.NewNotFound("staff member", map[string]any{"uuid": identity.String()})
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventStaffRemoved,
			Identity:  identity,
			Timestamp: time.Now(),
		})
	}
	return nil
}

// List returns the full roster.
func (s *StaffService) List(ctx context.Context) (map[uuid.UUID]string, error) {
	members, err := s.registry.AllStaff(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable("staff roster unavailable", err)
	}
	return members, nil
}

func (s *StaffService) ensureStaffGroup(ctx context.Context, identity uuid.UUID) error {
	held, err := s.dir.LoadMembership(ctx, identity)
	if err != nil {
		return err
	}
	for _, group := range held {
		if group == s.staffGroup {
			return nil
		}
	}
	if err := s.dir.AddMembership(ctx, identity, s.staffGroup); err != nil {
		return err
	}
	return s.dir.SaveMembership(ctx, identity)
}
