package staff

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/domain"
	"github.com/spec-kit/rank-service/internal/observability"
	"github.com/spec-kit/rank-service/internal/repository"
	"github.com/spec-kit/rank-service/pkg/util/errorutil"
	"github.com/spec-kit/rank-service/pkg/util/retry"
)

// snapshot is an immutable view of the roster. It is replaced wholesale,
// never edited, so readers see a complete set without locking.
type snapshot struct {
	members  map[uuid.UUID]bool
	loadedAt time.Time
}

// Registry answers isStaff in the hot path from a TTL-bounded cache of the
// persisted roster. A failed refresh keeps the previous snapshot
// (stale-but-available over unavailable).
type Registry struct {
	repo      repository.StaffRepository
	ttl       time.Duration
	transient retry.Classifier
	logger    *zap.Logger
	metrics   *observability.Metrics

	snap atomic.Pointer[snapshot]
	now  func() time.Time
}

// NewRegistry builds the registry and primes the cache. A failed initial
// load is logged, not fatal; the first isStaff call retries it.
func NewRegistry(ctx context.Context, repo repository.StaffRepository, ttl time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Registry {
	r := &Registry{
		repo:      repo,
		ttl:       ttl,
		transient: errorutil.IsTransient,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
	if err := r.Refresh(ctx, true); err != nil {
		logger.Warn("initial staff cache load failed", zap.Error(err))
	}
	return r
}

// IsStaff reports roster membership. When the snapshot is past its TTL a
// synchronous refresh runs first; if that fails the stale snapshot still
// answers. The error is non-nil only when no snapshot has ever loaded, so
// callers can skip mutating work rather than guess.
func (r *Registry) IsStaff(ctx context.Context, identity uuid.UUID) (bool, error) {
	current := r.snap.Load()
	if current == nil || r.now().Sub(current.loadedAt) >= r.ttl {
		r.metrics.RecordStaffCacheMiss()
		if err := r.Refresh(ctx, false); err != nil {
			if current == nil {
				return false, err
			}
			// Stale answer, bounded by the TTL window.
		}
		current = r.snap.Load()
		if current == nil {
			return false, errorutil.NewUnavailable("staff roster unavailable", nil)
		}
	} else {
		r.metrics.RecordStaffCacheHit()
	}
	return current.members[identity], nil
}

// Refresh loads the entire identity set in one query and atomically
// replaces the snapshot. A transient failure is retried exactly once;
// a second failure keeps the old snapshot. Concurrent refreshes race
// benignly: at most one redundant load, never a corrupt set.
func (r *Registry) Refresh(ctx context.Context, force bool) error {
	if !force {
		if current := r.snap.Load(); current != nil && r.now().Sub(current.loadedAt) < r.ttl {
			return nil
		}
	}

	identities, err := retry.OnceValue(ctx, r.transient, func(ctx context.Context) ([]uuid.UUID, error) {
		return r.repo.ListIdentities(ctx)
	})
	if err != nil {
		r.metrics.RecordStaffRefreshFailure()
		r.logger.Warn("could not refresh staff cache", zap.Error(err))
		return err
	}

	members := make(map[uuid.UUID]bool, len(identities))
	for _, id := range identities {
		members[id] = true
	}
	r.snap.Store(&snapshot{members: members, loadedAt: r.now()})
	r.logger.Debug("staff cache reloaded", zap.Int("entries", len(members)))
	return nil
}

// Add persists a roster entry, then invalidates the cache so the next
// isStaff call reloads instead of waiting out the TTL. A failed persist
// leaves both roster and cache untouched.
func (r *Registry) Add(ctx context.Context, identity uuid.UUID, name string) (bool, error) {
	added, err := retry.OnceValue(ctx, r.transient, func(ctx context.Context) (bool, error) {
		return r.repo.Add(ctx, domain.StaffMember{ID: identity, Name: name})
	})
	if err != nil {
		return false, err
	}
	r.invalidate()
	return added, nil
}

// Remove deletes a roster entry and invalidates the cache.
func (r *Registry) Remove(ctx context.Context, identity uuid.UUID) (bool, error) {
	removed, err := retry.OnceValue(ctx, r.transient, func(ctx context.Context) (bool, error) {
		return r.repo.Remove(ctx, identity)
	})
	if err != nil {
		return false, err
	}
	r.invalidate()
	return removed, nil
}

// AllStaff returns the full roster and refreshes the cache from the same
// result set, avoiding a second round-trip.
func (r *Registry) AllStaff(ctx context.Context) (map[uuid.UUID]string, error) {
	members, err := retry.OnceValue(ctx, r.transient, func(ctx context.Context) ([]domain.StaffMember, error) {
		return r.repo.ListAll(ctx)
	})
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]string, len(members))
	set := make(map[uuid.UUID]bool, len(members))
	for _, member := range members {
		result[member.ID] = member.Name
		set[member.ID] = true
	}
	r.snap.Store(&snapshot{members: set, loadedAt: r.now()})
	return result, nil
}

// invalidate forces the next read to reload by backdating the snapshot.
func (r *Registry) invalidate() {
	current := r.snap.Load()
	if current == nil {
		return
	}
	r.snap.Store(&snapshot{members: current.members})
}
