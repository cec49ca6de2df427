package promotion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/directory"
	"github.com/spec-kit/rank-service/internal/domain"
	"github.com/spec-kit/rank-service/internal/events"
	"github.com/spec-kit/rank-service/internal/ledger"
	"github.com/spec-kit/rank-service/internal/observability"
	"github.com/spec-kit/rank-service/internal/rank"
)

// StaffChecker answers staff membership; satisfied by staff.Registry.
type StaffChecker interface {
	IsStaff(ctx context.Context, identity uuid.UUID) (bool, error)
}

// Result is the explicit outcome of an evaluation, returned rather than
// logged so callers and tests can assert on it.
type Result struct {
	Kind          domain.ChangeKind
	PreviousGroup string
	NewGroup      string
	Message       string
}

// Engine is the sole writer of rank-table group state for non-staff
// identities. Evaluate diffs the directory against the rank the ledger's
// point total maps to and applies the minimal mutation.
type Engine struct {
	table      *rank.Table
	staff      StaffChecker
	points     ledger.PointsLedger
	dir        directory.GroupDirectory
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics

	defaultGroup string
	staffGroup   string
}

// Config names the groups the engine treats specially.
type Config struct {
	DefaultGroup string
	StaffGroup   string
}

// NewEngine wires the decision procedure.
func NewEngine(
	table *rank.Table,
	staffChecker StaffChecker,
	points ledger.PointsLedger,
	dir directory.GroupDirectory,
	dispatcher events.Dispatcher,
	cfg Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Engine {
	return &Engine{
		table:        table,
		staff:        staffChecker,
		points:       points,
		dir:          dir,
		dispatcher:   dispatcher,
		logger:       logger,
		metrics:      metrics,
		defaultGroup: cfg.DefaultGroup,
		staffGroup:   cfg.StaffGroup,
	}
}

// Evaluate runs the promotion decision for one identity. Failures are
// isolated to that identity; the engine never leaves it with zero groups.
func (e *Engine) Evaluate(ctx context.Context, identity uuid.UUID, name string) (Result, error) {
	held, err := e.dir.LoadMembership(ctx, identity)
	if err != nil {
		return Result{Kind: domain.ChangeNone}, fmt.Errorf("load membership for %s: %w", identity, err)
	}

	isStaff, err := e.staff.IsStaff(ctx, identity)
	if err != nil {
		// Staff status unknown: skip all mutation and leave state as-is.
		e.logger.Warn("staff check failed, skipping evaluation",
			zap.String("player", name), zap.Error(err))
		return Result{Kind: domain.ChangeNone}, err
	}

	if isStaff {
		return e.ensureStaffGroup(ctx, identity, name, held)
	}

	points, err := e.points.GetPoints(ctx, identity)
	if err != nil {
		e.logger.Warn("ledger read failed, applying default-group fallback",
			zap.String("player", name), zap.Error(err))
		return e.ensureSomeGroup(ctx, identity, held)
	}

	target, ok := e.table.RankForPoints(points)
	if !ok {
		return e.ensureSomeGroup(ctx, identity, held)
	}

	heldRanks := e.heldRankGroups(held)
	if len(heldRanks) == 1 && strings.EqualFold(heldRanks[0], target.Name) {
		// Common case on every sweep: already correct, nothing to write.
		return Result{Kind: domain.ChangeNone, NewGroup: target.Name}, nil
	}

	return e.applyChange(ctx, identity, name, points, target, heldRanks)
}

// ensureStaffGroup guarantees staff hold the staff group. Additive only:
// other memberships are never touched here.
func (e *Engine) ensureStaffGroup(ctx context.Context, identity uuid.UUID, name string, held []string) (Result, error) {
	if containsFold(held, e.staffGroup) {
		return Result{Kind: domain.ChangeNone, NewGroup: e.staffGroup}, nil
	}
	if err := e.dir.AddMembership(ctx, identity, e.staffGroup); err != nil {
		return Result{Kind: domain.ChangeNone}, fmt.Errorf("add staff group for %s: %w", identity, err)
	}
	if err := e.dir.SaveMembership(ctx, identity); err != nil {
		return Result{Kind: domain.ChangeNone}, fmt.Errorf("save staff group for %s: %w", identity, err)
	}
	e.logger.Info("ensured staff group", zap.String("player", name), zap.String("group", e.staffGroup))
	return Result{Kind: domain.ChangeNone, NewGroup: e.staffGroup}, nil
}

// ensureSomeGroup is the fallback when no target rank can be resolved: an
// identity with no membership at all gets the default group, one with any
// existing membership is left untouched.
func (e *Engine) ensureSomeGroup(ctx context.Context, identity uuid.UUID, held []string) (Result, error) {
	if len(held) > 0 {
		return Result{Kind: domain.ChangeNone}, nil
	}
	if err := e.dir.AddMembership(ctx, identity, e.defaultGroup); err != nil {
		return Result{Kind: domain.ChangeNone}, fmt.Errorf("add default group for %s: %w", identity, err)
	}
	if err := e.dir.SaveMembership(ctx, identity); err != nil {
		return Result{Kind: domain.ChangeNone}, fmt.Errorf("save default group for %s: %w", identity, err)
	}
	return Result{Kind: domain.ChangeNone, NewGroup: e.defaultGroup}, nil
}

// applyChange removes every held rank-table group except the target, adds
// the target if missing, and persists the whole diff in one batch.
func (e *Engine) applyChange(ctx context.Context, identity uuid.UUID, name string, points int, target domain.Rank, heldRanks []string) (Result, error) {
	previous := e.highestHeld(heldRanks)
	previousIndex := -1
	if previous != "" {
		previousIndex = e.table.Index(previous)
	}
	targetIndex := e.table.Index(target.Name)
	isPromotion := targetIndex > previousIndex

	targetHeld := false
	for _, group := range heldRanks {
		if strings.EqualFold(group, target.Name) {
			targetHeld = true
			continue
		}
		if err := e.dir.RemoveMembership(ctx, identity, group); err != nil {
			return Result{Kind: domain.ChangeNone}, fmt.Errorf("remove group %s for %s: %w", group, identity, err)
		}
	}
	if !targetHeld {
		if err := e.dir.AddMembership(ctx, identity, target.Name); err != nil {
			return Result{Kind: domain.ChangeNone}, fmt.Errorf("add group %s for %s: %w", target.Name, identity, err)
		}
	}
	if err := e.dir.SaveMembership(ctx, identity); err != nil {
		return Result{Kind: domain.ChangeNone}, fmt.Errorf("save membership for %s: %w", identity, err)
	}

	kind := domain.ChangeDemotion
	if isPromotion {
		kind = domain.ChangePromotion
		e.metrics.RecordPromotion()
	} else {
		e.metrics.RecordDemotion()
	}

	message := e.buildMessage(kind, target, points)
	result := Result{
		Kind:          kind,
		PreviousGroup: previous,
		NewGroup:      target.Name,
		Message:       message,
	}

	e.logger.Info("rank change applied",
		zap.String("player", name),
		zap.String("kind", string(kind)),
		zap.String("from", previous),
		zap.String("to", target.Name),
		zap.Int("points", points),
	)

	if e.dispatcher != nil {
		_ = e.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventRankChanged,
			Identity:  identity,
			Name:      name,
			Timestamp: time.Now(),
			Payload: events.RankChangedPayload{
				Kind:          kind,
				PreviousGroup: previous,
				NewGroup:      target.Name,
				Message:       message,
			},
		})
	}
	return result, nil
}

// buildMessage renders the player-facing text. Promotion distances are
// measured from the newly assigned rank's successor.
func (e *Engine) buildMessage(kind domain.ChangeKind, target domain.Rank, points int) string {
	if kind == domain.ChangeDemotion {
		return fmt.Sprintf("Rank changed: %s. Your point total was adjusted by the team. Keep going!", target.Name)
	}
	next, ok := e.table.NextAfter(target.Name)
	if !ok {
		return fmt.Sprintf("New rank: %s. You reached the highest rank!", target.Name)
	}
	return fmt.Sprintf("New rank: %s. %d points until the next rank.", target.Name, next.Threshold-points)
}

// heldRankGroups filters the membership list down to rank-table groups.
// Staff, default and unrelated groups pass through untouched elsewhere.
func (e *Engine) heldRankGroups(held []string) []string {
	var ranks []string
	for _, group := range held {
		if e.table.IsRankGroup(group) {
			ranks = append(ranks, group)
		}
	}
	return ranks
}

// highestHeld picks the highest-ordinal rank group, the comparison basis
// for promotion vs demotion when duplicates have accumulated.
func (e *Engine) highestHeld(heldRanks []string) string {
	best := ""
	bestIndex := -1
	for _, group := range heldRanks {
		if idx := e.table.Index(group); idx > bestIndex {
			bestIndex = idx
			best = group
		}
	}
	return best
}

func containsFold(groups []string, name string) bool {
	for _, group := range groups {
		if strings.EqualFold(group, name) {
			return true
		}
	}
	return false
}
