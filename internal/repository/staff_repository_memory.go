package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/rank-service/internal/domain"
)

// ErrRosterUnavailable simulates a storage outage in the memory repository.
var ErrRosterUnavailable = errors.New("staff roster storage unavailable")

// MemoryStaffRepository backs tests and DSN-less local runs.
type MemoryStaffRepository struct {
	mu      sync.Mutex
	members map[uuid.UUID]string

	// FailNext makes the next N calls fail, for retry/fallback tests.
	FailNext int
	// Loads counts ListIdentities calls.
	Loads int
}

// NewMemoryStaffRepository builds an empty in-memory roster.
func NewMemoryStaffRepository() *MemoryStaffRepository {
	return &MemoryStaffRepository{members: make(map[uuid.UUID]string)}
}

func (r *MemoryStaffRepository) failing() bool {
	if r.FailNext > 0 {
		r.FailNext--
		return true
	}
	return false
}

func (r *MemoryStaffRepository) Add(_ context.Context, member domain.StaffMember) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing() {
		return false, ErrRosterUnavailable
	}
	if _, ok := r.members[member.ID]; ok {
		return false, nil
	}
	r.members[member.ID] = member.Name
	return true, nil
}

func (r *MemoryStaffRepository) Remove(_ context.Context, identity uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing() {
		return false, ErrRosterUnavailable
	}
	if _, ok := r.members[identity]; !ok {
		return false, nil
	}
	delete(r.members, identity)
	return true, nil
}

func (r *MemoryStaffRepository) ListIdentities(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Loads++
	if r.failing() {
		return nil, ErrRosterUnavailable
	}
	identities := make([]uuid.UUID, 0, len(r.members))
	for id := range r.members {
		identities = append(identities, id)
	}
	return identities, nil
}

func (r *MemoryStaffRepository) ListAll(_ context.Context) ([]domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing() {
		return nil, ErrRosterUnavailable
	}
	members := make([]domain.StaffMember, 0, len(r.members))
	for id, name := range r.members {
		members = append(members, domain.StaffMember{ID: id, Name: name})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}
