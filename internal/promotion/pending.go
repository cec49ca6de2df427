package promotion

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/rank-service/internal/domain"
)

// PendingStore keeps rank-change messages for players who were offline
// when the change happened. At most one entry per identity; a newer change
// overwrites the older one so a returning player only sees the latest
// state. Not persisted: losing these across a restart is accepted.
type PendingStore struct {
	mu      sync.Mutex
	pending map[uuid.UUID]domain.PendingNotification
}

// NewPendingStore builds an empty store.
func NewPendingStore() *PendingStore {
	return &PendingStore{pending: make(map[uuid.UUID]domain.PendingNotification)}
}

// Set stores or overwrites the pending notification for an identity.
func (s *PendingStore) Set(identity uuid.UUID, message string, kind domain.ChangeKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[identity] = domain.PendingNotification{
		Identity: identity,
		Message:  message,
		Kind:     kind,
	}
}

// Take returns and clears the pending entry atomically, so a message is
// delivered at most once.
func (s *PendingStore) Take(identity uuid.UUID) (domain.PendingNotification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[identity]
	if ok {
		delete(s.pending, identity)
	}
	return entry, ok
}

// Has peeks without consuming, used for diagnostics.
func (s *PendingStore) Has(identity uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[identity]
	return ok
}

// Len reports how many identities have a pending notification.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
