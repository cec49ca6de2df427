package presence

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/rank-service/internal/domain"
)

// Tracker maintains the set of currently connected players. The scheduled
// drivers iterate it; session endpoints mutate it.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Session
}

// NewTracker builds an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[uuid.UUID]domain.Session)}
}

// Connect records a player as online. Reconnecting refreshes the session.
func (t *Tracker) Connect(identity uuid.UUID, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[identity] = domain.Session{
		Identity:    identity,
		Name:        name,
		ConnectedAt: time.Now(),
	}
}

// Disconnect removes a player; reports whether they were connected.
func (t *Tracker) Disconnect(identity uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[identity]
	delete(t.sessions, identity)
	return ok
}

// IsOnline reports whether the identity has an active session.
func (t *Tracker) IsOnline(identity uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.sessions[identity]
	return ok
}

// Connected returns a snapshot of all active sessions.
func (t *Tracker) Connected() []domain.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sessions := make([]domain.Session, 0, len(t.sessions))
	for _, session := range t.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Count returns the number of connected players.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
