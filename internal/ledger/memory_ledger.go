package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryLedger is an in-process ledger used by tests and local development
// when Redis is not configured.
type MemoryLedger struct {
	mu     sync.Mutex
	points map[uuid.UUID]int

	// Fail makes every call report ErrUnavailable, simulating an outage.
	Fail bool
}

// NewMemoryLedger builds an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{points: make(map[uuid.UUID]int)}
}

func (l *MemoryLedger) GetPoints(_ context.Context, identity uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Fail {
		return 0, ErrUnavailable
	}
	return l.points[identity], nil
}

func (l *MemoryLedger) AddPoints(_ context.Context, identity uuid.UUID, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Fail {
		return ErrUnavailable
	}
	l.points[identity] += delta
	return nil
}

func (l *MemoryLedger) SetPoints(_ context.Context, identity uuid.UUID, value int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Fail {
		return ErrUnavailable
	}
	l.points[identity] = value
	return nil
}
