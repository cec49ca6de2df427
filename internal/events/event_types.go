package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/rank-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRankChanged  EventType = "rank_changed"
	EventStaffAdded   EventType = "staff_added"
	EventStaffRemoved EventType = "staff_removed"
)

// Event represents a domain event emitted by services.
type Event struct {
	Type      EventType   `json:"type"`
	Identity  uuid.UUID   `json:"identity"`
	Name      string      `json:"name,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RankChangedPayload payload.
type RankChangedPayload struct {
	Kind          domain.ChangeKind `json:"kind"`
	PreviousGroup string            `json:"previous_group,omitempty"`
	NewGroup      string            `json:"new_group"`
	Message       string            `json:"message"`
}

// StaffChangedPayload payload for roster additions and removals.
type StaffChangedPayload struct {
	StaffGroup string `json:"staff_group,omitempty"`
}
