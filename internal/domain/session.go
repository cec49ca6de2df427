package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session records a currently connected player.
type Session struct {
	Identity    uuid.UUID
	Name        string
	ConnectedAt time.Time
}
