package dto

import "time"

// SessionRequest announces a player connect or disconnect.
type SessionRequest struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// SessionEntry is one connected player.
type SessionEntry struct {
	UUID        string    `json:"uuid"`
	Name        string    `json:"name"`
	ConnectedAt time.Time `json:"connected_at"`
}
