package domain

import "github.com/google/uuid"

// StaffMember is an identity on the administrative exclusion roster.
// Staff never receive point-based rank assignments.
type StaffMember struct {
	ID   uuid.UUID
	Name string
}
