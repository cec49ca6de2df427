package directory

import (
	"context"

	"github.com/google/uuid"
)

// Group is an externally-managed permission label. Prefix, weight and
// fingerprint are cosmetic attributes written once at creation.
type Group struct {
	Name        string
	Track       string
	Prefix      string
	Weight      int
	Fingerprint string
}

// GroupDirectory is the external permission directory. Membership mutations
// are staged per identity with Add/Remove and applied atomically by
// SaveMembership, mirroring the load-modify-save unit the directory owns.
type GroupDirectory interface {
	LoadMembership(ctx context.Context, identity uuid.UUID) ([]string, error)
	AddMembership(ctx context.Context, identity uuid.UUID, group string) error
	RemoveMembership(ctx context.Context, identity uuid.UUID, group string) error
	SaveMembership(ctx context.Context, identity uuid.UUID) error
	GroupExists(ctx context.Context, name string) (bool, error)
	CreateGroup(ctx context.Context, group Group) error
	ListGroupsOnTrack(ctx context.Context, track string) ([]string, error)
}
