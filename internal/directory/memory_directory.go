package directory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryDirectory is an in-process GroupDirectory used by tests and by
// local development when Postgres is not configured.
type MemoryDirectory struct {
	mu      sync.Mutex
	groups  map[string]Group
	members map[uuid.UUID]map[string]bool
	staged  map[uuid.UUID]*stagedChange

	// FailLoads makes LoadMembership fail, simulating a directory outage.
	FailLoads bool
	// SaveCount tallies SaveMembership calls that flushed changes.
	SaveCount int
}

// NewMemoryDirectory builds an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		groups:  make(map[string]Group),
		members: make(map[uuid.UUID]map[string]bool),
		staged:  make(map[uuid.UUID]*stagedChange),
	}
}

func (d *MemoryDirectory) LoadMembership(_ context.Context, identity uuid.UUID) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailLoads {
		return nil, errors.New("directory unavailable")
	}
	var names []string
	for name := range d.members[identity] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *MemoryDirectory) AddMembership(_ context.Context, identity uuid.UUID, group string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	change := d.staged[identity]
	if change == nil {
		change = &stagedChange{}
		d.staged[identity] = change
	}
	change.adds = append(change.adds, group)
	return nil
}

func (d *MemoryDirectory) RemoveMembership(_ context.Context, identity uuid.UUID, group string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	change := d.staged[identity]
	if change == nil {
		change = &stagedChange{}
		d.staged[identity] = change
	}
	change.removes = append(change.removes, group)
	return nil
}

func (d *MemoryDirectory) SaveMembership(_ context.Context, identity uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	change := d.staged[identity]
	delete(d.staged, identity)
	if change == nil || (len(change.adds) == 0 && len(change.removes) == 0) {
		return nil
	}
	held := d.members[identity]
	if held == nil {
		held = make(map[string]bool)
		d.members[identity] = held
	}
	for _, name := range change.removes {
		delete(held, name)
	}
	for _, name := range change.adds {
		held[name] = true
	}
	d.SaveCount++
	return nil
}

func (d *MemoryDirectory) GroupExists(_ context.Context, name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.groups[name]
	return ok, nil
}

func (d *MemoryDirectory) CreateGroup(_ context.Context, group Group) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.groups[group.Name]; ok {
		return nil
	}
	d.groups[group.Name] = group
	return nil
}

func (d *MemoryDirectory) ListGroupsOnTrack(_ context.Context, track string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var onTrack []Group
	for _, group := range d.groups {
		if group.Track == track {
			onTrack = append(onTrack, group)
		}
	}
	sort.Slice(onTrack, func(i, j int) bool { return onTrack[i].Weight < onTrack[j].Weight })
	names := make([]string, 0, len(onTrack))
	for _, group := range onTrack {
		names = append(names, group.Name)
	}
	return names, nil
}

// Membership is a test helper exposing the applied set for an identity.
func (d *MemoryDirectory) Membership(identity uuid.UUID) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var names []string
	for name := range d.members[identity] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupAttributes is a test helper returning the stored group record.
func (d *MemoryDirectory) GroupAttributes(name string) (Group, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	group, ok := d.groups[name]
	return group, ok
}
