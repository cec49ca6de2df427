package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stagedChange struct {
	adds    []string
	removes []string
}

// PostgresDirectory implements GroupDirectory on the groups and
// group_members tables. Staged membership changes are flushed in a single
// transaction per identity by SaveMembership.
type PostgresDirectory struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	staged map[uuid.UUID]*stagedChange
}

// NewPostgresDirectory instantiates the directory adapter.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{
		pool:   pool,
		staged: make(map[uuid.UUID]*stagedChange),
	}
}

// LoadMembership returns all group names currently held by the identity.
func (d *PostgresDirectory) LoadMembership(ctx context.Context, identity uuid.UUID) ([]string, error) {
	const query = `SELECT group_name FROM group_members WHERE identity=$1 ORDER BY group_name`

	rows, err := d.pool.Query(ctx, query, identity)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		groups = append(groups, name)
	}
	return groups, rows.Err()
}

// AddMembership stages a group addition for the identity.
func (d *PostgresDirectory) AddMembership(_ context.Context, identity uuid.UUID, group string) error {
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

// RemoveMembership stages a group removal for the identity.
func (d *PostgresDirectory) RemoveMembership(_ context.Context, identity uuid.UUID, group string) error {
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

// SaveMembership applies the staged changes for the identity in one
// transaction. A no-op when nothing is staged.
func (d *PostgresDirectory) SaveMembership(ctx context.Context, identity uuid.UUID) error {
	d.mu.Lock()
	change := d.staged[identity]
	delete(d.staged, identity)
	d.mu.Unlock()

	if change == nil || (len(change.adds) == 0 && len(change.removes) == 0) {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		// Restage so a retried save does not lose the decision.
		d.restage(identity, change)
		return fmt.Errorf("save membership: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, group := range change.removes {
		if _, err := tx.Exec(ctx,
			`DELETE FROM group_members WHERE identity=$1 AND group_name=$2`,
			identity, group); err != nil {
			d.restage(identity, change)
			return fmt.Errorf("save membership remove %s: %w", group, err)
		}
	}
	for _, group := range change.adds {
		if _, err := tx.Exec(ctx,
			`INSERT INTO group_members (identity, group_name) VALUES ($1,$2)
             ON CONFLICT (identity, group_name) DO NOTHING`,
			identity, group); err != nil {
			d.restage(identity, change)
			return fmt.Errorf("save membership add %s: %w", group, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		d.restage(identity, change)
		return fmt.Errorf("save membership commit: %w", err)
	}
	return nil
}

func (d *PostgresDirectory) restage(identity uuid.UUID, change *stagedChange) {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing := d.staged[identity]
	if existing == nil {
		d.staged[identity] = change
		return
	}
	existing.adds = append(change.adds, existing.adds...)
	existing.removes = append(change.removes, existing.removes...)
}

// GroupExists reports whether a group is present in the directory.
func (d *PostgresDirectory) GroupExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM groups WHERE name=$1)`

	var exists bool
	if err := d.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("group exists: %w", err)
	}
	return exists, nil
}

// CreateGroup inserts a new group with its cosmetic attributes. Existing
// groups are left untouched.
func (d *PostgresDirectory) CreateGroup(ctx context.Context, group Group) error {
	const query = `
        INSERT INTO groups (name, track, prefix, weight, fingerprint)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (name) DO NOTHING`

	if _, err := d.pool.Exec(ctx, query,
		group.Name, group.Track, group.Prefix, group.Weight, group.Fingerprint,
	); err != nil {
		return fmt.Errorf("create group %s: %w", group.Name, err)
	}
	return nil
}

// ListGroupsOnTrack returns track group names ordered by weight.
func (d *PostgresDirectory) ListGroupsOnTrack(ctx context.Context, track string) ([]string, error) {
	const query = `SELECT name FROM groups WHERE track=$1 ORDER BY weight ASC`

	rows, err := d.pool.Query(ctx, query, track)
	if err != nil {
		return nil, fmt.Errorf("list groups on track: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
