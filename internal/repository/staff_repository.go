package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rank-service/internal/domain"
)

// StaffRepository handles persistence for the staff roster.
type StaffRepository interface {
	// Add inserts a roster entry; reports false when the identity was
	// already present.
	Add(ctx context.Context, member domain.StaffMember) (bool, error)
	// Remove deletes a roster entry; reports false when it did not exist.
	Remove(ctx context.Context, identity uuid.UUID) (bool, error)
	// ListIdentities returns the full identity set in one query.
	ListIdentities(ctx context.Context) ([]uuid.UUID, error)
	// ListAll returns the full roster with display names.
	ListAll(ctx context.Context) ([]domain.StaffMember, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Add(ctx context.Context, member domain.StaffMember) (bool, error) {
	const query = `
        INSERT INTO stafflist (uuid, name) VALUES ($1,$2)
        ON CONFLICT (uuid) DO NOTHING`

	cmd, err := r.pool.Exec(ctx, query, member.ID, member.Name)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *staffRepository) Remove(ctx context.Context, identity uuid.UUID) (bool, error) {
	const query = `DELETE FROM stafflist WHERE uuid=$1`

	cmd, err := r.pool.Exec(ctx, query, identity)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *staffRepository) ListIdentities(ctx context.Context) ([]uuid.UUID, error) {
	const query = `SELECT uuid FROM stafflist`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		identities = append(identities, id)
	}
	return identities, rows.Err()
}

func (r *staffRepository) ListAll(ctx context.Context) ([]domain.StaffMember, error) {
	const query = `SELECT uuid, name FROM stafflist ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.StaffMember
	for rows.Next() {
		var member domain.StaffMember
		if err := rows.Scan(&member.ID, &member.Name); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
