package access

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for memberships.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const membershipColumns = `id, user_id, company_id, sub_unit_id, role, can_read, can_write, can_list_reports, created_at, updated_at`

// ListForUser returns every membership held by the user.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships WHERE user_id = $1
		ORDER BY company_id, sub_unit_id NULLS FIRST`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Insert creates a membership, surfacing (user, company, sub-unit)
// uniqueness conflicts as ErrDuplicateMembership.
func (r *Repository) Insert(ctx context.Context, m Membership) (Membership, error) {
	var subUnit pgtype.Int8
	if m.SubUnitID != nil {
		subUnit = pgtype.Int8{Int64: *m.SubUnitID, Valid: true}
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO memberships (user_id, company_id, sub_unit_id, role, can_read, can_write, can_list_reports, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		m.UserID, m.CompanyID, subUnit, string(m.Role), m.CanRead, m.CanWrite, m.CanListReports,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_memberships_scope" {
			return Membership{}, ErrDuplicateMembership
		}
		return Membership{}, err
	}
	return m, nil
}

// Delete removes a membership by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMembership(row pgx.Row) (Membership, error) {
	var m Membership
	var subUnit pgtype.Int8
	var role string
	if err := row.Scan(&m.ID, &m.UserID, &m.CompanyID, &subUnit, &role, &m.CanRead, &m.CanWrite, &m.CanListReports, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Membership{}, err
	}
	if subUnit.Valid {
		v := subUnit.Int64
		m.SubUnitID = &v
	}
	m.Role = Role(role)
	return m, nil
}
