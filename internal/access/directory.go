package access

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGDirectory resolves company and sub-unit references straight from
// the store. The resolver only needs id/name projections, so it reads
// the masterdata tables directly instead of going through the
// masterdata services.
type PGDirectory struct {
	pool *pgxpool.Pool
}

// NewPGDirectory constructs a directory backed by the given pool.
func NewPGDirectory(pool *pgxpool.Pool) *PGDirectory {
	return &PGDirectory{pool: pool}
}

func (d *PGDirectory) ListCompanies(ctx context.Context) ([]CompanyRef, error) {
	rows, err := d.pool.Query(ctx, `SELECT id, name FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompanyRef
	for rows.Next() {
		var c CompanyRef
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *PGDirectory) GetCompany(ctx context.Context, id int64) (CompanyRef, error) {
	var c CompanyRef
	err := d.pool.QueryRow(ctx, `SELECT id, name FROM companies WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return CompanyRef{}, ErrNotFound
	}
	return c, err
}

func (d *PGDirectory) ActiveSubUnits(ctx context.Context, companyID int64) ([]SubUnitRef, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, company_id, name FROM sub_units
		WHERE company_id = $1 AND is_active ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SubUnitRef
	for rows.Next() {
		var su SubUnitRef
		if err := rows.Scan(&su.ID, &su.CompanyID, &su.Name); err != nil {
			return nil, err
		}
		out = append(out, su)
	}
	return out, rows.Err()
}

func (d *PGDirectory) GetSubUnit(ctx context.Context, id int64) (SubUnitRef, error) {
	var su SubUnitRef
	err := d.pool.QueryRow(ctx, `SELECT id, company_id, name FROM sub_units WHERE id = $1`, id).Scan(&su.ID, &su.CompanyID, &su.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return SubUnitRef{}, ErrNotFound
	}
	return su, err
}
