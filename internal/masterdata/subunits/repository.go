package subunits

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verifintek/verifintek/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]SubUnit, int, error)
	Get(ctx context.Context, id int64) (SubUnit, error)
	Create(ctx context.Context, su SubUnit) (SubUnit, error)
	Update(ctx context.Context, id int64, su SubUnit) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const subUnitColumns = `id, company_id, name, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]SubUnit, int, error) {
	query := `SELECT ` + subUnitColumns + ` FROM sub_units WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM sub_units WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	appendCond := func(cond string, value interface{}) {
		argCount++
		clause := ` AND ` + cond + ` $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, value)
	}

	if filters.CompanyID != nil {
		appendCond("company_id =", *filters.CompanyID)
	}
	if filters.IsActive != nil {
		appendCond("is_active =", *filters.IsActive)
	}
	if filters.Search != "" {
		appendCond("name ILIKE", "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	if filters.SortDir == shared.SortDesc {
		query += ` DESC`
	}

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var units []SubUnit
	for rows.Next() {
		su, err := scanSubUnit(rows)
		if err != nil {
			return nil, 0, err
		}
		units = append(units, su)
	}
	return units, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (SubUnit, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+subUnitColumns+` FROM sub_units WHERE id = $1`, id)
	su, err := scanSubUnit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SubUnit{}, shared.ErrNotFound
	}
	return su, err
}

func (r *repository) Create(ctx context.Context, su SubUnit) (SubUnit, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sub_units (company_id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		su.CompanyID, su.Name, su.IsActive,
	).Scan(&su.ID, &su.CreatedAt, &su.UpdatedAt)
	if err != nil {
		if isNameConflict(err) {
			return SubUnit{}, ErrNameTaken
		}
		return SubUnit{}, err
	}
	return su, nil
}

func (r *repository) Update(ctx context.Context, id int64, su SubUnit) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sub_units
		SET name = $1, is_active = $2, updated_at = NOW()
		WHERE id = $3`,
		su.Name, su.IsActive, id)
	if err != nil {
		if isNameConflict(err) {
			return ErrNameTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sub_units SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sub_units WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanSubUnit(row pgx.Row) (SubUnit, error) {
	var su SubUnit
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&su.ID, &su.CompanyID, &su.Name, &su.IsActive, &createdAt, &updatedAt); err != nil {
		return SubUnit{}, err
	}
	if createdAt.Valid {
		su.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		su.UpdatedAt = updatedAt.Time
	}
	return su, nil
}

func isNameConflict(err error) bool {
	pgErr, ok := err.(*pgconn.PgError)
	return ok && pgErr.ConstraintName == "uq_sub_units_company_name"
}
