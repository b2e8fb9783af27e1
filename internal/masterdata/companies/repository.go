package companies

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/verifintek/verifintek/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
	Update(ctx context.Context, id int64, company Company) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, name, address, tax_id, starting_capital, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM companies WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countArgs = append(countArgs, "%"+filters.Search+"%")
		countQuery += ` AND name ILIKE $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

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

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (name, address, tax_id, starting_capital, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		company.Name, company.Address, company.TaxID, capitalArg(company.StartingCapital),
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		if isNameConflict(err) {
			return Company{}, ErrNameTaken
		}
		return Company{}, err
	}
	return company, nil
}

func (r *repository) Update(ctx context.Context, id int64, company Company) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies
		SET name = $1, address = $2, tax_id = $3, starting_capital = $4, updated_at = NOW()
		WHERE id = $5`,
		company.Name, company.Address, company.TaxID, capitalArg(company.StartingCapital), id)
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

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	var capital decimal.NullDecimal
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.TaxID, &capital, &createdAt, &updatedAt); err != nil {
		return Company{}, err
	}
	if capital.Valid {
		v := capital.Decimal
		c.StartingCapital = &v
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return c, nil
}

func capitalArg(capital *decimal.Decimal) decimal.NullDecimal {
	if capital == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *capital, Valid: true}
}

func isNameConflict(err error) bool {
	pgErr, ok := err.(*pgconn.PgError)
	return ok && pgErr.ConstraintName == "uq_companies_name"
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "name " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
