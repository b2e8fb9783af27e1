package analytics

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/verifintek/verifintek/internal/movements"
)

// Repository fetches the raw rows the report math folds over. Sums are
// computed in Go so the decimal arithmetic matches the scheduling
// engine exactly.
type Repository interface {
	MovementRows(ctx context.Context, filter Filter) ([]MovementRow, error)
	InstallmentRows(ctx context.Context, filter Filter) ([]InstallmentRow, error)
	StartingCapital(ctx context.Context, companyID int64) (*decimal.Decimal, error)
	SubUnitNames(ctx context.Context, companyID int64) (map[int64]string, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// movementRowsQuery builds the movement fetch. Column names must match the
// write path in the movements package (subunit_id, type).
func movementRowsQuery(filter Filter) (string, []interface{}) {
	query := `
		SELECT id, subunit_id, type, concept_id, total_amount, start_date
		FROM movements WHERE company_id = $1`
	args := []interface{}{filter.CompanyID}
	argCount := 1

	if filter.SubUnitID != nil {
		argCount++
		query += ` AND subunit_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.SubUnitID)
	}
	if filter.ConceptID != nil {
		argCount++
		query += ` AND concept_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.ConceptID)
	}
	if !filter.From.IsZero() {
		argCount++
		query += ` AND start_date >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		query += ` AND start_date <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}
	query += ` ORDER BY id`
	return query, args
}

func (r *pgRepository) MovementRows(ctx context.Context, filter Filter) ([]MovementRow, error) {
	query, args := movementRowsQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MovementRow
	for rows.Next() {
		var row MovementRow
		var subUnit pgtype.Int8
		var movementType string
		var startDate pgtype.Date
		if err := rows.Scan(&row.MovementID, &subUnit, &movementType, &row.ConceptID, &row.TotalAmount, &startDate); err != nil {
			return nil, err
		}
		if subUnit.Valid {
			v := subUnit.Int64
			row.SubUnitID = &v
		}
		row.Type = movements.Type(movementType)
		if startDate.Valid {
			row.StartDate = startDate.Time
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func installmentRowsQuery(filter Filter) (string, []interface{}) {
	query := `
		SELECT i.movement_id, m.subunit_id, m.type, i.amount, i.due_date, i.paid_date
		FROM installments i
		JOIN movements m ON m.id = i.movement_id
		WHERE m.company_id = $1`
	args := []interface{}{filter.CompanyID}
	argCount := 1

	if filter.SubUnitID != nil {
		argCount++
		query += ` AND m.subunit_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.SubUnitID)
	}
	if filter.ConceptID != nil {
		argCount++
		query += ` AND m.concept_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.ConceptID)
	}
	query += ` ORDER BY i.movement_id, i.sequence`
	return query, args
}

func (r *pgRepository) InstallmentRows(ctx context.Context, filter Filter) ([]InstallmentRow, error) {
	query, args := installmentRowsQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InstallmentRow
	for rows.Next() {
		var row InstallmentRow
		var subUnit pgtype.Int8
		var movementType string
		var dueDate, paidDate pgtype.Date
		if err := rows.Scan(&row.MovementID, &subUnit, &movementType, &row.Amount, &dueDate, &paidDate); err != nil {
			return nil, err
		}
		if subUnit.Valid {
			v := subUnit.Int64
			row.SubUnitID = &v
		}
		row.Type = movements.Type(movementType)
		if dueDate.Valid {
			row.DueDate = dueDate.Time
		}
		if paidDate.Valid {
			v := paidDate.Time
			row.PaidDate = &v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *pgRepository) StartingCapital(ctx context.Context, companyID int64) (*decimal.Decimal, error) {
	var capital decimal.NullDecimal
	err := r.pool.QueryRow(ctx, `SELECT starting_capital FROM companies WHERE id = $1`, companyID).Scan(&capital)
	if err != nil {
		return nil, err
	}
	if !capital.Valid {
		return nil, nil
	}
	v := capital.Decimal
	return &v, nil
}

func (r *pgRepository) SubUnitNames(ctx context.Context, companyID int64) (map[int64]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM sub_units WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
