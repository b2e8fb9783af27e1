package movements

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verifintek/verifintek/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for movements.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const movementColumns = `
	id, company_id, subunit_id, captured_by, type, concept_id, folio,
	total_amount, registered_on, start_date, installment_count, frequency,
	notes, workflow_status, created_at, updated_at`

// CreateMovement inserts a movement with its installment plan in one
// transaction and assigns the folio from the generated primary key.
func (r *Repository) CreateMovement(ctx context.Context, mov *Movement, installments []Installment) (*Movement, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO movements (
				company_id, subunit_id, captured_by, type, concept_id,
				total_amount, registered_on, start_date, installment_count,
				frequency, notes, workflow_status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			RETURNING id, created_at, updated_at`

		var subunit, captured pgtype.Int8
		if mov.SubUnitID != nil {
			subunit = pgtype.Int8{Int64: *mov.SubUnitID, Valid: true}
		}
		if mov.CapturedBy != nil {
			captured = pgtype.Int8{Int64: *mov.CapturedBy, Valid: true}
		}

		err := tx.QueryRow(ctx, query,
			mov.CompanyID,
			subunit,
			captured,
			string(mov.Type),
			mov.ConceptID,
			mov.TotalAmount,
			mov.RegisteredOn,
			mov.StartDate,
			mov.InstallmentCount,
			string(mov.Frequency),
			mov.Notes,
			string(mov.WorkflowStatus),
		).Scan(&mov.ID, &mov.CreatedAt, &mov.UpdatedAt)
		if err != nil {
			return err
		}

		// Folio is assigned exactly once, derived from the fresh primary key.
		mov.Folio = FolioFor(mov.Type, mov.ID)
		if _, err := tx.Exec(ctx,
			`UPDATE movements SET folio = $2 WHERE id = $1 AND folio IS NULL`,
			mov.ID, mov.Folio,
		); err != nil {
			return err
		}

		for _, ins := range installments {
			if _, err := tx.Exec(ctx, `
				INSERT INTO installments (
					movement_id, sequence, due_date, amount, paid, paid_date, created_at, updated_at
				) VALUES ($1, $2, $3, $4, FALSE, NULL, NOW(), NOW())`,
				mov.ID, ins.Sequence, ins.DueDate, ins.Amount,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// GetMovement retrieves a movement by id.
func (r *Repository) GetMovement(ctx context.Context, id int64) (*Movement, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+movementColumns+` FROM movements WHERE id = $1`, id)
	mov, err := scanMovement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ListMovements returns movements matching the filter, newest first.
func (r *Repository) ListMovements(ctx context.Context, filter ListFilter) ([]Movement, error) {
	query := `SELECT` + movementColumns + ` FROM movements WHERE company_id = $1`
	args := []any{filter.CompanyID}
	argNum := 2

	if filter.SubUnitID != nil {
		query += fmt.Sprintf(" AND subunit_id = $%d", argNum)
		args = append(args, *filter.SubUnitID)
		argNum++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, string(filter.Type))
		argNum++
	}
	if filter.ConceptID > 0 {
		query += fmt.Sprintf(" AND concept_id = $%d", argNum)
		args = append(args, filter.ConceptID)
		argNum++
	}
	if !filter.FromDate.IsZero() {
		query += fmt.Sprintf(" AND registered_on >= $%d", argNum)
		args = append(args, filter.FromDate)
		argNum++
	}
	if !filter.ToDate.IsZero() {
		query += fmt.Sprintf(" AND registered_on <= $%d", argNum)
		args = append(args, filter.ToDate)
		argNum++
	}

	query += " ORDER BY registered_on DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		mov, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *mov)
	}
	return out, rows.Err()
}

// DeleteMovement removes a movement; installments cascade at the schema level.
func (r *Repository) DeleteMovement(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetInstallment retrieves an installment by id.
func (r *Repository) GetInstallment(ctx context.Context, id int64) (*Installment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, movement_id, sequence, due_date, amount, paid, paid_date, created_at, updated_at
		FROM installments WHERE id = $1`, id)
	ins, err := scanInstallment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ins, nil
}

// ListInstallments returns a movement's installments in sequence order.
func (r *Repository) ListInstallments(ctx context.Context, movementID int64) ([]Installment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, movement_id, sequence, due_date, amount, paid, paid_date, created_at, updated_at
		FROM installments WHERE movement_id = $1 ORDER BY sequence`, movementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Installment
	for rows.Next() {
		ins, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ins)
	}
	return out, rows.Err()
}

// WithMovementLock runs fn inside a transaction after taking the movement's
// row lock, serialising installment edits per movement.
func (r *Repository) WithMovementLock(ctx context.Context, movementID int64, fn func(ctx context.Context, tx LedgerTx) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM movements WHERE id = $1 FOR UPDATE`, movementID,
		).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return fn(ctx, &ledgerTx{tx: tx, movementID: movementID})
	})
}

type ledgerTx struct {
	tx         pgx.Tx
	movementID int64
}

func (l *ledgerTx) Movement(ctx context.Context) (*Movement, error) {
	row := l.tx.QueryRow(ctx,
		`SELECT`+movementColumns+` FROM movements WHERE id = $1`, l.movementID)
	mov, err := scanMovement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return mov, err
}

func (l *ledgerTx) Installments(ctx context.Context) ([]Installment, error) {
	rows, err := l.tx.Query(ctx, `
		SELECT id, movement_id, sequence, due_date, amount, paid, paid_date, created_at, updated_at
		FROM installments WHERE movement_id = $1 ORDER BY sequence`, l.movementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Installment
	for rows.Next() {
		ins, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ins)
	}
	return out, rows.Err()
}

func (l *ledgerTx) SaveInstallment(ctx context.Context, ins Installment) error {
	var paidDate pgtype.Date
	if ins.PaidDate != nil {
		paidDate = pgtype.Date{Time: *ins.PaidDate, Valid: true}
	}
	tag, err := l.tx.Exec(ctx, `
		UPDATE installments
		SET paid = $2, paid_date = $3, updated_at = NOW()
		WHERE id = $1 AND movement_id = $4`,
		ins.ID, ins.Paid, paidDate, l.movementID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (l *ledgerTx) SaveAmounts(ctx context.Context, rows []Installment) error {
	for _, ins := range rows {
		if _, err := l.tx.Exec(ctx, `
			UPDATE installments SET amount = $2, updated_at = NOW()
			WHERE id = $1 AND movement_id = $3`,
			ins.ID, ins.Amount, l.movementID,
		); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (*Movement, error) {
	var mov Movement
	var subunit, captured pgtype.Int8
	var folio pgtype.Text
	var typ, freq, workflow string

	err := row.Scan(
		&mov.ID, &mov.CompanyID, &subunit, &captured, &typ, &mov.ConceptID, &folio,
		&mov.TotalAmount, &mov.RegisteredOn, &mov.StartDate, &mov.InstallmentCount, &freq,
		&mov.Notes, &workflow, &mov.CreatedAt, &mov.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if subunit.Valid {
		mov.SubUnitID = &subunit.Int64
	}
	if captured.Valid {
		mov.CapturedBy = &captured.Int64
	}
	if folio.Valid {
		mov.Folio = folio.String
	}
	mov.Type = Type(typ)
	mov.Frequency = Frequency(freq)
	mov.WorkflowStatus = WorkflowStatus(workflow)
	return &mov, nil
}

func scanInstallment(row rowScanner) (*Installment, error) {
	var ins Installment
	var paidDate pgtype.Date

	err := row.Scan(
		&ins.ID, &ins.MovementID, &ins.Sequence, &ins.DueDate, &ins.Amount,
		&ins.Paid, &paidDate, &ins.CreatedAt, &ins.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paidDate.Valid {
		t := paidDate.Time
		ins.PaidDate = &t
	}
	return &ins, nil
}
