package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/verifintek/verifintek/internal/movements"
)

// Filter scopes report computations to a company and optionally one
// sub-unit, one concept and a date range. Zero dates mean unbounded.
type Filter struct {
	CompanyID int64
	SubUnitID *int64
	ConceptID *int64
	From      time.Time
	To        time.Time
}

// MovementRow is the accrual-side projection used by report math.
type MovementRow struct {
	MovementID  int64
	SubUnitID   *int64
	Type        movements.Type
	ConceptID   int64
	TotalAmount decimal.Decimal
	StartDate   time.Time
}

// InstallmentRow is the cash-side projection used by report math.
// Settlement is evaluated from Amount and PaidDate, never trusted from
// a stored flag.
type InstallmentRow struct {
	MovementID int64
	SubUnitID  *int64
	Type       movements.Type
	Amount     decimal.Decimal
	DueDate    time.Time
	PaidDate   *time.Time
}

// Settled reports whether the installment counts as paid.
func (r InstallmentRow) Settled() bool {
	return r.Amount.IsPositive() && r.PaidDate != nil
}

// BalanceReport is the consolidated position for the selected scope.
type BalanceReport struct {
	AssetTotal      decimal.Decimal  `json:"asset_total"`
	LiabilityTotal  decimal.Decimal  `json:"liability_total"`
	Net             decimal.Decimal  `json:"net"`
	StartingCapital *decimal.Decimal `json:"starting_capital,omitempty"`
	Balance         decimal.Decimal  `json:"balance"`
}

// CashflowPoint is one month of cash movement: what was actually paid
// (bucketed by paid date) against what was scheduled (bucketed by due
// date).
type CashflowPoint struct {
	Year      int             `json:"year"`
	Month     time.Month      `json:"month"`
	Paid      decimal.Decimal `json:"paid"`
	Scheduled decimal.Decimal `json:"scheduled"`
}

// AgingReport splits unpaid installments into overdue and upcoming,
// separately for receivables and payables.
type AgingReport struct {
	AsOf               time.Time       `json:"as_of"`
	ReceivablesOverdue decimal.Decimal `json:"receivables_overdue"`
	ReceivablesCurrent decimal.Decimal `json:"receivables_current"`
	PayablesOverdue    decimal.Decimal `json:"payables_overdue"`
	PayablesCurrent    decimal.Decimal `json:"payables_current"`
}

// SubUnitLine is one sub-unit's contribution in the per-unit breakdown.
// Ratio is nil when the unit has no liabilities.
type SubUnitLine struct {
	SubUnitID      int64            `json:"sub_unit_id"`
	Name           string           `json:"name"`
	AssetTotal     decimal.Decimal  `json:"asset_total"`
	LiabilityTotal decimal.Decimal  `json:"liability_total"`
	Net            decimal.Decimal  `json:"net"`
	Ratio          *decimal.Decimal `json:"ratio,omitempty"`
}

// TrendPoint is one month in the trailing asset/liability series.
type TrendPoint struct {
	Year        int             `json:"year"`
	Month       time.Month      `json:"month"`
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Net         decimal.Decimal `json:"net"`
}

// ProjectionPoint is one month of upcoming unpaid installments.
type ProjectionPoint struct {
	Year         int             `json:"year"`
	Month        time.Month      `json:"month"`
	AssetDue     decimal.Decimal `json:"asset_due"`
	LiabilityDue decimal.Decimal `json:"liability_due"`
	NetDue       decimal.Decimal `json:"net_due"`
}

// ReportBundle is the full aggregation output for one scope. Export
// writers must preserve its field order and decimal formatting.
type ReportBundle struct {
	Filter       Filter            `json:"filter"`
	Balance      BalanceReport     `json:"balance"`
	Cashflow     []CashflowPoint   `json:"cashflow"`
	Aging        AgingReport       `json:"aging"`
	Breakdown    []SubUnitLine     `json:"breakdown"`
	Trend        []TrendPoint      `json:"trend"`
	Projection   []ProjectionPoint `json:"projection"`
	GeneratedFor int64             `json:"generated_for"`
	GeneratedAt  time.Time         `json:"generated_at"`
}
