package movements

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a movement as money owed to the company (asset) or money
// the company owes (liability).
type Type string

const (
	TypeAsset     Type = "ASSET"
	TypeLiability Type = "LIABILITY"
)

// Valid reports whether the type is a known classification.
func (t Type) Valid() bool {
	return t == TypeAsset || t == TypeLiability
}

// folioPrefix returns the folio prefix assigned to each movement type.
func (t Type) folioPrefix() string {
	if t == TypeLiability {
		return "010"
	}
	return "001"
}

// Frequency enumerates the supported payment frequencies.
type Frequency string

const (
	FrequencyOneTime  Frequency = "ONE_TIME"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
	FrequencyYearly   Frequency = "YEARLY"
)

// StepDays returns the fixed day step between installments. Month and year
// steps are fixed-day approximations (30 and 365), not calendar-aware; the
// schedule depends on reproducing them exactly.
func (f Frequency) StepDays() (int, bool) {
	switch f {
	case FrequencyOneTime:
		return 0, true
	case FrequencyWeekly:
		return 7, true
	case FrequencyBiweekly:
		return 14, true
	case FrequencyMonthly:
		return 30, true
	case FrequencyYearly:
		return 365, true
	}
	return 0, false
}

// WorkflowStatus is the approval workflow state carried on a movement. It is
// tracked but not enforced by a state machine, and it is distinct from the
// computed settlement status.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "PENDING"
	WorkflowApproved  WorkflowStatus = "APPROVED"
	WorkflowCancelled WorkflowStatus = "CANCELLED"
)

// Movement is a recorded financial transaction with a payment plan.
type Movement struct {
	ID               int64
	CompanyID        int64
	SubUnitID        *int64
	CapturedBy       *int64
	Type             Type
	ConceptID        int64
	Folio            string
	TotalAmount      decimal.Decimal
	RegisteredOn     time.Time
	StartDate        time.Time
	InstallmentCount int
	Frequency        Frequency
	Notes            string
	WorkflowStatus   WorkflowStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Folio builds the human folio for a movement: type prefix plus primary key.
// It is assigned once on first save and never changes afterwards.
func FolioFor(t Type, id int64) string {
	return t.folioPrefix() + strconv.FormatInt(id, 10)
}

// Installment is one scheduled payment within a movement's plan.
type Installment struct {
	ID         int64
	MovementID int64
	Sequence   int
	DueDate    time.Time
	Amount     decimal.Decimal
	Paid       bool
	PaidDate   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPaid applies the settlement rule: an installment counts as paid only
// when it has a positive amount and a paid date. The stored Paid flag is
// derived from this rule, never set independently.
func (i Installment) IsPaid() bool {
	return i.Amount.IsPositive() && i.PaidDate != nil
}
