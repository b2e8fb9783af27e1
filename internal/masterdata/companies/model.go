package companies

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company represents a tenant company. StartingCapital seeds the
// consolidated balance; it is nil when the company tracks no opening
// position.
type Company struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Address         string           `json:"address"`
	TaxID           string           `json:"tax_id"`
	StartingCapital *decimal.Decimal `json:"starting_capital,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
