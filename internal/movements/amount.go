package movements

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user-supplied amount text to a decimal. Thousand
// separators ("1,250.50") and surrounding whitespace are tolerated; the
// result must be strictly positive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}
