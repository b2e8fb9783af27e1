package movements

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/verifintek/verifintek/internal/money"
)

// PaidTotal sums the amounts of the installments that count as paid.
func PaidTotal(installments []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, ins := range installments {
		if ins.IsPaid() {
			total = total.Add(ins.Amount)
		}
	}
	return total
}

// RedistributePending recomputes the amounts of the unpaid installments so
// that the whole plan still sums to the movement total: the remaining
// balance (total minus paid) is distributed across the pending rows in
// sequence order, remainder to the last one.
//
// It returns copies of the pending installments carrying their new amounts,
// in sequence order. A nil result means there was nothing to redistribute
// (no pending rows, or no positive remaining balance).
func RedistributePending(total decimal.Decimal, installments []Installment) []Installment {
	remaining := total.Sub(PaidTotal(installments))

	var pending []Installment
	for _, ins := range installments {
		if !ins.IsPaid() {
			pending = append(pending, ins)
		}
	}
	if len(pending) == 0 || remaining.Sign() <= 0 {
		return nil
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Sequence < pending[j].Sequence
	})

	amounts := money.Distribute(remaining, len(pending))
	for i := range pending {
		pending[i].Amount = amounts[i]
		pending[i].Paid = false
	}
	return pending
}
