// Package money provides the rounding and distribution rules shared by the
// installment generator and the payment ledger. Amounts are carried as
// shopspring decimals and quantized to cents with half-up rounding.
package money

import "github.com/shopspring/decimal"

// Scale is the number of decimal places every stored amount carries.
const Scale = 2

// Quantize rounds d to two decimal places, half away from zero.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Distribute splits total into n buckets. Each bucket is individually
// quantized; whatever remainder the per-bucket rounding leaves is added to
// the last bucket so the sum is exact to the cent.
//
// n below 1 is treated as 1.
func Distribute(total decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		n = 1
	}

	base := Quantize(total.Div(decimal.NewFromInt(int64(n))))
	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = base
	}

	remainder := total.Sub(base.Mul(decimal.NewFromInt(int64(n))))
	amounts[n-1] = Quantize(amounts[n-1].Add(remainder))

	return amounts
}

// Sum adds up a slice of amounts.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
