package movements

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func plan(amounts ...string) []Installment {
	installments := make([]Installment, len(amounts))
	for i, raw := range amounts {
		installments[i] = Installment{
			ID:       int64(i + 1),
			Sequence: i + 1,
			Amount:   d(raw),
			DueDate:  day("2024-01-01").AddDate(0, 0, 7*(i+1)),
		}
	}
	return installments
}

func TestRedistributeKeepsExactAmountsWhenDivisible(t *testing.T) {
	installments := plan("100.00", "100.00", "100.00")
	installments[0].PaidDate = timePtr(day("2024-01-09"))

	rebalanced := RedistributePending(d("300.00"), installments)
	require.Len(t, rebalanced, 2)
	require.Equal(t, 2, rebalanced[0].Sequence)
	require.True(t, rebalanced[0].Amount.Equal(d("100.00")))
	require.True(t, rebalanced[1].Amount.Equal(d("100.00")))
}

func TestRedistributeAfterSecondPayment(t *testing.T) {
	installments := plan("100.00", "100.00", "100.00")
	installments[0].PaidDate = timePtr(day("2024-01-09"))
	installments[1].PaidDate = timePtr(day("2024-01-16"))

	rebalanced := RedistributePending(d("300.00"), installments)
	require.Len(t, rebalanced, 1)
	require.Equal(t, 3, rebalanced[0].Sequence)
	require.True(t, rebalanced[0].Amount.Equal(d("100.00")), "300 - 100 - 100 = 100 exactly")
}

func TestRedistributePutsRemainderOnLastPending(t *testing.T) {
	installments := plan("33.33", "33.33", "33.34")
	installments[0].PaidDate = timePtr(day("2024-01-09"))

	rebalanced := RedistributePending(d("100.00"), installments)
	require.Len(t, rebalanced, 2)
	require.True(t, rebalanced[0].Amount.Equal(d("33.34")), "66.67 / 2 rounds half away to 33.34")
	require.True(t, rebalanced[1].Amount.Equal(d("33.33")))

	sum := PaidTotal(installments).Add(rebalanced[0].Amount).Add(rebalanced[1].Amount)
	require.True(t, sum.Equal(d("100.00")))
}

func TestRedistributeSumInvariantAcrossSequentialPayments(t *testing.T) {
	total := d("1000.01")
	installments, err := BuildSchedule(total, day("2024-01-01"), FrequencyWeekly, 7)
	require.NoError(t, err)

	for paid := 0; paid < len(installments); paid++ {
		installments[paid].PaidDate = timePtr(day("2024-02-01").AddDate(0, 0, paid))
		installments[paid].Paid = installments[paid].IsPaid()

		if rebalanced := RedistributePending(total, installments); rebalanced != nil {
			for _, p := range rebalanced {
				installments[p.Sequence-1].Amount = p.Amount
			}
		}

		sum := decimal.Zero
		for _, ins := range installments {
			sum = sum.Add(ins.Amount)
		}
		require.True(t, sum.Equal(total), "after %d payments sum is %s", paid+1, sum)
	}
}

func TestRedistributeNoOpWhenEverythingPaid(t *testing.T) {
	installments := plan("50.00", "50.00")
	installments[0].PaidDate = timePtr(day("2024-01-09"))
	installments[1].PaidDate = timePtr(day("2024-01-16"))

	require.Nil(t, RedistributePending(d("100.00"), installments))
}

func TestRedistributeNoOpWhenOverpaid(t *testing.T) {
	installments := plan("80.00", "30.00")
	installments[0].PaidDate = timePtr(day("2024-01-09"))
	// Paid 80 of a 70 total: nothing positive remains to spread.
	require.Nil(t, RedistributePending(d("70.00"), installments))
}

func TestPaidTotalRequiresPositiveAmountAndDate(t *testing.T) {
	installments := []Installment{
		{Sequence: 1, Amount: d("0.00"), PaidDate: timePtr(day("2024-01-09"))},
		{Sequence: 2, Amount: d("25.00")},
		{Sequence: 3, Amount: d("25.00"), PaidDate: timePtr(day("2024-01-16"))},
	}
	require.True(t, PaidTotal(installments).Equal(d("25.00")))
}
