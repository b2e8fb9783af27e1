package movements

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/verifintek/verifintek/internal/money"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildScheduleOneTimeDueDatesEqualStart(t *testing.T) {
	start := day("2024-03-15")
	for _, count := range []int{1, 2, 5} {
		installments, err := BuildSchedule(d("500.00"), start, FrequencyOneTime, count)
		require.NoError(t, err)
		require.Len(t, installments, count)
		for _, ins := range installments {
			require.True(t, ins.DueDate.Equal(start))
		}
	}
}

func TestBuildScheduleWeeklyDatesStartOnePeriodAfterStart(t *testing.T) {
	installments, err := BuildSchedule(d("300.00"), day("2024-01-01"), FrequencyWeekly, 3)
	require.NoError(t, err)
	require.Len(t, installments, 3)
	require.True(t, installments[0].DueDate.Equal(day("2024-01-08")))
	require.True(t, installments[1].DueDate.Equal(day("2024-01-15")))
	require.True(t, installments[2].DueDate.Equal(day("2024-01-22")))
}

func TestBuildScheduleMonthlyUsesFixedThirtyDayStep(t *testing.T) {
	installments, err := BuildSchedule(d("100.00"), day("2024-01-31"), FrequencyMonthly, 2)
	require.NoError(t, err)
	require.True(t, installments[0].DueDate.Equal(day("2024-03-01")), "fixed 30-day step, not calendar month")
	require.True(t, installments[1].DueDate.Equal(day("2024-03-31")))
}

func TestBuildScheduleAmountsSumToTotal(t *testing.T) {
	totals := []string{"100.00", "0.01", "999.99", "1234.567", "33333.33"}
	counts := []int{1, 2, 3, 7, 100, 1000}
	for _, raw := range totals {
		total := d(raw)
		for _, count := range counts {
			installments, err := BuildSchedule(total, day("2024-01-01"), FrequencyWeekly, count)
			require.NoError(t, err)

			sum := decimal.Zero
			for i, ins := range installments {
				require.Equal(t, i+1, ins.Sequence)
				require.LessOrEqual(t, int(ins.Amount.Exponent())*-1, 2, "amounts carry at most 2 decimals")
				sum = sum.Add(ins.Amount)
			}
			require.True(t, sum.Equal(money.Quantize(total)), "total %s count %d: sum %s", raw, count, sum)
		}
	}
}

func TestBuildScheduleClampsCountBelowOne(t *testing.T) {
	installments, err := BuildSchedule(d("50.00"), day("2024-01-01"), FrequencyOneTime, 0)
	require.NoError(t, err)
	require.Len(t, installments, 1)
	require.True(t, installments[0].Amount.Equal(d("50.00")))
}

func TestBuildScheduleUnknownFrequency(t *testing.T) {
	_, err := BuildSchedule(d("50.00"), day("2024-01-01"), Frequency("DAILY"), 1)
	require.ErrorIs(t, err, ErrUnknownFrequency)
}
