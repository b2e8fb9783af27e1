package movements

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/verifintek/verifintek/internal/money"
)

// BuildSchedule produces the installment plan for a movement: count rows
// with 1-based sequence numbers, amounts from money.Distribute and due
// dates spaced by the frequency's fixed day step.
//
// A one-time frequency puts every due date at the start date. Periodic
// frequencies put the first installment one full period after start, not at
// start. A count below 1 is clamped to 1.
func BuildSchedule(total decimal.Decimal, start time.Time, freq Frequency, count int) ([]Installment, error) {
	step, ok := freq.StepDays()
	if !ok {
		return nil, ErrUnknownFrequency
	}
	if count < 1 {
		count = 1
	}

	amounts := money.Distribute(total, count)
	installments := make([]Installment, count)
	for i := 0; i < count; i++ {
		due := start
		if step > 0 {
			due = start.AddDate(0, 0, step*(i+1))
		}
		installments[i] = Installment{
			Sequence: i + 1,
			DueDate:  due,
			Amount:   amounts[i],
		}
	}
	return installments, nil
}
