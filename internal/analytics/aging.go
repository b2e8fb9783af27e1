package analytics

import (
	"time"

	"github.com/verifintek/verifintek/internal/movements"
)

// ComputeAging splits unpaid installments into overdue and current
// buckets, receivables and payables separately. An installment is
// overdue when its due date is strictly before the as-of day.
func ComputeAging(rows []InstallmentRow, asOf time.Time) AgingReport {
	report := AgingReport{AsOf: asOf}
	for _, row := range rows {
		if row.Settled() {
			continue
		}
		overdue := row.DueDate.Before(asOf)
		switch row.Type {
		case movements.TypeAsset:
			if overdue {
				report.ReceivablesOverdue = report.ReceivablesOverdue.Add(row.Amount)
			} else {
				report.ReceivablesCurrent = report.ReceivablesCurrent.Add(row.Amount)
			}
		case movements.TypeLiability:
			if overdue {
				report.PayablesOverdue = report.PayablesOverdue.Add(row.Amount)
			} else {
				report.PayablesCurrent = report.PayablesCurrent.Add(row.Amount)
			}
		}
	}
	return report
}
