package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/verifintek/verifintek/internal/analytics"
)

// Amounts are always emitted as fixed two-decimal strings so exported
// figures match the aggregation bundle digit for digit.
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatPeriod(year int, month int) string {
	return strconv.Itoa(year) + "-" + pad2(month)
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// WriteBalanceCSV serialises the consolidated position.
func WriteBalanceCSV(w io.Writer, report analytics.BalanceReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Asset Total", formatAmount(report.AssetTotal)},
		{"Liability Total", formatAmount(report.LiabilityTotal)},
		{"Net", formatAmount(report.Net)},
	}
	if report.StartingCapital != nil {
		records = append(records, []string{"Starting Capital", formatAmount(*report.StartingCapital)})
	}
	records = append(records, []string{"Balance", formatAmount(report.Balance)})
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCashflowCSV emits the paid-versus-scheduled month series.
func WriteCashflowCSV(w io.Writer, points []analytics.CashflowPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Period", "Paid", "Scheduled"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			formatPeriod(point.Year, int(point.Month)),
			formatAmount(point.Paid),
			formatAmount(point.Scheduled),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAgingCSV prints the overdue and current buckets.
func WriteAgingCSV(w io.Writer, report analytics.AgingReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Bucket", "Amount"}); err != nil {
		return err
	}
	records := [][]string{
		{"Receivables Overdue", formatAmount(report.ReceivablesOverdue)},
		{"Receivables Current", formatAmount(report.ReceivablesCurrent)},
		{"Payables Overdue", formatAmount(report.PayablesOverdue)},
		{"Payables Current", formatAmount(report.PayablesCurrent)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBreakdownCSV emits the per-sub-unit contribution table.
func WriteBreakdownCSV(w io.Writer, lines []analytics.SubUnitLine) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Sub-Unit", "Assets", "Liabilities", "Net", "Ratio"}); err != nil {
		return err
	}
	for _, line := range lines {
		ratio := ""
		if line.Ratio != nil {
			ratio = line.Ratio.String()
		}
		if err := writer.Write([]string{
			line.Name,
			formatAmount(line.AssetTotal),
			formatAmount(line.LiabilityTotal),
			formatAmount(line.Net),
			ratio,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBundleCSV emits the whole report bundle as stacked sections,
// preserving the bundle's section and field order.
func WriteBundleCSV(w io.Writer, bundle analytics.ReportBundle) error {
	if err := WriteBalanceCSV(w, bundle.Balance); err != nil {
		return err
	}
	if err := WriteCashflowCSV(w, bundle.Cashflow); err != nil {
		return err
	}
	if err := WriteAgingCSV(w, bundle.Aging); err != nil {
		return err
	}
	if err := WriteBreakdownCSV(w, bundle.Breakdown); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Period", "Assets", "Liabilities", "Net"}); err != nil {
		return err
	}
	for _, point := range bundle.Trend {
		if err := writer.Write([]string{
			formatPeriod(point.Year, int(point.Month)),
			formatAmount(point.Assets),
			formatAmount(point.Liabilities),
			formatAmount(point.Net),
		}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"Period", "Asset Due", "Liability Due", "Net Due"}); err != nil {
		return err
	}
	for _, point := range bundle.Projection {
		if err := writer.Write([]string{
			formatPeriod(point.Year, int(point.Month)),
			formatAmount(point.AssetDue),
			formatAmount(point.LiabilityDue),
			formatAmount(point.NetDue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
