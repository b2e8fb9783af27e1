package export

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/verifintek/verifintek/internal/analytics"
)

// WriteSummaryText renders a short human-readable digest of the bundle.
// Amounts keep the bundle's two-decimal formatting; only the narrative
// around them is printer-localised.
func WriteSummaryText(w io.Writer, bundle analytics.ReportBundle) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "Report for company %d", bundle.Filter.CompanyID); err != nil {
		return err
	}
	if bundle.Filter.SubUnitID != nil {
		if _, err := p.Fprintf(w, ", sub-unit %d", *bundle.Filter.SubUnitID); err != nil {
			return err
		}
	}
	if _, err := p.Fprintf(w, "\nGenerated at %s\n\n", bundle.GeneratedAt.Format("2006-01-02 15:04 MST")); err != nil {
		return err
	}

	if _, err := p.Fprintf(w, "Balance: %s (assets %s, liabilities %s)\n",
		formatAmount(bundle.Balance.Balance),
		formatAmount(bundle.Balance.AssetTotal),
		formatAmount(bundle.Balance.LiabilityTotal)); err != nil {
		return err
	}
	if _, err := p.Fprintf(w, "Overdue receivables: %s; overdue payables: %s\n",
		formatAmount(bundle.Aging.ReceivablesOverdue),
		formatAmount(bundle.Aging.PayablesOverdue)); err != nil {
		return err
	}
	_, err := p.Fprintf(w, "Sub-units reported: %d; trend months: %d; projection months: %d\n",
		len(bundle.Breakdown), len(bundle.Trend), len(bundle.Projection))
	return err
}
