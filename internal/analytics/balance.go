package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/verifintek/verifintek/internal/movements"
)

// ComputeBalance folds movement totals into the consolidated position.
// startingCapital participates only at company level; callers pass nil
// when the scope is a single sub-unit.
func ComputeBalance(rows []MovementRow, startingCapital *decimal.Decimal) BalanceReport {
	report := BalanceReport{StartingCapital: startingCapital}
	for _, row := range rows {
		switch row.Type {
		case movements.TypeAsset:
			report.AssetTotal = report.AssetTotal.Add(row.TotalAmount)
		case movements.TypeLiability:
			report.LiabilityTotal = report.LiabilityTotal.Add(row.TotalAmount)
		}
	}
	report.Net = report.AssetTotal.Sub(report.LiabilityTotal)
	report.Balance = report.Net
	if startingCapital != nil {
		report.Balance = report.Balance.Add(*startingCapital)
	}
	return report
}
