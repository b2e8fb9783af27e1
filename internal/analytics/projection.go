package analytics

import (
	"time"

	"github.com/verifintek/verifintek/internal/movements"
)

// ComputeProjection buckets unpaid installments by due month over an
// upcoming window of `months` starting at `start`'s month.
func ComputeProjection(rows []InstallmentRow, start time.Time, months int) []ProjectionPoint {
	if months < 1 {
		months = 1
	}
	first := monthKey(start)
	last := first + months - 1

	points := make([]ProjectionPoint, 0, months)
	index := make(map[int]int, months)
	for key := first; key <= last; key++ {
		year, month := keyToYearMonth(key)
		index[key] = len(points)
		points = append(points, ProjectionPoint{Year: year, Month: month})
	}

	for _, row := range rows {
		if row.Settled() {
			continue
		}
		i, ok := index[monthKey(row.DueDate)]
		if !ok {
			continue
		}
		switch row.Type {
		case movements.TypeAsset:
			points[i].AssetDue = points[i].AssetDue.Add(row.Amount)
		case movements.TypeLiability:
			points[i].LiabilityDue = points[i].LiabilityDue.Add(row.Amount)
		}
	}
	for i := range points {
		points[i].NetDue = points[i].AssetDue.Sub(points[i].LiabilityDue)
	}
	return points
}
