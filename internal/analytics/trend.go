package analytics

import (
	"time"

	"github.com/verifintek/verifintek/internal/movements"
)

// ComputeTrend buckets movement totals by the calendar month of their
// start date over a trailing window of `months` ending at `end`'s
// month. The series is continuous; months without activity carry zero.
func ComputeTrend(rows []MovementRow, end time.Time, months int) []TrendPoint {
	if months < 1 {
		months = 1
	}
	last := monthKey(end)
	first := last - months + 1

	points := make([]TrendPoint, 0, months)
	index := make(map[int]int, months)
	for key := first; key <= last; key++ {
		year, month := keyToYearMonth(key)
		index[key] = len(points)
		points = append(points, TrendPoint{Year: year, Month: month})
	}

	for _, row := range rows {
		i, ok := index[monthKey(row.StartDate)]
		if !ok {
			continue
		}
		switch row.Type {
		case movements.TypeAsset:
			points[i].Assets = points[i].Assets.Add(row.TotalAmount)
		case movements.TypeLiability:
			points[i].Liabilities = points[i].Liabilities.Add(row.TotalAmount)
		}
	}
	for i := range points {
		points[i].Net = points[i].Assets.Sub(points[i].Liabilities)
	}
	return points
}
