package analytics

import "time"

// ComputeCashflow produces a continuous monthly series from the window
// bounds: amounts actually paid bucketed by paid date, and scheduled
// amounts bucketed by due date.
func ComputeCashflow(rows []InstallmentRow, from, to time.Time) []CashflowPoint {
	if from.IsZero() || to.IsZero() {
		return nil
	}
	start, end := monthRange(from, to)

	points := make([]CashflowPoint, 0, end-start+1)
	index := make(map[int]int, end-start+1)
	for key := start; key <= end; key++ {
		year, month := keyToYearMonth(key)
		index[key] = len(points)
		points = append(points, CashflowPoint{Year: year, Month: month})
	}

	for _, row := range rows {
		if row.Settled() {
			if i, ok := index[monthKey(*row.PaidDate)]; ok {
				points[i].Paid = points[i].Paid.Add(row.Amount)
			}
		}
		if i, ok := index[monthKey(row.DueDate)]; ok {
			points[i].Scheduled = points[i].Scheduled.Add(row.Amount)
		}
	}
	return points
}
