package analytics

import "time"

// monthKey flattens (year, month) into a single comparable index.
// Bucketing is done by arithmetic on the key, never by locale-aware
// calendar helpers.
func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func keyToYearMonth(key int) (int, time.Month) {
	return key / 12, time.Month(key%12 + 1)
}

// monthRange returns the inclusive month keys between two instants.
func monthRange(from, to time.Time) (int, int) {
	start := monthKey(from)
	end := monthKey(to)
	if end < start {
		start, end = end, start
	}
	return start, end
}
