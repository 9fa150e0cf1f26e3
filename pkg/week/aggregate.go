package week

import "github.com/weeklog/weeklog/pkg/entry"

// EntryHours returns the worked duration of a single entry in hours.
// Not-worked markers and entries without an end time contribute zero.
func EntryHours(e entry.TimeEntry) float64 {
	if e.NotWorked || e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime).Hours()
}

// TotalHours sums the worked hours of all non-deleted entries. It is a pure
// function of its input and is recomputed in full on every week mutation
// rather than patched incrementally.
func TotalHours(entries []entry.TimeEntry) float64 {
	total := 0.0
	for _, e := range entries {
		if e.IsDeleted {
			continue
		}
		total += EntryHours(e)
	}
	return total
}

// Earnings derives pay from worked hours. The result is stored unrounded;
// rounding to two decimals happens at presentation time only.
func Earnings(hours, hourlyRate float64) float64 {
	return hours * hourlyRate
}
