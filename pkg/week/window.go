package week

import "time"

// Window returns the seven consecutive calendar days of the week containing
// ref, as local-midnight instants, starting on firstDay (Monday or Sunday).
// Days are derived with time.Date so month/year boundaries and DST shifts are
// handled by calendar arithmetic, not by subtracting fixed durations.
func Window(ref time.Time, firstDay time.Weekday) [7]time.Time {
	dayStart := StartOfDay(ref)

	offset := (int(dayStart.Weekday()) - int(firstDay) + 7) % 7
	first := dayStart.AddDate(0, 0, -offset)

	var window [7]time.Time
	for i := 0; i < 7; i++ {
		window[i] = StartOfDay(first.AddDate(0, 0, i))
	}
	return window
}

// StartOfDay normalizes t to midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last represented instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// IsSameDay reports whether a and b fall on the same calendar day,
// ignoring time of day.
func IsSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
