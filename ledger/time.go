package ledger

import "time"

// =============================================================================
// PAY-WEEK DATE HELPERS
// =============================================================================

// dateLayout is the canonical date-only form used for store keys and snapshots.
const dateLayout = "2006-01-02"

// DateOf truncates a timestamp to midnight UTC. All week-start values are
// normalized through this before being used as keys.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStartOf returns the Monday anchoring t's pay week, at midnight UTC.
func WeekStartOf(t time.Time) time.Time {
	day := DateOf(t)
	// time.Weekday: Sunday=0 ... Saturday=6; shift so Monday=0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// withinDates reports whether t's date component falls in [start, end],
// inclusive on both ends.
func withinDates(t, start, end time.Time) bool {
	day := DateOf(t)
	return !day.Before(DateOf(start)) && !day.After(DateOf(end))
}
