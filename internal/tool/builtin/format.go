package builtin

import (
	"time"
)

const (
	clockLayout = "03:04 PM"
	dayLayout   = "Monday, January 2, 2006"
	shortLayout = "Mon Jan 2 03:04 PM"
)

// formatRange renders a window in loc, naming the day once when both ends
// fall on the same date.
func formatRange(start, end time.Time, loc *time.Location) string {
	start, end = start.In(loc), end.In(loc)
	if sameDay(start, end) {
		return start.Format(clockLayout) + " to " + end.Format(clockLayout) + " on " + start.Format(dayLayout)
	}
	return start.Format(shortLayout) + " to " + end.Format(shortLayout)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func titleOf(summary string) string {
	if summary == "" {
		return "No Title"
	}
	return summary
}
