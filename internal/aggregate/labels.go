package aggregate

import (
	"time"

	"moneymanager/internal/core"
)

// DayLabel names a day bucket relative to now: "Today", "Yesterday", or a
// short form such as "Tue, Oct 13".
func DayLabel(day, now time.Time) string {
	switch {
	case core.SameDay(day, now):
		return "Today"
	case core.SameDay(day, now.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format("Mon, Jan 2")
	}
}
