package history

import (
	"strconv"
	"time"
)

// RelativeDate renders t the way the history panel labels rows.
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}

	days := int(diff / (24 * time.Hour))
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return strconv.Itoa(days) + " days ago"
	case days < 30:
		return strconv.Itoa((days+6)/7) + " weeks ago"
	}
	return t.Local().Format("2006-01-02")
}
