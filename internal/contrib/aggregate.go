package contrib

import "time"

// Aggregate sums the contributions dated inside [WindowStart(window, now), now].
// Days whose date does not parse are skipped.
func Aggregate(cal *Calendar, window Window, now time.Time) int {
	if cal == nil {
		return 0
	}
	start := WindowStart(window, now)
	loc := now.Location()

	total := 0
	for _, week := range cal.Weeks {
		for _, day := range week.Days {
			t, ok := day.Time(loc)
			if !ok || t.Before(start) || t.After(now) {
				continue
			}
			if day.Count > 0 {
				total += day.Count
			}
		}
	}
	return total
}
