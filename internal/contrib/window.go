package contrib

import "time"

// WindowStart returns the first instant counted by window, in now's location.
// The week window is a rolling seven days, not a calendar week.
func WindowStart(window Window, now time.Time) time.Time {
	loc := now.Location()
	switch window {
	case WindowDay:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour)
	case WindowMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	}
}
