// Package contrib turns a contribution calendar into a button title and image.
//
// Everything here is a pure function of its inputs. The current time is always
// passed in, never read from the wall clock, so renders are reproducible.
package contrib

import "time"

// DateLayout is the date format used by the contribution calendar.
const DateLayout = "2006-01-02"

// Window selects both the aggregation range and the layout mode.
type Window string

const (
	WindowDay         Window = "day"
	WindowWeek        Window = "week"
	WindowMonth       Window = "month"
	WindowYear        Window = "year"
	WindowYearSharded Window = "year5"
)

// Windows lists the known windows in display order.
var Windows = []Window{WindowYear, WindowMonth, WindowWeek, WindowDay, WindowYearSharded}

// Theme selects the background and text colors.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Shards is the number of targets a sharded year is split across.
const Shards = 5

// YearWeeks is the number of weeks the sharded and single-year views assume.
const YearWeeks = 52

type Day struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Time parses the day's date as midnight in loc.
func (d Day) Time(loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, d.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type Week struct {
	Days []Day `json:"days"`
}

// Calendar is an ordered run of weeks, oldest first. Total is the count
// reported by the upstream service for the whole calendar.
type Calendar struct {
	Total int    `json:"total"`
	Weeks []Week `json:"weeks"`
}

// Days returns every day of the calendar in order.
func (c *Calendar) Days() []Day {
	if c == nil {
		return nil
	}
	var days []Day
	for _, w := range c.Weeks {
		days = append(days, w.Days...)
	}
	return days
}

// Recent returns up to n of the most recent days, oldest first.
func (c *Calendar) Recent(n int) []Day {
	days := c.Days()
	if len(days) > n {
		days = days[len(days)-n:]
	}
	return days
}
