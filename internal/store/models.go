package store

import (
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
)

// Target is the persisted part of a button's settings. The token is never
// stored.
type Target struct {
	Context        string
	Username       string
	Window         contrib.Window
	Theme          contrib.Theme
	Shard          int
	RefreshMinutes int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CachedCalendar is the last calendar fetched for a user.
type CachedCalendar struct {
	Username  string
	Calendar  *contrib.Calendar
	FetchedAt time.Time
}

// Render is one entry of the render log.
type Render struct {
	ID        int64
	Context   string
	Username  string
	Window    contrib.Window
	Theme     contrib.Theme
	Shard     int
	Title     string
	Bytes     int
	Error     string
	CreatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// RenderFilter is used to filter the render log in queries.
type RenderFilter struct {
	Context    *string
	Username   *string
	From       *time.Time
	To         *time.Time
	FailedOnly bool
	Limit      int
}

// DailyRenders is the number of renders logged per day.
type DailyRenders struct {
	Date     string
	Count    int
	Failures int
}
