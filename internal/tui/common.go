package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewButton viewState = iota
	viewDeck
	viewActivity
	viewHistory
)

var viewNames = []string{"Button", "Deck", "Activity", "History"}

// viewKeys are the values stored in the preview_view setting.
var viewKeys = []string{"button", "deck", "activity", "history"}

// previewContext is the target name used for renders logged by the preview.
const previewContext = "preview"

var errNoCache = errors.New("no cached calendar, run without -offline first")

// --- Messages ---

type calendarMsg struct {
	cal       *contrib.Calendar
	fetchedAt time.Time
	cached    bool
	err       error
}

type historyDataMsg struct {
	targets []store.Target
	renders []store.Render
	daily   []store.DailyRenders
}

type renderRecordedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatAgo(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

func nextWindow(w contrib.Window) contrib.Window {
	for i, x := range contrib.Windows {
		if x == w {
			return contrib.Windows[(i+1)%len(contrib.Windows)]
		}
	}
	return contrib.Windows[0]
}

func otherTheme(t contrib.Theme) contrib.Theme {
	if t == contrib.ThemeDark {
		return contrib.ThemeLight
	}
	return contrib.ThemeDark
}
