package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/store"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	historyLimit = 100
	historyDays  = 7
)

type historyModel struct {
	store  *store.Store
	width  int
	height int

	targets []store.Target
	renders []store.Render
	daily   []store.DailyRenders
	cursor  int
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{store: s}
}

func (h *historyModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

func (h historyModel) refresh(now time.Time) tea.Cmd {
	s := h.store
	return func() tea.Msg {
		renders, err := s.ListRenders(store.RenderFilter{Limit: historyLimit})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("History error: %v", err), isError: true}
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		daily, err := s.GetDailyRenders(today.AddDate(0, 0, 1-historyDays), today.AddDate(0, 0, 1))
		if err != nil {
			return statusMsg{text: fmt.Sprintf("History error: %v", err), isError: true}
		}
		targets, err := s.ListTargets()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("History error: %v", err), isError: true}
		}
		return historyDataMsg{targets: targets, renders: renders, daily: daily}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.targets = msg.targets
		h.renders = msg.renders
		h.daily = msg.daily
		if h.cursor >= len(h.renders) {
			h.cursor = max(0, len(h.renders)-1)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.renders)-1 {
				h.cursor++
			}
		}
	}
	return h, nil
}

// visibleRows is how many log rows fit below the daily summary and the
// key list.
func (h historyModel) visibleRows() int {
	return max(3, h.height-14-len(h.targets))
}

func (h historyModel) view() string {
	w := h.width - 4

	var rows []string
	rows = append(rows, titleStyle.Render("Render History"), "")
	rows = append(rows, h.renderDaily(), "")
	rows = append(rows, h.renderTargets()...)

	if len(h.renders) == 0 {
		rows = append(rows, mutedStyle.Render("  No renders logged yet"))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %-10s %-10s %-7s %-12s %s", "Time", "Context", "User", "Window", "Title", "Result")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 72))))

	n := h.visibleRows()
	start := 0
	if h.cursor >= n {
		start = h.cursor - n + 1
	}
	end := min(len(h.renders), start+n)
	for i := start; i < end; i++ {
		r := h.renders[i]
		result := successStyle.Render(fmt.Sprintf("%d B", r.Bytes))
		if r.Error != "" {
			result = errorStyle.Render(r.Error)
		}
		line := fmt.Sprintf("%-16s %-10s %-10s %-7s %-12s ",
			r.CreatedAt.Local().Format("Jan 02 15:04:05"),
			truncate(r.Context, 10), truncate(r.Username, 10), r.Window, truncate(r.Title, 12),
		)
		if i == h.cursor {
			rows = append(rows, selectedItemStyle.Render("> "+line)+result)
		} else {
			rows = append(rows, normalItemStyle.Render("  "+line)+result)
		}
	}

	rows = append(rows, "", mutedStyle.Render("  ↑/↓: scroll  e: export"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (h historyModel) renderDaily() string {
	if len(h.daily) == 0 {
		return mutedStyle.Render("  No renders in the last week")
	}
	var parts []string
	for _, d := range h.daily {
		s := fmt.Sprintf("%s %d", d.Date[5:], d.Count)
		if d.Failures > 0 {
			s += warningStyle.Render(fmt.Sprintf(" (%d failed)", d.Failures))
		}
		parts = append(parts, s)
	}
	return "  " + strings.Join(parts, lipgloss.NewStyle().Foreground(colorSubtle).Render("  │  "))
}

// renderTargets lists the keys the plugin currently has on a deck.
func (h historyModel) renderTargets() []string {
	if len(h.targets) == 0 {
		return []string{mutedStyle.Render("  No keys on a deck"), ""}
	}
	rows := []string{highlightStyle.Render("  Keys")}
	for _, t := range h.targets {
		window := string(t.Window)
		if t.Window == contrib.WindowYearSharded {
			window = fmt.Sprintf("%s #%d", t.Window, t.Shard+1)
		}
		refresh := "default"
		if t.RefreshMinutes > 0 {
			refresh = fmt.Sprintf("%dm", t.RefreshMinutes)
		}
		rows = append(rows, fmt.Sprintf("  %-10s %-10s %-9s %-6s %s",
			truncate(t.Context, 10), truncate(t.Username, 10), window, t.Theme, mutedStyle.Render("every "+refresh),
		))
	}
	return append(rows, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
