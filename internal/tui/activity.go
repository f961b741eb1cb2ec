package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const activityDays = 14

type activityModel struct {
	width  int
	height int

	days   []contrib.Day
	offset int // 14-day blocks back from the most recent day (0 = latest)

	chart barchart.Model
}

func newActivityModel() activityModel {
	return activityModel{
		chart: barchart.New(60, 12),
	}
}

func (a *activityModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.buildChart()
}

func (a *activityModel) setCalendar(cal *contrib.Calendar) {
	a.days = cal.Days()
	a.offset = min(a.offset, a.maxOffset())
	a.buildChart()
}

func (a activityModel) maxOffset() int {
	if len(a.days) == 0 {
		return 0
	}
	return (len(a.days) - 1) / activityDays
}

// visible returns the days of the current block, oldest first.
func (a activityModel) visible() []contrib.Day {
	end := len(a.days) - activityDays*a.offset
	if end <= 0 {
		return nil
	}
	return a.days[max(0, end-activityDays):end]
}

func (a activityModel) update(msg tea.Msg) (activityModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			if a.offset < a.maxOffset() {
				a.offset++
				a.buildChart()
			}
		case key.Matches(msg, keys.Right):
			if a.offset > 0 {
				a.offset--
				a.buildChart()
			}
		}
	}
	return a, nil
}

func (a *activityModel) buildChart() {
	chartWidth := a.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if a.height > 30 {
		chartHeight = 16
	}

	a.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range a.visible() {
		label := d.Date
		if t, ok := d.Time(time.UTC); ok {
			label = t.Format("Mon 02")
		}
		style := lipgloss.NewStyle().Foreground(colorSubtle)
		if d.Color != "" {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color))
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  d.Date,
				Value: float64(d.Count),
				Style: style,
			}},
		})
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a activityModel) view() string {
	w := a.width - 4
	days := a.visible()
	if len(days) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Activity"), "", mutedStyle.Render("  No contributions loaded")),
		)
	}

	rangeLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", days[0].Date, days[len(days)-1].Date))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Activity"), "  ", rangeLabel)

	nav := mutedStyle.Render("  ←/→: navigate")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", a.chart.View(), "", a.renderSummary(days), "", nav,
		),
	)
}

func (a activityModel) renderSummary(days []contrib.Day) string {
	var total, active int
	best := days[0]
	for _, d := range days {
		total += d.Count
		if d.Count > 0 {
			active++
		}
		if d.Count > best.Count {
			best = d
		}
	}

	rows := []string{
		fmt.Sprintf("  %-14s %d", "Contributions", total),
		fmt.Sprintf("  %-14s %d of %d", "Active days", active, len(days)),
	}
	if best.Count > 0 {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(best.Color)).Render("●")
		rows = append(rows, fmt.Sprintf("  %-14s %s %s (%d)", "Busiest day", dot, best.Date, best.Count))
	}
	return strings.Join(rows, "\n")
}
