package tui

import "github.com/charmbracelet/lipgloss"

// Colors follow the contribution graph greens.
var (
	colorPrimary   = lipgloss.Color("#40C463")
	colorAccent    = lipgloss.Color("#9BE9A8")
	colorMuted     = lipgloss.Color("#6E7681")
	colorSuccess   = lipgloss.Color("#30A14E")
	colorWarning   = lipgloss.Color("#D29922")
	colorError     = lipgloss.Color("#F85149")
	colorFg        = lipgloss.Color("#E6EDF3")
	colorSubtle    = lipgloss.Color("#30363D")
	colorHighlight = lipgloss.Color("#58A6FF")
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = panelStyle.
				BorderForeground(colorAccent)

	// A key: a thin frame around the title and image.
	buttonFrameStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorSubtle)

	buttonTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorFg).
				Align(lipgloss.Center)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)
)
