package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/export"
	"github.com/artcc/contribdeck/internal/raster"
	"github.com/artcc/contribdeck/internal/store"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Fetcher retrieves a user's contribution calendar.
type Fetcher interface {
	Contributions(ctx context.Context, username string) (*contrib.Calendar, error)
}

// Options configures the preview app. A nil Fetcher means offline: only the
// cached calendar is shown and automatic refresh is off.
type Options struct {
	Store           *store.Store
	Fetcher         Fetcher
	Username        string
	RefreshInterval time.Duration
	ExportDir       string
	Now             func() time.Time
}

var exportFormats = []string{"PNG", "JSON", "CSV", "Render log CSV"}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	fetcher   Fetcher
	exportDir string
	now       func() time.Time
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	preview   preview
	cal       *contrib.Calendar
	fetchedAt time.Time
	refresh   refreshModel

	button   buttonModel
	activity activityModel
	history  historyModel

	help   help.Model
	status string
}

func NewApp(opts Options) App {
	h := help.New()
	h.ShowAll = false

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.RefreshInterval
	if opts.Fetcher == nil {
		interval = 0
	}
	dir := opts.ExportDir
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}

	a := App{
		store:     opts.Store,
		fetcher:   opts.Fetcher,
		exportDir: dir,
		now:       now,
		refresh:   newRefreshModel(interval),
		activity:  newActivityModel(),
		history:   newHistoryModel(opts.Store),
		help:      h,
	}
	a.loadPreview(opts.Username)
	a.refresh.begin()
	return a
}

// loadPreview restores the last preview state. Unknown values fall back to
// the defaults.
func (a *App) loadPreview(username string) {
	saved, _ := a.store.Settings("preview_")
	get := func(k string) string { return saved[k] }

	a.preview = preview{username: username, window: contrib.WindowYear, theme: contrib.ThemeDark}
	if a.preview.username == "" {
		a.preview.username = get("preview_user")
	}
	for _, w := range contrib.Windows {
		if string(w) == get("preview_window") {
			a.preview.window = w
		}
	}
	if t := contrib.Theme(get("preview_theme")); t == contrib.ThemeLight {
		a.preview.theme = t
	}
	if n, err := strconv.Atoi(get("preview_shard")); err == nil {
		a.preview.shard = contrib.ClampShard(n)
	}
	for i, v := range viewKeys {
		if v == get("preview_view") {
			a.activeView = viewState(i)
		}
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadCalendar(),
		a.history.refresh(a.now()),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCalendar fetches the calendar, caching it on success. When the fetch
// fails or the app is offline the cached copy is used instead.
func (a App) loadCalendar() tea.Cmd {
	s, f, user, now := a.store, a.fetcher, a.preview.username, a.now
	return func() tea.Msg {
		var fetchErr error
		if f != nil {
			cal, err := f.Contributions(context.Background(), user)
			if err == nil {
				at := now()
				if err := s.SaveCalendar(user, cal, at); err != nil {
					return calendarMsg{cal: cal, fetchedAt: at, err: err}
				}
				return calendarMsg{cal: cal, fetchedAt: at}
			}
			fetchErr = err
		}

		cached, err := s.GetCalendar(user)
		switch {
		case err != nil:
			return calendarMsg{err: err}
		case cached == nil && fetchErr != nil:
			return calendarMsg{err: fetchErr}
		case cached == nil:
			return calendarMsg{err: errNoCache}
		}
		return calendarMsg{cal: cached.Calendar, fetchedAt: cached.FetchedAt, cached: true, err: fetchErr}
	}
}

// recordRender logs what the previewed key currently shows.
func (a App) recordRender() tea.Cmd {
	s, cal, p, now := a.store, a.cal, a.preview, a.now
	return func() tea.Msg {
		r := contrib.Renderer{Encoder: raster.PNG{}, Now: now}
		rec := store.Render{
			Context:  previewContext,
			Username: p.username,
			Window:   p.window,
			Theme:    p.theme,
			Shard:    p.shard,
		}
		res, err := r.Render(cal, p.window, p.theme, p.shard)
		if err != nil {
			rec.Title = "Error"
			rec.Error = err.Error()
		} else {
			rec.Title = res.Title
			rec.Bytes = len(res.Image)
		}
		if _, err := s.RecordRender(rec); err != nil {
			return statusMsg{text: fmt.Sprintf("Log error: %v", err), isError: true}
		}
		return renderRecordedMsg{}
	}
}

// savePreview persists the preview state so the next session resumes it.
func (a App) savePreview() tea.Cmd {
	s := a.store
	values := map[string]string{
		"preview_user":   a.preview.username,
		"preview_window": string(a.preview.window),
		"preview_theme":  string(a.preview.theme),
		"preview_shard":  strconv.Itoa(a.preview.shard),
		"preview_view":   viewKeys[a.activeView],
	}
	return func() tea.Msg {
		if err := s.SetSettings(values); err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		return nil
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.button.setSize(a.width, contentHeight)
		a.activity.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Window):
			a.preview.window = nextWindow(a.preview.window)
			return a, a.previewChanged()
		case key.Matches(msg, keys.Theme):
			a.preview.theme = otherTheme(a.preview.theme)
			return a, a.previewChanged()
		case key.Matches(msg, keys.Refresh):
			cmd := a.startRefresh()
			return a, cmd
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewButton)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewDeck)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewActivity)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewHistory)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

		if a.activeView == viewButton || a.activeView == viewDeck {
			switch {
			case key.Matches(msg, keys.Left):
				if a.preview.shard > 0 {
					a.preview.shard--
					return a, a.previewChanged()
				}
				return a, nil
			case key.Matches(msg, keys.Right):
				if a.preview.shard < contrib.Shards-1 {
					a.preview.shard++
					return a, a.previewChanged()
				}
				return a, nil
			}
		}

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.refresh.due(a.now()) {
			cmds = append(cmds, a.startRefresh())
		}
		return a, tea.Batch(cmds...)

	case calendarMsg:
		a.refresh.finish(a.now(), msg.err)
		if msg.cal != nil {
			a.cal = msg.cal
			a.fetchedAt = msg.fetchedAt
			a.activity.setCalendar(msg.cal)
		}
		switch {
		case msg.err != nil && msg.cal != nil:
			a.status = "Showing cached calendar: " + msg.err.Error()
		case msg.err != nil:
			a.status = "Error: " + msg.err.Error()
		case msg.cached:
			a.status = "Loaded cached calendar"
		default:
			a.status = "Calendar refreshed"
		}
		if msg.cal == nil {
			return a, nil
		}
		return a, a.recordRender()

	case renderRecordedMsg:
		return a, a.history.refresh(a.now())

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) startRefresh() tea.Cmd {
	if !a.refresh.begin() {
		return nil
	}
	a.status = "Refreshing..."
	return a.loadCalendar()
}

func (a App) previewChanged() tea.Cmd {
	if a.cal == nil {
		return a.savePreview()
	}
	return tea.Batch(a.savePreview(), a.recordRender())
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	if v == viewHistory {
		return a, tea.Batch(a.savePreview(), a.history.refresh(a.now()))
	}
	return a, a.savePreview()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case historyDataMsg:
		a.history, cmd = a.history.update(msg)
		return a, cmd
	}
	switch a.activeView {
	case viewActivity:
		a.activity, cmd = a.activity.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	now := a.now()
	var content string
	switch a.activeView {
	case viewButton:
		content = a.button.view(a.cal, a.preview, a.fetchedAt, now)
	case viewDeck:
		content = deckView(a.cal, a.preview, a.width, now)
	case viewActivity:
		content = a.activity.view()
	case viewHistory:
		content = a.history.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("contribdeck")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	var refreshInfo string
	switch {
	case a.refresh.fetching:
		refreshInfo = warningStyle.Render(" ⟳ fetching")
	case a.refresh.enabled():
		refreshInfo = successStyle.Render(" ⟳ " + formatDuration(a.refresh.remaining(a.now())))
	default:
		refreshInfo = mutedStyle.Render(" offline")
	}

	left := footerStyle.Render(helpView)
	right := refreshInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	s, cal, p, dir, now := a.store, a.cal, a.preview, a.exportDir, a.now()
	return func() tea.Msg {
		if cal == nil && format != 3 {
			return statusMsg{text: "Export error: no calendar loaded", isError: true}
		}

		base := fmt.Sprintf("contribdeck-%s-%s", p.username, now.Format("2006-01-02"))
		var path string
		switch format {
		case 0:
			path = filepath.Join(dir, fmt.Sprintf("%s-%s.png", base, p.window))
			img, err := raster.Draw(contrib.Layout(cal, p.window, p.theme, p.shard, now))
			if err == nil {
				err = export.ToPNG(img, path, 0)
			}
			if err != nil {
				return statusMsg{text: fmt.Sprintf("PNG error: %v", err), isError: true}
			}
		case 1:
			path = filepath.Join(dir, base+".json")
			if err := export.ToJSON(cal, p.username, now, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		case 2:
			path = filepath.Join(dir, base+".csv")
			if err := export.ToCSV(cal, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		default:
			path = filepath.Join(dir, fmt.Sprintf("contribdeck-renders-%s.csv", now.Format("2006-01-02")))
			renders, err := s.ListRenders(store.RenderFilter{})
			if err == nil {
				err = export.RendersToCSV(renders, path)
			}
			if err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
