package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/raster"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	maxButtonSize = 72
	minButtonSize = 16
	deckCellSize  = 24
)

// preview is the button configuration being shown.
type preview struct {
	username string
	window   contrib.Window
	theme    contrib.Theme
	shard    int
}

// buttonImage draws what a key configured like p would display, scaled to
// size pixels.
func buttonImage(cal *contrib.Calendar, p preview, shard, size int, now time.Time) (string, error) {
	img, err := raster.Draw(contrib.Layout(cal, p.window, p.theme, shard, now))
	if err != nil {
		return "", err
	}
	return halfBlocks(raster.Resize(img, size)), nil
}

// halfBlocks renders img two pixel rows per line using the upper half block,
// foreground for the top pixel and background for the bottom one.
func halfBlocks(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexOf(img.At(x, y))
			bottom := top
			if y+1 < b.Max.Y {
				bottom = hexOf(img.At(x, y+1))
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
	}
	return sb.String()
}

func hexOf(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}

type buttonModel struct {
	width  int
	height int
}

func (b *buttonModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

// size is the largest even pixel size that fits the panel.
func (b buttonModel) size() int {
	s := min(maxButtonSize, b.width-8, 2*(b.height-10))
	if s < minButtonSize {
		s = minButtonSize
	}
	return s &^ 1
}

func (b buttonModel) view(cal *contrib.Calendar, p preview, fetchedAt, now time.Time) string {
	w := b.width - 4
	if cal == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("No calendar loaded yet"))
	}

	img, err := buttonImage(cal, p, p.shard, b.size(), now)
	if err != nil {
		return panelStyle.Width(w).Render(errorStyle.Render(fmt.Sprintf("Render error: %v", err)))
	}

	title := buttonTitleStyle.Width(b.size()).Render(contrib.Title(cal, p.window, p.shard, now))
	button := buttonFrameStyle.Render(lipgloss.JoinVertical(lipgloss.Center, title, img))

	info := []string{
		titleStyle.Render(p.username),
		"",
		mutedStyle.Render("Window  ") + highlightStyle.Render(string(p.window)),
		mutedStyle.Render("Theme   ") + highlightStyle.Render(string(p.theme)),
	}
	if p.window == contrib.WindowYearSharded {
		info = append(info, mutedStyle.Render("Shard   ")+highlightStyle.Render(fmt.Sprintf("%d/%d", p.shard+1, contrib.Shards)))
	}
	info = append(info,
		"",
		mutedStyle.Render("Total   ")+fmt.Sprintf("%d", cal.Total),
		mutedStyle.Render("Fetched ")+formatAgo(now, fetchedAt),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, button, "    ", strings.Join(info, "\n")),
	)
}

// deckView lays out every shard of the sharded year side by side, the way a
// row of five keys shows them.
func deckView(cal *contrib.Calendar, p preview, width int, now time.Time) string {
	w := width - 4
	if cal == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("No calendar loaded yet"))
	}

	sharded := p
	sharded.window = contrib.WindowYearSharded

	var cells []string
	for i := 0; i < contrib.Shards; i++ {
		img, err := buttonImage(cal, sharded, i, deckCellSize, now)
		if err != nil {
			return panelStyle.Width(w).Render(errorStyle.Render(fmt.Sprintf("Render error: %v", err)))
		}
		label := buttonTitleStyle.Width(deckCellSize).Render(contrib.ShardLabel(cal, i))
		frame := buttonFrameStyle
		if i == p.shard {
			frame = frame.BorderForeground(colorPrimary)
		}
		cells = append(cells, frame.Render(lipgloss.JoinVertical(lipgloss.Center, label, img)), " ")
	}

	header := titleStyle.Render("Deck") + "  " + mutedStyle.Render(fmt.Sprintf("%s · %d contributions", p.username, cal.Total))
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", lipgloss.JoinHorizontal(lipgloss.Top, cells...)),
	)
}
