package contrib

import (
	"math"
	"strconv"
	"time"
)

// CanvasSize is the edge length of a button image. Stream Deck keys expect it.
const CanvasSize = 144

const (
	cellRadius = 2
	labelSize  = 10
)

// Anchor is the horizontal alignment of a label relative to its X.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
)

// Op is one drawing operation: a Cell or a Label.
type Op interface {
	op()
}

// Cell is a filled square with rounded corners.
type Cell struct {
	X, Y   float64
	Size   float64
	Radius float64
	Fill   string
}

// Label is a line of text whose baseline sits at Y.
type Label struct {
	X, Y   float64
	Size   int
	Anchor Anchor
	Fill   string
	Text   string
}

func (Cell) op()  {}
func (Label) op() {}

// Drawing is a resolution independent description of a button image.
type Drawing struct {
	Width      int
	Height     int
	Background string
	Ops        []Op
}

// Cells returns the cell operations in drawing order.
func (d *Drawing) Cells() []Cell {
	var cells []Cell
	for _, op := range d.Ops {
		if c, ok := op.(Cell); ok {
			cells = append(cells, c)
		}
	}
	return cells
}

// Labels returns the label operations in drawing order.
func (d *Drawing) Labels() []Label {
	var labels []Label
	for _, op := range d.Ops {
		if l, ok := op.(Label); ok {
			labels = append(labels, l)
		}
	}
	return labels
}

// Palette returns the background and text colors for theme.
func Palette(theme Theme) (background, text string) {
	if theme == ThemeDark {
		return "#1e1e1e", "#ffffff"
	}
	return "#ffffff", "#333333"
}

// weekdayLetters are the Spanish initials of Sunday through Saturday.
var weekdayLetters = [7]string{"D", "L", "M", "X", "J", "V", "S"}

// grid holds the layout parameters of one mode.
type grid struct {
	cellSize float64
	spacing  float64
	cols     int
	rows     int
}

func (g grid) origin() (x, y float64) {
	x = (CanvasSize - (float64(g.cols)*(g.cellSize+g.spacing) - g.spacing)) / 2
	y = (CanvasSize - (float64(g.rows)*(g.cellSize+g.spacing) - g.spacing)) / 2
	return x, y
}

func (g grid) at(col, row int) (x, y float64) {
	ox, oy := g.origin()
	step := g.cellSize + g.spacing
	return ox + float64(col)*step, oy + float64(row)*step
}

// gridFor returns the grid of window, or false for unknown windows.
func gridFor(window Window) (grid, bool) {
	switch window {
	case WindowYearSharded:
		per := WeeksPerShard(YearWeeks)
		size := math.Floor(math.Min(float64(CanvasSize)/float64(per), float64(CanvasSize)/7)) - 1
		return grid{cellSize: size, spacing: 1, cols: per, rows: 7}, true
	case WindowYear:
		return grid{cellSize: 2, spacing: 1, cols: YearWeeks, rows: 7}, true
	case WindowMonth:
		return grid{cellSize: 16, spacing: 2, cols: 7, rows: 6}, true
	case WindowWeek:
		return grid{cellSize: 16, spacing: 4, cols: 7, rows: 1}, true
	case WindowDay:
		return grid{cellSize: CanvasSize, spacing: 0, cols: 1, rows: 1}, true
	}
	return grid{}, false
}

// Layout places the calendar cells relevant to window on a 144x144 canvas.
// shard is only consulted for the sharded year and now only for the month.
func Layout(cal *Calendar, window Window, theme Theme, shard int, now time.Time) *Drawing {
	bg, fg := Palette(theme)
	d := &Drawing{Width: CanvasSize, Height: CanvasSize, Background: bg}

	g, ok := gridFor(window)
	if !ok || cal == nil {
		return d
	}

	switch window {
	case WindowYearSharded:
		start, end := ShardRange(ClampShard(shard), YearWeeks)
		for w := start; w < end && w < len(cal.Weeks); w++ {
			for i, day := range cal.Weeks[w].Days {
				d.cell(g, w-start, i, day)
			}
		}
	case WindowYear:
		for w, week := range cal.Weeks {
			for i, day := range week.Days {
				d.cell(g, w, i, day)
			}
		}
	case WindowMonth:
		loc := now.Location()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		offset := int(first.Weekday())
		for _, day := range cal.Days() {
			t, ok := day.Time(loc)
			if !ok || t.Year() != now.Year() || t.Month() != now.Month() {
				continue
			}
			slot := offset + t.Day() - 1
			d.cell(g, slot%7, slot/7, day)
		}
	case WindowWeek:
		for i, day := range cal.Recent(7) {
			x, y := d.cell(g, i, 0, day)
			cx := x + g.cellSize/2
			d.Ops = append(d.Ops,
				Label{X: cx, Y: y - 6, Size: labelSize, Anchor: AnchorMiddle, Fill: fg, Text: weekdayLetter(day)},
				Label{X: cx, Y: y + g.cellSize + 14, Size: labelSize, Anchor: AnchorMiddle, Fill: fg, Text: strconv.Itoa(day.Count)},
			)
		}
	case WindowDay:
		if recent := cal.Recent(1); len(recent) == 1 {
			d.cell(g, 0, 0, recent[0])
		}
	}
	return d
}

func (d *Drawing) cell(g grid, col, row int, day Day) (x, y float64) {
	x, y = g.at(col, row)
	d.Ops = append(d.Ops, Cell{X: x, Y: y, Size: g.cellSize, Radius: cellRadius, Fill: day.Color})
	return x, y
}

func weekdayLetter(day Day) string {
	t, ok := day.Time(time.UTC)
	if !ok {
		return "-"
	}
	return weekdayLetters[t.Weekday()]
}
