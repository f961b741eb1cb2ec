// Package raster turns a contrib.Drawing into pixels and PNG bytes.
package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/gift"
	"github.com/lucasb-eyer/go-colorful"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/artcc/contribdeck/internal/contrib"
)

// ErrInvalidCanvas is returned for drawings without a positive size.
var ErrInvalidCanvas = errors.New("raster: invalid canvas size")

var font tinyfont.Fonter = &proggy.TinySZ8pt7b

// PNG encodes drawings as PNG images. It satisfies contrib.Encoder.
type PNG struct{}

func (PNG) Encode(d *contrib.Drawing) ([]byte, error) {
	img, err := Draw(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw rasterizes d. Operations whose color does not parse are skipped, as is
// anything that falls outside the canvas.
func Draw(d *contrib.Drawing) (*image.RGBA, error) {
	if d == nil || d.Width <= 0 || d.Height <= 0 {
		return nil, ErrInvalidCanvas
	}
	img := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	if bg, ok := parseColor(d.Background); ok {
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}

	canvas := &display{img: img}
	for _, op := range d.Ops {
		switch op := op.(type) {
		case contrib.Cell:
			c, ok := parseColor(op.Fill)
			if !ok {
				continue
			}
			fillRoundedRect(img, op.X, op.Y, op.Size, op.Radius, c)
		case contrib.Label:
			c, ok := parseColor(op.Fill)
			if !ok || op.Text == "" {
				continue
			}
			x := op.X
			if op.Anchor == contrib.AnchorMiddle {
				w, _ := tinyfont.LineWidth(font, op.Text)
				x -= float64(w) / 2
			}
			tinyfont.WriteLine(canvas, font, int16(math.Round(x)), int16(math.Round(op.Y)), op.Text, c)
		}
	}
	return img, nil
}

// fillRoundedRect paints every pixel whose center lies inside the square at
// (x, y) with edge size and corner radius r.
func fillRoundedRect(img *image.RGBA, x, y, size, r float64, c color.RGBA) {
	if size <= 0 {
		return
	}
	r = math.Max(0, math.Min(r, size/2))
	b := img.Bounds()
	x0 := max(b.Min.X, int(math.Floor(x)))
	y0 := max(b.Min.Y, int(math.Floor(y)))
	x1 := min(b.Max.X, int(math.Ceil(x+size)))
	y1 := min(b.Max.Y, int(math.Ceil(y+size)))

	for py := y0; py < y1; py++ {
		cy := float64(py) + 0.5
		if cy < y || cy > y+size {
			continue
		}
		for px := x0; px < x1; px++ {
			cx := float64(px) + 0.5
			if cx < x || cx > x+size {
				continue
			}
			// distance from the nearest point of the inner, unrounded square
			dx := cx - math.Max(x+r, math.Min(cx, x+size-r))
			dy := cy - math.Max(y+r, math.Min(cy, y+size-r))
			if dx*dx+dy*dy > r*r {
				continue
			}
			img.SetRGBA(px, py, c)
		}
	}
}

func parseColor(s string) (color.RGBA, bool) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, true
}

// Resize scales img to a size x size square. Nearest neighbour keeps cell
// edges crisp when enlarging; box sampling averages when shrinking.
func Resize(img image.Image, size int) *image.RGBA {
	filter := gift.NearestNeighborResampling
	if size < img.Bounds().Dx() {
		filter = gift.BoxResampling
	}
	g := gift.New(gift.Resize(size, size, filter))
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// DataURL wraps PNG bytes in the data URL form the deck host accepts.
func DataURL(b []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b)
}
