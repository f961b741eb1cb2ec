package raster

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*display)(nil)

// display adapts an *image.RGBA to the tinygo drivers.Displayer interface so
// tinyfont can draw text into it.
type display struct {
	img *image.RGBA
}

func (d *display) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d *display) SetPixel(x, y int16, c color.RGBA) {
	if !(image.Point{X: int(x), Y: int(y)}).In(d.img.Bounds()) {
		return
	}
	d.img.SetRGBA(int(x), int(y), c)
}

func (d *display) Display() error {
	return nil
}
