package export

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/artcc/contribdeck/internal/raster"
)

// ToPNG writes img to path, scaled to a size x size square when size is
// positive and differs from the image width.
func ToPNG(img image.Image, path string, size int) error {
	if size > 0 && size != img.Bounds().Dx() {
		img = raster.Resize(img, size)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
