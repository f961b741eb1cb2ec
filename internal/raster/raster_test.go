package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	green = color.RGBA{R: 0x40, G: 0xc4, B: 0x63, A: 0xff}
)

func canvas(ops ...contrib.Op) *contrib.Drawing {
	return &contrib.Drawing{Width: 64, Height: 64, Background: "#ffffff", Ops: ops}
}

// ============================================================
// Draw
// ============================================================

func TestDrawInvalidCanvas(t *testing.T) {
	for _, d := range []*contrib.Drawing{nil, {}, {Width: 10}, {Width: 10, Height: -1}} {
		if _, err := Draw(d); !errors.Is(err, ErrInvalidCanvas) {
			t.Fatalf("expected ErrInvalidCanvas for %+v, got %v", d, err)
		}
	}
}

func TestDrawBackground(t *testing.T) {
	img, err := Draw(canvas())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(63, 63); got != white {
		t.Fatalf("expected white background, got %v", got)
	}
}

func TestDrawCellRoundsCorners(t *testing.T) {
	img, err := Draw(canvas(contrib.Cell{X: 10, Y: 10, Size: 16, Radius: 2, Fill: "#40c463"}))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{17, 17, green},
		{11, 10, green},
		{25, 17, green},
		{10, 10, white}, // corner
		{25, 10, white}, // corner
		{26, 17, white},
		{9, 17, white},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Fatalf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDrawShortHexAndBadColors(t *testing.T) {
	img, err := Draw(&contrib.Drawing{
		Width: 8, Height: 8, Background: "not a color",
		Ops: []contrib.Op{
			contrib.Cell{X: 0, Y: 0, Size: 4, Fill: "#fff"},
			contrib.Cell{X: 4, Y: 4, Size: 4, Fill: "nope"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(1, 1); got != white {
		t.Fatalf("expected #fff to parse as white, got %v", got)
	}
	if got := img.RGBAAt(6, 6); got != (color.RGBA{}) {
		t.Fatalf("expected untouched pixel, got %v", got)
	}
}

func TestDrawClipsOffCanvas(t *testing.T) {
	img, err := Draw(canvas(
		contrib.Cell{X: -5.5, Y: 2, Size: 8, Fill: "#40c463"},
		contrib.Cell{X: 60, Y: 60, Size: 30, Fill: "#40c463"},
	))
	if err != nil {
		t.Fatal(err)
	}
	if img.RGBAAt(0, 4) != green || img.RGBAAt(63, 63) != green {
		t.Fatal("expected the visible part of clipped cells to be painted")
	}
}

func TestDrawLabel(t *testing.T) {
	img, err := Draw(canvas(contrib.Label{X: 32, Y: 40, Size: 10, Anchor: contrib.AnchorMiddle, Fill: "#333333", Text: "42"}))
	if err != nil {
		t.Fatal(err)
	}
	painted := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if img.RGBAAt(x, y) != white {
				painted++
			}
		}
	}
	if painted == 0 {
		t.Fatal("expected label pixels")
	}
}

// ============================================================
// Encoding
// ============================================================

func TestPNGEncodesLayout(t *testing.T) {
	cal := &contrib.Calendar{Weeks: []contrib.Week{{Days: []contrib.Day{
		{Date: "2024-01-01", Count: 3, Color: "#40c463"},
	}}}}
	r := contrib.Renderer{Encoder: PNG{}, Now: func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }}
	res, err := r.Render(cal, contrib.WindowDay, contrib.ThemeDark, 0)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(res.Image))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != contrib.CanvasSize || img.Bounds().Dy() != contrib.CanvasSize {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	if res.Title != "3" {
		t.Fatalf("expected title 3, got %q", res.Title)
	}
}

func TestPNGInvalidCanvas(t *testing.T) {
	if _, err := (PNG{}).Encode(&contrib.Drawing{}); !errors.Is(err, ErrInvalidCanvas) {
		t.Fatalf("expected ErrInvalidCanvas, got %v", err)
	}
}

func TestDataURL(t *testing.T) {
	url := DataURL([]byte{0x89, 'P', 'N', 'G'})
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("unexpected prefix in %q", url)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil || string(raw) != "\x89PNG" {
		t.Fatalf("payload did not round trip: %v", err)
	}
}

func TestResize(t *testing.T) {
	img, err := Draw(canvas(contrib.Cell{X: 0, Y: 0, Size: 32, Fill: "#40c463"}))
	if err != nil {
		t.Fatal(err)
	}
	up := Resize(img, 128)
	if up.Bounds().Dx() != 128 || up.Bounds().Dy() != 128 {
		t.Fatalf("unexpected upscale bounds %v", up.Bounds())
	}
	if up.RGBAAt(10, 10) != green || up.RGBAAt(120, 120) != white {
		t.Fatal("nearest neighbour upscale should keep flat colors")
	}
	down := Resize(img, 16)
	if down.Bounds().Dx() != 16 {
		t.Fatalf("unexpected downscale bounds %v", down.Bounds())
	}
}
