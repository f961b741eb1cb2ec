package contrib

import (
	"strconv"
	"time"
)

// Encoder rasterizes a drawing into image bytes.
type Encoder interface {
	Encode(d *Drawing) ([]byte, error)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(d *Drawing) ([]byte, error)

func (f EncoderFunc) Encode(d *Drawing) ([]byte, error) { return f(d) }

// Result is what a target displays: a short title and an encoded image.
type Result struct {
	Title string
	Image []byte
}

// Renderer produces button results. Now defaults to time.Now when nil.
type Renderer struct {
	Encoder Encoder
	Now     func() time.Time
}

// Render computes the title and image for one target. Bad calendar data only
// ever yields an empty image or a zero title; the only error returned is the
// encoder's, unchanged.
func (r Renderer) Render(cal *Calendar, window Window, theme Theme, shard int) (Result, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	shard = ClampShard(shard)

	res := Result{Title: Title(cal, window, shard, now)}
	img, err := r.Encoder.Encode(Layout(cal, window, theme, shard, now))
	if err != nil {
		return Result{}, err
	}
	res.Image = img
	return res, nil
}

// Title is the text shown over the image: the shard's months for a sharded
// year, the windowed contribution count otherwise.
func Title(cal *Calendar, window Window, shard int, now time.Time) string {
	if window == WindowYearSharded {
		return ShardLabel(cal, ClampShard(shard))
	}
	return strconv.Itoa(Aggregate(cal, window, now))
}
