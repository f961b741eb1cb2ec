package commands

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/artcc/contribdeck/internal/config"
	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/raster"
	"github.com/artcc/contribdeck/internal/store"
)

// Render handles the render subcommand. The title is printed to stdout, or
// to stderr when the image itself goes to stdout.
func Render(ctx context.Context, args []string, cfg config.Config, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	user := fs.String("user", "", "GitHub username")
	window := fs.String("window", string(contrib.WindowYear), "time window: year, month, week, day or year5")
	theme := fs.String("theme", string(contrib.ThemeDark), "theme: dark or light")
	shard := fs.Int("shard", 0, "shard index for the year5 window (0-4)")
	size := fs.Int("size", contrib.CanvasSize, "output size in pixels")
	out := fs.String("o", "-", "output file, - for stdout")
	offline := fs.Bool("offline", false, "use the cached calendar instead of fetching")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contribdeck render -user NAME [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Renders the button image for a user as a PNG.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GITHUB_TOKEN    Token used to query the GraphQL API\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *user == "" {
		return errors.New("missing -user")
	}
	w, err := parseWindow(*window)
	if err != nil {
		return err
	}
	t, err := parseTheme(*theme)
	if err != nil {
		return err
	}
	if *size <= 0 {
		return fmt.Errorf("invalid -size %d", *size)
	}
	toStdout := *out == "-" || *out == ""
	if toStdout && isTerminal(stdout) {
		return errTerminal
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	cal, err := loadCalendar(ctx, s, cfg, *user, *offline)
	if err != nil {
		return err
	}

	idx := contrib.ClampShard(*shard)
	rec := store.Render{Context: "cli", Username: *user, Window: w, Theme: t, Shard: idx}
	n, title, err := renderTo(cal, w, t, idx, *size, *out, toStdout, stdout)
	if err != nil {
		rec.Title = "Error"
		rec.Error = err.Error()
		if _, logErr := s.RecordRender(rec); logErr != nil {
			log.WithError(logErr).Warn("record failed render")
		}
		return err
	}
	rec.Title = title
	rec.Bytes = n
	if _, err := s.RecordRender(rec); err != nil {
		return err
	}

	titleOut := stdout
	if toStdout {
		titleOut = os.Stderr
	}
	fmt.Fprintln(titleOut, title)
	return nil
}

// renderTo renders through the same pipeline as the plugin and writes the
// PNG, scaled when size differs from the canvas.
func renderTo(cal *contrib.Calendar, w contrib.Window, t contrib.Theme, shard, size int, path string, toStdout bool, stdout io.Writer) (int, string, error) {
	res, err := contrib.Renderer{Encoder: raster.PNG{}, Now: timeNow}.Render(cal, w, t, shard)
	if err != nil {
		return 0, "", err
	}

	data := res.Image
	if size != contrib.CanvasSize {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return 0, "", fmt.Errorf("decode png: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, raster.Resize(img, size)); err != nil {
			return 0, "", fmt.Errorf("encode png: %w", err)
		}
		data = buf.Bytes()
	}

	if toStdout {
		if _, err := stdout.Write(data); err != nil {
			return 0, "", fmt.Errorf("write png: %w", err)
		}
	} else if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, "", fmt.Errorf("write png file: %w", err)
	}
	return len(data), res.Title, nil
}
