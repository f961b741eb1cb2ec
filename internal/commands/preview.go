package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artcc/contribdeck/internal/config"
	"github.com/artcc/contribdeck/internal/store"
	"github.com/artcc/contribdeck/internal/tui"
)

// Preview handles the preview subcommand.
func Preview(ctx context.Context, args []string, cfg config.Config) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	user := fs.String("user", "", "GitHub username (defaults to the last one previewed)")
	offline := fs.Bool("offline", false, "use the cached calendar and disable auto refresh")
	exportDir := fs.String("export-dir", "", "directory for exports (defaults to the home directory)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contribdeck preview [-user NAME] [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Shows the button in the terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	opts, err := previewOptions(ctx, s, cfg, *user, *offline)
	if err != nil {
		return err
	}
	opts.ExportDir = *exportDir

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func previewOptions(ctx context.Context, s *store.Store, cfg config.Config, user string, offline bool) (tui.Options, error) {
	if user == "" {
		user, _ = s.GetSetting("preview_user")
	}
	if user == "" {
		return tui.Options{}, errors.New("missing -user")
	}

	opts := tui.Options{
		Store:           s,
		Username:        user,
		RefreshInterval: cfg.RefreshInterval,
	}
	if !offline {
		c, err := newFetcher(ctx, cfg)
		if err != nil {
			return tui.Options{}, err
		}
		opts.Fetcher = c
	}
	return opts, nil
}
