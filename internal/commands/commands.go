// Package commands implements the contribdeck subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/artcc/contribdeck/internal/config"
	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/github"
	"github.com/artcc/contribdeck/internal/store"
)

var timeNow = time.Now

var (
	errNoCache  = errors.New("no cached calendar")
	errTerminal = errors.New("refusing to write a png to a terminal, use -o")
)

func parseWindow(s string) (contrib.Window, error) {
	for _, w := range contrib.Windows {
		if string(w) == s {
			return w, nil
		}
	}
	names := make([]string, len(contrib.Windows))
	for i, w := range contrib.Windows {
		names[i] = string(w)
	}
	return "", fmt.Errorf("unknown window %q (want one of %s)", s, strings.Join(names, ", "))
}

func parseTheme(s string) (contrib.Theme, error) {
	switch t := contrib.Theme(s); t {
	case contrib.ThemeDark, contrib.ThemeLight:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q (want dark or light)", s)
}

// newFetcher builds a GraphQL client from the process configuration.
func newFetcher(ctx context.Context, cfg config.Config) (*github.Client, error) {
	c, err := github.NewClient(ctx, cfg.APIURL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: set GITHUB_TOKEN or use -offline", err)
	}
	return c, nil
}

// loadCalendar fetches the calendar of user and caches it, or returns the
// cached copy when offline.
func loadCalendar(ctx context.Context, s *store.Store, cfg config.Config, user string, offline bool) (*contrib.Calendar, error) {
	if offline {
		cached, err := s.GetCalendar(user)
		if err != nil {
			return nil, err
		}
		if cached == nil {
			return nil, fmt.Errorf("%w for %s", errNoCache, user)
		}
		return cached.Calendar, nil
	}

	c, err := newFetcher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cal, err := c.Contributions(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.SaveCalendar(user, cal, timeNow()); err != nil {
		return nil, err
	}
	return cal, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
