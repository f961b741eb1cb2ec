// Package plugin keeps one refresh loop per visible button and drives the
// fetch, render and display cycle.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/deck"
	"github.com/artcc/contribdeck/internal/github"
	"github.com/artcc/contribdeck/internal/store"
)

const (
	TitleConfigError = "Config Error"
	TitleError       = "Error"
)

// Fetcher returns the contribution calendar of a user.
type Fetcher interface {
	Contributions(ctx context.Context, username string) (*contrib.Calendar, error)
}

// FetcherFactory builds a Fetcher authenticated with token.
type FetcherFactory func(ctx context.Context, token string) (Fetcher, error)

// GitHubFetcher returns a factory for GraphQL clients talking to endpoint.
func GitHubFetcher(endpoint string) FetcherFactory {
	return func(ctx context.Context, token string) (Fetcher, error) {
		c, err := github.NewClient(ctx, endpoint, token)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

type Options struct {
	Sender     deck.Sender
	NewFetcher FetcherFactory
	Renderer   contrib.Renderer
	// Store is optional. When set, targets, calendars and renders are kept.
	Store *store.Store

	RefreshInterval   time.Duration
	HeartbeatInterval time.Duration
	Debug             bool
	Now               func() time.Time
}

// Plugin implements deck.Handler.
type Plugin struct {
	opts    Options
	mu      sync.Mutex
	targets map[string]*target
	wg      sync.WaitGroup
	closed  atomic.Bool
}

var _ deck.Handler = (*Plugin)(nil)

func New(opts Options) *Plugin {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Renderer.Now == nil {
		opts.Renderer.Now = opts.Now
	}
	return &Plugin{opts: opts, targets: make(map[string]*target)}
}

type target struct {
	id      string
	mu      sync.Mutex
	s       deck.Settings
	refresh chan struct{}
	reset   chan time.Duration
	cancel  context.CancelFunc

	lastRefresh atomic.Time
}

func (t *target) settings() deck.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}

func (t *target) setSettings(s deck.Settings) {
	t.mu.Lock()
	t.s = s
	t.mu.Unlock()
}

// requestRefresh queues a refresh. Requests made while one is pending
// collapse into it; the refresh reads the settings current at that time.
func (t *target) requestRefresh() {
	select {
	case t.refresh <- struct{}{}:
	default:
	}
}

func (t *target) resetTicker(d time.Duration) {
	select {
	case t.reset <- d:
	default:
	}
}

func (p *Plugin) interval(s deck.Settings) time.Duration {
	if s.RefreshInterval > 0 {
		return time.Duration(s.RefreshInterval) * time.Minute
	}
	return p.opts.RefreshInterval
}

func (p *Plugin) WillAppear(ctx context.Context, id string, s deck.Settings) {
	entry := log.WithField("target", id)
	entry.Debug("will appear")

	p.mu.Lock()
	t, ok := p.targets[id]
	if !ok && !p.closed.Load() {
		tctx, cancel := context.WithCancel(ctx)
		t = &target{
			id:      id,
			s:       s,
			refresh: make(chan struct{}, 1),
			reset:   make(chan time.Duration, 1),
			cancel:  cancel,
		}
		p.targets[id] = t
		p.wg.Add(1)
		go p.loop(tctx, t, p.interval(s))
	}
	p.mu.Unlock()
	if t == nil {
		return
	}

	if ok {
		t.setSettings(s)
		t.resetTicker(p.interval(s))
	}
	p.saveTarget(id, s)
	if err := p.opts.Sender.GetSettings(id); err != nil {
		entry.WithError(err).Warn("request settings")
	}
}

func (p *Plugin) WillDisappear(_ context.Context, id string) {
	log.WithField("target", id).Debug("will disappear")

	p.mu.Lock()
	t, ok := p.targets[id]
	delete(p.targets, id)
	p.mu.Unlock()
	if ok {
		t.cancel()
	}
	if p.opts.Store != nil {
		if err := p.opts.Store.DeleteTarget(id); err != nil {
			log.WithField("target", id).WithError(err).Warn("delete target")
		}
	}
}

func (p *Plugin) KeyUp(_ context.Context, id string, s deck.Settings) {
	entry := log.WithField("target", id)
	entry.Debug("key up")
	t := p.target(id)
	if t == nil {
		entry.Debug("ignoring key up for a target that never appeared")
		return
	}
	t.setSettings(s)
	t.requestRefresh()
}

func (p *Plugin) DidReceiveSettings(_ context.Context, id string, s deck.Settings) {
	log.WithFields(log.Fields{"target": id, "username": s.Username, "time": s.Time}).Debug("received settings")
	t := p.target(id)
	if t == nil {
		log.WithField("target", id).Debug("ignoring settings for a target that never appeared")
		return
	}
	old := t.settings()
	t.setSettings(s)
	if p.interval(old) != p.interval(s) {
		t.resetTicker(p.interval(s))
	}
	p.saveTarget(id, s)
	t.requestRefresh()
}

func (p *Plugin) target(id string) *target {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.targets[id]
}

// Targets returns the ids of the live targets, sorted.
func (p *Plugin) Targets() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.targets))
	for id := range p.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops every target loop and waits for in-flight refreshes.
func (p *Plugin) Close() {
	p.closed.Store(true)
	p.mu.Lock()
	for id, t := range p.targets {
		t.cancel()
		delete(p.targets, id)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Plugin) loop(ctx context.Context, t *target, every time.Duration) {
	defer p.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-t.reset:
			ticker.Reset(d)
		case <-ticker.C:
			log.WithField("target", t.id).Debug("automatic refresh")
			p.refresh(ctx, t)
		case <-t.refresh:
			p.refresh(ctx, t)
		}
	}
}

func (p *Plugin) refresh(ctx context.Context, t *target) {
	s := t.settings()
	entry := log.WithFields(log.Fields{"target": t.id, "username": s.Username, "time": s.Time})
	t.lastRefresh.Store(p.opts.Now())

	window := windowOf(s)
	rec := store.Render{
		Context:  t.id,
		Username: s.Username,
		Window:   window,
		Theme:    contrib.Theme(s.Theme),
		Shard:    contrib.ClampShard(int(s.ButtonNumber)),
	}

	if !s.Configured() {
		entry.Debug("missing username or token")
		p.setTitle(entry, t.id, TitleConfigError)
		rec.Title, rec.Error = TitleConfigError, github.ErrNotConfigured.Error()
		p.recordRender(entry, rec)
		return
	}

	res, err := p.fetchAndRender(ctx, s, window)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return
	}
	if err != nil {
		entry.WithError(err).Warn("refresh failed")
		p.setTitle(entry, t.id, TitleError)
		rec.Title, rec.Error = TitleError, err.Error()
		p.recordRender(entry, rec)
		return
	}

	p.setTitle(entry, t.id, res.Title)
	if err := p.opts.Sender.SetImage(t.id, res.Image); err != nil {
		entry.WithError(err).Warn("set image")
	}
	rec.Title, rec.Bytes = res.Title, len(res.Image)
	p.recordRender(entry, rec)
	entry.WithField("title", res.Title).Debug("refreshed")
}

func (p *Plugin) fetchAndRender(ctx context.Context, s deck.Settings, window contrib.Window) (contrib.Result, error) {
	f, err := p.opts.NewFetcher(ctx, s.Token)
	if err != nil {
		return contrib.Result{}, fmt.Errorf("create client: %w", err)
	}
	cal, err := f.Contributions(ctx, s.Username)
	if err != nil {
		return contrib.Result{}, err
	}
	if p.opts.Store != nil {
		if err := p.opts.Store.SaveCalendar(s.Username, cal, p.opts.Now()); err != nil {
			log.WithField("username", s.Username).WithError(err).Warn("cache calendar")
		}
	}
	res, err := p.opts.Renderer.Render(cal, window, contrib.Theme(s.Theme), int(s.ButtonNumber))
	if err != nil {
		return contrib.Result{}, fmt.Errorf("render: %w", err)
	}
	return res, nil
}

func (p *Plugin) setTitle(entry *log.Entry, id, title string) {
	if err := p.opts.Sender.SetTitle(id, title); err != nil {
		entry.WithError(err).Warn("set title")
	}
}

func (p *Plugin) recordRender(entry *log.Entry, r store.Render) {
	if p.opts.Store == nil {
		return
	}
	r.CreatedAt = p.opts.Now()
	if _, err := p.opts.Store.RecordRender(r); err != nil {
		entry.WithError(err).Warn("record render")
	}
}

func (p *Plugin) saveTarget(id string, s deck.Settings) {
	if p.opts.Store == nil {
		return
	}
	_, err := p.opts.Store.SaveTarget(store.Target{
		Context:        id,
		Username:       s.Username,
		Window:         windowOf(s),
		Theme:          contrib.Theme(s.Theme),
		Shard:          contrib.ClampShard(int(s.ButtonNumber)),
		RefreshMinutes: int(s.RefreshInterval),
	})
	if err != nil {
		log.WithField("target", id).WithError(err).Warn("save target")
	}
}

// windowOf maps the time setting to a window. An unset value means a year.
func windowOf(s deck.Settings) contrib.Window {
	if s.Time == "" {
		return contrib.WindowYear
	}
	return contrib.Window(s.Time)
}
