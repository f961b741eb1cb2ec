package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/artcc/contribdeck/internal/deck"
)

// HostHook mirrors log entries to the host's log through logMessage.
type HostHook struct {
	Sender deck.Sender
}

func (h *HostHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *HostHook) Fire(e *log.Entry) error {
	if h.Sender == nil || !h.Sender.Connected() {
		return nil
	}
	return h.Sender.LogMessage(formatEntry(e))
}

func formatEntry(e *log.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s - %s", strings.ToUpper(e.Level.String()), e.Time.UTC().Format(time.RFC3339), e.Message)
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	return b.String()
}

// Heartbeat sends a status line to the host every HeartbeatInterval while
// debug is on. It blocks until ctx is done.
func (p *Plugin) Heartbeat(ctx context.Context) {
	if !p.opts.Debug || p.opts.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(p.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.opts.Sender.Connected() {
				continue
			}
			if err := p.opts.Sender.LogMessage(p.status()); err != nil {
				log.WithError(err).Debug("heartbeat")
			}
		}
	}
}

func (p *Plugin) status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "heartbeat: %d targets", len(p.targets))
	ids := make([]string, 0, len(p.targets))
	for id := range p.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		last := p.targets[id].lastRefresh.Load()
		if last.IsZero() {
			fmt.Fprintf(&b, " %s=never", id)
			continue
		}
		fmt.Fprintf(&b, " %s=%s", id, last.UTC().Format(time.RFC3339))
	}
	return b.String()
}
