package tui

import "time"

// refreshModel schedules automatic calendar refreshes separate from display.
// A zero interval disables them.
type refreshModel struct {
	interval time.Duration
	next     time.Time
	fetching bool

	lastFetch time.Time
	lastErr   error
}

func newRefreshModel(interval time.Duration) refreshModel {
	return refreshModel{interval: interval}
}

func (r refreshModel) enabled() bool {
	return r.interval > 0
}

// begin marks a fetch as in flight. It reports false when one already is.
func (r *refreshModel) begin() bool {
	if r.fetching {
		return false
	}
	r.fetching = true
	return true
}

// finish records the outcome of a fetch and schedules the next one.
func (r *refreshModel) finish(now time.Time, err error) {
	r.fetching = false
	r.lastErr = err
	if err == nil {
		r.lastFetch = now
	}
	if r.enabled() {
		r.next = now.Add(r.interval)
	}
}

func (r refreshModel) due(now time.Time) bool {
	return r.enabled() && !r.fetching && !r.next.IsZero() && !now.Before(r.next)
}

func (r refreshModel) remaining(now time.Time) time.Duration {
	if !r.enabled() || r.next.IsZero() {
		return 0
	}
	if d := r.next.Sub(now); d > 0 {
		return d
	}
	return 0
}
