package segment

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid repeated triggers into a single deferred call.
// Every Trigger bumps a generation token and restarts the timer; when the
// timer fires it runs fn only if its token is still the latest, so a
// superseded request never executes. This mirrors a GUI after/after_cancel
// timer without depending on an event loop.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer that invokes fn delay after the most
// recent trigger. A non-positive delay makes every trigger synchronous.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules (or reschedules) the deferred call.
func (d *Debouncer) Trigger() {
	if d.delay <= 0 {
		d.fn()
		return
	}

	d.mu.Lock()
	d.gen++
	token := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := token == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			d.fn()
		}
	})
	d.mu.Unlock()
}

// Flush runs a pending call immediately, or does nothing if none is
// pending. Useful for synchronous callers and tests.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil
	if pending {
		d.timer.Stop()
		d.timer = nil
		d.gen++
	}
	d.mu.Unlock()
	if pending {
		d.fn()
	}
}

// Stop cancels any pending call without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.mu.Unlock()
}
