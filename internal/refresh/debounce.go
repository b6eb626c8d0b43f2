// Package refresh decides when a layout is recomputed.
//
// Change notifications arrive in bursts (a calendar sync touches many
// incidences at once). A Debouncer coalesces each burst into a single call
// of its action, run once a single-shot timer fires; notifications that
// arrive while the timer is pending are absorbed.
package refresh

import (
	"sync"
	"time"
)

const (
	DefaultActiveDelay = 50 * time.Millisecond
	DefaultIdleDelay   = 200 * time.Millisecond
)

// Debouncer runs an action at most once per coalescing window.
type Debouncer struct {
	action func()

	mu          sync.Mutex
	timer       *time.Timer
	active      bool
	activeDelay time.Duration
	idleDelay   time.Duration
	stopped     bool
}

// NewDebouncer returns a Debouncer for action. Non-positive delays fall back
// to the defaults.
func NewDebouncer(activeDelay, idleDelay time.Duration, action func()) *Debouncer {
	if activeDelay <= 0 {
		activeDelay = DefaultActiveDelay
	}
	if idleDelay <= 0 {
		idleDelay = DefaultIdleDelay
	}
	return &Debouncer{
		action:      action,
		activeDelay: activeDelay,
		idleDelay:   idleDelay,
	}
}

// SetActive selects the shorter window, used while the view is on screen.
// It applies to the next window that opens.
func (d *Debouncer) SetActive(active bool) {
	d.mu.Lock()
	d.active = active
	d.mu.Unlock()
}

// Delay returns the window the next Notify would open.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delayLocked()
}

func (d *Debouncer) delayLocked() time.Duration {
	if d.active {
		return d.activeDelay
	}
	return d.idleDelay
}

// Notify signals that something changed. It opens a window unless one is
// already pending and reports whether it did.
func (d *Debouncer) Notify() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.timer != nil {
		return false
	}
	d.timer = time.AfterFunc(d.delayLocked(), d.fire)
	return true
}

// Pending reports whether a window is open.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels a pending window and ignores later notifications. An action
// that is already running is not interrupted.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return
	}
	// Close the window before running so notifications raised during the
	// action open the next one.
	d.timer = nil
	d.mu.Unlock()

	d.action()
}
