package editor

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of rapid calls into a single callback invocation
// after a quiet period. Every call re-arms the timer; the previous schedule is
// invalidated by a sequence number rather than relying on timer cancellation
// alone, so a stale timer that already fired cannot run the callback
// (last-scheduled-wins).
//
// The callback is never invoked concurrently with itself from the debouncer.
type Debouncer struct {
	mu       sync.Mutex
	window   time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64
	callback func()
}

// NewDebouncer creates a debouncer firing callback after a quiet period of
// the given window.
func NewDebouncer(window time.Duration, callback func()) *Debouncer {
	return &Debouncer{window: window, callback: callback}
}

// Call schedules the callback to run once no further calls arrive for the
// debounce window. A pending schedule is implicitly cancelled.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	scheduled := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if !d.pending || d.seq != scheduled || d.callback == nil {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.mu.Unlock()
		d.callback()
	})
}

// Flush runs the callback immediately if a call is pending, cancelling the
// scheduled invocation.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	run := d.pending && d.callback != nil
	d.pending = false
	d.mu.Unlock()

	if run {
		d.callback()
	}
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending returns true if a call is scheduled but has not fired.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
