package search

import (
	"sync"
	"time"
)

// Debouncer delays running a function until triggers have been quiescent for
// a fixed window. A new trigger cancels any previously scheduled-but-not-yet
// run function; this is the only cancellation semantic in the system — once
// a function has started it runs to completion.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiescence window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	return &Debouncer{window: window}
}

// Trigger schedules fn to run after the window elapses, replacing any
// previously scheduled function that has not started yet.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any scheduled function that has not started.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
