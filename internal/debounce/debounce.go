// Package debounce collapses bursts of calls into a single delayed call.
//
// A Debouncer wraps a callback and a quiet period. Every Call pushes the
// deadline out again; the callback only runs once calls stop arriving for the
// full delay, and it receives the argument of the most recent Call. Nothing is
// returned to the caller. This is what the search box uses so typing
// "sherlock" issues one catalog request instead of eight.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays fn until delay has passed without another Call.
// The zero value is not usable; construct with New.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	arg     T
	gen     uint64
	pending bool
}

// New returns a Debouncer that forwards the latest argument to fn once delay
// has elapsed with no further calls. A non-positive delay runs fn
// synchronously on every Call.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call schedules fn(arg), replacing any call that has not run yet.
func (d *Debouncer[T]) Call(arg T) {
	if d.delay <= 0 {
		d.Cancel()
		d.fn(arg)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.arg = arg
	d.pending = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the pending call, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
}

// Flush runs the pending call immediately on the caller's goroutine.
// It reports whether a call was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	arg := d.arg
	d.clearLocked()
	d.mu.Unlock()

	d.fn(arg)
	return true
}

// Pending reports whether a call is scheduled but has not run.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// A newer Call or a Cancel may have raced with this timer.
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	arg := d.arg
	d.clearLocked()
	d.mu.Unlock()

	d.fn(arg)
}

func (d *Debouncer[T]) clearLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	var zero T
	d.arg = zero
	d.pending = false
	d.gen++
}
