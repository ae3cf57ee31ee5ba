// Package debounce stabilises a rapidly changing value: it settles on the latest value once no
// new value has arrived for the configured delay.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds the latest pushed value and the last settled one
type Debouncer[T any] struct {
	delay time.Duration

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	pending T
	settled T
	stopped bool

	out chan T
}

// New returns a Debouncer whose settled value starts at initial
func New[T any](initial T, delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{
		delay:   delay,
		pending: initial,
		settled: initial,
		out:     make(chan T, 1),
	}
}

// Push records v and restarts the quiet period
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = v
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire settles unless a later Push superseded the timer that called it
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || gen != d.gen {
		return
	}
	d.settleLocked()
}

func (d *Debouncer[T]) settleLocked() {
	d.timer = nil
	d.settled = d.pending
	// only the newest settled value is interesting to a slow reader
	select {
	case <-d.out:
	default:
	}
	d.out <- d.settled
}

// Flush settles the pending value now if a quiet period is running
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || d.timer == nil {
		return
	}
	d.timer.Stop()
	d.gen++
	d.settleLocked()
}

// Value returns the last settled value
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// Pending reports whether a pushed value has not settled yet
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Settled delivers each value as it settles. A reader that falls behind sees only the newest.
func (d *Debouncer[T]) Settled() <-chan T {
	return d.out
}

// Stop drops any pending value. Push after Stop is ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
