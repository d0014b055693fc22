// Package debounce coalesces bursts of calls into a single invocation.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks. The zero configuration uses the
// runtime timers; tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type runtimeClock struct{}

func (runtimeClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option customizes a Debouncer.
type Option func(*options)

type options struct {
	leading bool
	clock   Clock
}

// WithLeadingEdge fires the action on the first call of a burst instead of
// after it. Later calls inside the quiet window extend the burst but never
// fire it again.
func WithLeadingEdge() Option {
	return func(o *options) { o.leading = true }
}

// WithClock overrides the timer source.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// Debouncer delays action until calls have stopped for the wait interval.
// Only the argument of the last call in a burst survives.
type Debouncer[T any] struct {
	wait    time.Duration
	action  func(T)
	leading bool
	clock   Clock

	mu      sync.Mutex
	timer   Timer
	gen     uint64 // bumps on every re-arm so superseded timers are ignored
	inBurst bool
	pending bool
	last    T
	stopped bool
}

// New builds a Debouncer around action. A non-positive wait fires on every
// call.
func New[T any](wait time.Duration, action func(T), opts ...Option) *Debouncer[T] {
	o := options{clock: runtimeClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Debouncer[T]{
		wait:    wait,
		action:  action,
		leading: o.leading,
		clock:   o.clock,
	}
}

// Call registers a call with argument v and restarts the quiet window. It
// reports whether v will reach the action, either now or as the trailing
// invocation. In leading-edge mode only the first call of a burst does.
func (d *Debouncer[T]) Call(v T) bool {
	if d == nil || d.action == nil {
		return false
	}
	if d.wait <= 0 {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if stopped {
			return false
		}
		d.action(v)
		return true
	}

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	fireNow := d.leading && !d.inBurst
	if !d.leading {
		d.pending = true
		d.last = v
	}
	d.inBurst = true
	d.armLocked()
	d.mu.Unlock()

	if fireNow {
		d.action(v)
	}
	return fireNow || !d.leading
}

// Cancel drops any pending invocation and ends the current burst.
func (d *Debouncer[T]) Cancel() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

// Stop cancels the pending invocation and ignores every later call. Owners
// call it when they are torn down.
func (d *Debouncer[T]) Stop() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.stopped = true
}

// Flush fires a pending trailing invocation immediately. It reports whether
// anything fired.
func (d *Debouncer[T]) Flush() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return false
	}
	v := d.last
	d.resetLocked()
	d.mu.Unlock()

	d.action(v)
	return true
}

// Pending reports whether a trailing invocation is scheduled.
func (d *Debouncer[T]) Pending() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) armLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() { d.expire(gen) })
}

func (d *Debouncer[T]) expire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.stopped {
		d.mu.Unlock()
		return
	}
	fire := d.pending
	v := d.last
	d.timer = nil
	d.inBurst = false
	d.pending = false
	var zero T
	d.last = zero
	d.mu.Unlock()

	if fire {
		d.action(v)
	}
}

func (d *Debouncer[T]) resetLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.inBurst = false
	d.pending = false
	var zero T
	d.last = zero
}
