package announce

import "time"

// DefaultDebounce is the settle time for recognition signals.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer holds a single pending value that commits only after the delay
// passes with no newer push. A newer push replaces the value and restarts the
// delay.
//
// Timers fire on their own goroutine, so the Debouncer never commits by
// itself: the fire callback receives a generation number that the owner
// passes back to Settle from its own goroutine. Stale generations are ignored.
type Debouncer[T any] struct {
	delay     time.Duration
	onFire    func(gen uint64)
	afterFunc func(time.Duration, func()) *time.Timer

	gen     uint64
	pending bool
	value   T
	timer   *time.Timer
}

// NewDebouncer creates a debouncer. onFire is called from a timer goroutine
// and must hand the generation back to the owner without blocking for long.
func NewDebouncer[T any](delay time.Duration, onFire func(gen uint64)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{
		delay:     delay,
		onFire:    onFire,
		afterFunc: time.AfterFunc,
	}
}

// Push replaces any pending value with v and restarts the delay.
func (d *Debouncer[T]) Push(v T) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.pending = true
	d.value = v
	gen := d.gen
	d.timer = d.afterFunc(d.delay, func() { d.onFire(gen) })
}

// Settle commits the pending value if gen is still the latest generation.
func (d *Debouncer[T]) Settle(gen uint64) (T, bool) {
	if !d.pending || gen != d.gen {
		var zero T
		return zero, false
	}
	d.pending = false
	d.timer = nil
	return d.value, true
}

// Pending reports whether a value is waiting to settle.
func (d *Debouncer[T]) Pending() bool {
	return d.pending
}

// Stop cancels any pending commit.
func (d *Debouncer[T]) Stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
}
