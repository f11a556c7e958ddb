// Package clock provides the millisecond time base shared by the effect
// engine and the state machine. Millis wraps at 2^32; every comparison
// between two readings must go through Elapsed.
package clock

import "time"

// Millis is a wrapping millisecond counter.
type Millis uint32

// Source supplies the current counter value.
type Source interface {
	Now() Millis
}

// Elapsed returns the number of milliseconds from since to now.
// Unsigned subtraction keeps the result correct across a wrap.
func Elapsed(now, since Millis) Millis {
	return now - since
}

// FromDuration converts d to whole milliseconds, truncating.
func FromDuration(d time.Duration) Millis {
	return Millis(uint32(d.Milliseconds()))
}

// Monotonic counts milliseconds since it was created, using the runtime's
// monotonic clock reading.
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts a counter at zero.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Now returns the milliseconds elapsed since NewMonotonic, modulo 2^32.
func (m *Monotonic) Now() Millis {
	return Millis(uint32(time.Since(m.start).Milliseconds()))
}

// Fake is a manually advanced clock for tests.
type Fake struct {
	now Millis
}

// NewFake creates a Fake reading start.
func NewFake(start Millis) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake reading.
func (f *Fake) Now() Millis {
	return f.now
}

// Set moves the clock to t.
func (f *Fake) Set(t Millis) {
	f.now = t
}

// Advance moves the clock forward by d, wrapping as the hardware would.
func (f *Fake) Advance(d Millis) {
	f.now += d
}
