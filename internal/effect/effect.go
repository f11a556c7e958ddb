// Package effect implements channel-bound, time-driven lighting effects.
//
// An Effect never blocks. The owner calls Update with the current clock
// reading on every pass of the control loop and the effect decides, from
// the elapsed time alone, whether its channel needs a new level. All
// brightness values handled here are linear; the gamma correction from
// package waveform is applied only at the moment a level is written.
package effect

import (
	"github.com/sweeney/led-sequencer/internal/clock"
	"github.com/sweeney/led-sequencer/internal/waveform"
)

// Channel identifies one independently driven output.
type Channel int

// Sink writes a level to a channel. Writes are fire-and-forget.
type Sink interface {
	Write(ch Channel, level uint8)
}

// MaxFrequency is the highest strobe or sine frequency in Hz.
const MaxFrequency = 1400

// Effect kinds, as reported by Kind and accepted in show files.
const (
	KindDimmer      = "dimmer"
	KindSparkle     = "sparkle"
	KindFlickerDown = "flicker-down"
	KindFlickerUp   = "flicker-up"
	KindSine        = "sine"
	KindHeartbeat   = "heartbeat"
)

// Effect is an animation bound to a single channel.
type Effect interface {
	// Channel returns the channel this effect drives.
	Channel() Channel

	// Kind names the waveform policy, e.g. "sparkle".
	Kind() string

	// Brightness returns the commanded linear level.
	Brightness() uint8

	// SetBrightness changes the commanded level. Nothing is written until
	// the next Update.
	SetBrightness(level uint8)

	// Level returns the last linear level written to the channel.
	Level() uint8

	// Enter restarts the effect from its initial phase.
	Enter()

	// Update advances the effect to now and writes the channel if needed.
	// Calling it again with the same now writes nothing.
	Update(now clock.Millis)

	// Exit is called when the effect is swapped out.
	Exit()
}

// output is the channel bookkeeping shared by every effect.
type output struct {
	ch         Channel
	sink       Sink
	brightness uint8

	// last is the linear level most recently written. It is only
	// meaningful while synced is true.
	last   uint8
	synced bool
}

// newOutput forces the channel off and leaves the record unsynced so the
// first Update always writes.
func newOutput(ch Channel, sink Sink, brightness uint8) output {
	sink.Write(ch, 0)
	return output{ch: ch, sink: sink, brightness: brightness}
}

func (o *output) Channel() Channel { return o.ch }

func (o *output) Brightness() uint8 { return o.brightness }

func (o *output) SetBrightness(level uint8) { o.brightness = level }

func (o *output) Level() uint8 { return o.last }

func (o *output) Exit() {}

// resync runs on Enter. The record is desynchronised so the next drive
// writes even if the level is unchanged, and a commanded level of zero is
// written immediately: with both values at zero a steady effect would
// otherwise never touch the channel. An effect entered while commanded off
// therefore writes zero twice, here and on the first Update, which always
// writes after Enter.
func (o *output) resync() {
	o.synced = false
	if o.brightness == 0 {
		o.sink.Write(o.ch, 0)
	}
}

// drive writes level, gamma corrected, unless it is already on the channel.
func (o *output) drive(level uint8) {
	if o.synced && level == o.last {
		return
	}
	o.sink.Write(o.ch, waveform.Correct(level))
	o.last = level
	o.synced = true
}

// schedule tracks the deadline of a periodic transition.
type schedule struct {
	last  clock.Millis
	armed bool
}

// arm makes the next due call fire regardless of elapsed time.
func (s *schedule) arm() {
	s.armed = true
}

// due reports whether period has elapsed since the last firing and, if so,
// records now as the new firing time. It never fires twice for the same now.
func (s *schedule) due(now, period clock.Millis) bool {
	if s.armed {
		s.armed = false
		s.last = now
		return true
	}
	if now == s.last {
		return false
	}
	if clock.Elapsed(now, s.last) < period {
		return false
	}
	s.last = now
	return true
}
