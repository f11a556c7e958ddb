package effect

import (
	"github.com/sweeney/led-sequencer/internal/clock"
	"github.com/sweeney/led-sequencer/internal/waveform"
)

const (
	heartbeatBeats = 2
	heartbeatRate  = 2 // beats per second while pulsing
	defaultSpace   = 2000
)

// Heartbeat plays two pulses from the sine table back to back, then holds
// the commanded brightness for the configured space before repeating.
type Heartbeat struct {
	output
	step  clock.Millis
	space clock.Millis
	sched schedule
	index int
	beat  int
}

// NewHeartbeat creates a Heartbeat on ch with a two second space.
func NewHeartbeat(ch Channel, sink Sink) *Heartbeat {
	h := &Heartbeat{
		output: newOutput(ch, sink, 0),
		step:   clock.Millis((1000 / heartbeatRate) / waveform.PulseLength),
		space:  defaultSpace,
	}
	h.restart()
	return h
}

func (h *Heartbeat) Kind() string { return KindHeartbeat }

func (h *Heartbeat) Space() clock.Millis { return h.space }

// SetSpace sets the hold time between pulse pairs.
func (h *Heartbeat) SetSpace(space clock.Millis) { h.space = space }

func (h *Heartbeat) restart() {
	h.sched.arm()
	h.index = waveform.PulseStart
	h.beat = 0
}

func (h *Heartbeat) Enter() {
	h.restart()
	h.resync()
}

func (h *Heartbeat) Update(now clock.Millis) {
	if h.beat < heartbeatBeats {
		if !h.sched.due(now, h.step) {
			return
		}
		h.drive(waveform.Sine[h.index])

		h.index++
		if h.index >= waveform.PulseLength {
			h.index = 0
		}
		if h.index == waveform.PulseEnd {
			h.beat++
			h.index = waveform.PulseStart
		}
		return
	}

	// hold between pulse pairs
	h.drive(h.brightness)
	if h.sched.due(now, h.space) {
		h.beat = 0
		h.index = waveform.PulseStart
	}
}
