package effect

import (
	"log/slog"

	"github.com/sweeney/led-sequencer/internal/clock"
)

// Host owns the active effect for one channel and runs the swap lifecycle.
// Like the effects it hosts, it must only be used from the control loop.
type Host struct {
	ch      Channel
	sink    Sink
	current Effect
	logger  *slog.Logger
}

// NewHost creates an idle Host for ch. A nil logger uses slog.Default.
func NewHost(ch Channel, sink Sink, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		ch:     ch,
		sink:   sink,
		logger: logger.With("channel", int(ch)),
	}
}

// Channel returns the hosted channel.
func (h *Host) Channel() Channel { return h.ch }

// Current returns the active effect, or nil.
func (h *Host) Current() Effect { return h.current }

// Swap exits the active effect and enters e. Swapping in the active effect
// again restarts it. An effect bound to another channel is ignored.
func (h *Host) Swap(e Effect) {
	if e != nil && e.Channel() != h.ch {
		h.logger.Debug("ignoring effect for another channel", "effect_channel", int(e.Channel()))
		return
	}
	if h.current != nil {
		h.current.Exit()
	}
	h.current = e
	if e != nil {
		h.logger.Debug("effect entered", "kind", e.Kind())
		e.Enter()
	}
}

// Release exits the active effect and parks the channel off.
func (h *Host) Release() {
	if h.current == nil {
		return
	}
	h.current.Exit()
	h.logger.Debug("effect released", "kind", h.current.Kind())
	h.current = nil
	h.sink.Write(h.ch, 0)
}

// Update advances the active effect to now.
func (h *Host) Update(now clock.Millis) {
	if h.current != nil {
		h.current.Update(now)
	}
}
