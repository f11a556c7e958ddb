package main

import (
	"fmt"
	"log/slog"

	"github.com/sweeney/led-sequencer/internal/effect"
	"github.com/sweeney/led-sequencer/internal/gpio"
	"github.com/sweeney/led-sequencer/internal/show"
	"github.com/sweeney/led-sequencer/internal/sn3218"
)

// Sink kinds accepted by --sink.
const (
	sinkGPIO   = "gpio"
	sinkSN3218 = "sn3218"
	sinkLog    = "log"
)

// logSink prints every write. Used for bring-up without hardware.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) Write(ch effect.Channel, level uint8) {
	s.logger.Debug("write", "channel", int(ch), "level", level)
}

// closeLogged runs closeFn and logs a failure; for use in defer.
func closeLogged(what string, closeFn func() error, logger *slog.Logger) {
	if err := closeFn(); err != nil {
		logger.Warn("close "+what, "error", err)
	}
}

// openSink opens the output named by kind for the show's channels. The
// returned close function is never nil.
func openSink(kind string, cfg *show.Config, i2cDev string, logger *slog.Logger) (effect.Sink, func() error, error) {
	nop := func() error { return nil }

	switch kind {
	case sinkLog:
		return logSink{logger: logger.With("sink", sinkLog)}, nop, nil

	case sinkGPIO:
		pins := make([]int, len(cfg.Channels))
		for i, ch := range cfg.Channels {
			pins[i] = ch.Output
		}
		w, err := gpio.NewRealWriter(pins, logger)
		if err != nil {
			return nil, nop, fmt.Errorf("open gpio sink: %w", err)
		}
		return w, w.Close, nil

	case sinkSN3218:
		for _, ch := range cfg.Channels {
			if ch.Output < 0 || ch.Output >= sn3218.Channels {
				return nil, nop, fmt.Errorf("channel %q: output %d out of range for sn3218", ch.Name, ch.Output)
			}
		}
		d, err := sn3218.Open(i2cDev, logger)
		if err != nil {
			return nil, nop, fmt.Errorf("open sn3218 sink: %w", err)
		}
		return d, d.Close, nil

	default:
		return nil, nop, fmt.Errorf("unknown sink %q (want %s, %s or %s)", kind, sinkGPIO, sinkSN3218, sinkLog)
	}
}
