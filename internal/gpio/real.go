//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/led-sequencer/internal/effect"
)

// RealReader reads buttons from actual hardware.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
	raw   []int
}

// NewRealReader requests pins (BCM numbering) as inputs with pull-up.
func NewRealReader(pins []int) (*RealReader, error) {
	if len(pins) == 0 {
		return nil, errors.New("gpio: no input pins")
	}
	chip, err := gpiocdev.NewChip(Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines(pins, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request input pins %v: %w", pins, err)
	}

	return &RealReader{chip: chip, lines: lines, raw: make([]int, len(pins))}, nil
}

// Read returns the pressed state of every pin. Raw 0 = pressed.
func (r *RealReader) Read() ([]bool, error) {
	if err := r.lines.Values(r.raw); err != nil {
		return nil, fmt.Errorf("read input pins: %w", err)
	}
	pressed := make([]bool, len(r.raw))
	for i, v := range r.raw {
		pressed[i] = v == 0
	}
	return pressed, nil
}

// Close reconfigures the pins to input with pull-down, the Pi boot default,
// and releases them.
func (r *RealReader) Close() error {
	var errs []error
	if r.lines != nil {
		if err := r.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure input pins: %w", err))
		}
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input pins: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RealWriter is an effect.Sink that drives one output line per channel. The
// channel number is the BCM pin. Any non-zero level switches the line on.
type RealWriter struct {
	chip    *gpiocdev.Chip
	lines   map[effect.Channel]*gpiocdev.Line
	failing map[effect.Channel]bool
	logger  *slog.Logger
}

// NewRealWriter requests pins as outputs, initially low.
func NewRealWriter(pins []int, logger *slog.Logger) (*RealWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	chip, err := gpiocdev.NewChip(Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	w := &RealWriter{
		chip:    chip,
		lines:   make(map[effect.Channel]*gpiocdev.Line, len(pins)),
		failing: make(map[effect.Channel]bool),
		logger:  logger,
	}
	for _, pin := range pins {
		if _, ok := w.lines[effect.Channel(pin)]; ok {
			continue
		}
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request output pin %d: %w", pin, err)
		}
		w.lines[effect.Channel(pin)] = line
	}
	return w, nil
}

// Write sets the line for ch. Failures are logged once until the channel
// recovers.
func (w *RealWriter) Write(ch effect.Channel, level uint8) {
	line, ok := w.lines[ch]
	if !ok {
		return
	}
	v := 0
	if level > 0 {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		if !w.failing[ch] {
			w.logger.Warn("gpio write failed", "channel", int(ch), "error", err)
		}
		w.failing[ch] = true
		return
	}
	w.failing[ch] = false
}

// Close drives every line low and releases it.
func (w *RealWriter) Close() error {
	var errs []error
	for ch, line := range w.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("park pin %d: %w", int(ch), err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", int(ch), err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", int(ch), err))
		}
	}
	w.lines = nil
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		w.chip = nil
	}
	return errors.Join(errs...)
}
