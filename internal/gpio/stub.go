//go:build !linux

package gpio

import (
	"errors"
	"log/slog"

	"github.com/sweeney/led-sequencer/internal/effect"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(pins []int) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() ([]bool, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// RealWriter is not available on non-Linux platforms.
type RealWriter struct{}

// NewRealWriter returns an error on non-Linux platforms.
func NewRealWriter(pins []int, logger *slog.Logger) (*RealWriter, error) {
	return nil, errUnsupported
}

// Write does nothing on non-Linux platforms.
func (w *RealWriter) Write(ch effect.Channel, level uint8) {}

// Close is not implemented on non-Linux platforms.
func (w *RealWriter) Close() error {
	return nil
}
