// Package sn3218 drives the SN3218 18-channel PWM LED controller (PiGlow and
// similar boards) over I2C.
package sn3218

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/exp/io/i2c"

	"github.com/sweeney/led-sequencer/internal/effect"
)

// Address is the fixed I2C address of the chip.
const Address = 0x54

// Channels is the number of PWM outputs.
const Channels = 18

const (
	regShutdown = 0x00
	regPWM      = 0x01 // first of 18 consecutive PWM registers
	regEnable   = 0x13 // three registers, six channels each
	regUpdate   = 0x16
	regReset    = 0x17
)

// Bus is the register access the driver needs. *i2c.Device satisfies it.
type Bus interface {
	WriteReg(reg byte, buf []byte) error
	Close() error
}

// Driver is an effect.Sink writing PWM levels to an SN3218. Channel numbers
// are output indexes 0-17; other channels are ignored.
type Driver struct {
	bus     Bus
	logger  *slog.Logger
	failing [Channels]bool
}

// Open opens the chip on the given i2c device (e.g. /dev/i2c-1) and
// initialises it.
func Open(dev string, logger *slog.Logger) (*Driver, error) {
	d, err := i2c.Open(&i2c.Devfs{Dev: dev}, Address)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dev, err)
	}
	drv := New(d, logger)
	if err := drv.Setup(); err != nil {
		d.Close()
		return nil, err
	}
	return drv, nil
}

// New wraps an already opened bus. Call Setup before writing.
func New(bus Bus, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{bus: bus, logger: logger}
}

// Setup resets the chip, enables every output at level 0 and leaves
// shutdown mode.
func (d *Driver) Setup() error {
	if err := d.bus.WriteReg(regReset, []byte{0xff}); err != nil {
		return fmt.Errorf("sn3218 reset: %w", err)
	}
	if err := d.bus.WriteReg(regEnable, []byte{0x3f, 0x3f, 0x3f}); err != nil {
		return fmt.Errorf("sn3218 enable outputs: %w", err)
	}
	if err := d.bus.WriteReg(regPWM, make([]byte, Channels)); err != nil {
		return fmt.Errorf("sn3218 clear: %w", err)
	}
	if err := d.bus.WriteReg(regUpdate, []byte{0xff}); err != nil {
		return fmt.Errorf("sn3218 update: %w", err)
	}
	if err := d.bus.WriteReg(regShutdown, []byte{0x01}); err != nil {
		return fmt.Errorf("sn3218 wake: %w", err)
	}
	return nil
}

// Write sets the PWM level of ch and latches it. Failures are logged once
// until the channel recovers.
func (d *Driver) Write(ch effect.Channel, level uint8) {
	if ch < 0 || ch >= Channels {
		return
	}
	err := d.bus.WriteReg(regPWM+byte(ch), []byte{level})
	if err == nil {
		err = d.bus.WriteReg(regUpdate, []byte{0xff})
	}
	if err != nil {
		if !d.failing[ch] {
			d.logger.Warn("sn3218 write failed", "channel", int(ch), "error", err)
		}
		d.failing[ch] = true
		return
	}
	d.failing[ch] = false
}

// Close turns every output off, shuts the chip down and closes the bus.
func (d *Driver) Close() error {
	var errs []error
	if err := d.bus.WriteReg(regPWM, make([]byte, Channels)); err != nil {
		errs = append(errs, fmt.Errorf("sn3218 clear: %w", err))
	}
	if err := d.bus.WriteReg(regUpdate, []byte{0xff}); err != nil {
		errs = append(errs, fmt.Errorf("sn3218 update: %w", err))
	}
	if err := d.bus.WriteReg(regShutdown, []byte{0x00}); err != nil {
		errs = append(errs, fmt.Errorf("sn3218 shutdown: %w", err))
	}
	if err := d.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sn3218 close bus: %w", err))
	}
	return errors.Join(errs...)
}
