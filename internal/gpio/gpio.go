// Package gpio reads button inputs and drives on/off LED outputs through the
// Linux GPIO character device. The fake implementations allow testing
// without hardware.
package gpio

// Reader reads button inputs.
type Reader interface {
	// Read returns the logical state of every configured input, in the
	// order the pins were given. Buttons are wired active-low against the
	// internal pull-up, so raw 0 reads as pressed (true).
	Read() ([]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Chip is the GPIO chip used on the Raspberry Pi.
const Chip = "gpiochip0"
