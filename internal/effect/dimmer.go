package effect

import "github.com/sweeney/led-sequencer/internal/clock"

// Dimmer holds the commanded brightness, optionally strobing between the
// commanded level and off.
type Dimmer struct {
	output
	strobe uint16
	period clock.Millis
	sched  schedule
	nextOn bool
}

// NewDimmer creates a steady Dimmer on ch, initially off.
func NewDimmer(ch Channel, sink Sink) *Dimmer {
	d := &Dimmer{output: newOutput(ch, sink, 0)}
	d.restart()
	return d
}

func (d *Dimmer) Kind() string { return KindDimmer }

// Strobe returns the strobe frequency in Hz; zero means steady.
func (d *Dimmer) Strobe() uint16 { return d.strobe }

// SetStrobe sets the strobe frequency in Hz, clamped to MaxFrequency.
// Each period is split evenly between on and off.
func (d *Dimmer) SetStrobe(frequency uint16) {
	if frequency > MaxFrequency {
		frequency = MaxFrequency
	}
	d.strobe = frequency
	if frequency > 0 {
		d.period = clock.Millis(500 / uint32(frequency))
	}
}

func (d *Dimmer) restart() {
	d.sched.arm()
	d.nextOn = true
}

func (d *Dimmer) Enter() {
	d.restart()
	d.resync()
}

func (d *Dimmer) Update(now clock.Millis) {
	if d.strobe == 0 {
		d.drive(d.brightness)
		return
	}
	if !d.sched.due(now, d.period) {
		return
	}
	if d.nextOn {
		d.drive(d.brightness)
	} else {
		d.drive(0)
	}
	d.nextOn = !d.nextOn
}
