package effect

import (
	"github.com/sweeney/led-sequencer/internal/clock"
	"github.com/sweeney/led-sequencer/internal/waveform"
)

// SineWave walks waveform.Sine, one point per step. The step length comes
// from the frequency and a denominator that subdivides the cycle; a
// denominator of n plays every point at n times the step rate of 1.
type SineWave struct {
	output
	frequency   uint16
	denominator uint8
	minimum     uint8
	period      clock.Millis
	sched       schedule
	index       int
}

// NewSineWave creates a SineWave on ch. It is steady until a frequency is set.
func NewSineWave(ch Channel, sink Sink) *SineWave {
	s := &SineWave{output: newOutput(ch, sink, 0), denominator: 1}
	s.restart()
	return s
}

func (s *SineWave) Kind() string { return KindSine }

func (s *SineWave) Frequency() uint16 { return s.frequency }

func (s *SineWave) Denominator() uint8 { return s.denominator }

// SetFrequency sets the cycle frequency in Hz, clamped to MaxFrequency, and
// the cycle denominator, clamped to [1, waveform.SineLength].
func (s *SineWave) SetFrequency(frequency uint16, denominator uint8) {
	if frequency > MaxFrequency {
		frequency = MaxFrequency
	}
	if denominator == 0 {
		denominator = 1
	}
	if denominator > waveform.SineLength {
		denominator = waveform.SineLength
	}
	s.frequency = frequency
	s.denominator = denominator

	if frequency > 0 {
		points := uint32(waveform.SineLength / int(denominator))
		s.period = clock.Millis((1000 / uint32(frequency)) / points)
	}
}

func (s *SineWave) MinimumBrightness() uint8 { return s.minimum }

// SetMinimumBrightness sets the floor every sampled point is raised to.
func (s *SineWave) SetMinimumBrightness(level uint8) { s.minimum = level }

func (s *SineWave) restart() {
	s.sched.arm()
	s.index = 0
}

func (s *SineWave) Enter() {
	s.restart()
	s.resync()
}

func (s *SineWave) Update(now clock.Millis) {
	if s.frequency == 0 {
		s.drive(s.brightness)
		return
	}
	if !s.sched.due(now, s.period) {
		return
	}

	s.drive(max(waveform.Sine[s.index], s.minimum))
	s.index = (s.index + 1) % waveform.SineLength
}
