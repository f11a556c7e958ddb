package effect

import "github.com/sweeney/led-sequencer/internal/clock"

// MaxSparkleIntensity is the number of sparkle tiers.
const MaxSparkleIntensity = 3

type dwell struct {
	min, max uint32
}

// sparkleTiers holds the on and off dwell ranges in ms, indexed by intensity.
var sparkleTiers = [MaxSparkleIntensity + 1]struct {
	on, off dwell
}{
	{},
	{on: dwell{20, 75}, off: dwell{200, 1000}},
	{on: dwell{20, 100}, off: dwell{60, 400}},
	{on: dwell{30, 200}, off: dwell{50, 300}},
}

// Sparkle flashes the commanded brightness with random on and off dwell
// times. Intensity 0 is steady output.
type Sparkle struct {
	output
	rng       Source
	intensity uint8
	period    clock.Millis
	sched     schedule
	on        bool
}

// NewSparkle creates a Sparkle on ch drawing dwell times from rng.
func NewSparkle(ch Channel, sink Sink, rng Source) *Sparkle {
	s := &Sparkle{output: newOutput(ch, sink, 0), rng: rng}
	s.restart()
	return s
}

func (s *Sparkle) Kind() string { return KindSparkle }

func (s *Sparkle) Intensity() uint8 { return s.intensity }

// SetIntensity selects the dwell tier, clamped to MaxSparkleIntensity.
func (s *Sparkle) SetIntensity(intensity uint8) {
	if intensity > MaxSparkleIntensity {
		intensity = MaxSparkleIntensity
	}
	s.intensity = intensity
}

func (s *Sparkle) restart() {
	s.sched.arm()
	s.period = 0
	s.on = true
}

func (s *Sparkle) Enter() {
	s.restart()
	s.resync()
}

func (s *Sparkle) Update(now clock.Millis) {
	if s.intensity == 0 {
		s.drive(s.brightness)
		return
	}
	if !s.sched.due(now, s.period) {
		return
	}

	tier := sparkleTiers[s.intensity]
	if s.on {
		s.drive(s.brightness)
		s.period = clock.Millis(Between(s.rng, tier.on.min, tier.on.max))
	} else {
		s.drive(0)
		s.period = clock.Millis(Between(s.rng, tier.off.min, tier.off.max))
	}
	s.on = !s.on
}
