package effect

import "github.com/sweeney/led-sequencer/internal/clock"

const (
	defaultFlickerPeriod = 60

	// flicker-down draws from [0, flickerSpan) above a floor of flickerFloor
	// minus however far the commanded level sits below full.
	flickerSpan  = 120
	flickerFloor = 135
)

// FlickerDown picks a new level near full brightness every period,
// pulled down by how far the commanded brightness is below 255.
type FlickerDown struct {
	output
	rng    Source
	period clock.Millis
	sched  schedule
}

// NewFlickerDown creates a FlickerDown on ch commanded to full brightness.
func NewFlickerDown(ch Channel, sink Sink, rng Source) *FlickerDown {
	f := &FlickerDown{
		output: newOutput(ch, sink, 255),
		rng:    rng,
		period: defaultFlickerPeriod,
	}
	f.sched.arm()
	return f
}

func (f *FlickerDown) Kind() string { return KindFlickerDown }

func (f *FlickerDown) Period() clock.Millis { return f.period }

func (f *FlickerDown) SetPeriod(period clock.Millis) { f.period = period }

func (f *FlickerDown) Enter() {
	f.sched.arm()
	f.resync()
}

func (f *FlickerDown) Update(now clock.Millis) {
	if !f.sched.due(now, f.period) {
		return
	}
	dim := 255 - uint32(f.brightness)
	if dim > flickerFloor {
		dim = flickerFloor
	}
	level := Between(f.rng, 0, flickerSpan) + flickerFloor - dim
	f.drive(uint8(level))
}

// FlickerUp samples a level inside an intensity window below the commanded
// brightness every period. Samples under the threshold snap to the base
// brightness, which gives the sputtering look of a lamp coming on.
type FlickerUp struct {
	output
	rng       Source
	intensity uint8
	threshold uint8
	base      uint8
	period    clock.Millis
	sched     schedule
}

// NewFlickerUp creates a FlickerUp on ch with the stock window settings.
func NewFlickerUp(ch Channel, sink Sink, rng Source) *FlickerUp {
	f := &FlickerUp{
		output:    newOutput(ch, sink, 255),
		rng:       rng,
		intensity: 45,
		threshold: 30,
		period:    defaultFlickerPeriod,
	}
	f.sched.arm()
	return f
}

func (f *FlickerUp) Kind() string { return KindFlickerUp }

func (f *FlickerUp) Period() clock.Millis { return f.period }

func (f *FlickerUp) SetPeriod(period clock.Millis) { f.period = period }

func (f *FlickerUp) Intensity() uint8 { return f.intensity }

func (f *FlickerUp) SetIntensity(intensity uint8) { f.intensity = intensity }

func (f *FlickerUp) Threshold() uint8 { return f.threshold }

func (f *FlickerUp) SetThreshold(threshold uint8) { f.threshold = threshold }

func (f *FlickerUp) BaseBrightness() uint8 { return f.base }

func (f *FlickerUp) SetBaseBrightness(level uint8) { f.base = level }

func (f *FlickerUp) Enter() {
	f.sched.arm()
	f.resync()
}

func (f *FlickerUp) Update(now clock.Millis) {
	if !f.sched.due(now, f.period) {
		return
	}

	level := uint8(Between(f.rng, 0, uint32(f.intensity)))
	if level < f.threshold {
		level = min(f.base, f.brightness)
	} else if f.intensity < f.brightness {
		level += f.brightness - f.intensity
	}
	f.drive(level)
}
