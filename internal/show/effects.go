package show

import (
	"github.com/sweeney/led-sequencer/internal/clock"
	"github.com/sweeney/led-sequencer/internal/effect"
)

func newEffect(ec EffectConfig, ch effect.Channel, sink effect.Sink, rng effect.Source) effect.Effect {
	var e effect.Effect

	switch ec.Kind {
	case effect.KindDimmer:
		d := effect.NewDimmer(ch, sink)
		d.SetStrobe(clamp16(ec.Strobe))
		e = d
	case effect.KindSparkle:
		s := effect.NewSparkle(ch, sink, rng)
		if ec.Intensity != nil {
			s.SetIntensity(clamp8(*ec.Intensity))
		}
		e = s
	case effect.KindFlickerDown:
		f := effect.NewFlickerDown(ch, sink, rng)
		if ec.PeriodMs > 0 {
			f.SetPeriod(clock.Millis(ec.PeriodMs))
		}
		e = f
	case effect.KindFlickerUp:
		f := effect.NewFlickerUp(ch, sink, rng)
		if ec.PeriodMs > 0 {
			f.SetPeriod(clock.Millis(ec.PeriodMs))
		}
		if ec.Intensity != nil {
			f.SetIntensity(clamp8(*ec.Intensity))
		}
		if ec.Threshold != nil {
			f.SetThreshold(clamp8(*ec.Threshold))
		}
		f.SetBaseBrightness(clamp8(ec.Base))
		e = f
	case effect.KindSine:
		s := effect.NewSineWave(ch, sink)
		s.SetFrequency(clamp16(ec.Frequency), clamp8(ec.Denominator))
		s.SetMinimumBrightness(clamp8(ec.Minimum))
		e = s
	case effect.KindHeartbeat:
		h := effect.NewHeartbeat(ch, sink)
		if ec.SpaceMs > 0 {
			h.SetSpace(clock.Millis(ec.SpaceMs))
		}
		e = h
	default:
		return nil
	}

	if ec.Brightness != nil {
		e.SetBrightness(clamp8(*ec.Brightness))
	}
	return e
}

func clamp8(v int) uint8 {
	return uint8(min(max(v, 0), 255))
}

func clamp16(v int) uint16 {
	return uint16(min(max(v, 0), 65535))
}
