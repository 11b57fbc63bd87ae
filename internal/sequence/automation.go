package sequence

import "github.com/coreman2200/stagefx/internal/effect"

// Eval reads the lane at clip-local time localMs.
func (l AutomationLane) Eval(localMs float64) float64 {
	if len(l.Points) == 0 {
		return l.Default
	}
	return Interpolate(l.Points, localMs, AutomationEasing)
}

// automate overwrites output fields with the clip's automation lanes and
// returns the intensity multiplier for the envelope. Pointer fields are
// copied before writing so effect state is never touched.
func automate(out *effect.Output, lanes map[string]AutomationLane, localMs float64) float64 {
	gain := 1.0
	if len(lanes) == 0 {
		return gain
	}
	for target, lane := range lanes {
		v := lane.Eval(localMs)
		switch target {
		case AutoDimmer:
			out.Dimmer = effect.Float(v)
		case AutoWhite:
			out.White = effect.Float(v)
		case AutoAmber:
			out.Amber = effect.Float(v)
		case AutoStrobe:
			out.Strobe = effect.Float(v)
		case AutoComposition:
			out.Composition = effect.Float(v)
		case AutoIntensity:
			gain = v
		case AutoHue, AutoSaturation, AutoLightness:
			c := effect.HSL{S: 100, L: 50}
			if out.Color != nil {
				c = *out.Color
			}
			switch target {
			case AutoHue:
				c.H = v
			case AutoSaturation:
				c.S = v
			default:
				c.L = v
			}
			out.Color = &c
		case AutoPan, AutoTilt:
			m := effect.Movement{Absolute: true}
			if out.Movement != nil {
				m = *out.Movement
			}
			if target == AutoPan {
				m.Pan = effect.Float(v)
			} else {
				m.Tilt = effect.Float(v)
			}
			out.Movement = &m
		}
	}
	return gain
}
