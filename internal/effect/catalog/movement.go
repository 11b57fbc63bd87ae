package catalog

import (
	"math"

	"github.com/coreman2200/stagefx/internal/effect"
)

// AcidSweepFX swings the movers in mirrored arcs with an acid green beam.
// The sweep direction is drawn from the seeded generator.
type AcidSweepFX struct {
	effect.Base
	dir float64
}

func NewAcidSweep(id string) effect.Effect {
	a := &AcidSweepFX{Base: effect.NewBase(id, AcidSweep, effect.CatMovement, 50, effect.HTP)}
	a.AttackMs, a.DecayMs = 200, 400
	return a
}

func (a *AcidSweepFX) Trigger(cfg effect.TriggerConfig) {
	if !a.Base.Start(cfg) {
		return
	}
	a.SustainMs = effect.CycleMs(a.Musical(), 8, 10000)
	a.dir = 1
	if a.Rand().Chance(0.5) {
		a.dir = -1
	}
}

func (a *AcidSweepFX) Output() (effect.Output, bool) {
	if !a.Phase().Live() {
		return effect.Output{}, false
	}
	out := a.Frame()
	cycle := effect.CycleMs(a.Musical(), 4, 6000)
	s := math.Sin(2 * math.Pi * a.Elapsed() / cycle)
	pan := 0.5 + 0.4*s*a.dir
	tilt := 0.35 + 0.15*math.Abs(s)
	d := a.Gain() * a.Intensity()
	speed := effect.EnergyFactor(a.Musical(), 0.4, 1)
	out.ZoneOverrides = map[string]effect.ZoneOverride{
		"movers-left": {
			Color:    hsl(95, 100, 50),
			Dimmer:   effect.Float(d),
			Movement: &effect.Movement{Pan: effect.Float(pan), Tilt: effect.Float(tilt), Absolute: true, Speed: speed},
			Blend:    effect.BlendMax,
		},
		"movers-right": {
			Color:    hsl(95, 100, 50),
			Dimmer:   effect.Float(d),
			Movement: &effect.Movement{Pan: effect.Float(1 - pan), Tilt: effect.Float(tilt), Absolute: true, Speed: speed},
			Blend:    effect.BlendMax,
		},
	}
	return out, true
}
