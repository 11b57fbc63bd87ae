package catalog

import (
	"math"

	"github.com/coreman2200/stagefx/internal/effect"
)

// StrobeBurstFX flashes white for two beats, faster and brighter on drops.
type StrobeBurstFX struct {
	effect.Base
	rate float64
}

func NewStrobeBurst(id string) effect.Effect {
	s := &StrobeBurstFX{Base: effect.NewBase(id, StrobeBurst, effect.CatIntensity, 80, effect.HTP)}
	s.DecayMs = 150
	s.Retrigger = true
	return s
}

func (s *StrobeBurstFX) Trigger(cfg effect.TriggerConfig) {
	if !s.Base.Start(cfg) {
		return
	}
	ctx := s.Musical()
	s.SustainMs = effect.CycleMs(ctx, 2, 3000)
	s.rate = 8 + 12*effect.EnergyFactor(ctx, 0, 1)
	if effect.InDrop(ctx) {
		s.rate = 25
	}
}

func (s *StrobeBurstFX) Output() (effect.Output, bool) {
	if !s.Phase().Live() {
		return effect.Output{}, false
	}
	out := s.Frame()
	d := s.Gain() * effect.IntensityFromZScore(s.Musical(), s.Intensity(), 0.3)
	out.Dimmer = effect.Float(d)
	out.White = effect.Float(d)
	out.Strobe = effect.Float(s.rate)
	return out, true
}

// DeepBreathFX is a slow sine swell that holds until released.
type DeepBreathFX struct{ effect.Base }

func NewDeepBreath(id string) effect.Effect {
	b := &DeepBreathFX{Base: effect.NewBase(id, DeepBreath, effect.CatIntensity, 30, effect.HTP)}
	b.AttackMs, b.SustainMs = 600, effect.Hold
	return b
}

func (b *DeepBreathFX) Output() (effect.Output, bool) {
	if !b.Phase().Live() {
		return effect.Output{}, false
	}
	out := b.Frame()
	period := effect.CycleMs(b.Musical(), 8, 12000)
	breath := 0.2 + 0.8*effect.SinePulse(b.Elapsed(), period, 0)
	out.Dimmer = effect.Float(breath * b.Gain() * b.Intensity())
	if h := b.ParamFloat("hue", -1); h >= 0 {
		out.Color = hsl(h, b.ParamFloat("saturation", 80), 50)
	}
	return out, true
}

// BlackoutFX takes the rig dark by crossfading the base to zero.
type BlackoutFX struct{ effect.Base }

func NewBlackout(id string) effect.Effect {
	b := &BlackoutFX{Base: effect.NewBase(id, Blackout, effect.CatIntensity, 100, effect.Dictator)}
	b.AttackMs, b.SustainMs = 300, effect.Hold
	return b
}

func (b *BlackoutFX) Output() (effect.Output, bool) {
	if !b.Phase().Live() {
		return effect.Output{}, false
	}
	out := b.Frame()
	out.Dimmer = effect.Float(0)
	out.White = effect.Float(0)
	out.Amber = effect.Float(0)
	out.Color = hsl(0, 0, 0)
	out.Composition = effect.Float(b.Gain() * b.Intensity())
	return out, true
}

// ChaseFX walks a lit PAR around the stage once per beat.
type ChaseFX struct{ effect.Base }

var chaseOrder = []string{"front-left", "front-right", "back-right", "back-left"}

func NewChase(id string) effect.Effect {
	c := &ChaseFX{Base: effect.NewBase(id, Chase, effect.CatIntensity, 35, effect.HTP)}
	c.SustainMs = effect.Hold
	return c
}

func (c *ChaseFX) Output() (effect.Output, bool) {
	if !c.Phase().Live() {
		return effect.Output{}, false
	}
	out := c.Frame()
	beat := 60000 / effect.BPM(c.Musical())
	step := int(math.Floor(c.Elapsed()/beat)) % len(chaseOrder)
	d := c.Gain() * c.Intensity()
	out.ZoneOverrides = map[string]effect.ZoneOverride{
		chaseOrder[step]: {Dimmer: effect.Float(d), White: effect.Float(d), Blend: effect.BlendMax},
	}
	return out, true
}
