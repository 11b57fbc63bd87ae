package catalog

import (
	"github.com/coreman2200/stagefx/internal/effect"
)

// CoreMeltdownFX takes over the whole rig in red, fading in and out over the
// ambient look, and parks the movers dark.
type CoreMeltdownFX struct{ effect.Base }

func NewCoreMeltdown(id string) effect.Effect {
	c := &CoreMeltdownFX{Base: effect.NewBase(id, CoreMeltdown, effect.CatComposite, 90, effect.Dictator)}
	c.AttackMs, c.SustainMs, c.DecayMs = 1500, 2000, 1500
	return c
}

func (c *CoreMeltdownFX) Output() (effect.Output, bool) {
	if !c.Phase().Live() {
		return effect.Output{}, false
	}
	out := c.Frame()
	pulse := 0.75 + 0.25*effect.SinePulse(c.Elapsed(), 60000/effect.BPM(c.Musical()), 0)
	out.Dimmer = effect.Float(pulse * c.Intensity())
	out.Color = hsl(c.ParamFloat("hue", 8), 100, 45)
	out.Composition = effect.Float(c.Gain())
	out.ZoneOverrides = map[string]effect.ZoneOverride{
		"all-movers": {Dimmer: effect.Float(0), Blend: effect.BlendReplace},
	}
	return out, true
}

// BinaryGlitchFX flickers zones on and off in 50 ms slots. The pattern comes
// from the seeded generator, so a replay with the same seed is identical.
// At least one zone is lit in every slot.
type BinaryGlitchFX struct {
	effect.Base
	slot int
	hue  float64
	on   map[string]bool
}

var glitchPalettes = map[string]float64{"cyan": 185, "magenta": 300, "acid": 95}

const glitchSlotMs = 50

var glitchZones = []string{"front-left", "front-right", "back-left", "back-right", "floor", "center", "air"}

func NewBinaryGlitch(id string) effect.Effect {
	g := &BinaryGlitchFX{Base: effect.NewBase(id, BinaryGlitch, effect.CatOptics, 60, effect.HTP)}
	g.SustainMs, g.DecayMs = 1200, 150
	return g
}

func (g *BinaryGlitchFX) Trigger(cfg effect.TriggerConfig) {
	if !g.Base.Start(cfg) {
		return
	}
	g.slot = 0
	g.on = make(map[string]bool, len(glitchZones))
	g.roll()
}

// Advance draws a new pattern for every slot boundary crossed.
func (g *BinaryGlitchFX) Advance(deltaMs float64) {
	g.Base.Advance(deltaMs)
	if !g.Phase().Live() {
		return
	}
	for s := int(g.Elapsed() / glitchSlotMs); g.slot < s; {
		g.slot++
		g.roll()
	}
}

func (g *BinaryGlitchFX) roll() {
	rng := g.Rand()
	density := effect.EnergyFactor(g.Musical(), 0.3, 0.7)
	for _, z := range glitchZones {
		g.on[z] = rng.Chance(density)
	}
	g.on[glitchZones[rng.Intn(len(glitchZones))]] = true
	base, ok := glitchPalettes[g.ParamString("palette", "cyan")]
	if !ok {
		base = glitchPalettes["cyan"]
	}
	g.hue = base + rng.Range(-12, 12)
}

func (g *BinaryGlitchFX) Output() (effect.Output, bool) {
	if !g.Phase().Live() {
		return effect.Output{}, false
	}
	out := g.Frame()
	d := g.Gain() * g.Intensity()
	out.ZoneOverrides = make(map[string]effect.ZoneOverride, len(glitchZones))
	for _, z := range glitchZones {
		if !g.on[z] {
			continue
		}
		out.ZoneOverrides[z] = effect.ZoneOverride{
			Color:  hsl(g.hue, 100, 60),
			Dimmer: effect.Float(d),
			Blend:  effect.BlendMax,
		}
	}
	return out, true
}
