package catalog

import (
	"math"

	"github.com/coreman2200/stagefx/internal/effect"
)

// StageWashFX fades the target zones into one colour and holds it.
type StageWashFX struct{ effect.Base }

func NewStageWash(id string) effect.Effect {
	w := &StageWashFX{Base: effect.NewBase(id, StageWash, effect.CatColor, 20, effect.HTP)}
	w.AttackMs, w.SustainMs = 800, effect.Hold
	return w
}

func (w *StageWashFX) Output() (effect.Output, bool) {
	if !w.Phase().Live() {
		return effect.Output{}, false
	}
	out := w.Frame()
	out.Color = hsl(w.ParamFloat("hue", 210), w.ParamFloat("saturation", 90), w.ParamFloat("lightness", 50))
	out.Dimmer = effect.Float(w.Gain() * w.Intensity())
	return out, true
}

// FiberOpticsFX runs a hue gradient across the PARs, one colour per zone.
type FiberOpticsFX struct{ effect.Base }

var fiberZones = []string{"front-left", "front-right", "back-left", "back-right", "floor"}

func NewFiberOptics(id string) effect.Effect {
	f := &FiberOpticsFX{Base: effect.NewBase(id, FiberOptics, effect.CatColor, 40, effect.HTP)}
	f.AttackMs, f.SustainMs = 400, effect.Hold
	return f
}

func (f *FiberOpticsFX) Output() (effect.Output, bool) {
	if !f.Phase().Live() {
		return effect.Output{}, false
	}
	out := f.Frame()
	base := f.ParamFloat("hue", 180)
	drift := f.Elapsed() / 20
	d := f.Gain() * f.Intensity()
	out.ZoneOverrides = make(map[string]effect.ZoneOverride, len(fiberZones))
	for i, z := range fiberZones {
		h := math.Mod(base+drift+float64(i)*(360/float64(len(fiberZones))), 360)
		out.ZoneOverrides[z] = effect.ZoneOverride{
			Color:  hsl(h, 100, 50),
			Dimmer: effect.Float(d),
			Blend:  effect.BlendReplace,
		}
	}
	return out, true
}
