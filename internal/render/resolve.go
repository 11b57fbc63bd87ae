package render

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/color"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/zone"
)

// MaxStrobeHz maps onto a full strobe channel.
const MaxStrobeHz = 25

// ResolveStats counts problems recovered while resolving outputs.
type ResolveStats struct {
	UnknownZones uint64 `json:"unknownZones"`
	Clamped      uint64 `json:"clamped"`
}

// Resolver turns effect outputs into compositor layers: the envelope scales
// the level channels, colours go from HSL to RGB and zone names expand to
// leaf zones.
type Resolver struct {
	// InjectWhite lights the white channel at the dimmer level when an output
	// sets a dimmer but neither colour nor white.
	InjectWhite bool
	Stats       ResolveStats
}

// Resolve converts one output. envelope multiplies dimmer, white and amber,
// and the intensity of an output that lights zones without a dimmer.
func (r *Resolver) Resolve(out effect.Output, priority int, bus effect.MixBus, envelope float64) Layer {
	l := Layer{Source: out.EffectID, Priority: priority, Bus: bus}
	if math.IsNaN(envelope) || envelope < 0 {
		r.Stats.Clamped++
		envelope = 0
	}
	if out.Composition != nil {
		l.HasComposition = true
		l.Composition = r.clamp(*out.Composition)
	}

	overrides, named := r.overrideZones(out)

	flat := r.flatPatch(out, envelope)
	if flat.Set != 0 {
		targets := r.parseZones(out.Zones)
		if len(out.Zones) == 0 {
			targets = zone.All
		}
		for _, id := range targets.IDs() {
			if named.Has(id) {
				continue
			}
			l.Zones[id] = flat
		}
	}

	for _, o := range overrides {
		p := r.overridePatch(o.ov, envelope)
		if p.Set == 0 {
			continue
		}
		for _, id := range o.set.IDs() {
			l.Zones[id] = overlay(l.Zones[id], p)
		}
	}
	return l
}

type namedOverride struct {
	name string
	set  zone.Set
	ov   effect.ZoneOverride
}

// overrideZones parses override keys. Wider groups come first so a leaf
// override inside the same output lands on top of its aggregate.
func (r *Resolver) overrideZones(out effect.Output) ([]namedOverride, zone.Set) {
	var named zone.Set
	list := make([]namedOverride, 0, len(out.ZoneOverrides))
	for name, ov := range out.ZoneOverrides {
		s, err := zone.Parse(name)
		if err != nil {
			r.Stats.UnknownZones++
			log.Debug().Err(err).Str("effect", out.EffectID).Msg("override on unknown zone dropped")
			continue
		}
		named |= s
		list = append(list, namedOverride{name: name, set: s, ov: ov})
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].set.Len(), list[j].set.Len()
		if a != b {
			return a > b
		}
		return list[i].name < list[j].name
	})
	return list, named
}

func (r *Resolver) parseZones(names []string) zone.Set {
	var s zone.Set
	for _, n := range names {
		z, err := zone.Parse(n)
		if err != nil {
			r.Stats.UnknownZones++
			log.Debug().Err(err).Msg("output zone dropped")
			continue
		}
		s |= z
	}
	return s
}

func (r *Resolver) flatPatch(out effect.Output, env float64) Patch {
	p := Patch{Blend: effect.BlendMax}
	if out.Dimmer != nil {
		p.Set |= ChDimmer
		p.State.Dimmer = r.clamp(*out.Dimmer * env)
	}
	if out.White != nil {
		p.Set |= ChWhite
		p.State.White = r.clamp(*out.White * env)
	}
	if out.Amber != nil {
		p.Set |= ChAmber
		p.State.Amber = r.clamp(*out.Amber * env)
	}
	if out.Color != nil {
		p.Set |= ChColor
		p.State.Color = color.FromHSL(out.Color.H, out.Color.S, out.Color.L)
	}
	if out.Strobe != nil {
		p.Set |= ChStrobe
		p.State.Strobe = r.clamp(*out.Strobe / MaxStrobeHz)
	}
	// Without a dimmer, lit channels follow the output's intensity.
	if out.Dimmer == nil && p.Set&^chMove != 0 {
		p.Set |= ChDimmer
		p.State.Dimmer = r.clamp(out.Intensity * env)
	}
	r.movement(&p, out.Movement)
	r.injectWhite(&p)
	return p
}

func (r *Resolver) overridePatch(ov effect.ZoneOverride, env float64) Patch {
	p := Patch{Blend: ov.Blend}
	if p.Blend == "" {
		p.Blend = effect.BlendMax
	}
	if ov.Dimmer != nil {
		p.Set |= ChDimmer
		p.State.Dimmer = r.clamp(*ov.Dimmer * env)
	}
	if ov.White != nil {
		p.Set |= ChWhite
		p.State.White = r.clamp(*ov.White * env)
	}
	if ov.Amber != nil {
		p.Set |= ChAmber
		p.State.Amber = r.clamp(*ov.Amber * env)
	}
	if ov.Color != nil {
		p.Set |= ChColor
		p.State.Color = color.FromHSL(ov.Color.H, ov.Color.S, ov.Color.L)
	}
	r.movement(&p, ov.Movement)
	r.injectWhite(&p)
	return p
}

func (r *Resolver) movement(p *Patch, m *effect.Movement) {
	if m == nil {
		return
	}
	p.Relative = !m.Absolute
	if m.Pan != nil {
		p.Set |= ChPan
		p.State.Pan = r.axis(*m.Pan, p.Relative)
	}
	if m.Tilt != nil {
		p.Set |= ChTilt
		p.State.Tilt = r.axis(*m.Tilt, p.Relative)
	}
	p.State.Speed = r.clamp(m.Speed)
}

// axis clamps absolute positions to 0..1 and offsets to -1..1.
func (r *Resolver) axis(v float64, relative bool) float64 {
	if !relative {
		return r.clamp(v)
	}
	if math.IsNaN(v) {
		r.Stats.Clamped++
		return 0
	}
	if v < -1 || v > 1 {
		r.Stats.Clamped++
		return math.Max(-1, math.Min(1, v))
	}
	return v
}

func (r *Resolver) injectWhite(p *Patch) {
	if !r.InjectWhite || !p.Has(ChDimmer) || p.Has(ChColor) || p.Has(ChWhite) {
		return
	}
	if p.State.Dimmer > 0 {
		p.Set |= ChWhite
		p.State.White = p.State.Dimmer
	}
}

func (r *Resolver) clamp(v float64) float64 {
	c := clamp01(v)
	if c != v {
		r.Stats.Clamped++
	}
	return c
}

// overlay writes the channels set in top over p.
func overlay(p, top Patch) Patch {
	if p.Set == 0 {
		return top
	}
	p.Blend = top.Blend
	p.State = writeChannels(p.State, top.State, top.Set)
	if top.Set&chMove != 0 {
		p.Relative = top.Relative
	}
	p.Set |= top.Set
	return p
}

func writeChannels(dst, src ZoneState, set Channel) ZoneState {
	if set&ChDimmer != 0 {
		dst.Dimmer = src.Dimmer
	}
	if set&ChColor != 0 {
		dst.Color = src.Color
	}
	if set&ChWhite != 0 {
		dst.White = src.White
	}
	if set&ChAmber != 0 {
		dst.Amber = src.Amber
	}
	if set&ChStrobe != 0 {
		dst.Strobe = src.Strobe
	}
	if set&ChPan != 0 {
		dst.Pan = src.Pan
	}
	if set&ChTilt != 0 {
		dst.Tilt = src.Tilt
	}
	if set&chMove != 0 {
		dst.Speed = src.Speed
	}
	return dst
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
