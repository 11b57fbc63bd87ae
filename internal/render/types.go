package render

import (
	"github.com/coreman2200/stagefx/internal/color"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/zone"
)

// ZoneState is the resolved value of one zone. Every channel is 0..1.
type ZoneState struct {
	Dimmer float64   `json:"dimmer"`
	Color  color.RGB `json:"color"`
	White  float64   `json:"white"`
	Amber  float64   `json:"amber"`
	Strobe float64   `json:"strobe"`
	Pan    float64   `json:"pan"`
	Tilt   float64   `json:"tilt"`
	// Speed is the requested mover transition speed, 0 = fixture default.
	Speed float64 `json:"speed"`
}

// Frame holds one state per leaf zone.
type Frame [zone.Count]ZoneState

// Neutral is the released frame: everything dark, movers centred.
func Neutral() Frame {
	var f Frame
	for i := range f {
		f[i].Pan, f[i].Tilt = 0.5, 0.5
	}
	return f
}

// Channel is a bitmask of ZoneState fields.
type Channel uint8

const (
	ChDimmer Channel = 1 << iota
	ChColor
	ChWhite
	ChAmber
	ChStrobe
	ChPan
	ChTilt

	chLevels = ChDimmer | ChWhite | ChAmber | ChStrobe
	chMove   = ChPan | ChTilt
)

// Patch is one contribution to one zone: the channels in Set carry values.
type Patch struct {
	Set   Channel
	Blend effect.Blend
	State ZoneState
	// Relative movement offsets pan/tilt from the current position.
	Relative bool
}

func (p Patch) Has(c Channel) bool { return p.Set&c != 0 }

// Layer is a resolved effect output ready for the compositor.
type Layer struct {
	Source   string
	Priority int
	Bus      effect.MixBus
	// Composition is the dictator crossfade weight; unset means full.
	Composition    float64
	HasComposition bool
	Zones          [zone.Count]Patch
}

// Weight is the crossfade weight a dictator layer asks for.
func (l *Layer) Weight() float64 {
	if !l.HasComposition {
		return 1
	}
	return l.Composition
}

// Sink receives every composited frame.
type Sink interface {
	Write(Frame) error
	Close() error
}

// BaseSource supplies the ambient look effects are layered over.
type BaseSource interface {
	Base(tMs float64) Frame
}

// StaticBase is a BaseSource that never changes.
type StaticBase Frame

func (s StaticBase) Base(float64) Frame { return Frame(s) }

// ZoneName names the i-th zone of the frame.
func (f *Frame) ZoneName(i int) string { return zone.ID(i).String() }
