// Package ambient provides the base looks effects are layered over.
package ambient

import (
	"math"
	"sort"

	"github.com/coreman2200/stagefx/internal/color"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/zone"
)

// Look is the resting colour and level of one zone.
type Look struct {
	H      float64 `yaml:"h" json:"h"`
	S      float64 `yaml:"s" json:"s"`
	L      float64 `yaml:"l" json:"l"`
	Dimmer float64 `yaml:"dimmer" json:"dimmer"`
}

// Solid is a static ambient wash with an optional slow pulse.
type Solid struct {
	frame  render.Frame
	preset string
	// PulseHz breathes every dimmer between half and full level when > 0.
	PulseHz float64
}

// New builds a Solid from per-zone looks. Keys may name aggregates; wider
// groups are applied first so leaf entries win. Unknown names are returned.
func New(looks map[string]Look) (*Solid, []string) {
	s := &Solid{frame: render.Neutral()}
	type entry struct {
		key string
		set zone.Set
		lk  Look
	}
	var (
		list    []entry
		unknown []string
	)
	for k, lk := range looks {
		set, err := zone.Parse(k)
		if err != nil {
			unknown = append(unknown, k)
			continue
		}
		list = append(list, entry{k, set, lk})
	}
	sort.Slice(list, func(i, j int) bool {
		if a, b := list[i].set.Len(), list[j].set.Len(); a != b {
			return a > b
		}
		return list[i].key < list[j].key
	})
	for _, e := range list {
		for _, id := range e.set.IDs() {
			z := &s.frame[id]
			z.Color = color.FromHSL(e.lk.H, e.lk.S, e.lk.L)
			z.Dimmer = clamp01(e.lk.Dimmer)
		}
	}
	sort.Strings(unknown)
	return s, unknown
}

func Presets() []string { return []string{"Warm", "Cool", "Red", "Blue", "Dark"} }

// Preset is the last preset applied, empty for the configured looks.
func (s *Solid) Preset() string { return s.preset }

// ApplyPreset recolours every zone, keeping dimmers. Dark zeroes the dimmers.
func (s *Solid) ApplyPreset(name string) bool {
	var c color.RGB
	switch name {
	case "Warm":
		c = color.FromHSL(30, 80, 50)
	case "Cool":
		c = color.FromHSL(210, 60, 50)
	case "Red":
		c = color.RGB{R: 1}
	case "Blue":
		c = color.RGB{B: 1}
	case "Dark":
		for i := range s.frame {
			s.frame[i].Dimmer = 0
		}
		s.preset = name
		return true
	default:
		return false
	}
	for i := range s.frame {
		s.frame[i].Color = c
	}
	s.preset = name
	return true
}

// Base implements render.BaseSource.
func (s *Solid) Base(tMs float64) render.Frame {
	if s.PulseHz <= 0 {
		return s.frame
	}
	dark := s.frame
	for i := range dark {
		dark[i].Dimmer *= 0.5
	}
	var out render.Frame
	alpha := 0.5 + 0.5*math.Sin(2*math.Pi*s.PulseHz*tMs/1000)
	render.Mix(&out, &dark, &s.frame, alpha)
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
