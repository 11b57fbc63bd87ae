// Package tests runs rig check patterns that replace the show output
// while they play.
package tests

import (
	"github.com/coreman2200/stagefx/internal/color"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/zone"
)

type Kind string

const (
	None       Kind = ""
	ZoneWalk   Kind = "zone_walk"
	RGBTest    Kind = "rgb_channels"
	MoversHome Kind = "movers_home"
)

// Kinds lists the runnable patterns.
func Kinds() []Kind { return []Kind{ZoneWalk, RGBTest, MoversHome} }

type Plan struct {
	Kind Kind
	// HoldFrames is how long each step stays up; 0 means 30 frames.
	HoldFrames int
}

type Runner struct {
	plan  Plan
	step  int
	frame int
}

func NewRunner(plan Plan) *Runner {
	if plan.HoldFrames <= 0 {
		plan.HoldFrames = 30
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step fills f with the current pattern; returns false when complete.
func (r *Runner) Step(f *render.Frame) bool {
	*f = render.Neutral()
	switch r.plan.Kind {
	case ZoneWalk:
		if r.step >= int(zone.Count) {
			return false
		}
		z := &f[r.step]
		z.Dimmer, z.White = 1, 1
		z.Color = color.RGB{R: 1, G: 1, B: 1}
	case RGBTest:
		if r.step >= 3 {
			return false
		}
		var c color.RGB
		switch r.step {
		case 0:
			c.R = 1
		case 1:
			c.G = 1
		case 2:
			c.B = 1
		}
		for i := range f {
			f[i].Dimmer, f[i].Color = 1, c
		}
	case MoversHome:
		// centre, then the four corners
		corners := [][2]float64{{0.5, 0.5}, {0, 0}, {1, 0}, {1, 1}, {0, 1}}
		if r.step >= len(corners) {
			return false
		}
		for id := zone.ID(0); id < zone.Count; id++ {
			if !id.IsMover() {
				continue
			}
			f[id].Dimmer, f[id].White = 1, 1
			f[id].Pan, f[id].Tilt = corners[r.step][0], corners[r.step][1]
		}
	default:
		return false
	}
	r.frame++
	if r.frame >= r.plan.HoldFrames {
		r.frame = 0
		r.step++
	}
	return true
}
