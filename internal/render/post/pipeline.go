package post

import (
	"github.com/charmbracelet/harmonica"

	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/zone"
)

// MoverSmoother eases pan/tilt of the mover zones toward their composited
// targets with a damped spring, so position jumps between effects do not
// snap the heads. A zone's Speed scales the spring frequency.
type MoverSmoother struct {
	Frequency float64
	Damping   float64

	init bool
	pos  [zone.Count][2]float64
	vel  [zone.Count][2]float64
}

func NewMoverSmoother(frequency, damping float64) *MoverSmoother {
	if frequency <= 0 {
		frequency = 6
	}
	if damping <= 0 {
		damping = 1
	}
	return &MoverSmoother{Frequency: frequency, Damping: damping}
}

// Reset snaps the smoother to the next frame it sees.
func (m *MoverSmoother) Reset() { m.init = false }

// Stage returns the smoother as a post stage.
func (m *MoverSmoother) Stage() render.PostStage { return m.apply }

func (m *MoverSmoother) apply(f *render.Frame, deltaMs float64) {
	if !m.init {
		for z := range f {
			m.pos[z] = [2]float64{f[z].Pan, f[z].Tilt}
			m.vel[z] = [2]float64{}
		}
		m.init = true
		return
	}
	if deltaMs <= 0 {
		return
	}
	dt := deltaMs / 1000
	for z := zone.ID(0); z < zone.Count; z++ {
		if !z.IsMover() {
			continue
		}
		freq := m.Frequency
		if s := f[z].Speed; s > 0 {
			freq *= 0.5 + 1.5*s
		}
		spring := harmonica.NewSpring(dt, freq, m.Damping)
		target := [2]float64{f[z].Pan, f[z].Tilt}
		for a := 0; a < 2; a++ {
			m.pos[z][a], m.vel[z][a] = spring.Update(m.pos[z][a], m.vel[z][a], target[a])
		}
		f[z].Pan = clamp01(m.pos[z][0])
		f[z].Tilt = clamp01(m.pos[z][1])
	}
}

// FixedStep wraps a stage so it always sees the nominal frame interval,
// for drivers that tick at a steady rate.
func FixedStep(fps int, st render.PostStage) render.PostStage {
	if fps <= 0 {
		return st
	}
	dt := harmonica.FPS(fps) * 1000
	return func(f *render.Frame, _ float64) { st(f, dt) }
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
