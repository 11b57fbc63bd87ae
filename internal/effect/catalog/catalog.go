// Package catalog holds the stock effects. Each one is a small state machine
// on top of effect.Base; the engine knows them only through the registry.
package catalog

import "github.com/coreman2200/stagefx/internal/effect"

const (
	StrobeBurst  = "strobe_burst"
	DeepBreath   = "deep_breath"
	Blackout     = "blackout"
	Chase        = "chase"
	StageWash    = "stage_wash"
	FiberOptics  = "fiber_optics"
	AcidSweep    = "acid_sweep"
	BinaryGlitch = "binary_glitch"
	CoreMeltdown = "core_meltdown"
)

// Register adds every stock effect to reg.
func Register(reg *effect.Registry) {
	reg.Register(StrobeBurst, NewStrobeBurst)
	reg.Register(DeepBreath, NewDeepBreath)
	reg.Register(Blackout, NewBlackout)
	reg.Register(Chase, NewChase)
	reg.Register(StageWash, NewStageWash)
	reg.Register(FiberOptics, NewFiberOptics)
	reg.Register(AcidSweep, NewAcidSweep)
	reg.Register(BinaryGlitch, NewBinaryGlitch)
	reg.Register(CoreMeltdown, NewCoreMeltdown)
}

func hsl(h, s, l float64) *effect.HSL { return &effect.HSL{H: h, S: s, L: l} }
