package effect

import "math"

const fallbackBPM = 120

// BPM returns the context tempo, or 120 when unknown.
func BPM(ctx *MusicalContext) float64 {
	if ctx == nil || ctx.BPM <= 0 {
		return fallbackBPM
	}
	return ctx.BPM
}

// IntensityFromZScore scales base by how far the audio deviates from normal
// (z = 1.5 is neutral).
func IntensityFromZScore(ctx *MusicalContext, base, scale float64) float64 {
	if ctx == nil {
		return base
	}
	f := 1 + (ctx.ZScore-1.5)*scale
	return clamp01(base * f)
}

// BeatPulse returns the position inside the current pulse (0..1). divisor
// splits the beat (2 = eighths). Beat phase wins over elapsed time when known.
func BeatPulse(ctx *MusicalContext, elapsedMs, divisor float64) float64 {
	if ctx == nil || ctx.BPM <= 0 {
		return 0.5
	}
	if divisor <= 0 {
		divisor = 1
	}
	if ctx.BeatPhase != nil {
		return math.Mod(*ctx.BeatPhase*divisor, 1)
	}
	pulse := 60000 / ctx.BPM / divisor
	return math.Mod(elapsedMs, pulse) / pulse
}

// SinePulse is a 0..1 sine starting at 0 with the given period.
func SinePulse(elapsedMs, periodMs, offset float64) float64 {
	if periodMs <= 0 {
		return 0
	}
	phase := math.Mod(elapsedMs/periodMs+offset, 1)
	return (math.Sin((phase-0.25)*2*math.Pi) + 1) / 2
}

// EnergyFactor maps context energy onto [lo,hi]; the midpoint without context.
func EnergyFactor(ctx *MusicalContext, lo, hi float64) float64 {
	if ctx == nil {
		return (lo + hi) / 2
	}
	return lo + (hi-lo)*clamp01(ctx.Energy)
}

func InDrop(ctx *MusicalContext) bool {
	return ctx != nil && ctx.InDrop != nil && *ctx.InDrop
}

// CycleMs is the length of n beats, capped at capMs so very low tempos
// cannot stretch an effect forever.
func CycleMs(ctx *MusicalContext, beats, capMs float64) float64 {
	ms := beats * 60000 / BPM(ctx)
	if capMs > 0 && ms > capMs {
		return capMs
	}
	return ms
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
