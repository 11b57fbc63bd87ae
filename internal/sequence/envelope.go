package sequence

import "math"

// EaseFunc maps segment progress u in [0,1] onto an interpolation weight.
type EaseFunc func(u float64) float64

// EaseTable names the easings a keyframe list may use. Unknown names fall
// back to linear.
type EaseTable map[string]EaseFunc

func step(float64) float64      { return 0 }
func linear(u float64) float64  { return u }
func easeIn(u float64) float64  { return u * u }
func easeOut(u float64) float64 { return 1 - (1-u)*(1-u) }

func easeInOut(u float64) float64 {
	if u < 0.5 {
		return 2 * u * u
	}
	v := -2*u + 2
	return 1 - v*v/2
}

// smoothstep 3u^2 - 2u^3
func smooth(u float64) float64 { return u * u * (3 - 2*u) }

// smootherstep 6u^5 - 15u^4 + 10u^3
func smootherstep(u float64) float64 { return u * u * u * (u*(u*6-15) + 10) }

// ClipEasing shapes clip intensity envelopes.
var ClipEasing = EaseTable{
	"step":        step,
	"linear":      linear,
	"ease-in":     easeIn,
	"ease-out":    easeOut,
	"ease-in-out": easeInOut,
	"smooth":      smooth,
	"cubic":       smootherstep,
}

// AutomationEasing shapes automation lanes. bezier is the quadratic in-out.
var AutomationEasing = EaseTable{
	"hold":   step,
	"step":   step,
	"linear": linear,
	"bezier": easeInOut,
}

func (tb EaseTable) ease(name string) EaseFunc {
	if f, ok := tb[name]; ok {
		return f
	}
	return linear
}

// Interpolate evaluates keys (sorted by T) at t. An empty list gives 1 so an
// unshaped clip plays at full level. Before the first key and after the last
// the end values hold.
func Interpolate(keys []Keyframe, t float64, table EaseTable) float64 {
	n := len(keys)
	if n == 0 || math.IsNaN(t) {
		return 1
	}
	if t <= keys[0].T {
		return finiteOr(keys[0].V, 1)
	}
	if t >= keys[n-1].T {
		return finiteOr(keys[n-1].V, 1)
	}
	// first key with T > t; t is strictly inside (keys[0].T, keys[n-1].T)
	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi) / 2
		if keys[mid].T > t {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	a, b := keys[lo-1], keys[lo]
	span := b.T - a.T
	if span <= 0 {
		return finiteOr(b.V, 1)
	}
	u := table.ease(a.Ease)((t - a.T) / span)
	return finiteOr(a.V+(b.V-a.V)*u, 1)
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
