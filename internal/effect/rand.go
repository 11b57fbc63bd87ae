package effect

// Rand is a linear congruential generator (Numerical Recipes constants).
// The same seed always replays the same sequence.
type Rand struct{ state uint32 }

func NewRand(seed uint32) *Rand { return &Rand{state: seed} }

func (r *Rand) Seed(seed uint32) { r.state = seed }

func (r *Rand) Uint32() uint32 {
	r.state = r.state*1664525 + 1013904223
	return r.state
}

// Float64 returns a value in [0,1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / 4294967296.0
}

// Intn returns a value in [0,n). n <= 0 yields 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Float64() * float64(n))
}

func (r *Rand) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

func (r *Rand) Chance(p float64) bool {
	return r.Float64() < p
}

// SeedFor folds parts into one seed (FNV-1a over the little-endian bytes).
func SeedFor(parts ...uint32) uint32 {
	h := uint32(2166136261)
	for _, p := range parts {
		for i := 0; i < 4; i++ {
			h ^= (p >> (8 * i)) & 0xff
			h *= 16777619
		}
	}
	return h
}
