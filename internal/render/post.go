package render

// PostStage adjusts a composited frame before it reaches the sinks.
type PostStage func(f *Frame, deltaMs float64)

// PostPipeline runs its stages in order; nil stages are skipped.
type PostPipeline []PostStage

func (p PostPipeline) Apply(f *Frame, deltaMs float64) {
	for _, st := range p {
		if st != nil {
			st(f, deltaMs)
		}
	}
}

// GrandMaster scales every dimmer by level (0..1).
func GrandMaster(level float64) PostStage {
	level = clamp01(level)
	return func(f *Frame, _ float64) {
		if level >= 1 {
			return
		}
		for i := range f {
			f[i].Dimmer *= level
		}
	}
}

// Limiter keeps the estimated rig load (see Load) under budget. Below
// knee*budget nothing changes, past the knee the scale eases in and above the
// budget it is hard.
func Limiter(budget, knee float64) PostStage {
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}
	return func(f *Frame, _ float64) {
		if budget <= 0 {
			return
		}
		total := Load(f)
		if total <= 0 {
			return
		}
		ratio := total / budget
		if ratio <= knee {
			return
		}
		minS := budget / total
		s := minS
		if ratio <= 1 {
			t := (ratio - knee) / (1 - knee)
			s = 1 - t*(1-minS)
		}
		scaleDimmers(f, s)
	}
}

// Load estimates how hard a frame drives the rig: a zone at full RGB white
// counts 1, white and amber emitters add on top.
func Load(f *Frame) float64 {
	var total float64
	for i := range f {
		z := &f[i]
		total += z.Dimmer * (z.Color.R + z.Color.G + z.Color.B + z.White + z.Amber) / 3
	}
	return total
}

func scaleDimmers(f *Frame, s float64) {
	if s >= 1 {
		return
	}
	for i := range f {
		f[i].Dimmer *= s
	}
}
