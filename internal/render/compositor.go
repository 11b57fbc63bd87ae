package render

import (
	"math"

	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/zone"
)

// CompositorStats counts frames and recovered out-of-range values.
type CompositorStats struct {
	Frames         uint64 `json:"frames"`
	DictatorFrames uint64 `json:"dictatorFrames"`
	Clamped        uint64 `json:"clamped"`
}

// Compositor merges the layers of one frame over the ambient base.
//
// Additive layers resolve per zone: the highest-priority replace entry wins
// the channels it sets, max entries take the channel-wise maximum of the
// levels and the colour of the highest-priority entry, and movement always
// follows the highest priority. Dictator layers are merged among themselves
// with the same rules and crossfaded over that result by the largest
// composition weight, so a dictator at full weight owns its zones.
// Equal priorities go to the layer that comes later in the slice.
type Compositor struct {
	Stats CompositorStats

	out  Frame
	idx  []int
	work [zone.Count]Patch
}

func NewCompositor() *Compositor {
	c := &Compositor{}
	c.Reset()
	return c
}

// Last returns the most recently composed frame.
func (c *Compositor) Last() Frame { return c.out }

// Reset drops the frame buffer back to neutral.
func (c *Compositor) Reset() { c.out = Neutral() }

// Compose resolves layers over base. The returned frame is a copy.
func (c *Compositor) Compose(base Frame, layers []Layer) Frame {
	c.Stats.Frames++
	c.out = base
	for i := range c.out {
		c.out[i] = c.clampState(c.out[i])
	}

	c.idx = c.idx[:0]
	for i := range layers {
		if layers[i].Bus != effect.Dictator {
			c.idx = append(c.idx, i)
		}
	}
	if len(c.idx) > 0 {
		c.merge(layers, c.idx)
		for z := range c.work {
			if c.work[z].Set == 0 {
				continue
			}
			c.out[z] = c.target(c.out[z], c.work[z])
		}
	}

	w := 0.0
	c.idx = c.idx[:0]
	for i := range layers {
		if layers[i].Bus != effect.Dictator {
			continue
		}
		lw := clamp01(layers[i].Weight())
		if lw <= 0 {
			continue
		}
		c.idx = append(c.idx, i)
		if lw > w {
			w = lw
		}
	}
	if len(c.idx) > 0 {
		c.Stats.DictatorFrames++
		c.merge(layers, c.idx)
		for z := range c.work {
			if c.work[z].Set == 0 {
				continue
			}
			c.out[z] = c.crossfade(c.out[z], c.work[z], w)
		}
	}
	return c.out
}

// merge resolves the selected layers zone by zone into c.work.
func (c *Compositor) merge(layers []Layer, idx []int) {
	for z := range c.work {
		var res Patch
		rep, col, mov := -1, -1, -1
		wins := func(cur, cand int) bool {
			return cur < 0 || layers[cand].Priority >= layers[cur].Priority
		}
		for _, i := range idx {
			p := &layers[i].Zones[z]
			if p.Set == 0 {
				continue
			}
			if p.Set&chMove != 0 && wins(mov, i) {
				mov = i
			}
			if p.Blend == effect.BlendReplace {
				if wins(rep, i) {
					rep = i
				}
				continue
			}
			res.State = maxLevels(res.State, p.State, res.Set, p.Set)
			res.Set |= p.Set & chLevels
			if p.Has(ChColor) && wins(col, i) {
				col = i
			}
		}
		if col >= 0 {
			res.Set |= ChColor
			res.State.Color = layers[col].Zones[z].State.Color
		}
		if rep >= 0 {
			p := layers[rep].Zones[z]
			set := p.Set &^ chMove
			res.State = writeChannels(res.State, p.State, set)
			res.Set |= set
		}
		if mov >= 0 {
			p := layers[mov].Zones[z]
			set := p.Set & chMove
			res.State = writeChannels(res.State, p.State, set)
			res.Set |= set
			res.Relative = p.Relative
		}
		c.work[z] = res
	}
}

// maxLevels folds the level channels of src into dst. A channel seen for the
// first time is copied rather than compared.
func maxLevels(dst, src ZoneState, have, set Channel) ZoneState {
	pick := func(ch Channel, d, s float64) float64 {
		if set&ch == 0 {
			return d
		}
		if have&ch == 0 {
			return s
		}
		return math.Max(d, s)
	}
	dst.Dimmer = pick(ChDimmer, dst.Dimmer, src.Dimmer)
	dst.White = pick(ChWhite, dst.White, src.White)
	dst.Amber = pick(ChAmber, dst.Amber, src.Amber)
	dst.Strobe = pick(ChStrobe, dst.Strobe, src.Strobe)
	return dst
}

// target is the absolute state a patch asks for, given the current state.
func (c *Compositor) target(cur ZoneState, p Patch) ZoneState {
	t := writeChannels(cur, p.State, p.Set)
	if p.Relative {
		if p.Has(ChPan) {
			t.Pan = cur.Pan + p.State.Pan
		}
		if p.Has(ChTilt) {
			t.Tilt = cur.Tilt + p.State.Tilt
		}
	}
	return c.clampState(t)
}

// crossfade moves the channels a patch sets toward its target by w.
func (c *Compositor) crossfade(cur ZoneState, p Patch, w float64) ZoneState {
	return Lerp(cur, c.target(cur, p), w)
}

func (c *Compositor) clampState(s ZoneState) ZoneState {
	n := ZoneState{
		Dimmer: clamp01(s.Dimmer),
		Color:  s.Color.Clamp(),
		White:  clamp01(s.White),
		Amber:  clamp01(s.Amber),
		Strobe: clamp01(s.Strobe),
		Pan:    clamp01(s.Pan),
		Tilt:   clamp01(s.Tilt),
		Speed:  clamp01(s.Speed),
	}
	if n != s {
		c.Stats.Clamped++
	}
	return n
}
