package fake

import (
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/render"
)

// Driver logs a compact summary of each frame (average level and the
// brightest zone), useful for headless runs and tests.
type Driver struct {
	// Every logs one frame out of Every; 0 or 1 logs all of them.
	Every int

	Count int
	Last  render.Frame
}

func (d *Driver) Write(f render.Frame) error {
	d.Count++
	d.Last = f
	if d.Every > 1 && d.Count%d.Every != 0 {
		return nil
	}
	var sum, top float64
	hot := 0
	for i := range f {
		sum += f[i].Dimmer
		if f[i].Dimmer > top {
			top, hot = f[i].Dimmer, i
		}
	}
	log.Info().
		Int("frame", d.Count).
		Float64("avg", sum/float64(len(f))).
		Str("hot", f.ZoneName(hot)).
		Str("hex", f[hot].Color.Hex()).
		Float64("level", top).
		Msg("frame")
	return nil
}

func (d *Driver) Close() error { return nil }
