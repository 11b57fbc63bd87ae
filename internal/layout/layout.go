// Package layout maps zones onto the pixels of an addressable strip.
package layout

import (
	"fmt"

	"github.com/coreman2200/stagefx/internal/zone"
)

// Strip chains zones along one strip, PixelsPerZone pixels each, in order.
type Strip struct {
	Zones         []zone.ID
	PixelsPerZone int
	// FlipEveryOther reverses odd segments, for strips folded back and forth.
	FlipEveryOther bool
}

// NewStrip resolves zone names (aggregates expand in leaf order).
func NewStrip(names []string, pixelsPerZone int) (Strip, error) {
	if pixelsPerZone <= 0 {
		return Strip{}, fmt.Errorf("pixels per zone must be positive, got %d", pixelsPerZone)
	}
	var ids []zone.ID
	for _, n := range names {
		s, err := zone.Parse(n)
		if err != nil {
			return Strip{}, err
		}
		ids = append(ids, s.IDs()...)
	}
	return Strip{Zones: ids, PixelsPerZone: pixelsPerZone}, nil
}

// Index maps the px-th pixel of segment seg onto the strip.
func (l Strip) Index(seg, px int) int {
	if l.FlipEveryOther && seg%2 == 1 {
		px = l.PixelsPerZone - 1 - px
	}
	return seg*l.PixelsPerZone + px
}

func (l Strip) Count() int {
	return len(l.Zones) * l.PixelsPerZone
}
