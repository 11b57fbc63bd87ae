package render

import "github.com/coreman2200/stagefx/internal/zone"

// WireZone is one zone of a frame as JSON clients see it.
type WireZone struct {
	Zone   string   `json:"zone"`
	Dimmer float64  `json:"dimmer"`
	RGB    [3]uint8 `json:"rgb"`
	Hex    string   `json:"hex"`
	White  float64  `json:"white"`
	Amber  float64  `json:"amber"`
	Strobe float64  `json:"strobe"`
	Pan    float64  `json:"pan"`
	Tilt   float64  `json:"tilt"`
}

// WireFrame is the message broadcast for each composited frame.
type WireFrame struct {
	FrameID uint64     `json:"frame_id"`
	TMs     float64    `json:"t_ms"`
	Zones   []WireZone `json:"zones"`
}

func Wire(frameID uint64, tMs float64, f Frame) WireFrame {
	w := WireFrame{FrameID: frameID, TMs: tMs, Zones: make([]WireZone, 0, len(f))}
	for i := range f {
		z := &f[i]
		r, g, b := z.Color.Bytes()
		w.Zones = append(w.Zones, WireZone{
			Zone:   zone.ID(i).String(),
			Dimmer: z.Dimmer,
			RGB:    [3]uint8{r, g, b},
			Hex:    z.Color.Hex(),
			White:  z.White,
			Amber:  z.Amber,
			Strobe: z.Strobe,
			Pan:    z.Pan,
			Tilt:   z.Tilt,
		})
	}
	return w
}
