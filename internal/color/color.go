// Package color converts effect colours (hue/saturation/lightness) into the
// additive channel intensities fixtures understand.
package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB holds linear additive channels in 0..1.
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

var Black = RGB{}

// FromHSL converts h in degrees (any range, wrapped) and s, l in percent (0..100).
// Out of range saturation/lightness are clamped, NaN components read as zero.
func FromHSL(h, s, l float64) RGB {
	h = finite(h)
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hsl(h, clamp01(finite(s)/100), clamp01(finite(l)/100)).Clamped()
	return RGB{R: c.R, G: c.G, B: c.B}
}

// HSL returns h in degrees and s, l in percent.
func (c RGB) HSL() (h, s, l float64) {
	h, s, l = colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
	return h, s * 100, l * 100
}

// Bytes scales each channel to 0..255.
func (c RGB) Bytes() (r, g, b uint8) {
	cc := c.Clamp()
	return ToByte(cc.R), ToByte(cc.G), ToByte(cc.B)
}

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string {
	cc := c.Clamp()
	return colorful.Color{R: cc.R, G: cc.G, B: cc.B}.Hex()
}

func (c RGB) Clamp() RGB {
	return RGB{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// Scale multiplies every channel by k.
func (c RGB) Scale(k float64) RGB {
	return RGB{R: c.R * k, G: c.G * k, B: c.B * k}
}

// Lerp blends c toward o by w (0 keeps c, 1 gives o).
func (c RGB) Lerp(o RGB, w float64) RGB {
	return RGB{
		R: c.R*(1-w) + o.R*w,
		G: c.G*(1-w) + o.G*w,
		B: c.B*(1-w) + o.B*w,
	}
}

// Max is the channel-wise maximum.
func (c RGB) Max(o RGB) RGB {
	return RGB{R: math.Max(c.R, o.R), G: math.Max(c.G, o.G), B: math.Max(c.B, o.B)}
}

// ToByte maps 0..1 onto 0..255 with rounding.
func ToByte(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
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

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
