package render

// Lerp blends a toward b by w (0 keeps a, 1 gives b). Channels are linear.
func Lerp(a, b ZoneState, w float64) ZoneState {
	if w <= 0 {
		return a
	}
	if w >= 1 {
		return b
	}
	af := 1 - w
	return ZoneState{
		Dimmer: a.Dimmer*af + b.Dimmer*w,
		Color:  a.Color.Lerp(b.Color, w),
		White:  a.White*af + b.White*w,
		Amber:  a.Amber*af + b.Amber*w,
		Strobe: a.Strobe*af + b.Strobe*w,
		Pan:    a.Pan*af + b.Pan*w,
		Tilt:   a.Tilt*af + b.Tilt*w,
		Speed:  a.Speed*af + b.Speed*w,
	}
}

// Mix blends two frames into dst using alpha (0..1).
func Mix(dst, a, b *Frame, alpha float64) {
	for i := range dst {
		dst[i] = Lerp(a[i], b[i], alpha)
	}
}
