// Package nrz drives addressable pixel strips (WS2812 and friends) from
// zone frames, falling back to a console drawer without an SPI port.
package nrz

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/stagefx/internal/config"
	"github.com/coreman2200/stagefx/internal/layout"
	"github.com/coreman2200/stagefx/internal/render"
)

type Sink struct {
	drawer display.Drawer
	strip  layout.Strip
	img    *image.NRGBA
	port   spi.PortCloser

	// SPI is false when frames go to the console drawer.
	SPI bool
}

func New(d display.Drawer, strip layout.Strip) *Sink {
	return &Sink{
		drawer: d,
		strip:  strip,
		img:    image.NewNRGBA(image.Rect(0, 0, strip.Count(), 1)),
	}
}

// Open initialises the host and the configured SPI port.
func Open(c config.SPI) (*Sink, error) {
	strip, err := layout.NewStrip(c.Zones, c.PixelsPerZone)
	if err != nil {
		return nil, fmt.Errorf("spi layout: %w", err)
	}
	strip.FlipEveryOther = c.FlipEveryOther
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(c.Dev)
	if err != nil {
		log.Warn().Err(err).Msg("no SPI port, printing at the console")
		return New(screen.New(strip.Count()), strip), nil
	}
	freq := physic.Frequency(c.SpeedHz) * physic.Hertz
	if freq <= 0 {
		freq = 2400 * physic.KiloHertz
	}
	d, err := nrzled.NewSPI(port, &nrzled.Opts{NumPixels: strip.Count(), Channels: 3, Freq: freq})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	s := New(d, strip)
	s.port, s.SPI = port, true
	log.Info().Str("dev", c.Dev).Int("pixels", strip.Count()).Msg("pixel strip ready")
	return s, nil
}

// Image renders f onto one row of pixels.
func (s *Sink) Image(f render.Frame) *image.NRGBA {
	for seg, id := range s.strip.Zones {
		c := pixel(f[id])
		for px := 0; px < s.strip.PixelsPerZone; px++ {
			s.img.SetNRGBA(s.strip.Index(seg, px), 0, c)
		}
	}
	return s.img
}

func (s *Sink) Write(f render.Frame) error {
	return s.drawer.Draw(s.drawer.Bounds(), s.Image(f), image.Point{})
}

func (s *Sink) Close() error {
	err := s.drawer.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// pixel folds the white and amber emitters into RGB and applies the dimmer.
func pixel(z render.ZoneState) color.NRGBA {
	r := z.Color.R + z.White + z.Amber
	g := z.Color.G + z.White + 0.75*z.Amber
	b := z.Color.B + z.White
	return color.NRGBA{R: level(r, z.Dimmer), G: level(g, z.Dimmer), B: level(b, z.Dimmer), A: 255}
}

func level(v, dimmer float64) uint8 {
	if v > 1 {
		v = 1
	}
	return uint8(v*dimmer*255 + 0.5)
}
