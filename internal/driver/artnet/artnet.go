// Package artnet sends frames as ArtDMX packets over UDP.
package artnet

import (
	"errors"
	"fmt"
	"net"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/color"
	"github.com/coreman2200/stagefx/internal/config"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/zone"
)

const Port = 6454

// Footprint is the channel count of one zone: dimmer, red, green, blue,
// white, amber, strobe, pan, tilt.
const Footprint = 9

const universeSize = 512

var ErrPatch = errors.New("artnet: bad patch")

// Patch maps each leaf zone to its first DMX channel (1-based).
type Patch map[zone.ID]int

// DefaultPatch lays every leaf zone out back to back from channel 1.
func DefaultPatch() Patch {
	p := Patch{}
	for id := zone.ID(0); id < zone.Count; id++ {
		p[id] = 1 + int(id)*Footprint
	}
	return p
}

// ParsePatch resolves zone names. An aggregate patches its leaves one
// footprint apart.
func ParsePatch(m map[string]int) (Patch, error) {
	if len(m) == 0 {
		return DefaultPatch(), nil
	}
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	p := Patch{}
	for _, n := range names {
		set, err := zone.Parse(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPatch, err)
		}
		for i, id := range set.IDs() {
			start := m[n] + i*Footprint
			if start < 1 || start+Footprint-1 > universeSize {
				return nil, fmt.Errorf("%w: %s at channel %d does not fit", ErrPatch, id, start)
			}
			p[id] = start
		}
	}
	return p, nil
}

// Encode writes f into a DMX universe.
func (p Patch) Encode(f render.Frame, dmx []byte) {
	for id, start := range p {
		z := f[id]
		r, g, b := z.Color.Bytes()
		ch := dmx[start-1 : start-1+Footprint]
		ch[0] = color.ToByte(z.Dimmer)
		ch[1], ch[2], ch[3] = r, g, b
		ch[4] = color.ToByte(z.White)
		ch[5] = color.ToByte(z.Amber)
		ch[6] = color.ToByte(z.Strobe)
		ch[7] = color.ToByte(z.Pan)
		ch[8] = color.ToByte(z.Tilt)
	}
}

// Packet builds an ArtDMX packet for universe.
func Packet(seq uint8, universe uint16, dmx []byte) []byte {
	pkt := make([]byte, 18+len(dmx))
	copy(pkt[0:], "Art-Net\x00")
	pkt[8], pkt[9] = 0x00, 0x50 // OpDmx, little endian
	pkt[10], pkt[11] = 0x00, 14 // protocol version
	pkt[12], pkt[13] = seq, 0x00
	pkt[14], pkt[15] = byte(universe&0xFF), byte((universe>>8)&0x7F)
	pkt[16], pkt[17] = byte(len(dmx)>>8), byte(len(dmx))
	copy(pkt[18:], dmx)
	return pkt
}

// Sink sends every frame to one node or broadcast address.
type Sink struct {
	conn     net.Conn
	universe uint16
	patch    Patch
	seq      uint8
	dmx      [universeSize]byte
}

// New wraps an open connection; tests pass one end of a pipe.
func New(conn net.Conn, universe uint16, patch Patch) *Sink {
	return &Sink{conn: conn, universe: universe, patch: patch, seq: 1}
}

// Dial opens a UDP socket towards c.Addr.
func Dial(c config.ArtNet) (*Sink, error) {
	patch, err := ParsePatch(c.Patch)
	if err != nil {
		return nil, err
	}
	addr := c.Addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, fmt.Sprint(Port))
	}
	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("artnet resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("artnet dial %s: %w", addr, err)
	}
	log.Info().Str("addr", raddr.String()).Uint16("universe", c.Universe).Msg("art-net output")
	return New(conn, c.Universe, patch), nil
}

func (s *Sink) Write(f render.Frame) error {
	s.patch.Encode(f, s.dmx[:])
	_, err := s.conn.Write(Packet(s.seq, s.universe, s.dmx[:]))
	s.seq++
	if s.seq == 0 {
		s.seq = 1
	}
	return err
}

func (s *Sink) Close() error { return s.conn.Close() }
