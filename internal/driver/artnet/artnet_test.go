package artnet

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/stagefx/internal/color"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/zone"
)

func TestPacketHeader(t *testing.T) {
	pkt := Packet(7, 0x0123, []byte{1, 2, 3, 4})
	assert.Equal(t, "Art-Net\x00", string(pkt[:8]))
	assert.Equal(t, []byte{0x00, 0x50, 0x00, 14, 7, 0, 0x23, 0x01, 0x00, 0x04}, pkt[8:18])
	assert.Equal(t, []byte{1, 2, 3, 4}, pkt[18:])
}

func TestParsePatch(t *testing.T) {
	p, err := ParsePatch(map[string]int{"front": 1, "floor": 100})
	require.NoError(t, err)
	assert.Equal(t, 1, p[zone.FrontLeft])
	assert.Equal(t, 1+Footprint, p[zone.FrontRight])
	assert.Equal(t, 100, p[zone.Floor])

	_, err = ParsePatch(map[string]int{"floor": 510})
	assert.True(t, errors.Is(err, ErrPatch))
	_, err = ParsePatch(map[string]int{"lobby": 1})
	assert.True(t, errors.Is(err, zone.ErrUnknownZone))

	p, err = ParsePatch(nil)
	require.NoError(t, err)
	assert.Len(t, p, int(zone.Count))
}

func TestSinkWritesUniverse(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	s := New(a, 2, Patch{zone.Center: 10})

	f := render.Neutral()
	f[zone.Center].Dimmer = 1
	f[zone.Center].Color = color.RGB{R: 1, B: 0.5}

	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 1024)
		n, _ := b.Read(buf)
		got <- buf[:n]
	}()
	require.NoError(t, s.Write(f))
	pkt := <-got
	require.Len(t, pkt, 18+512)
	assert.Equal(t, byte(2), pkt[14])
	ch := pkt[18+9 : 18+9+Footprint]
	assert.Equal(t, []byte{255, 255, 0, 128, 0, 0, 0, 128, 128}, ch)
	require.NoError(t, s.Close())
}
