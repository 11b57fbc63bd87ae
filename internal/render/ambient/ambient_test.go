package ambient

import (
	"math"
	"testing"

	"github.com/coreman2200/stagefx/internal/zone"
)

func TestNewLeafBeatsAggregate(t *testing.T) {
	s, unknown := New(map[string]Look{
		"all-pars": {H: 0, S: 100, L: 50, Dimmer: 0.2},
		"floor":    {H: 240, S: 100, L: 50, Dimmer: 0.6},
		"stage":    {Dimmer: 1},
	})
	if len(unknown) != 1 || unknown[0] != "stage" {
		t.Fatalf("unknown = %v", unknown)
	}
	f := s.Base(0)
	if f[zone.Floor].Dimmer != 0.6 || f[zone.Floor].Color.B != 1 {
		t.Fatalf("floor = %+v", f[zone.Floor])
	}
	if f[zone.FrontLeft].Dimmer != 0.2 || f[zone.FrontLeft].Color.R != 1 {
		t.Fatalf("front-left = %+v", f[zone.FrontLeft])
	}
	if f[zone.Air].Dimmer != 0 || f[zone.MoversLeft].Pan != 0.5 {
		t.Fatalf("unlisted zones should stay neutral: %+v", f[zone.Air])
	}
}

func TestPresets(t *testing.T) {
	s, _ := New(map[string]Look{"all": {S: 0, L: 100, Dimmer: 0.5}})
	if s.ApplyPreset("Strobe") {
		t.Fatalf("unknown preset applied")
	}
	if !s.ApplyPreset("Blue") || s.Preset() != "Blue" {
		t.Fatalf("Blue not applied")
	}
	f := s.Base(0)
	if f[zone.Center].Color.B != 1 || f[zone.Center].Color.R != 0 || f[zone.Center].Dimmer != 0.5 {
		t.Fatalf("center = %+v", f[zone.Center])
	}
	s.ApplyPreset("Dark")
	if d := s.Base(0)[zone.Center].Dimmer; d != 0 {
		t.Fatalf("dark dimmer = %v", d)
	}
}

func TestPulseStaysBetweenHalfAndFull(t *testing.T) {
	s, _ := New(map[string]Look{"floor": {L: 100, Dimmer: 0.8}})
	s.PulseHz = 0.5
	lo, hi := math.Inf(1), math.Inf(-1)
	for ms := 0.0; ms <= 2000; ms += 10 {
		d := s.Base(ms)[zone.Floor].Dimmer
		lo, hi = math.Min(lo, d), math.Max(hi, d)
	}
	if math.Abs(lo-0.4) > 1e-3 || math.Abs(hi-0.8) > 1e-3 {
		t.Fatalf("pulse range %v..%v", lo, hi)
	}
}
