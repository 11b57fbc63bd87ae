package sequence

import (
	"math"
	"testing"

	"github.com/coreman2200/stagefx/internal/diagnostics"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/effect/catalog"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/zone"
)

// lamp holds a steady dimmer until it is aborted.
type lamp struct{ effect.Base }

func newLamp(id string) effect.Effect {
	l := &lamp{Base: effect.NewBase(id, "lamp", effect.CatIntensity, 10, effect.HTP)}
	l.SustainMs = effect.Hold
	return l
}

func (l *lamp) Output() (effect.Output, bool) {
	if !l.Phase().Live() {
		return effect.Output{}, false
	}
	out := l.Frame()
	out.Dimmer = effect.Float(l.Intensity())
	return out, true
}

// blip lives for 300ms.
func newBlip(id string) effect.Effect {
	l := &lamp{Base: effect.NewBase(id, "blip", effect.CatIntensity, 10, effect.HTP)}
	l.SustainMs = 300
	return l
}

// tint colours its zones red and leaves the dimmer to its intensity.
type tint struct{ effect.Base }

func newTint(id string) effect.Effect {
	e := &tint{Base: effect.NewBase(id, "tint", effect.CatColor, 10, effect.HTP)}
	e.SustainMs = effect.Hold
	return e
}

func (e *tint) Output() (effect.Output, bool) {
	if !e.Phase().Live() {
		return effect.Output{}, false
	}
	out := e.Frame()
	out.Color = &effect.HSL{H: 0, S: 100, L: 50}
	return out, true
}

type countingSink struct {
	frames []render.Frame
}

func (c *countingSink) Write(f render.Frame) error {
	c.frames = append(c.frames, f)
	return nil
}

func (c *countingSink) Close() error { return nil }

func testRegistry() *effect.Registry {
	reg := effect.NewRegistry()
	reg.Register("lamp", newLamp)
	reg.Register("blip", newBlip)
	reg.Register("tint", newTint)
	return reg
}

func TestSchedulerActivationCount(t *testing.T) {
	s := NewScheduler(testRegistry(), Options{})
	diags := s.Load(Project{Name: "one", Clips: []Clip{
		{ID: "a", StartMs: 1000, EndMs: 4000, Effect: "lamp", Zones: []string{"floor"}},
	}})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	lit := 0
	for _, tm := range []float64{500, 1500, 2500, 3500, 4500} {
		f := s.Tick(tm)
		if f[zone.Floor].Dimmer > 0 {
			lit++
		}
	}
	if s.Stats.Triggers != 1 || s.Stats.Activations != 1 || s.Stats.Releases != 1 {
		t.Fatalf("stats = %+v", s.Stats)
	}
	if lit != 3 {
		t.Fatalf("lit frames = %d, want 3", lit)
	}
	if s.State().ActiveClips != 0 {
		t.Fatalf("clip still active after window")
	}
}

func TestSchedulerSeekSkipsClip(t *testing.T) {
	s := NewScheduler(testRegistry(), Options{})
	s.Load(Project{Clips: []Clip{{ID: "a", StartMs: 1000, EndMs: 2000, Effect: "lamp"}}})
	s.Tick(0)
	s.Tick(5000)
	if s.Stats.Triggers != 0 || s.Stats.Releases != 0 {
		t.Fatalf("clip outside the ticks was touched: %+v", s.Stats)
	}
}

func TestSchedulerRecyclesFinishedInstance(t *testing.T) {
	s := NewScheduler(testRegistry(), Options{})
	s.Load(Project{Clips: []Clip{{ID: "b", StartMs: 0, EndMs: 1000, Effect: "blip"}}})
	for tm := 0.0; tm < 1000; tm += 100 {
		f := s.Tick(tm)
		if f[zone.Floor].Dimmer != 1 {
			t.Fatalf("t=%v: clip went dark inside its window", tm)
		}
	}
	if s.Stats.Cycles == 0 || s.Stats.Triggers != s.Stats.Cycles+1 {
		t.Fatalf("stats = %+v", s.Stats)
	}
	if s.Stats.Activations != 1 {
		t.Fatalf("activations = %d", s.Stats.Activations)
	}
}

func TestSchedulerCarriesOverrunIntoNextCycle(t *testing.T) {
	s := NewScheduler(testRegistry(), Options{})
	s.Load(Project{Clips: []Clip{{ID: "b", StartMs: 0, EndMs: 5000, Effect: "blip"}}})
	// blip cycles are 300ms: the first ends at 300, the second at 600
	for _, tm := range []float64{0, 250, 500, 750} {
		s.Tick(tm)
	}
	if s.Stats.Cycles != 2 {
		t.Fatalf("cycles = %d, want 2", s.Stats.Cycles)
	}
}

func TestSchedulerBackwardSeekReactivates(t *testing.T) {
	s := NewScheduler(testRegistry(), Options{})
	s.Load(Project{Clips: []Clip{{ID: "a", StartMs: 1000, EndMs: 2000, Effect: "lamp"}}})
	s.Tick(1500)
	s.Tick(500)
	s.Tick(1500)
	if s.Stats.Activations != 2 || s.Stats.Releases != 1 {
		t.Fatalf("stats = %+v", s.Stats)
	}
}

func TestSchedulerEnvelopeAndAutomation(t *testing.T) {
	s := NewScheduler(testRegistry(), Options{})
	s.Load(Project{Clips: []Clip{{
		ID: "a", StartMs: 0, EndMs: 1000, Effect: "lamp", Zones: []string{"air"},
		Keyframes: []Keyframe{{T: 0, V: 0}, {T: 1000, V: 1}},
		Automation: map[string]AutomationLane{
			AutoHue: {Default: 240},
			AutoPan: {Points: []Keyframe{{T: 0, V: 0.2}, {T: 1000, V: 0.2}}},
		},
	}}})
	s.Tick(0)
	f := s.Tick(500)
	z := f[zone.Air]
	if z.Dimmer < 0.49 || z.Dimmer > 0.51 {
		t.Fatalf("dimmer = %v, want ~0.5", z.Dimmer)
	}
	if z.Color.B < 0.99 || z.Color.R > 0.01 {
		t.Fatalf("hue automation missing: %+v", z.Color)
	}
	if z.Pan < 0.19 || z.Pan > 0.21 {
		t.Fatalf("pan automation missing: %v", z.Pan)
	}
}

func TestSchedulerEnvelopeScalesIntensityWithoutDimmer(t *testing.T) {
	s := NewScheduler(testRegistry(), Options{})
	s.Load(Project{Clips: []Clip{{
		ID: "t", StartMs: 0, EndMs: 4000, Effect: "tint", Zones: []string{"floor"}, Intensity: 0.5,
		Keyframes: []Keyframe{{T: 0, V: 0}, {T: 2000, V: 1}},
	}}})
	for _, c := range []struct{ tm, want float64 }{
		{0, 0}, {500, 0.125}, {1000, 0.25}, {3000, 0.5},
	} {
		z := s.Tick(c.tm)[zone.Floor]
		if math.Abs(z.Dimmer-c.want) > 1e-9 {
			t.Fatalf("t=%v: dimmer = %v, want %v", c.tm, z.Dimmer, c.want)
		}
		if z.Color.R != 1 || z.Color.G != 0 {
			t.Fatalf("t=%v: colour = %+v", c.tm, z.Color)
		}
	}
}

func TestSchedulerLoadRejectsOnlyBadClips(t *testing.T) {
	s := NewScheduler(testRegistry(), Options{})
	diags := s.Load(Project{Clips: []Clip{
		{ID: "ok", StartMs: 0, EndMs: 100, Effect: "lamp"},
		{ID: "fx", StartMs: 0, EndMs: 100, Effect: "nope"},
		{ID: "win", StartMs: 100, EndMs: 100, Effect: "lamp"},
		{ID: "keys", StartMs: 0, EndMs: 100, Effect: "lamp", Keyframes: []Keyframe{{T: 10}, {T: 10}}},
		{ID: "zone", StartMs: 0, EndMs: 100, Effect: "lamp", Zones: []string{"balcony"}},
		{ID: "auto", StartMs: 0, EndMs: 100, Effect: "lamp", Automation: map[string]AutomationLane{"zoom": {}}},
		{ID: "ok", StartMs: 0, EndMs: 100, Effect: "lamp"},
	}})
	want := []string{
		diagnostics.ClipUnknownEffect, diagnostics.ClipBadWindow, diagnostics.ClipKeyframes,
		diagnostics.ClipUnknownZone, diagnostics.ClipAutomation, diagnostics.ClipDuplicateID,
	}
	if len(diags) != len(want) {
		t.Fatalf("got %d diagnostics: %+v", len(diags), diags)
	}
	for i, d := range diags {
		if d.Code != want[i] {
			t.Fatalf("diag %d: %s, want %s", i, d.Code, want[i])
		}
	}
	if s.State().Clips != 1 {
		t.Fatalf("kept clips = %d", s.State().Clips)
	}
}

func TestSchedulerStopWritesNeutral(t *testing.T) {
	sink := &countingSink{}
	s := NewScheduler(testRegistry(), Options{Sink: sink})
	s.Load(Project{Clips: []Clip{{ID: "a", StartMs: 0, EndMs: 1000, Effect: "lamp"}}})
	s.Tick(100)
	s.Stop()
	if len(sink.frames) != 2 {
		t.Fatalf("frames written = %d", len(sink.frames))
	}
	if sink.frames[1] != render.Neutral() {
		t.Fatalf("stop frame not neutral: %+v", sink.frames[1])
	}
	if st := s.State(); st.Playing || st.ActiveClips != 0 {
		t.Fatalf("state after stop = %+v", st)
	}
	// A fresh tick starts over with a new activation.
	s.Tick(200)
	if s.Stats.Activations != 2 {
		t.Fatalf("activations = %d", s.Stats.Activations)
	}
}

func TestSchedulerLiveEffectsLayerOnTop(t *testing.T) {
	reg := testRegistry()
	live := effect.NewManager(reg, 7)
	s := NewScheduler(reg, Options{Live: live})
	s.Load(Project{})
	if _, err := live.Trigger("lamp", effect.TriggerConfig{Intensity: 0.4, Zones: []string{"center"}}); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	f := s.Tick(0)
	if d := f[zone.Center].Dimmer; d < 0.39 || d > 0.41 {
		t.Fatalf("live dimmer = %v", d)
	}
	if s.State().Live.ActiveCount != 1 {
		t.Fatalf("live state = %+v", s.State().Live)
	}
}

func demoProject() Project {
	return Project{Name: "demo", Seed: 42, Clips: []Clip{
		{ID: "wash", StartMs: 0, EndMs: 8000, Effect: catalog.StageWash, Params: map[string]any{"hue": 200}},
		{ID: "glitch", StartMs: 1000, EndMs: 5000, Effect: catalog.BinaryGlitch, Zones: []string{"all-pars"}},
		{ID: "sweep", StartMs: 2000, EndMs: 7000, Effect: catalog.AcidSweep},
		{ID: "strobe", StartMs: 3000, EndMs: 4500, Effect: catalog.StrobeBurst, Keyframes: []Keyframe{{T: 0, V: 1, Ease: "ease-out"}, {T: 1500, V: 0}}},
		{ID: "out", StartMs: 6000, EndMs: 8000, Effect: catalog.Blackout},
	}}
}

func render8s(t *testing.T) []render.Frame {
	t.Helper()
	reg := effect.NewRegistry()
	catalog.Register(reg)
	s := NewScheduler(reg, Options{})
	if diags := s.Load(demoProject()); len(diags) != 0 {
		t.Fatalf("diagnostics: %+v", diags)
	}
	var frames []render.Frame
	for tm := 0.0; tm < 8000; tm += 1000.0 / 60 {
		frames = append(frames, s.Tick(tm))
	}
	return frames
}

func TestSchedulerDeterministic(t *testing.T) {
	a, b := render8s(t), render8s(t)
	if len(a) != len(b) {
		t.Fatalf("frame counts differ")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d differs between runs", i)
		}
	}
}
