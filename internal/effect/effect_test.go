package effect

import (
	"errors"
	"testing"
)

// flash is a minimal effect: dimmer follows the base envelope gain.
type flash struct{ Base }

func newFlash(id string) Effect {
	f := &flash{Base: NewBase(id, "flash", CatIntensity, 10, HTP)}
	f.AttackMs, f.SustainMs, f.DecayMs = 100, 200, 100
	return f
}

func (f *flash) Output() (Output, bool) {
	if !f.Phase().Live() {
		return Output{}, false
	}
	out := f.Frame()
	out.Dimmer = Float(f.Gain() * f.Intensity())
	return out, true
}

func TestPhaseMonotonic(t *testing.T) {
	deltas := []float64{0, 16.7, 50, 0, -30, 120, 33, 1, 400, 16.7, 16.7}
	e := newFlash("f-1")
	e.Trigger(TriggerConfig{})
	last := e.Phase()
	if last != Attack {
		t.Fatalf("expected attack after trigger, got %v", last)
	}
	for i, d := range deltas {
		e.Advance(d)
		p := e.Phase()
		if p < last {
			t.Fatalf("step %d: phase went backward %v -> %v", i, last, p)
		}
		if p == Idle {
			t.Fatalf("step %d: phase returned to idle", i)
		}
		last = p
	}
	if !e.Finished() {
		t.Fatalf("expected finished after 600ms, got %v", e.Phase())
	}
}

func TestIdleAndFinishedReadNothing(t *testing.T) {
	e := newFlash("f-2")
	if _, ok := e.Output(); ok {
		t.Fatalf("idle instance produced output")
	}
	e.Advance(50)
	if e.Phase() != Idle {
		t.Fatalf("advance moved an idle instance to %v", e.Phase())
	}
	e.Trigger(TriggerConfig{Intensity: 0.5})
	e.Advance(150)
	if out, ok := e.Output(); !ok || out.Dimmer == nil || *out.Dimmer != 0.5 {
		t.Fatalf("expected sustain dimmer 0.5, got %+v ok=%v", out, ok)
	}
	e.Abort()
	for i := 0; i < 3; i++ {
		if _, ok := e.Output(); ok {
			t.Fatalf("finished instance produced output")
		}
		e.Advance(10)
		e.Trigger(TriggerConfig{})
	}
	if !e.Finished() {
		t.Fatalf("finished instance restarted: %v", e.Phase())
	}
}

func TestTriggerMidCycleIsNoop(t *testing.T) {
	e := newFlash("f-3")
	e.Trigger(TriggerConfig{Intensity: 1})
	e.Advance(150)
	e.Trigger(TriggerConfig{Intensity: 0.2})
	out, _ := e.Output()
	if *out.Dimmer != 1 {
		t.Fatalf("mid-cycle trigger should be ignored, dimmer=%v", *out.Dimmer)
	}
}

func TestRetriggerRestartsLiveInstance(t *testing.T) {
	e := newFlash("f-5").(*flash)
	e.Retrigger = true
	e.Trigger(TriggerConfig{Intensity: 1})
	for _, d := range []float64{150, 350} {
		e.Advance(d)
		before := e.Phase()
		e.Trigger(TriggerConfig{Intensity: 0.4})
		if e.Phase() != Attack || e.Elapsed() != 0 {
			t.Fatalf("retrigger from %v: phase %v elapsed %v", before, e.Phase(), e.Elapsed())
		}
	}
	e.Advance(150)
	out, ok := e.Output()
	if !ok || *out.Dimmer != 0.4 {
		t.Fatalf("expected sustain at the new intensity 0.4, got %+v ok=%v", out, ok)
	}

	e.Advance(1000)
	if !e.Finished() {
		t.Fatalf("expected finished, got %v", e.Phase())
	}
	e.Trigger(TriggerConfig{Intensity: 1})
	if !e.Finished() {
		t.Fatalf("finished re-triggerable instance restarted: %v", e.Phase())
	}
}

func TestOverrun(t *testing.T) {
	e := newFlash("f-6").(*flash)
	e.Trigger(TriggerConfig{})
	e.Advance(350)
	if e.Overrun() != 0 {
		t.Fatalf("live instance reports overrun %v", e.Overrun())
	}
	e.Advance(120)
	if got := e.Overrun(); got < 69.999 || got > 70.001 {
		t.Fatalf("overrun = %v, want 70", got)
	}

	a := newFlash("f-7").(*flash)
	a.Trigger(TriggerConfig{})
	a.Advance(50)
	a.Abort()
	if a.Overrun() != 0 {
		t.Fatalf("aborted instance reports overrun %v", a.Overrun())
	}
}

func TestReleaseFade(t *testing.T) {
	e := newFlash("f-4").(*flash)
	e.SustainMs = Hold
	e.Trigger(TriggerConfig{})
	e.Advance(200)
	e.StartRelease(100)
	e.Advance(50)
	out, ok := e.Output()
	if !ok {
		t.Fatalf("expected output mid release")
	}
	if got := *out.Dimmer; got < 0.749 || got > 0.751 {
		t.Fatalf("expected 1-p^2 = 0.75 at half release, got %v", got)
	}
	e.Advance(60)
	if !e.Finished() {
		t.Fatalf("expected finished after release")
	}
}

func TestRandDeterministic(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 100; i++ {
		if a.Uint32() != b.Uint32() {
			t.Fatalf("sequences diverged at %d", i)
		}
	}
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("Float64 out of range: %v", v)
		}
	}
	if SeedFor(1, 2) == SeedFor(2, 1) {
		t.Fatalf("SeedFor should depend on order")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("flash", newFlash)
	a, err := reg.New("flash")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, _ := reg.New("flash")
	if a.ID() == b.ID() {
		t.Fatalf("ids should be unique, both %s", a.ID())
	}
	if _, err := reg.New("laser"); !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("expected ErrUnknownEffect, got %v", err)
	}
	if l := reg.List(); len(l) != 1 || l[0] != "flash" {
		t.Fatalf("unexpected list %v", l)
	}
}

func TestManagerLifecycle(t *testing.T) {
	reg := NewRegistry()
	reg.Register("flash", newFlash)
	m := NewManager(reg, 9)
	id, err := m.Trigger("flash", TriggerConfig{})
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if _, err := m.Trigger("nope", TriggerConfig{}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	m.Update(100)
	if st := m.State(); st.ActiveCount != 1 || st.TotalTriggered != 1 || st.LastTriggered != "flash" {
		t.Fatalf("unexpected state %+v", st)
	}
	if !m.Release(id, 50) {
		t.Fatalf("release did not find %s", id)
	}
	if st := m.State(); st.Releasing != 1 {
		t.Fatalf("expected one releasing instance, got %+v", st)
	}
	m.Update(60)
	if n := len(m.Active()); n != 0 {
		t.Fatalf("expected released effect dropped, %d left", n)
	}
}

func TestManagerRetriggerAndSeeds(t *testing.T) {
	reg := NewRegistry()
	reg.Register("flash", func(id string) Effect {
		f := newFlash(id).(*flash)
		f.Retrigger = true
		return f
	})
	m := NewManager(reg, 9)
	id, err := m.Trigger("flash", TriggerConfig{Seed: 0, HasSeed: true})
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	got := m.Active()[0].(*flash).Rand().Uint32()
	if want := NewRand(0).Uint32(); got != want {
		t.Fatalf("explicit seed 0 not honoured: %d, want %d", got, want)
	}

	m.Update(150)
	if !m.Retrigger(id, TriggerConfig{Intensity: 0.5}) {
		t.Fatalf("retrigger did not find %s", id)
	}
	if p := m.Active()[0].Phase(); p != Attack {
		t.Fatalf("expected attack after retrigger, got %v", p)
	}
	if m.Retrigger("flash-99", TriggerConfig{}) {
		t.Fatalf("retrigger found a missing instance")
	}
	if st := m.State(); st.TotalTriggered != 2 {
		t.Fatalf("unexpected state %+v", st)
	}

	other, _ := m.Trigger("flash", TriggerConfig{})
	a := m.Active()[1].(*flash).Rand().Uint32()
	if a == NewRand(0).Uint32() {
		t.Fatalf("%s: zero seed without HasSeed should be derived", other)
	}
}

func TestMusicalHelpers(t *testing.T) {
	if BPM(nil) != 120 {
		t.Fatalf("expected fallback tempo")
	}
	half := 0.5
	ctx := &MusicalContext{BPM: 120, ZScore: 3.5, Energy: 1, BeatPhase: &half}
	if v := BeatPulse(ctx, 0, 2); v != 0 {
		t.Fatalf("beat phase 0.5 at divisor 2 should wrap to 0, got %v", v)
	}
	if v := IntensityFromZScore(ctx, 0.8, 0.3); v != 1 {
		t.Fatalf("expected clamp to 1, got %v", v)
	}
	if v := EnergyFactor(ctx, 0.5, 1); v != 1 {
		t.Fatalf("expected max energy factor, got %v", v)
	}
	if v := CycleMs(&MusicalContext{BPM: 1}, 4, 8000); v != 8000 {
		t.Fatalf("expected capped cycle, got %v", v)
	}
	if v := SinePulse(0, 1000, 0); v > 1e-9 {
		t.Fatalf("sine pulse should start at 0, got %v", v)
	}
}
