package effect

import "math"

// Effect is one running animation. Implementations are driven from a single
// goroutine by the scheduler or the live manager.
type Effect interface {
	ID() string
	Type() string
	Category() Category
	Priority() int
	MixBus() MixBus
	Phase() Phase

	// Trigger resets lifecycle state and enters Attack.
	Trigger(cfg TriggerConfig)
	// Advance moves the effect forward by deltaMs. No-op once idle or finished.
	Advance(deltaMs float64)
	// Output reads the current frame; ok is false outside attack/sustain/decay.
	Output() (out Output, ok bool)
	Finished() bool
	// Abort forces Finished immediately.
	Abort()
}

// Overrunner reports the time an instance ran past its natural end, so a
// repeating clip can carry it into the next cycle.
type Overrunner interface {
	Overrun() float64
}

// Releaser is implemented by effects that can fade out instead of cutting.
type Releaser interface {
	StartRelease(ms float64)
	Releasing() bool
}

// Hold as SustainMs keeps an instance in sustain until it is aborted or released.
const Hold = -1

// Base carries the lifecycle shared by catalog effects. Embed it and build
// Output from Frame and Gain. Durations are in milliseconds.
type Base struct {
	AttackMs  float64
	SustainMs float64
	DecayMs   float64
	// Retrigger lets Trigger restart a live instance as a new cycle.
	// A finished instance never restarts.
	Retrigger bool

	id   string
	typ  string
	cat  Category
	prio int
	bus  MixBus

	phase     Phase
	elapsed   float64
	intensity float64
	zones     []string
	musical   *MusicalContext
	params    map[string]any
	rng       Rand

	releasing      bool
	releaseMs      float64
	releaseElapsed float64
}

func NewBase(id, typ string, cat Category, prio int, bus MixBus) Base {
	return Base{id: id, typ: typ, cat: cat, prio: prio, bus: bus}
}

func (b *Base) ID() string { return b.id }
func (b *Base) Type() string { return b.typ }
func (b *Base) Category() Category { return b.cat }
func (b *Base) Priority() int { return b.prio }
func (b *Base) MixBus() MixBus { return b.bus }
func (b *Base) Phase() Phase { return b.phase }
func (b *Base) Finished() bool { return b.phase == Finished }

func (b *Base) Elapsed() float64 { return b.elapsed }
func (b *Base) Intensity() float64 { return b.intensity }
func (b *Base) Zones() []string { return b.zones }
func (b *Base) Musical() *MusicalContext { return b.musical }
func (b *Base) Rand() *Rand { return &b.rng }
func (b *Base) Params() map[string]any { return b.params }

func (b *Base) Trigger(cfg TriggerConfig) { b.Start(cfg) }

// Start is Trigger reporting whether the instance actually (re)started.
// Effects that derive state at trigger time call it from their own Trigger.
func (b *Base) Start(cfg TriggerConfig) bool {
	if b.phase == Finished || (b.phase.Live() && !b.Retrigger) {
		return false
	}
	b.phase = Attack
	b.elapsed = 0
	b.releasing = false
	b.releaseMs, b.releaseElapsed = 0, 0

	b.intensity = cfg.Intensity
	if b.intensity <= 0 {
		b.intensity = 1
	}
	b.intensity = clamp01(b.intensity)
	b.zones = cfg.Zones
	if len(b.zones) == 0 {
		b.zones = []string{"all"}
	}
	b.musical = nil
	if cfg.Musical != nil {
		snap := *cfg.Musical
		b.musical = &snap
	}
	b.params = cfg.Params
	b.rng.Seed(cfg.Seed)
	return true
}

// Advance steps the attack/sustain/decay clock. Effects with their own state
// machine override it but must keep the forward-only discipline.
func (b *Base) Advance(deltaMs float64) {
	if !b.phase.Live() {
		return
	}
	if deltaMs < 0 || deltaMs != deltaMs {
		deltaMs = 0
	}
	b.elapsed += deltaMs
	if b.releasing {
		b.releaseElapsed += deltaMs
		if b.releaseElapsed >= b.releaseMs {
			b.phase = Finished
			return
		}
	}
	b.setPhase(b.phaseAt(b.elapsed))
}

func (b *Base) phaseAt(t float64) Phase {
	if t < b.AttackMs {
		return Attack
	}
	if b.SustainMs < 0 {
		return Sustain
	}
	if t < b.AttackMs+b.SustainMs {
		return Sustain
	}
	if t < b.AttackMs+b.SustainMs+b.DecayMs {
		return Decay
	}
	return Finished
}

// setPhase only ever moves forward.
func (b *Base) setPhase(p Phase) {
	if p > b.phase {
		b.phase = p
	}
}

// Overrun is how far the last Advance carried a naturally finished instance
// past the end of its cycle. Aborted and holding instances report zero.
func (b *Base) Overrun() float64 {
	if b.phase != Finished {
		return 0
	}
	if b.releasing {
		return math.Max(0, b.releaseElapsed-b.releaseMs)
	}
	if b.SustainMs < 0 {
		return 0
	}
	return math.Max(0, b.elapsed-(b.AttackMs+b.SustainMs+b.DecayMs))
}

// Progress is the elapsed fraction of the whole cycle (0 while holding).
func (b *Base) Progress() float64 {
	total := b.AttackMs + b.SustainMs + b.DecayMs
	if b.SustainMs < 0 || total <= 0 {
		return 0
	}
	return clamp01(b.elapsed / total)
}

// Gain is the attack ramp / sustain plateau / decay fall, times the release fade.
func (b *Base) Gain() float64 {
	var g float64
	switch b.phase {
	case Attack:
		if b.AttackMs <= 0 {
			g = 1
		} else {
			g = b.elapsed / b.AttackMs
		}
	case Sustain:
		g = 1
	case Decay:
		if b.DecayMs <= 0 {
			g = 0
		} else {
			g = 1 - (b.elapsed-b.AttackMs-b.SustainMs)/b.DecayMs
		}
	default:
		return 0
	}
	return clamp01(g) * b.ReleaseGain()
}

// Frame starts an Output stamped with this instance's identity and state.
func (b *Base) Frame() Output {
	return Output{
		EffectID:  b.id,
		Category:  b.cat,
		Phase:     b.phase,
		Progress:  b.Progress(),
		Intensity: b.intensity,
		Zones:     b.zones,
	}
}

func (b *Base) Abort() {
	b.phase = Finished
	b.releasing = false
}

// StartRelease fades the instance out over ms and then finishes it.
func (b *Base) StartRelease(ms float64) {
	if !b.phase.Live() || b.releasing {
		return
	}
	if ms <= 0 {
		b.Abort()
		return
	}
	b.releasing = true
	b.releaseMs = ms
	b.releaseElapsed = 0
}

func (b *Base) Releasing() bool { return b.releasing }

// ReleaseGain is 1 outside a release, then falls as 1 - p^2.
func (b *Base) ReleaseGain() float64 {
	if !b.releasing {
		return 1
	}
	p := clamp01(b.releaseElapsed / b.releaseMs)
	return 1 - p*p
}

// ParamFloat reads a numeric trigger parameter.
func (b *Base) ParamFloat(name string, def float64) float64 {
	switch v := b.params[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	}
	return def
}

func (b *Base) ParamString(name, def string) string {
	if v, ok := b.params[name].(string); ok && v != "" {
		return v
	}
	return def
}
