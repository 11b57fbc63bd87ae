package sequence

import (
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/diagnostics"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/render"
)

// FirstDeltaMs is the delta used for the very first tick after a reset.
const FirstDeltaMs = 16.67

// SchedulerStats counts lifecycle transitions since the last Load.
type SchedulerStats struct {
	Ticks       uint64 `json:"ticks"`
	Activations uint64 `json:"activations"`
	Triggers    uint64 `json:"triggers"`
	Cycles      uint64 `json:"cycles"`
	Releases    uint64 `json:"releases"`
	SinkErrors  uint64 `json:"sinkErrors"`
}

// SchedulerState is a snapshot for health and monitoring endpoints.
type SchedulerState struct {
	Loaded      bool                `json:"loaded"`
	Playing     bool                `json:"playing"`
	Project     string              `json:"project"`
	Clips       int                 `json:"clips"`
	ActiveClips int                 `json:"activeClips"`
	LastTickMs  float64             `json:"lastTickMs"`
	Stats       SchedulerStats      `json:"stats"`
	Live        effect.ManagerState `json:"live"`
}

// Options wire a Scheduler to the rest of the rig. Zero values are usable:
// no base means a neutral base, no sink means frames are only returned.
type Options struct {
	Base render.BaseSource
	Sink render.Sink
	Post render.PostPipeline
	// Live effects are advanced every tick and layered after the clips.
	Live        *effect.Manager
	InjectWhite bool
}

// activeClip exists only while the cursor is inside the clip window.
type activeClip struct {
	inst      effect.Effect
	triggered bool
	cycle     uint32
}

// Scheduler plays a project: it decides which clips are active at the
// cursor, drives their effect instances and composites the result. It is
// driven from one goroutine; see SafeScheduler.
type Scheduler struct {
	Stats SchedulerStats

	reg  *effect.Registry
	opts Options
	res  render.Resolver
	comp *render.Compositor

	name   string
	seed   uint32
	clips  []loadedClip
	active []*activeClip
	loaded bool

	playing bool
	hasLast bool
	lastT   float64

	musical *effect.MusicalContext
	layers  []render.Layer
	frame   render.Frame
}

func NewScheduler(reg *effect.Registry, opts Options) *Scheduler {
	return &Scheduler{
		reg:   reg,
		opts:  opts,
		res:   render.Resolver{InjectWhite: opts.InjectWhite},
		comp:  render.NewCompositor(),
		frame: render.Neutral(),
	}
}

// Load replaces the project. All running state is dropped first. Clips
// that fail validation are left out, one diagnostic each.
func (s *Scheduler) Load(p Project) []diagnostics.Diagnostic {
	s.reset()
	clips, diags := validate(p, s.reg)
	s.name, s.seed = p.Name, p.Seed
	s.clips = clips
	s.active = make([]*activeClip, len(clips))
	s.loaded = true
	s.Stats = SchedulerStats{}
	for _, d := range diags {
		log.Warn().Str("code", d.Code).Str("detail", d.Detail).Msg(d.Summary)
	}
	log.Info().Str("project", p.Name).Int("clips", len(clips)).Int("rejected", len(diags)).Msg("project loaded")
	return diags
}

// Stop aborts every instance and writes a neutral frame.
func (s *Scheduler) Stop() {
	s.reset()
	if s.opts.Live != nil {
		s.opts.Live.AbortAll()
	}
	s.write(s.frame)
}

func (s *Scheduler) reset() {
	for i, st := range s.active {
		if st != nil && st.inst != nil {
			st.inst.Abort()
		}
		s.active[i] = nil
	}
	s.playing = false
	s.hasLast = false
	s.lastT = 0
	s.comp.Reset()
	s.frame = render.Neutral()
}

// SetMusicalContext stores the snapshot handed to effects at trigger time.
func (s *Scheduler) SetMusicalContext(ctx *effect.MusicalContext) {
	if ctx == nil {
		s.musical = nil
	} else {
		snap := *ctx
		s.musical = &snap
	}
	if s.opts.Live != nil {
		s.opts.Live.SetMusicalContext(s.musical)
	}
}

// Tick renders the frame at show time tMs and writes it to the sink.
func (s *Scheduler) Tick(tMs float64) render.Frame {
	if math.IsNaN(tMs) {
		tMs = s.lastT
	}
	delta := FirstDeltaMs
	if s.hasLast {
		delta = math.Max(0, tMs-s.lastT)
	}
	s.hasLast, s.lastT, s.playing = true, tMs, true
	s.Stats.Ticks++

	if s.opts.Live != nil {
		s.opts.Live.Update(delta)
	}

	s.layers = s.layers[:0]
	for i := range s.clips {
		s.tickClip(i, tMs, delta)
	}
	if s.opts.Live != nil {
		for _, e := range s.opts.Live.Active() {
			if out, ok := e.Output(); ok {
				s.layers = append(s.layers, s.res.Resolve(out, e.Priority(), e.MixBus(), 1))
			}
		}
	}

	base := render.Neutral()
	if s.opts.Base != nil {
		base = s.opts.Base.Base(tMs)
	}
	s.frame = s.comp.Compose(base, s.layers)
	s.opts.Post.Apply(&s.frame, delta)
	s.write(s.frame)
	return s.frame
}

func (s *Scheduler) tickClip(i int, tMs, delta float64) {
	c := &s.clips[i]
	st := s.active[i]
	if !c.Active(tMs) {
		if st != nil {
			s.release(i)
		}
		return
	}
	if st == nil {
		st = &activeClip{}
		s.active[i] = st
		s.Stats.Activations++
	}

	step := delta
	if !st.triggered {
		if !s.spawn(c, st) {
			return
		}
		step = math.Min(delta, tMs-c.StartMs)
	}
	st.inst.Advance(step)
	if st.inst.Finished() {
		var carry float64
		if o, ok := st.inst.(effect.Overrunner); ok {
			carry = math.Min(o.Overrun(), step)
		}
		st.cycle++
		s.Stats.Cycles++
		if !s.spawn(c, st) {
			return
		}
		// the next cycle starts where the last one ended, not at the tick
		if carry > 0 {
			st.inst.Advance(carry)
		}
	}

	out, ok := st.inst.Output()
	if !ok {
		return
	}
	local := tMs - c.StartMs
	gain := automate(&out, c.Automation, local)
	env := Interpolate(c.Keyframes, local, ClipEasing) * gain
	s.layers = append(s.layers, s.res.Resolve(out, st.inst.Priority(), st.inst.MixBus(), env))
}

// spawn creates and triggers a fresh instance for the clip's current cycle.
func (s *Scheduler) spawn(c *loadedClip, st *activeClip) bool {
	inst, err := s.reg.New(c.Effect)
	if err != nil {
		log.Debug().Err(err).Str("clip", c.ID).Msg("spawn failed")
		st.inst, st.triggered = nil, false
		return false
	}
	inst.Trigger(effect.TriggerConfig{
		Intensity: c.Intensity,
		Zones:     c.Zones,
		Seed:      effect.SeedFor(s.seed, uint32(c.index), st.cycle),
		Musical:   s.musical,
		Params:    c.Params,
		Source:    "timeline",
		Reason:    c.ID,
	})
	st.inst = inst
	st.triggered = true
	s.Stats.Triggers++
	log.Debug().Str("clip", c.ID).Str("effect", inst.ID()).Uint32("cycle", st.cycle).Msg("clip triggered")
	return true
}

func (s *Scheduler) release(i int) {
	st := s.active[i]
	if st.inst != nil {
		st.inst.Abort()
	}
	s.active[i] = nil
	s.Stats.Releases++
	log.Debug().Str("clip", s.clips[i].ID).Msg("clip released")
}

func (s *Scheduler) write(f render.Frame) {
	if s.opts.Sink == nil {
		return
	}
	if err := s.opts.Sink.Write(f); err != nil {
		s.Stats.SinkErrors++
		log.Debug().Err(err).Msg("write frame")
	}
}

// Frame returns the most recent frame.
func (s *Scheduler) Frame() render.Frame { return s.frame }

// Compositor exposes the compositor counters.
func (s *Scheduler) Compositor() render.CompositorStats { return s.comp.Stats }

// Resolver exposes the resolver counters.
func (s *Scheduler) Resolver() render.ResolveStats { return s.res.Stats }

// End is the end of the last loaded clip in ms.
func (s *Scheduler) End() float64 {
	var end float64
	for i := range s.clips {
		end = math.Max(end, s.clips[i].EndMs)
	}
	return end
}

func (s *Scheduler) State() SchedulerState {
	st := SchedulerState{
		Loaded:     s.loaded,
		Playing:    s.playing,
		Project:    s.name,
		Clips:      len(s.clips),
		LastTickMs: s.lastT,
		Stats:      s.Stats,
	}
	for _, a := range s.active {
		if a != nil {
			st.ActiveClips++
		}
	}
	if s.opts.Live != nil {
		st.Live = s.opts.Live.State()
	}
	return st
}

// SafeScheduler serialises access for callers on several goroutines (the
// render loop and websocket control handlers).
type SafeScheduler struct {
	mu sync.Mutex
	S  *Scheduler
}

func NewSafeScheduler(s *Scheduler) *SafeScheduler { return &SafeScheduler{S: s} }

func (s *SafeScheduler) With(f func(s *Scheduler)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.S)
}
