package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/config"
	diag "github.com/coreman2200/stagefx/internal/diagnostics"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/render/ambient"
	"github.com/coreman2200/stagefx/internal/sequence"
	"github.com/coreman2200/stagefx/internal/tests"
	"github.com/coreman2200/stagefx/internal/ws"
)

var (
	ErrUnknownOp       = errors.New("unknown control op")
	ErrUnknownInstance = errors.New("no such live effect")
	ErrUnknownTest     = errors.New("unknown rig test")
	ErrUnknownPreset   = errors.New("unknown ambient preset")
)

// Conductor runs the show: it advances the transport, ticks the scheduler
// and forwards frames to the sinks, swapping in rig test patterns while
// one is running.
type Conductor struct {
	*Core
	Sinks render.MultiSink
	// Diag receives diagnostics worth showing an operator.
	Diag func(diag.Diagnostic)

	mu     sync.Mutex
	runner *tests.Runner
}

func NewConductor(cfg *config.Config, sinks render.MultiSink) *Conductor {
	c := &Conductor{Sinks: sinks}
	c.Core = NewCore(cfg, c)
	return c
}

// Write is the scheduler's sink.
func (c *Conductor) Write(f render.Frame) error {
	c.mu.Lock()
	if c.runner != nil {
		pattern := f
		if c.runner.Step(&pattern) {
			f = pattern
		} else {
			kind := c.runner.Kind()
			c.runner = nil
			defer c.diag(diag.Diagnostic{Severity: diag.Info, Code: "TEST.DONE", Summary: "Test complete", Detail: string(kind)})
		}
	}
	c.mu.Unlock()
	return c.Sinks.Write(f)
}

func (c *Conductor) Close() error { return c.Sinks.Close() }

func (c *Conductor) diag(d diag.Diagnostic) {
	if c.Diag != nil {
		c.Diag(d)
	}
}

// Load reads a project file, hands it to the scheduler and rewinds.
func (c *Conductor) Load(path string) ([]diag.Diagnostic, error) {
	p, err := sequence.LoadProject(path)
	if err != nil {
		return nil, err
	}
	var diags []diag.Diagnostic
	c.Sched.With(func(s *sequence.Scheduler) {
		diags = s.Load(p)
		c.Transport.Stop()
		c.Transport.EndMs = s.End()
		c.Smoother.Reset()
	})
	for _, d := range diags {
		c.diag(d)
	}
	return diags, nil
}

// Step advances the show by deltaMs of real time. Every frame reaches the
// sinks under the scheduler lock, so sink clocks read a settled transport.
func (c *Conductor) Step(deltaMs float64) {
	c.Sched.With(func(s *sequence.Scheduler) {
		pos := c.Transport.Advance(deltaMs)
		if c.Transport.State() != sequence.Stopped {
			s.Tick(pos)
			return
		}
		if c.Testing() {
			_ = c.Write(render.Neutral())
		}
	})
}

// Testing reports whether a rig test is running.
func (c *Conductor) Testing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runner != nil
}

// Run steps the show at fps until ctx is done.
func (c *Conductor) Run(ctx context.Context, fps int) {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.Step(float64(now.Sub(last)) / float64(time.Millisecond))
			last = now
		}
	}
}

// Status is the /health snapshot of the show.
type Status struct {
	Transport  sequence.TransportState `json:"transport"`
	PositionMs float64                 `json:"positionMs"`
	Rate       float64                 `json:"rate"`
	Scheduler  sequence.SchedulerState `json:"scheduler"`
	Compositor render.CompositorStats  `json:"compositor"`
	Resolver   render.ResolveStats     `json:"resolver"`
	Ambient    string                  `json:"ambient,omitempty"`
	Test       string                  `json:"test,omitempty"`
}

func (c *Conductor) Status() any {
	var st Status
	c.Sched.With(func(s *sequence.Scheduler) {
		st = Status{
			Transport:  c.Transport.State(),
			PositionMs: c.Transport.Position(),
			Rate:       c.Transport.Rate(),
			Scheduler:  s.State(),
			Compositor: s.Compositor(),
			Resolver:   s.Resolver(),
			Ambient:    c.Ambient.Preset(),
		}
	})
	c.mu.Lock()
	if c.runner != nil {
		st.Test = string(c.runner.Kind())
	}
	c.mu.Unlock()
	return st
}

// Control applies one operator message and returns the new status.
func (c *Conductor) Control(m ws.Control) (any, error) {
	if m.Op == "load" {
		if _, err := c.Load(m.Project); err != nil {
			return nil, err
		}
		return c.Status(), nil
	}
	var (
		err   error
		reply any
	)
	c.Sched.With(func(s *sequence.Scheduler) {
		reply, err = c.apply(s, m)
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("op", m.Op).Msg("control applied")
	if reply != nil {
		return reply, nil
	}
	return c.Status(), nil
}

func (c *Conductor) apply(s *sequence.Scheduler, m ws.Control) (any, error) {
	tr := c.Transport
	switch m.Op {
	case "play":
		tr.Play()
	case "pause":
		tr.Pause()
	case "stop":
		tr.Stop()
		s.Stop()
		c.Smoother.Reset()
	case "seek":
		tr.Seek(m.Ms)
	case "rate":
		tr.SetRate(m.Rate)
	case "loop":
		return nil, tr.SetLoop(m.Start, m.End)
	case "clear_loop":
		tr.ClearLoop()
	case "trigger":
		tc := effect.TriggerConfig{
			Intensity: m.Intensity,
			Zones:     m.Zones,
			Params:    m.Params,
			Source:    "control",
		}
		if m.Seed != nil {
			tc.Seed, tc.HasSeed = *m.Seed, true
		}
		// an id re-triggers that live instance instead of starting another
		if m.ID != "" {
			if !c.Live.Retrigger(m.ID, tc) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, m.ID)
			}
			return map[string]string{"id": m.ID}, nil
		}
		id, err := c.Live.Trigger(m.Effect, tc)
		if err != nil {
			return nil, err
		}
		return map[string]string{"id": id}, nil
	case "release":
		if !c.Live.Release(m.ID, m.Ms) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, m.ID)
		}
	case "abort":
		if m.ID == "" {
			c.Live.AbortAll()
		} else if !c.Live.Abort(m.ID) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, m.ID)
		}
	case "musical":
		s.SetMusicalContext(m.Musical)
	case "grand_master":
		c.master = m.Level
	case "ambient":
		if !c.Ambient.ApplyPreset(m.Preset) {
			return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownPreset, m.Preset, ambient.Presets())
		}
	case "test":
		return nil, c.startTest(tests.Kind(m.Test))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, m.Op)
	}
	return nil, nil
}

func (c *Conductor) startTest(kind tests.Kind) error {
	for _, k := range tests.Kinds() {
		if k != kind {
			continue
		}
		c.mu.Lock()
		c.runner = tests.NewRunner(tests.Plan{Kind: kind, HoldFrames: c.Cfg.FPS})
		c.mu.Unlock()
		c.diag(diag.Diagnostic{Severity: diag.Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: string(kind)})
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownTest, kind)
}
