package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/config"
	"github.com/coreman2200/stagefx/internal/driver/artnet"
	"github.com/coreman2200/stagefx/internal/driver/fake"
	"github.com/coreman2200/stagefx/internal/driver/mqtt"
	"github.com/coreman2200/stagefx/internal/driver/nrz"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/effect/catalog"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/render/ambient"
	"github.com/coreman2200/stagefx/internal/render/post"
	"github.com/coreman2200/stagefx/internal/sequence"
)

var ErrUnknownSink = errors.New("unknown sink")

// Core is the show engine assembled from config: effect catalog, live
// manager, scheduler and the transport clock that drives it.
type Core struct {
	Cfg       *config.Config
	Reg       *effect.Registry
	Live      *effect.Manager
	Sched     *sequence.SafeScheduler
	Transport *sequence.Transport
	Ambient   *ambient.Solid
	Smoother  *post.MoverSmoother

	master float64
}

// NewCore wires the engine; every frame the scheduler produces goes to out.
func NewCore(cfg *config.Config, out render.Sink) *Core {
	reg := effect.NewRegistry()
	catalog.Register(reg)

	amb, unknown := ambient.New(cfg.Ambient)
	amb.PulseHz = cfg.AmbientPulseHz
	for _, z := range unknown {
		log.Warn().Str("zone", z).Msg("ambient look for unknown zone ignored")
	}

	c := &Core{
		Cfg:       cfg,
		Reg:       reg,
		Live:      effect.NewManager(reg, cfg.Seed),
		Transport: sequence.NewTransport(),
		Ambient:   amb,
		Smoother:  post.NewMoverSmoother(cfg.Post.Smoothing.Frequency, cfg.Post.Smoothing.Damping),
		master:    cfg.Post.GrandMaster,
	}
	smooth := c.Smoother.Stage()
	if cfg.Post.Smoothing.FixedStep {
		smooth = post.FixedStep(cfg.FPS, smooth)
	}
	pipeline := render.PostPipeline{
		func(f *render.Frame, d float64) { render.GrandMaster(c.master)(f, d) },
		smooth,
	}
	if cfg.Post.Budget > 0 {
		pipeline = append(pipeline, render.Limiter(cfg.Post.Budget, cfg.Post.Knee))
	}
	c.Sched = sequence.NewSafeScheduler(sequence.NewScheduler(reg, sequence.Options{
		Base:        amb,
		Sink:        out,
		Post:        pipeline,
		Live:        c.Live,
		InjectWhite: cfg.Post.InjectWhite,
	}))
	return c
}

// BuildSinks opens every sink named in cfg.Sinks. On error the sinks
// already opened are closed again.
func BuildSinks(cfg *config.Config) (render.MultiSink, error) {
	var sinks render.MultiSink
	for _, name := range cfg.Sinks {
		var (
			s   render.Sink
			err error
		)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "log":
			s = &fake.Driver{Every: cfg.FPS}
		case "mqtt":
			s, err = mqtt.Dial(cfg.MQTT)
		case "artnet":
			s, err = artnet.Dial(cfg.ArtNet)
		case "spi":
			s, err = nrz.Open(cfg.SPI)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownSink, name)
		}
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
