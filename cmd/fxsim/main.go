// Command fxsim fires a single effect from the catalog over the ambient base
// and prints the composited frames, without a show file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/app"
	"github.com/coreman2200/stagefx/internal/config"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/sequence"
)

func main() {
	var (
		name      = flag.String("effect", "strobe_burst", "effect type to fire")
		list      = flag.Bool("list", false, "list the registered effect types and exit")
		fps       = flag.Int("fps", 30, "frames per second")
		ms        = flag.Float64("ms", 3000, "how long to run")
		every     = flag.Int("every", 3, "print every Nth frame")
		intensity = flag.Float64("intensity", 1, "trigger intensity 0..1")
		zones     = flag.String("zones", "", "comma separated zones (default: the effect's own)")
		bpm       = flag.Float64("bpm", 0, "musical tempo handed to the effect")
		seed      = flag.Uint("seed", 1, "trigger seed")
		releaseAt = flag.Float64("release", 0, "release the effect after this many ms (0 = never)")
		fadeMs    = flag.Float64("fade", 500, "release fade in ms")
		asJSON    = flag.Bool("json", false, "print frames as JSON lines")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Default()
	cfg.FPS = *fps
	cfg.Seed = uint32(*seed)
	core := app.NewCore(cfg, nil)

	if *list {
		for _, typ := range core.Live.Available() {
			fmt.Println(typ)
		}
		return
	}

	tc := effect.TriggerConfig{Intensity: *intensity, Seed: uint32(*seed), HasSeed: true, Source: "fxsim"}
	if *zones != "" {
		tc.Zones = strings.Split(*zones, ",")
	}
	if *bpm > 0 {
		core.Sched.With(func(s *sequence.Scheduler) {
			s.SetMusicalContext(&effect.MusicalContext{BPM: *bpm, ZScore: 1.5})
		})
	}
	id, err := core.Live.Trigger(*name, tc)
	if err != nil {
		log.Fatal().Err(err).Str("effect", *name).Msg("trigger failed; run with -list for the catalog")
	}
	log.Info().Str("id", id).Msg("effect fired")

	if *fps <= 0 {
		*fps = 30
	}
	step := 1000 / float64(*fps)
	released := false
	enc := json.NewEncoder(os.Stdout)
	for i := 0; float64(i)*step <= *ms; i++ {
		t := float64(i) * step
		if *releaseAt > 0 && !released && t >= *releaseAt {
			core.Live.Release(id, *fadeMs)
			released = true
		}
		var f render.Frame
		core.Sched.With(func(s *sequence.Scheduler) { f = s.Tick(t) })
		if *every > 0 && i%*every != 0 {
			continue
		}
		if *asJSON {
			_ = enc.Encode(render.Wire(uint64(i), t, f))
			continue
		}
		printFrame(t, &f)
		if len(core.Live.Active()) == 0 {
			fmt.Printf("%7.0fms  finished\n", t)
			return
		}
	}
}

func printFrame(t float64, f *render.Frame) {
	var b strings.Builder
	fmt.Fprintf(&b, "%7.0fms", t)
	for i := range f {
		z := &f[i]
		if z.Dimmer <= 0 && z.White <= 0 && z.Amber <= 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s=%.2f%s", f.ZoneName(i), z.Dimmer, z.Color.Hex())
		if z.Strobe > 0 {
			fmt.Fprintf(&b, "!%.2f", z.Strobe)
		}
	}
	fmt.Println(b.String())
}
