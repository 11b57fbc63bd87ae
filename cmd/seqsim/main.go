// Command seqsim renders a show offline at a fixed frame rate. It prints
// colour swatches for a sample of frames and, with -hash, a checksum of the
// whole run so two renders can be compared.
package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/app"
	"github.com/coreman2200/stagefx/internal/config"
	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/sequence"
	"github.com/coreman2200/stagefx/internal/zone"
)

var (
	timeStyle  = lipgloss.NewStyle().Width(9).Align(lipgloss.Right).Foreground(lipgloss.Color("#888888"))
	headStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
)

func main() {
	var (
		projectPath = flag.String("project", "", "show file (yaml or json)")
		configPath  = flag.String("config", "", "optional config.yaml for ambient and post settings")
		fps         = flag.Int("fps", 60, "simulation frames per second")
		every       = flag.Int("every", 30, "print every Nth frame (0 = none)")
		durationMs  = flag.Float64("ms", 0, "render length in ms (default: end of the last clip)")
		seed        = flag.Uint("seed", 0, "override the project seed")
		hashOnly    = flag.Bool("hash", false, "print only the checksum of the rendered frames")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *projectPath == "" {
		fmt.Fprintln(os.Stderr, "seqsim: -project is required")
		os.Exit(2)
	}
	p, err := sequence.LoadProject(*projectPath)
	if err != nil {
		log.Fatal().Err(err).Str("project", *projectPath).Msg("load project")
	}
	if *seed != 0 {
		p.Seed = uint32(*seed)
	}

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal().Err(err).Str("config", *configPath).Msg("load config")
		}
	}
	if *fps <= 0 {
		*fps = 60
	}
	cfg.FPS = *fps
	cfg.Post.Smoothing.FixedStep = true

	core := app.NewCore(cfg, nil)
	var loaded int
	core.Sched.With(func(s *sequence.Scheduler) {
		for _, d := range s.Load(p) {
			if !*hashOnly {
				fmt.Println(errorStyle.Render(d.Error()))
			}
		}
		loaded = s.State().Clips
	})

	end := *durationMs
	if end <= 0 {
		core.Sched.With(func(s *sequence.Scheduler) { end = s.End() })
	}
	step := 1000 / float64(*fps)
	frames := int(math.Ceil(end/step)) + 1

	if !*hashOnly {
		fmt.Println(headStyle.Render(fmt.Sprintf("%s: %d clips, seed %d, %d frames @ %d fps", p.Name, loaded, p.Seed, frames, *fps)))
		fmt.Println(header())
	}

	sum := sha256.New()
	var buf [8]byte
	for i := 0; i < frames; i++ {
		t := float64(i) * step
		var f render.Frame
		core.Sched.With(func(s *sequence.Scheduler) { f = s.Tick(t) })
		for z := range f {
			for _, v := range channels(&f[z]) {
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
				sum.Write(buf[:])
			}
		}
		if !*hashOnly && *every > 0 && i%*every == 0 {
			fmt.Println(row(t, &f))
		}
	}

	digest := hex.EncodeToString(sum.Sum(nil))
	if *hashOnly {
		fmt.Println(digest)
		return
	}
	var st sequence.SchedulerState
	core.Sched.With(func(s *sequence.Scheduler) { st = s.State() })
	fmt.Println(dimStyle.Render(fmt.Sprintf("triggers=%d cycles=%d releases=%d sha256=%s",
		st.Stats.Triggers, st.Stats.Cycles, st.Stats.Releases, digest)))
}

func channels(z *render.ZoneState) [10]float64 {
	return [10]float64{z.Dimmer, z.Color.R, z.Color.G, z.Color.B, z.White, z.Amber, z.Strobe, z.Pan, z.Tilt, z.Speed}
}

func header() string {
	var b strings.Builder
	b.WriteString(timeStyle.Render("t"))
	for i := zone.ID(0); i < zone.Count; i++ {
		b.WriteString(" ")
		name := i.String()
		if len(name) > 4 {
			name = name[:4]
		}
		b.WriteString(dimStyle.Width(4).Render(name))
	}
	return b.String()
}

// row draws one swatch per zone: the colour scaled by the dimmer, with white
// and amber folded in.
func row(t float64, f *render.Frame) string {
	var b strings.Builder
	b.WriteString(timeStyle.Render(fmt.Sprintf("%.0fms", t)))
	for i := range f {
		z := &f[i]
		c := z.Color
		c.R += z.White + z.Amber
		c.G += z.White + 0.75*z.Amber
		c.B += z.White
		sw := lipgloss.NewStyle().Width(4).Background(lipgloss.Color(c.Scale(z.Dimmer).Clamp().Hex()))
		mark := "    "
		if z.Strobe > 0 {
			mark = " ** "
		}
		b.WriteString(" ")
		b.WriteString(sw.Render(mark))
	}
	return b.String()
}
