package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/app"
	"github.com/coreman2200/stagefx/internal/config"
	"github.com/coreman2200/stagefx/internal/ws"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		project    = flag.String("project", "", "show file to load (overrides config)")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		sinks      = flag.String("sinks", "", "comma separated outputs: log, mqtt, artnet, spi")
		autoplay   = flag.Bool("play", false, "start playing once the show is loaded")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	cfg.ApplyEnv(os.Getenv)
	if *project != "" {
		cfg.Project = *project
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *sinks != "" {
		cfg.Sinks = strings.Split(*sinks, ",")
	}
	setupLogging(cfg.Log)

	outs, err := app.BuildSinks(cfg)
	if err != nil {
		log.Fatal().Err(err).Strs("sinks", cfg.Sinks).Msg("opening sinks")
	}
	state := ws.NewState(cfg.FPS)
	outs = append(outs, state)

	cond := app.NewConductor(cfg, outs)
	cond.Diag = state.PushDiag
	state.Controller = cond
	for _, out := range outs {
		if c, ok := out.(interface{ SetClock(func() float64) }); ok {
			c.SetClock(cond.Transport.Position)
		}
	}

	if cfg.Project != "" {
		diags, err := cond.Load(cfg.Project)
		if err != nil {
			log.Error().Err(err).Str("project", cfg.Project).Msg("show load failed")
		} else {
			log.Info().Str("project", cfg.Project).Int("diagnostics", len(diags)).Msg("show loaded")
			if *autoplay {
				_, _ = cond.Control(ws.Control{Op: "play"})
			}
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", state.HandleFramesWS)
	mux.HandleFunc("/diag", state.HandleDiagWS)
	mux.HandleFunc("/control", state.HandleControlWS)
	mux.HandleFunc("/health", state.HandleHealth)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cond.Run(ctx, cfg.FPS)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Strs("sinks", cfg.Sinks).Int("fps", cfg.FPS).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	cancel()
	_ = srv.Close()
	if err := cond.Close(); err != nil {
		log.Warn().Err(err).Msg("closing sinks")
	}
}

func setupLogging(c config.Log) {
	if c.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
