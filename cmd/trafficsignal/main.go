package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/trafficsignal/internal/app"
	"github.com/coreman2200/trafficsignal/internal/config"
	"github.com/coreman2200/trafficsignal/internal/delay"
	diag "github.com/coreman2200/trafficsignal/internal/diagnostics"
	"github.com/coreman2200/trafficsignal/internal/driver/board"
)

func main() {
	// ---- Flags (config.yaml overrides where set) ----
	var (
		driver     = flag.String("driver", "sim", "driver: gpio | strip | sim")
		delayKind  = flag.String("delay", "sleep", "delay: busy | sleep")
		green      = flag.String("green", board.DefaultPins.Green, "green lamp pin")
		yellow     = flag.String("yellow", board.DefaultPins.Yellow, "yellow lamp pin")
		red        = flag.String("red", board.DefaultPins.Red, "red lamp pin")
		spiDev     = flag.String("spi", "", "SPI port for the strip driver (empty: first available)")
		addr       = flag.String("addr", "", "HTTP status listen address (empty: disabled)")
		level      = flag.String("log-level", "info", "log level")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly    = flag.Bool("sim-only", false, "force simulated pins")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg := &config.Config{}
	if c, err := config.Load(*configPath); err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config rejected")
		}
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}

	// ---- Effective params ----
	hw := app.HWConfig{
		Driver:    firstNonEmpty(cfg.Driver, *driver),
		Pins:      board.Pins{Green: firstNonEmpty(cfg.Pins.Green, *green), Yellow: firstNonEmpty(cfg.Pins.Yellow, *yellow), Red: firstNonEmpty(cfg.Pins.Red, *red)},
		StripDev:  firstNonEmpty(cfg.Strip.Dev, *spiDev),
		StripFreq: physic.Frequency(cfg.Strip.SpeedHz) * physic.Hertz,
	}
	if *simOnly {
		hw.Driver = "sim"
	}
	listen := firstNonEmpty(cfg.Addr, *addr)

	if lvl, err := zerolog.ParseLevel(firstNonEmpty(cfg.LogLevel, *level)); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Err(err).Msg("bad log level; keeping info")
	}

	pattern, err := cfg.Pattern()
	if err != nil {
		log.Fatal().Err(err).Msg("pattern")
	}
	d, err := delay.New(firstNonEmpty(cfg.Delay, *delayKind))
	if err != nil {
		log.Fatal().Err(err).Msg("delay")
	}

	// ---- Outputs, falling back to SIM ----
	out, openErr := app.OpenOutputs(hw)
	core := app.InitCore(out, pattern, d)
	if openErr != nil {
		core.State.PushDiag(diag.DriverFallback(hw.Driver, openErr))
	}
	defer func() {
		if err := core.Close(); err != nil {
			log.Warn().Err(err).Msg("close outputs")
		}
	}()

	// ---- Status server ----
	var srv *http.Server
	if listen != "" {
		srv = &http.Server{
			Addr:         listen,
			Handler:      core.Routes(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", listen).Str("driver", out.Driver).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("http server crashed")
			}
		}()
	}

	// ---- Run until signalled; a lamp fault exits non-zero ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runErr := core.Run(ctx)

	if srv != nil {
		_ = srv.Close()
	}
	if runErr != nil {
		// Exit without closing the outputs so the failsafe state stays lit.
		log.Fatal().Err(runErr).Msg("signal stopped")
	}
	log.Info().Msg("shutting down")
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
