package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/trafficsignal/internal/app"
	"github.com/coreman2200/trafficsignal/internal/config"
	"github.com/coreman2200/trafficsignal/internal/delay"
	"github.com/coreman2200/trafficsignal/internal/driver/sim"
	"github.com/coreman2200/trafficsignal/internal/led"
	"github.com/coreman2200/trafficsignal/internal/traffic"
)

func main() {
	var (
		configPath string
		cycles     int
		faultColor string
	)
	flag.StringVar(&configPath, "config", "", "config.yaml to take the pattern from (default pattern if empty)")
	flag.IntVar(&cycles, "cycles", 2, "number of cycles to simulate")
	flag.StringVar(&faultColor, "fault", "", "break this lamp after the first cycle")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	pattern := traffic.DefaultPattern()
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		if pattern, err = cfg.Pattern(); err != nil {
			log.Fatal().Err(err).Msg("pattern")
		}
	}

	out, pins := app.SimOutputs()
	sig := traffic.New(led.New(out.Green), led.New(out.Yellow), led.New(out.Red))
	rec := &delay.Recorder{}

	cycle := 0
	sig.SetHooks(traffic.Hooks{
		OnLight: func(l traffic.Light) {
			fmt.Printf("[cycle %d t=%7.3fs] %-6s on for %ds  %s\n",
				cycle, rec.Total().Seconds(), l.Color, l.Sec, heads(pins))
		},
		OnCycle: func() { cycle++ },
	})

	err := simulate(sig, pattern, rec, cycles, func() {
		if faultColor == "" {
			return
		}
		c, err := traffic.ParseColor(faultColor)
		if err != nil {
			log.Fatal().Err(err).Msg("fault")
		}
		pins[c].Break(errors.New("simulated driver fault"))
	})
	if err != nil {
		fmt.Printf("halted: %v\n", err)
		if ferr := sig.Failsafe(); ferr != nil {
			fmt.Printf("failsafe: %v\n", ferr)
		}
		fmt.Printf("final   %s\n", heads(pins))
		os.Exit(1)
	}
	fmt.Printf("Done: %d cycles, %s of signal time\n", cycle, rec.Total())
}

// simulate runs n cycles, calling afterFirst once the first one completes.
// A lamp fault ends the run and is returned.
func simulate(sig *traffic.Signal, p traffic.Pattern, d delay.Delayer, n int, afterFirst func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var f *led.Fault
			if e, ok := r.(error); ok && errors.As(e, &f) {
				err = e
				return
			}
			panic(r)
		}
	}()
	for i := 0; i < n; i++ {
		sig.RunCycle(p, d)
		if i == 0 {
			afterFirst()
		}
	}
	return nil
}

func heads(pins [3]*sim.Pin) string {
	var b strings.Builder
	for i, c := range traffic.Colors() {
		mark := "."
		if pins[i].Level() == gpio.High {
			mark = strings.ToUpper(c.String()[:1])
		}
		b.WriteString(mark)
	}
	return "[" + b.String() + "]"
}
