package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/trafficsignal/internal/delay"
	diag "github.com/coreman2200/trafficsignal/internal/diagnostics"
	"github.com/coreman2200/trafficsignal/internal/led"
	"github.com/coreman2200/trafficsignal/internal/metrics"
	"github.com/coreman2200/trafficsignal/internal/traffic"
	"github.com/coreman2200/trafficsignal/internal/ws"
)

type Core struct {
	Signal  *traffic.Signal
	Pattern traffic.Pattern
	Delay   delay.Delayer
	State   *ws.State
	Metrics *metrics.Metrics

	out Outputs
}

// InitCore wraps the outputs in LEDs, builds the signal and wires its hooks
// into the status hub and metrics. The pattern must already be validated.
func InitCore(out Outputs, p traffic.Pattern, d delay.Delayer) *Core {
	c := &Core{
		Signal:  traffic.New(led.New(out.Green), led.New(out.Yellow), led.New(out.Red)),
		Pattern: p,
		Delay:   d,
		State:   ws.NewState(out.Driver),
		Metrics: metrics.New(),
		out:     out,
	}
	c.Signal.SetHooks(traffic.Hooks{
		OnLight: func(l traffic.Light) {
			log.Debug().Stringer("color", l.Color).Uint32("sec", l.Sec).Msg("lamp")
			c.State.Publish(l)
			c.Metrics.ObserveLight(l)
		},
		OnCycle: func() {
			c.State.CycleDone()
			c.Metrics.ObserveCycle()
		},
	})
	return c
}

// Run cycles the pattern until ctx is cancelled. A lamp fault stops the
// signal for good: it is logged, published, the head is put into failsafe
// and the fault is returned.
func (c *Core) Run(ctx context.Context) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var f *led.Fault
		rerr, ok := r.(error)
		if !ok || !errors.As(rerr, &f) {
			panic(r)
		}
		err = c.halt(rerr)
	}()

	log.Info().
		Str("driver", c.out.Driver).
		Int("entries", len(c.Pattern)).
		Stringer("cycle", c.Pattern.Duration()).
		Msg("signal running")
	err = c.Signal.Run(ctx, c.Pattern, c.Delay)
	if errors.Is(err, context.Canceled) {
		c.Signal.Off()
		return nil
	}
	return err
}

func (c *Core) halt(fault error) error {
	log.Error().Err(fault).Msg("lamp fault; signal halted")
	c.Metrics.ObserveFault()
	c.State.Faulted(diag.Fault(fault))
	if err := c.Signal.Failsafe(); err != nil {
		log.Error().Err(err).Msg("failsafe incomplete")
		return fmt.Errorf("%w (failsafe: %v)", fault, err)
	}
	log.Warn().Msg("failsafe engaged: red only")
	return fault
}

// Routes exposes the status hub and metrics.
func (c *Core) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", c.State.HandleStatusWS)
	mux.HandleFunc("/diag", c.State.HandleDiagWS)
	mux.HandleFunc("/health", c.State.HandleHealth)
	mux.Handle("/metrics", c.Metrics.Handler())
	return mux
}

func (c *Core) Close() error {
	if c.out.Close == nil {
		return nil
	}
	return c.out.Close()
}
