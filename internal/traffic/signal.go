package traffic

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreman2200/trafficsignal/internal/delay"
	"github.com/coreman2200/trafficsignal/internal/led"
)

// Hooks are optional observers called on the controller goroutine.
type Hooks struct {
	// OnLight fires after a lamp is lit and before its hold starts.
	OnLight func(l Light)
	// OnCycle fires after the last entry of a pattern.
	OnCycle func()
}

// Signal owns one lamp per color. Each constructor slot is bound to its color,
// so the wiring cannot be mismatched later.
type Signal struct {
	green  led.Switch
	yellow led.Switch
	red    led.Switch

	hooks Hooks
}

func New(green, yellow, red led.Switch) *Signal {
	return &Signal{green: green, yellow: yellow, red: red}
}

// SetHooks installs observers. Call it before the first cycle.
func (s *Signal) SetHooks(h Hooks) { s.hooks = h }

// RunCycle walks the pattern once. For every entry all lamps go off, the
// entry's lamp goes on, and the goroutine blocks for the hold. It returns
// after the last entry; looping is the caller's job.
//
// A device fault panics with *led.Fault.
func (s *Signal) RunCycle(p Pattern, d delay.Delayer) {
	for _, l := range p {
		s.turnOffAll()
		s.turnOn(l.Color)
		if s.hooks.OnLight != nil {
			s.hooks.OnLight(l)
		}
		d.DelayMs(l.Ms())
	}
	if s.hooks.OnCycle != nil {
		s.hooks.OnCycle()
	}
}

// Run repeats RunCycle until ctx is done. Cancellation is observed between
// cycles only; a hold in progress always runs to completion.
func (s *Signal) Run(ctx context.Context, p Pattern, d delay.Delayer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.RunCycle(p, d)
	}
}

// Off turns every lamp off.
func (s *Signal) Off() { s.turnOffAll() }

// Failsafe tries to leave the head showing red only. Unlike RunCycle it never
// panics; every lamp is attempted and the faults are joined.
func (s *Signal) Failsafe() error {
	var errs []error
	for _, c := range []struct {
		sw led.Switch
		on bool
	}{
		{s.green, false},
		{s.yellow, false},
		{s.red, true},
	} {
		st, ok := c.sw.(led.Setter)
		if !ok {
			errs = append(errs, fmt.Errorf("failsafe: %T cannot report faults", c.sw))
			continue
		}
		if err := st.Set(c.on); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Signal) turnOffAll() {
	s.green.TurnOff()
	s.yellow.TurnOff()
	s.red.TurnOff()
}

func (s *Signal) turnOn(c Color) {
	switch c {
	case Green:
		s.green.TurnOn()
	case Yellow:
		s.yellow.TurnOn()
	case Red:
		s.red.TurnOn()
	default:
		panic(fmt.Sprintf("traffic: no lamp for %v", c))
	}
}
