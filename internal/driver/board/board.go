// Package board opens the three signal lamps on host GPIO lines through periph.
package board

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pins names the GPIO line for each lamp, e.g. "GPIO13".
type Pins struct {
	Green  string
	Yellow string
	Red    string
}

// DefaultPins matches the reference wiring: green 13, yellow 12, red 11.
var DefaultPins = Pins{Green: "GPIO13", Yellow: "GPIO12", Red: "GPIO11"}

// Lookup resolves a pin name. gpioreg.ByName is the production lookup.
type Lookup func(name string) gpio.PinIO

// Open initialises the host drivers and returns the three lamp pins, each
// already driven low.
func Open(p Pins) (green, yellow, red gpio.PinOut, err error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, nil, fmt.Errorf("board: host init: %w", err)
	}
	return Resolve(p, gpioreg.ByName)
}

// Resolve looks up and configures the pins without touching host init.
func Resolve(p Pins, lookup Lookup) (green, yellow, red gpio.PinOut, err error) {
	var out [3]gpio.PinOut
	for i, name := range []string{p.Green, p.Yellow, p.Red} {
		if name == "" {
			return nil, nil, nil, fmt.Errorf("board: lamp %d has no pin", i)
		}
		pin := lookup(name)
		if pin == nil {
			return nil, nil, nil, fmt.Errorf("board: no pin named %q", name)
		}
		if err := pin.Out(gpio.Low); err != nil {
			return nil, nil, nil, fmt.Errorf("board: configure %s as output: %w", name, err)
		}
		log.Info().Str("pin", pin.Name()).Int("number", pin.Number()).Msg("lamp output ready")
		out[i] = pin
	}
	return out[0], out[1], out[2], nil
}
