package app

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/trafficsignal/internal/driver/board"
	"github.com/coreman2200/trafficsignal/internal/driver/sim"
	"github.com/coreman2200/trafficsignal/internal/driver/strip"
)

// HWConfig selects and parameterises the lamp outputs.
type HWConfig struct {
	Driver    string // "gpio" | "strip" | "sim"
	Pins      board.Pins
	StripDev  string
	StripFreq physic.Frequency
}

// Outputs are the three lamp lines in head order plus their release hook.
type Outputs struct {
	Green, Yellow, Red gpio.PinOut
	Driver             string
	Close              func() error
}

// Swapped by tests.
var (
	openBoard = board.Open
	openStrip = strip.Open
)

// SimOutputs returns fresh simulated pins.
func SimOutputs() (Outputs, [3]*sim.Pin) {
	pins := [3]*sim.Pin{
		sim.NewPin("SIM_GREEN", 13),
		sim.NewPin("SIM_YELLOW", 12),
		sim.NewPin("SIM_RED", 11),
	}
	return Outputs{
		Green: pins[0], Yellow: pins[1], Red: pins[2],
		Driver: "sim",
		Close:  func() error { return nil },
	}, pins
}

// OpenOutputs opens the requested driver. Any failure on real hardware falls
// back to simulated pins; the returned error then explains why.
func OpenOutputs(hw HWConfig) (Outputs, error) {
	var (
		out Outputs
		err error
	)
	switch hw.Driver {
	case "sim", "":
		out, _ = SimOutputs()
		return out, nil
	case "gpio":
		out.Green, out.Yellow, out.Red, err = openBoard(hw.Pins)
		out.Driver = "gpio"
		out.Close = func() error { return nil }
	case "strip":
		var h *strip.Head
		if h, err = openStrip(hw.StripDev, hw.StripFreq); err == nil {
			out = Outputs{Green: h.Pixel(0), Yellow: h.Pixel(1), Red: h.Pixel(2), Driver: "strip", Close: h.Close}
		}
	default:
		err = fmt.Errorf("unknown driver %q", hw.Driver)
	}
	if err != nil {
		log.Warn().Err(err).Str("driver", hw.Driver).Msg("output init failed; falling back to SIM")
		out, _ = SimOutputs()
		return out, err
	}
	return out, nil
}
