package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type refusingPin struct{ *gpiotest.Pin }

func (refusingPin) Out(gpio.Level) error { return errors.New("pin is input only") }

func bank(pins ...gpio.PinIO) Lookup {
	return func(name string) gpio.PinIO {
		for _, p := range pins {
			if p.Name() == name {
				return p
			}
		}
		return nil
	}
}

func TestResolve(t *testing.T) {
	g := &gpiotest.Pin{N: "GPIO13", Num: 13, L: gpio.High}
	y := &gpiotest.Pin{N: "GPIO12", Num: 12, L: gpio.High}
	r := &gpiotest.Pin{N: "GPIO11", Num: 11}

	gg, yy, rr, err := Resolve(DefaultPins, bank(g, y, r))
	require.NoError(t, err)
	assert.Same(t, g, gg)
	assert.Same(t, y, yy)
	assert.Same(t, r, rr)
	for _, p := range []*gpiotest.Pin{g, y, r} {
		assert.Equal(t, gpio.Low, p.Read(), p.N)
	}
}

func TestResolveErrors(t *testing.T) {
	g := &gpiotest.Pin{N: "GPIO13"}
	y := &gpiotest.Pin{N: "GPIO12"}
	r := refusingPin{&gpiotest.Pin{N: "GPIO11"}}

	for _, tt := range []struct {
		name string
		pins Pins
		want string
	}{
		{"missing name", Pins{Green: "GPIO13", Yellow: "GPIO12"}, "board: lamp 2 has no pin"},
		{"unknown pin", Pins{Green: "GPIO99", Yellow: "GPIO12", Red: "GPIO11"}, `board: no pin named "GPIO99"`},
		{"output refused", DefaultPins, "board: configure GPIO11 as output: pin is input only"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Resolve(tt.pins, bank(g, y, r))
			assert.EqualError(t, err, tt.want)
		})
	}
}
