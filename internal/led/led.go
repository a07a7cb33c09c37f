package led

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Fault is raised when the pin refuses a level change. There is no recovery
// at this layer: TurnOn and TurnOff panic with a *Fault.
type Fault struct {
	Pin string
	On  bool
	Err error
}

func (f *Fault) Error() string {
	lvl := gpio.Low
	if f.On {
		lvl = gpio.High
	}
	return fmt.Sprintf("led %s: drive %s: %v", f.Pin, lvl, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// LED owns exactly one output pin for its whole lifetime.
type LED struct {
	pin gpio.PinOut
	on  bool
}

// New wraps a pin that the caller already configured as an output.
func New(pin gpio.PinOut) *LED {
	return &LED{pin: pin}
}

// TurnOn drives the pin high.
func (l *LED) TurnOn() { l.must(l.Set(true)) }

// TurnOff drives the pin low. Turning off an LED that is already off is fine.
func (l *LED) TurnOff() { l.must(l.Set(false)) }

// Set drives the pin and returns a *Fault if the device rejects it.
func (l *LED) Set(on bool) error {
	lvl := gpio.Low
	if on {
		lvl = gpio.High
	}
	if err := l.pin.Out(lvl); err != nil {
		return &Fault{Pin: l.pin.Name(), On: on, Err: err}
	}
	l.on = on
	return nil
}

// IsOn reports the last level successfully commanded, not a hardware read.
func (l *LED) IsOn() bool { return l.on }

func (l *LED) String() string {
	state := "off"
	if l.on {
		state = "on"
	}
	return fmt.Sprintf("led{%s %s}", l.pin.Name(), state)
}

func (l *LED) must(err error) {
	if err != nil {
		panic(err)
	}
}

var (
	_ Switch = &LED{}
	_ Setter = &LED{}
)
