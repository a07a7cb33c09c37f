// Package sim provides in-memory output pins for running without hardware.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Pin remembers its level and logs every change. It implements gpio.PinOut.
type Pin struct {
	name   string
	number int

	mu     sync.Mutex
	level  gpio.Level
	writes int
	fault  error
}

func NewPin(name string, number int) *Pin {
	return &Pin{name: name, number: number}
}

func (p *Pin) Name() string     { return p.name }
func (p *Pin) Number() int      { return p.number }
func (p *Pin) Function() string { return "Out" }

func (p *Pin) String() string {
	return fmt.Sprintf("sim Pin: Name: %s Number %d", p.name, p.number)
}

func (p *Pin) Halt() error { return nil }

func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fault != nil {
		return p.fault
	}
	if p.level != l {
		log.Debug().Str("pin", p.name).Stringer("level", l).Msg("sim pin")
	}
	p.level = l
	p.writes++
	return nil
}

// PWM is refused: lamps are either fully on or fully off.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("sim: PWM not supported")
}

// Level is the last level written.
func (p *Pin) Level() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Writes counts successful Out calls.
func (p *Pin) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

// Break makes every later Out call fail with err. A nil err repairs the pin.
func (p *Pin) Break(err error) {
	p.mu.Lock()
	p.fault = err
	p.mu.Unlock()
}

var _ gpio.PinOut = &Pin{}
