// Package strip drives a signal head built from three WS2812 pixels on SPI.
// Each pixel is exposed as a gpio.PinOut: High is full color, Low is black.
package strip

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

const (
	pixels   = 3
	channels = 3
)

// DefaultFreq suits the nrzled SPI encoder at 800kHz pixel rate.
const DefaultFreq = 2500 * physic.KiloHertz

// RGB is the fully lit value of one lamp pixel.
type RGB [channels]byte

// Lamp colors in head order: green, yellow, red.
var Lamps = [pixels]RGB{
	{0x00, 0xFF, 0x00},
	{0xFF, 0xB0, 0x00},
	{0xFF, 0x00, 0x00},
}

// Head keeps the current frame and rewrites all of it on every change.
type Head struct {
	mu    sync.Mutex
	w     io.Writer
	frame [pixels * channels]byte
	name  string
	port  spi.PortCloser
}

// NewHead writes frames to w, normally an *nrzled.Dev.
func NewHead(name string, w io.Writer) *Head {
	return &Head{name: name, w: w}
}

// Open initialises the host, opens the SPI port (empty dev picks the first
// one) and returns a head with every pixel dark.
func Open(dev string, freq physic.Frequency) (*Head, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("strip: host init: %w", err)
	}
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("strip: open spi %q: %w", dev, err)
	}
	if freq == 0 {
		freq = DefaultFreq
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: pixels, Channels: channels, Freq: freq})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("strip: nrzled: %w", err)
	}
	h := NewHead(d.String(), d)
	h.port = p
	if err := h.flush(); err != nil {
		_ = p.Close()
		return nil, err
	}
	log.Info().Str("dev", d.String()).Stringer("freq", freq).Msg("strip head ready")
	return h, nil
}

// Pixel returns the lamp at index i (0 green, 1 yellow, 2 red).
func (h *Head) Pixel(i int) gpio.PinOut {
	if i < 0 || i >= pixels {
		panic(fmt.Sprintf("strip: pixel %d out of range", i))
	}
	return &pixel{head: h, index: i}
}

// Frame returns a copy of the last frame written.
func (h *Head) Frame() [pixels * channels]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// Close blanks the head and releases the SPI port.
func (h *Head) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = [pixels * channels]byte{}
	err := h.flush()
	if h.port != nil {
		err = errors.Join(err, h.port.Close())
		h.port = nil
	}
	return err
}

func (h *Head) set(i int, on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.frame
	var v RGB
	if on {
		v = Lamps[i]
	}
	copy(h.frame[i*channels:], v[:])
	if err := h.flush(); err != nil {
		h.frame = prev
		return err
	}
	return nil
}

func (h *Head) flush() error {
	if _, err := h.w.Write(h.frame[:]); err != nil {
		return fmt.Errorf("strip: write frame: %w", err)
	}
	return nil
}

type pixel struct {
	head  *Head
	index int
}

func (p *pixel) Name() string     { return fmt.Sprintf("%s/%d", p.head.name, p.index) }
func (p *pixel) Number() int      { return p.index }
func (p *pixel) Function() string { return "Out" }
func (p *pixel) String() string   { return p.Name() }
func (p *pixel) Halt() error      { return nil }

func (p *pixel) Out(l gpio.Level) error { return p.head.set(p.index, l == gpio.High) }

func (p *pixel) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("strip: PWM not supported")
}

var _ gpio.PinOut = &pixel{}
