package strip

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"
)

// frames captures each raw frame handed to the head's writer.
type frames struct {
	got  [][]byte
	fail error
}

func (f *frames) Write(b []byte) (int, error) {
	if f.fail != nil {
		return 0, f.fail
	}
	f.got = append(f.got, append([]byte(nil), b...))
	return len(b), nil
}

func TestPixelsShareOneFrame(t *testing.T) {
	w := &frames{}
	h := NewHead("test", w)
	green, red := h.Pixel(0), h.Pixel(2)

	require.NoError(t, green.Out(gpio.High))
	require.NoError(t, red.Out(gpio.High))
	require.NoError(t, green.Out(gpio.Low))

	require.Len(t, w.got, 3)
	assert.Equal(t, []byte{0, 0xFF, 0, 0, 0, 0, 0, 0, 0}, w.got[0])
	assert.Equal(t, []byte{0, 0xFF, 0, 0, 0, 0, 0xFF, 0, 0}, w.got[1])
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xFF, 0, 0}, w.got[2])
	assert.Equal(t, "test/2", red.Name())
}

func TestWriteFailureKeepsPreviousFrame(t *testing.T) {
	w := &frames{}
	h := NewHead("test", w)
	require.NoError(t, h.Pixel(1).Out(gpio.High))

	w.fail = errors.New("spi: tx timeout")
	err := h.Pixel(0).Out(gpio.High)
	assert.ErrorIs(t, err, w.fail)

	f := h.Frame()
	assert.Equal(t, []byte{0, 0, 0, 0xFF, 0xB0, 0, 0, 0, 0}, f[:])
}

func TestPixelRange(t *testing.T) {
	h := NewHead("test", &frames{})
	assert.Panics(t, func() { h.Pixel(3) })
	assert.Error(t, h.Pixel(0).PWM(gpio.DutyMax, 0))
}

func TestHeadOverNRZ(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &nrzled.Opts{NumPixels: pixels, Channels: channels, Freq: DefaultFreq})
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", d.String())

	h := NewHead(d.String(), d)
	before := buf.Len()
	require.NoError(t, h.Pixel(2).Out(gpio.High))
	assert.Greater(t, buf.Len(), before, "frame must reach the SPI port")

	require.NoError(t, h.Close())
	f := h.Frame()
	assert.Equal(t, make([]byte, pixels*channels), f[:])
}
