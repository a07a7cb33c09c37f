package traffic

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Color is one of the three signal lamps.
type Color uint8

const (
	Green Color = iota
	Yellow
	Red
)

// MaxSeconds is the longest hold whose millisecond value fits in a uint32.
const MaxSeconds = math.MaxUint32 / 1000

var colorNames = [...]string{Green: "green", Yellow: "yellow", Red: "red"}

// Colors lists every lamp in wiring order.
func Colors() []Color { return []Color{Green, Yellow, Red} }

func (c Color) Valid() bool { return c <= Red }

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
	return colorNames[c]
}

// ParseColor accepts "green", "yellow" or "red" in any case.
func ParseColor(s string) (Color, error) {
	for i, n := range colorNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Light holds one color for Sec whole seconds. Sec may be zero.
type Light struct {
	Color Color  `json:"color"`
	Sec   uint32 `json:"sec"`
}

// Ms is the hold in milliseconds as requested from the delay service.
func (l Light) Ms() uint32 { return l.Sec * 1000 }

func (l Light) String() string { return fmt.Sprintf("%s/%ds", l.Color, l.Sec) }

// Pattern is one cycle of the signal, in order. The controller only reads it.
type Pattern []Light

// DefaultPattern is green for 5s, yellow for 2s, red for 3s.
func DefaultPattern() Pattern {
	return Pattern{
		{Color: Green, Sec: 5},
		{Color: Yellow, Sec: 2},
		{Color: Red, Sec: 3},
	}
}

var ErrHoldTooLong = errors.New("hold exceeds maximum")

// Validate rejects unknown colors and holds that overflow the delay interface.
// An empty pattern is valid.
func (p Pattern) Validate() error {
	var errs []error
	for i, l := range p {
		if !l.Color.Valid() {
			errs = append(errs, fmt.Errorf("entry %d: invalid color %d", i, uint8(l.Color)))
		}
		if l.Sec > MaxSeconds {
			errs = append(errs, fmt.Errorf("entry %d: %ds: %w (%ds)", i, l.Sec, ErrHoldTooLong, MaxSeconds))
		}
	}
	return errors.Join(errs...)
}

// Duration is the length of one full cycle.
func (p Pattern) Duration() time.Duration {
	var d time.Duration
	for _, l := range p {
		d += time.Duration(l.Sec) * time.Second
	}
	return d
}
