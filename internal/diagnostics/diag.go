package diagnostics

import (
	"errors"

	"github.com/coreman2200/trafficsignal/internal/led"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// DriverFallback reports that the requested output driver could not start.
func DriverFallback(requested string, err error) Diagnostic {
	return Diagnostic{
		Severity:     Warn,
		Code:         "DRIVER.FALLBACK",
		Summary:      "Output driver unavailable; running on simulated pins",
		Detail:       err.Error(),
		LikelyCauses: []string{"not running on the target board", "SPI or GPIO not enabled", "insufficient permissions"},
		SuggestedFixes: []string{
			"check the pin names in config.yaml",
			"run as a user with access to /dev/gpiomem or /dev/spidev*",
		},
		Evidence: map[string]any{"driver": requested},
	}
}

// Fault describes a lamp that refused a level change.
func Fault(err error) Diagnostic {
	d := Diagnostic{
		Severity:       Err,
		Code:           "LED.FAULT",
		Summary:        "Lamp output fault; signal halted",
		Detail:         err.Error(),
		LikelyCauses:   []string{"stuck or shorted output driver", "lost SPI link to the signal head"},
		SuggestedFixes: []string{"inspect the lamp wiring before restarting"},
	}
	var f *led.Fault
	if errors.As(err, &f) {
		d.Evidence = map[string]any{"pin": f.Pin, "on": f.On}
	}
	return d
}
