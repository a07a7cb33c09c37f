package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/trafficsignal/internal/traffic"
)

type Pins struct {
	Green  string `yaml:"green"`
	Yellow string `yaml:"yellow"`
	Red    string `yaml:"red"`
}

type Strip struct {
	Dev     string `yaml:"dev"`      // empty picks the first SPI port
	SpeedHz int64  `yaml:"speed_hz"` // e.g. 2500000
}

// Light is one pattern entry as written in config.yaml.
type Light struct {
	Color   string `yaml:"color"`
	Seconds uint32 `yaml:"seconds"`
}

type Config struct {
	Driver   string `yaml:"driver"` // "gpio" | "strip" | "sim"
	Delay    string `yaml:"delay"`  // "busy" | "sleep"
	Addr     string `yaml:"addr,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`

	Pins   Pins    `yaml:"pins"`
	Strip  Strip   `yaml:"strip,omitempty"`
	Lights []Light `yaml:"pattern"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if _, err := c.Pattern(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Pattern converts the configured entries. An empty list yields the default
// green/yellow/red pattern.
func (c *Config) Pattern() (traffic.Pattern, error) {
	if len(c.Lights) == 0 {
		return traffic.DefaultPattern(), nil
	}
	p := make(traffic.Pattern, 0, len(c.Lights))
	for i, l := range c.Lights {
		col, err := traffic.ParseColor(l.Color)
		if err != nil {
			return nil, fmt.Errorf("pattern entry %d: %w", i, err)
		}
		p = append(p, traffic.Light{Color: col, Sec: l.Seconds})
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("pattern: %w", err)
	}
	return p, nil
}

// SetPattern replaces the configured entries with p.
func (c *Config) SetPattern(p traffic.Pattern) {
	c.Lights = make([]Light, 0, len(p))
	for _, l := range p {
		c.Lights = append(c.Lights, Light{Color: l.Color.String(), Seconds: l.Sec})
	}
}
