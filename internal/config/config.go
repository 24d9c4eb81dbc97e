// Package config loads the analyzer settings from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/AJolly/rtl-433/internal/debounce"
)

// Output formats for accepted readings.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Tracker holds the debounce limits.
type Tracker struct {
	Capacity  int     `yaml:"capacity"`
	MaxDeltaC float64 `yaml:"max_delta_c"`
}

// Output selects how readings are printed.
type Output struct {
	Format string `yaml:"format"`
}

// MQTT configures the optional publish sink. An empty broker disables it.
type MQTT struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// Metrics configures the Prometheus endpoint. An empty listen address
// disables it.
type Metrics struct {
	Listen string `yaml:"listen"`
}

// Config is the root of the YAML document.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Tracker  Tracker `yaml:"tracker"`
	Output   Output  `yaml:"output"`
	MQTT     MQTT    `yaml:"mqtt"`
	Metrics  Metrics `yaml:"metrics"`
}

// Default returns the reference settings.
func Default() Config {
	return Config{
		LogLevel: logrus.InfoLevel.String(),
		Tracker: Tracker{
			Capacity:  debounce.DefaultCapacity,
			MaxDeltaC: debounce.DefaultMaxDelta,
		},
		Output: Output{Format: FormatJSON},
	}
}

// Load reads path on top of Default. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the decoder cannot work with.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Tracker.Capacity <= 0 {
		return fmt.Errorf("tracker.capacity must be positive, got %d", c.Tracker.Capacity)
	}
	if c.Tracker.MaxDeltaC < 0 {
		return fmt.Errorf("tracker.max_delta_c must not be negative, got %v", c.Tracker.MaxDeltaC)
	}
	switch c.Output.Format {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	return nil
}

// TrackerOptions converts the tracker section to debounce options.
func (c Config) TrackerOptions() []debounce.Option {
	return []debounce.Option{
		debounce.WithCapacity(c.Tracker.Capacity),
		debounce.WithMaxDelta(c.Tracker.MaxDeltaC),
	}
}
