// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Mode selects a workload.
type Mode string

const (
	// ModeBuffered: producers Enqueue, consumers Poll, PollTimeout or Take.
	ModeBuffered Mode = "buffered"
	// ModeTransfer: producers Transfer or TryTransferTimeout, consumers
	// Take or PollTimeout.
	ModeTransfer Mode = "transfer"
	// ModeTraverse: mutators add and remove one value while traversers
	// iterate, split and iterate again.
	ModeTraverse Mode = "traverse"
)

// Config describes a stress run.
type Config struct {
	// Workload
	Mode Mode `json:"mode"`
	// Run length in milliseconds
	DurationMs int `json:"duration_ms"`
	// Producer goroutines, or mutators in traverse mode
	Producers int `json:"producers"`
	// Consumer goroutines, or traversers in traverse mode
	Consumers int `json:"consumers"`

	// Bound of PollTimeout and TryTransferTimeout calls, in microseconds
	PollTimeoutUs int `json:"poll_timeout_us"`
	// Time allowed to drain the queue after producers stop, in milliseconds
	DrainTimeoutMs int `json:"drain_timeout_ms"`

	// Queue tuning
	Spins          int `json:"spins"`
	SweepThreshold int `json:"sweep_threshold"`

	// Logging level name
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeBuffered,
		DurationMs:     1000,
		Producers:      4,
		Consumers:      4,
		PollTimeoutUs:  100,
		DrainTimeoutMs: 5000,
		Spins:          128,
		SweepThreshold: 32,
		LogLevel:       "INFO",
	}
}

// Duration returns the run length.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.DurationMs) * time.Millisecond
}

// PollTimeout returns the bound of timed operations.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutUs) * time.Microsecond
}

// DrainTimeout returns the time allowed to drain after producers stop.
func (c *Config) DrainTimeout() time.Duration {
	return time.Duration(c.DrainTimeoutMs) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeBuffered, ModeTransfer, ModeTraverse:
	default:
		return fmt.Errorf("stress: unknown mode %q", c.Mode)
	}
	if c.DurationMs <= 0 {
		return fmt.Errorf("stress: duration_ms must be > 0, got %d", c.DurationMs)
	}
	if c.Producers < 1 || c.Consumers < 1 {
		return fmt.Errorf("stress: producers and consumers must be >= 1, got %d and %d", c.Producers, c.Consumers)
	}
	if c.PollTimeoutUs < 1 {
		return fmt.Errorf("stress: poll_timeout_us must be >= 1, got %d", c.PollTimeoutUs)
	}
	if c.DrainTimeoutMs < 0 {
		return fmt.Errorf("stress: drain_timeout_ms must be >= 0, got %d", c.DrainTimeoutMs)
	}
	if c.Spins < 0 {
		return fmt.Errorf("stress: spins must be >= 0, got %d", c.Spins)
	}
	if c.SweepThreshold < 1 {
		return fmt.Errorf("stress: sweep_threshold must be >= 1, got %d", c.SweepThreshold)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("stress: log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// DecodeConfig decodes YAML from r over dest. Unknown keys are an error.
func DecodeConfig(dest *Config, r io.Reader) error {
	dec := yaml.NewDecoder(r, yaml.Strict())
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("stress: parse config: %w", err)
	}
	return nil
}

// ReadConfig decodes the YAML file at path over dest.
func ReadConfig(dest *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("stress: open config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(dest, f)
}
