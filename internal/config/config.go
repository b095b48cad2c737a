// Package config loads scrub settings from a YAML file with SCRUB_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwulff/scrub/internal/analyzer"
	"github.com/jwulff/scrub/internal/daemon"
	"github.com/jwulff/scrub/internal/db"
)

// Output modes.
const (
	OutputDevice = "device"
	OutputNull   = "null"
)

const (
	DefaultFrameRate  = 30
	DefaultSampleRate = 44100
	DefaultBufferMS   = 100
)

// Config is the full application configuration.
type Config struct {
	LogLevel   string         `yaml:"log_level"`
	LogFile    string         `yaml:"log_file"`
	SocketPath string         `yaml:"socket_path"`
	DBPath     string         `yaml:"db_path"`
	ExportDir  string         `yaml:"export_dir"`
	FrameRate  int            `yaml:"frame_rate"`
	Analyzer   AnalyzerConfig `yaml:"analyzer"`
	Output     OutputConfig   `yaml:"output"`
}

// AnalyzerConfig mirrors analyzer.Options.
type AnalyzerConfig struct {
	WindowSize  int     `yaml:"window_size"`
	Smoothing   float64 `yaml:"smoothing"`
	MinDecibels float64 `yaml:"min_decibels"`
	MaxDecibels float64 `yaml:"max_decibels"`
}

// OutputConfig selects where decoded audio goes. The null output pulls audio
// on a timer without a sound device.
type OutputConfig struct {
	Mode       string `yaml:"mode"`
	SampleRate int    `yaml:"sample_rate"`
	BufferMS   int    `yaml:"buffer_ms"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	opts := analyzer.DefaultOptions()
	return Config{
		LogLevel:   "info",
		LogFile:    filepath.Join(os.TempDir(), "scrub.log"),
		SocketPath: daemon.SocketPath(),
		DBPath:     db.DefaultDBPath(),
		ExportDir:  ".",
		FrameRate:  DefaultFrameRate,
		Analyzer: AnalyzerConfig{
			WindowSize:  opts.WindowSize,
			Smoothing:   opts.Smoothing,
			MinDecibels: opts.MinDecibels,
			MaxDecibels: opts.MaxDecibels,
		},
		Output: OutputConfig{
			Mode:       OutputDevice,
			SampleRate: DefaultSampleRate,
			BufferMS:   DefaultBufferMS,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scrub", "config.yaml")
}

// AnalyzerOptions converts the analyzer section.
func (c Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		WindowSize:  c.Analyzer.WindowSize,
		Smoothing:   c.Analyzer.Smoothing,
		MinDecibels: c.Analyzer.MinDecibels,
		MaxDecibels: c.Analyzer.MaxDecibels,
	}
}

// FrameInterval is the render tick period.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// Buffer is the output device buffer length.
func (c Config) Buffer() time.Duration {
	return time.Duration(c.Output.BufferMS) * time.Millisecond
}

// Level parses LogLevel.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", c.LogLevel))
	}
	if c.FrameRate < 1 || c.FrameRate > 120 {
		errs = append(errs, fmt.Errorf("frame_rate %d must be in [1, 120]", c.FrameRate))
	}
	opts := c.AnalyzerOptions()
	if err := opts.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Output.Mode) {
	case OutputDevice, OutputNull:
	default:
		errs = append(errs, fmt.Errorf("output.mode %q must be %q or %q", c.Output.Mode, OutputDevice, OutputNull))
	}
	if c.Output.SampleRate < 8000 || c.Output.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("output.sample_rate %d must be in [8000, 192000]", c.Output.SampleRate))
	}
	if c.Output.BufferMS <= 0 {
		errs = append(errs, fmt.Errorf("output.buffer_ms %d must be positive", c.Output.BufferMS))
	}

	return errors.Join(errs...)
}
