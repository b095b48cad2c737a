package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reads the YAML file at Path, then applies SCRUB_* environment
// overrides. Tests can override Lookup to inject deterministic maps.
type Loader struct {
	Path   string
	Lookup func(string) (string, bool)
	// Optional makes a missing file fall back to defaults.
	Optional bool
}

// Load returns the validated configuration.
func (l Loader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}

	cfg := Default()
	if l.Path != "" {
		f, err := os.Open(l.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && l.Optional:
		case err != nil:
			return Config{}, fmt.Errorf("config: open %q: %w", l.Path, err)
		default:
			err = decode(f, &cfg)
			f.Close()
			if err != nil {
				return Config{}, fmt.Errorf("config: parse %q: %w", l.Path, err)
			}
		}
	}

	overrideString(l.Lookup, "SCRUB_LOG_LEVEL", &cfg.LogLevel)
	overrideString(l.Lookup, "SCRUB_LOG_FILE", &cfg.LogFile)
	overrideString(l.Lookup, "SCRUB_SOCKET", &cfg.SocketPath)
	overrideString(l.Lookup, "SCRUB_DB", &cfg.DBPath)
	overrideString(l.Lookup, "SCRUB_EXPORT_DIR", &cfg.ExportDir)
	overrideString(l.Lookup, "SCRUB_OUTPUT", &cfg.Output.Mode)
	if err := overrideInt(l.Lookup, "SCRUB_FRAME_RATE", &cfg.FrameRate); err != nil {
		return Config{}, err
	}
	cfg.Output.Mode = strings.ToLower(cfg.Output.Mode)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays YAML from r onto cfg. Unknown keys are errors.
func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = n
	return nil
}
