package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Loader{Lookup: env(nil)}.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FrameRate != DefaultFrameRate || cfg.Output.Mode != OutputDevice {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Analyzer.WindowSize != 2048 || cfg.Analyzer.Smoothing != 0.8 {
		t.Errorf("analyzer defaults = %+v", cfg.Analyzer)
	}
	if cfg.FrameInterval() != time.Second/30 {
		t.Errorf("frame interval = %v", cfg.FrameInterval())
	}
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
log_level: debug
export_dir: /tmp/exports
analyzer:
  window_size: 1024
output:
  mode: "null"
  buffer_ms: 50
`)
	cfg, err := Loader{Path: path, Lookup: env(nil)}.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Level().String() != "DEBUG" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.AnalyzerOptions().WindowSize != 1024 {
		t.Errorf("window size = %d", cfg.Analyzer.WindowSize)
	}
	if cfg.Analyzer.MaxDecibels != -30 {
		t.Errorf("unset analyzer fields should keep defaults, got %+v", cfg.Analyzer)
	}
	if cfg.Output.Mode != OutputNull || cfg.Buffer() != 50*time.Millisecond {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Output.SampleRate != DefaultSampleRate {
		t.Errorf("sample rate = %d", cfg.Output.SampleRate)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "colour: blue\n")
	_, err := Loader{Path: path, Lookup: env(nil)}.Load()
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Errorf("err = %v, want unknown field error", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, "")
	if _, err := (Loader{Path: path, Lookup: env(nil)}).Load(); err != nil {
		t.Errorf("empty file: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	if _, err := (Loader{Path: missing, Lookup: env(nil)}).Load(); err == nil {
		t.Error("explicit missing file should fail")
	}
	if _, err := (Loader{Path: missing, Lookup: env(nil), Optional: true}).Load(); err != nil {
		t.Errorf("optional missing file: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "log_level: warn\nframe_rate: 20\n")
	cfg, err := Loader{Path: path, Lookup: env(map[string]string{
		"SCRUB_LOG_LEVEL":  " error ",
		"SCRUB_FRAME_RATE": "60",
		"SCRUB_OUTPUT":     "NULL",
		"SCRUB_DB":         "/data/steno.sqlite",
		"SCRUB_SOCKET":     "",
	})}.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" || cfg.FrameRate != 60 || cfg.Output.Mode != OutputNull {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DBPath != "/data/steno.sqlite" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.SocketPath == "" {
		t.Error("blank env value should not clear the socket path")
	}

	_, err = Loader{Lookup: env(map[string]string{"SCRUB_FRAME_RATE": "fast"})}.Load()
	if err == nil {
		t.Error("non-numeric frame rate should fail")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	cfg.FrameRate = 0
	cfg.Analyzer.WindowSize = 1000
	cfg.Output.Mode = "tape"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"log_level", "frame_rate", "window size", "output.mode"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}
