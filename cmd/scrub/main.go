// Command scrub browses, searches, edits and exports timed transcripts next
// to the audio they came from.
//
//	scrub [flags]       interactive terminal UI
//	scrub mcp [flags]   MCP server on stdio over one transcript
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep"

	"github.com/jwulff/scrub/internal/analyzer"
	"github.com/jwulff/scrub/internal/app"
	"github.com/jwulff/scrub/internal/config"
	"github.com/jwulff/scrub/internal/db"
	"github.com/jwulff/scrub/internal/deck"
	"github.com/jwulff/scrub/internal/mcptools"
	"github.com/jwulff/scrub/internal/media"
	"github.com/jwulff/scrub/internal/media/device"
	"github.com/jwulff/scrub/internal/transcript"
)

var version = "dev"

type options struct {
	configPath string
	transcript string
	dbPath     string
	session    string
	audio      string
	mute       bool
}

func newFlagSet(name string, o *options, withAudio bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "config file (default: user config dir)")
	fs.StringVar(&o.transcript, "transcript", "", "JSON transcript file to load")
	fs.StringVar(&o.dbPath, "db", "", "steno database to read a session from")
	fs.StringVar(&o.session, "session", "", "steno session ID (default: latest)")
	if withAudio {
		fs.StringVar(&o.audio, "audio", "", "audio file (.wav or .mp3) to open")
		fs.BoolVar(&o.mute, "mute", false, "decode audio without a sound device")
	}
	return fs
}

func main() {
	args := os.Args[1:]
	var err error
	if len(args) > 0 && args[0] == "mcp" {
		err = runMCP(args[1:])
	} else {
		err = runTUI(args)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "scrub:", err)
		os.Exit(1)
	}
}

func loadConfig(o options) (config.Config, error) {
	l := config.Loader{Path: o.configPath}
	if l.Path == "" {
		l.Path = config.DefaultPath()
		l.Optional = true
	}
	cfg, err := l.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

// loadSession reads the transcript named by the flags. It returns nil when no
// source was given.
func loadSession(o options, cfg config.Config, log *slog.Logger) (*transcript.Session, error) {
	if o.transcript != "" {
		lines, err := transcript.ReadLinesFile(o.transcript)
		if err != nil {
			return nil, err
		}
		return transcript.NewSession(o.transcript, lines, log)
	}
	if o.dbPath == "" && o.session == "" {
		return nil, nil
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	sess, lines, err := store.Transcript(o.session)
	if err != nil {
		return nil, fmt.Errorf("read steno session: %w", err)
	}
	return transcript.NewSession("steno: "+sess.Label(), lines, log)
}

func runTUI(args []string) error {
	var o options
	if err := newFlagSet("scrub", &o, true).Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.Level())
	logger.Info("starting scrub", "version", version, "output", cfg.Output.Mode)

	sess, err := loadSession(o, cfg, logger)
	if err != nil {
		return err
	}

	sampler, err := analyzer.New(cfg.AnalyzerOptions())
	if err != nil {
		return err
	}
	out, closeOut := openOutput(cfg, o.mute, logger)
	defer closeOut()

	d := deck.New(sampler, out, logger)
	defer d.Close()
	if o.audio != "" {
		if _, err := d.Load(o.audio); err != nil {
			return err
		}
	}

	model := app.New(app.Options{
		Session:       sess,
		Deck:          d,
		SocketPath:    cfg.SocketPath,
		ExportDir:     cfg.ExportDir,
		FrameInterval: cfg.FrameInterval(),
		Log:           logger,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// openOutput opens the sound device, falling back to a timer-driven null
// output when muted or when no device is available.
func openOutput(cfg config.Config, mute bool, log *slog.Logger) (media.Output, func()) {
	rate := beep.SampleRate(cfg.Output.SampleRate)
	if !mute && cfg.Output.Mode == config.OutputDevice {
		spk, err := device.Open(rate, cfg.Buffer())
		if err == nil {
			return spk, func() { spk.Close() }
		}
		log.Warn("sound device unavailable, decoding silently", "error", err)
	}
	null := media.NewNullOutput(rate, 10*time.Millisecond)
	return null, func() { null.Close() }
}

func runMCP(args []string) error {
	var o options
	if err := newFlagSet("scrub mcp", &o, false).Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	logger := newLogger(os.Stderr, cfg.Level())

	sess, err := loadSession(o, cfg, logger)
	if err != nil {
		return err
	}
	if sess == nil {
		return errors.New("mcp needs -transcript, -db or -session")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("serving MCP", "version", version, "session", sess.ID, "segments", sess.Store.Len())
	srv := mcptools.New(sess, cfg.ExportDir, version, logger)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
