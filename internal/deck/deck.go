// Package deck binds the current media player to the analysis sampler and
// the audio output, and handles swapping one source for another.
package deck

import (
	"fmt"
	"log/slog"

	"github.com/jwulff/scrub/internal/analyzer"
	"github.com/jwulff/scrub/internal/media"
)

// Deck owns at most one player and its analysis handle.
type Deck struct {
	sampler *analyzer.Sampler
	out     media.Output
	log     *slog.Logger

	player *media.Player
	handle *analyzer.Handle
	info   media.Info
	empty  []byte
}

// New returns an empty deck.
func New(sampler *analyzer.Sampler, out media.Output, log *slog.Logger) *Deck {
	if log == nil {
		log = slog.Default()
	}
	return &Deck{
		sampler: sampler,
		out:     out,
		log:     log,
		empty:   make([]byte, sampler.Options().WindowSize/2),
	}
}

// Load replaces the current source with path. The new file is probed and
// decoded first, so a bad file leaves the current source untouched. The old
// player is paused and rewound before it is detached and closed, so nothing
// keeps playing in the background.
func (d *Deck) Load(path string) (media.Info, error) {
	info, err := media.Probe(path)
	if err != nil {
		return media.Info{}, err
	}
	next, err := media.Open(path, d.out.SampleRate())
	if err != nil {
		return media.Info{}, err
	}

	d.release()

	h, err := d.sampler.Attach(next)
	if err != nil {
		next.Close()
		return media.Info{}, fmt.Errorf("attach analyzer: %w", err)
	}
	d.player = next
	d.handle = h
	d.info = info
	d.out.Play(next)

	d.log.Info("media loaded", "path", path, "duration", info.Duration, "sample_rate", info.SampleRate)
	return info, nil
}

// release resets, detaches and closes the current player.
func (d *Deck) release() {
	if d.player == nil {
		return
	}
	if err := d.player.Reset(); err != nil {
		d.log.Warn("reset previous media", "error", err)
	}
	if err := d.sampler.Detach(d.handle); err != nil {
		d.log.Warn("detach analyzer", "error", err)
	}
	if err := d.player.Close(); err != nil {
		d.log.Warn("close previous media", "error", err)
	}
	d.player = nil
	d.handle = nil
	d.info = media.Info{}
}

// Sample returns the latest spectrum frame, or a zero frame with no media.
func (d *Deck) Sample() []byte {
	if d.handle == nil {
		return d.empty
	}
	return d.sampler.Sample(d.handle)
}

// Player returns the current player, or nil.
func (d *Deck) Player() *media.Player { return d.player }

// Info returns the probe result of the current file.
func (d *Deck) Info() (media.Info, bool) { return d.info, d.player != nil }

// Close releases the current source.
func (d *Deck) Close() { d.release() }
