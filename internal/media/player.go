// Package media decodes audio files into a pausable, seekable beep stream and
// exposes a passive tap that analysis sinks can connect to.
package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupported is returned for file types the player cannot decode.
var ErrUnsupported = errors.New("unsupported media type")

// resampleQuality is the beep resampler quality for rate conversion.
const resampleQuality = 4

// Sink receives a copy of every chunk the player hands to its output.
// WriteSamples is called from the output's goroutine and must not block.
type Sink interface {
	WriteSamples(samples [][2]float64)
}

// Player streams one decoded file. It starts paused. When playback reaches
// the end it pauses and rewinds to the start; connected sinks stay connected.
type Player struct {
	mu      sync.Mutex
	path    string
	format  beep.Format
	rate    beep.SampleRate
	decoder beep.StreamSeekCloser
	stream  beep.Streamer
	playing bool
	closed  bool
	sinks   []Sink
}

// Open decodes path and prepares it for an output running at rate.
func Open(path string, rate beep.SampleRate) (*Player, error) {
	decoder, format, err := decode(path)
	if err != nil {
		return nil, err
	}
	return NewPlayer(path, decoder, format, rate), nil
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open media: %w", err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}

// NewPlayer wraps an already-decoded stream.
func NewPlayer(path string, decoder beep.StreamSeekCloser, format beep.Format, rate beep.SampleRate) *Player {
	p := &Player{
		path:    path,
		format:  format,
		rate:    rate,
		decoder: decoder,
	}
	p.rebuild()
	return p
}

// rebuild recreates the resampler after the decoder position changes.
func (p *Player) rebuild() {
	if p.format.SampleRate == p.rate {
		p.stream = p.decoder
		return
	}
	p.stream = beep.Resample(resampleQuality, p.format.SampleRate, p.rate, p.decoder)
}

// Stream implements beep.Streamer. Paused or ended playback yields silence so
// the output keeps pulling; a closed player reports it is drained.
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, false
	}

	n := 0
	if p.playing {
		var ok bool
		n, ok = p.stream.Stream(samples)
		if !ok || n < len(samples) {
			p.rewindLocked()
		}
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	for _, s := range p.sinks {
		s.WriteSamples(samples)
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.decoder.Err()
}

// Connect adds a tap. Connecting the same sink twice is a no-op.
func (p *Player) Connect(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slices.Contains(p.sinks, s) {
		return
	}
	p.sinks = append(p.sinks, s)
}

// Disconnect removes a tap.
func (p *Player) Disconnect(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = slices.DeleteFunc(p.sinks, func(x Sink) bool { return x == s })
}

// Taps returns the number of connected sinks.
func (p *Player) Taps() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sinks)
}

// Play resumes playback.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = !p.closed
}

// Pause halts playback at the current position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// Toggle flips between playing and paused and returns the new state.
func (p *Player) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = !p.playing && !p.closed
	return p.playing
}

// Playing reports whether the player is playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Seek moves the playhead, clamped to [0, Duration].
func (p *Player) Seek(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seekLocked(d)
}

func (p *Player) seekLocked(d time.Duration) error {
	if p.closed {
		return nil
	}
	n := p.format.SampleRate.N(d)
	n = max(0, min(n, p.decoder.Len()))
	if err := p.decoder.Seek(n); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	p.rebuild()
	return nil
}

// Reset pauses playback and rewinds to the start.
func (p *Player) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	return p.seekLocked(0)
}

func (p *Player) rewindLocked() {
	p.playing = false
	_ = p.seekLocked(0)
}

// Position returns the playhead position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.format.SampleRate.D(p.decoder.Position())
}

// Duration returns the total length of the media.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.format.SampleRate.D(p.decoder.Len())
}

// Path returns the file the player was opened from.
func (p *Player) Path() string { return p.path }

// Close releases the decoder. The output drops the player on its next pull.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.playing = false
	p.sinks = nil
	return p.decoder.Close()
}
