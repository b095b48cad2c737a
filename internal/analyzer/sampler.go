// Package analyzer samples the frequency-domain magnitude of a playing media
// source for visualization. It is pull-based: the caller's render loop asks
// for the latest frame, the sampler owns no timer or goroutine.
package analyzer

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync"

	"github.com/jwulff/scrub/internal/media"
)

// Defaults mirror a browser AnalyserNode.
const (
	DefaultWindowSize  = 2048
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0

	minWindowSize = 32
	maxWindowSize = 32768
)

var (
	// ErrAlreadyAttached is returned when a source is attached twice without
	// an intervening Detach.
	ErrAlreadyAttached = errors.New("source already attached")
	// ErrNotAttached is returned when detaching a handle this sampler does not
	// own.
	ErrNotAttached = errors.New("handle not attached")
)

// Source is a media source with a passive tap.
type Source interface {
	Connect(s media.Sink)
	Disconnect(s media.Sink)
}

// Options configures analysis resolution and scaling.
type Options struct {
	// WindowSize is the FFT length in samples, a power of two in [32, 32768].
	// Frames are WindowSize/2 bytes wide.
	WindowSize int
	// Smoothing is the time constant in [0, 1) blending each frame with the
	// previous one.
	Smoothing float64
	// MinDecibels and MaxDecibels map magnitudes onto 0 and 255.
	MinDecibels float64
	MaxDecibels float64
}

// DefaultOptions returns a 2048-sample window with browser scaling.
func DefaultOptions() Options {
	return Options{
		WindowSize:  DefaultWindowSize,
		Smoothing:   DefaultSmoothing,
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
	}
}

// Validate defaults a zero WindowSize, and the decibel range when both bounds
// are zero, then rejects impossible settings. A zero Smoothing is kept and
// disables smoothing; a single zero decibel bound is taken as given.
func (o *Options) Validate() error {
	if o.WindowSize == 0 {
		o.WindowSize = DefaultWindowSize
	}
	if o.MinDecibels == 0 && o.MaxDecibels == 0 {
		o.MinDecibels, o.MaxDecibels = DefaultMinDecibels, DefaultMaxDecibels
	}
	if o.WindowSize < minWindowSize || o.WindowSize > maxWindowSize || bits.OnesCount(uint(o.WindowSize)) != 1 {
		return fmt.Errorf("analyzer: window size %d must be a power of two in [%d, %d]",
			o.WindowSize, minWindowSize, maxWindowSize)
	}
	if o.Smoothing < 0 || o.Smoothing >= 1 || math.IsNaN(o.Smoothing) {
		return fmt.Errorf("analyzer: smoothing %v must be in [0, 1)", o.Smoothing)
	}
	if o.MinDecibels >= o.MaxDecibels {
		return fmt.Errorf("analyzer: min decibels %v must be below max %v", o.MinDecibels, o.MaxDecibels)
	}
	return nil
}

// Sampler attaches analysis nodes to sources, at most one per source.
type Sampler struct {
	opts Options

	mu       sync.Mutex
	attached map[Source]*Handle
}

// New returns a sampler with validated options.
func New(opts Options) (*Sampler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{
		opts:     opts,
		attached: make(map[Source]*Handle),
	}, nil
}

// Options returns the validated options.
func (s *Sampler) Options() Options { return s.opts }

// Attach creates an analysis node and connects it to src's tap. Attaching a
// source that already has a live handle fails with ErrAlreadyAttached.
func (s *Sampler) Attach(src Source) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attached[src]; ok {
		return nil, ErrAlreadyAttached
	}
	h := newHandle(src, s.opts)
	s.attached[src] = h
	src.Connect(h)
	return h, nil
}

// Sample returns the latest magnitude frame for h. The returned slice is
// owned by h and overwritten by the next call.
func (s *Sampler) Sample(h *Handle) []byte {
	return h.Frame()
}

// Detach disconnects h from its source. The handle keeps its last frame.
func (s *Sampler) Detach(h *Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h == nil || s.attached[h.src] != h {
		return ErrNotAttached
	}
	delete(s.attached, h.src)
	h.src.Disconnect(h)
	h.detach()
	return nil
}

// Attached reports how many sources currently have a handle.
func (s *Sampler) Attached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attached)
}
