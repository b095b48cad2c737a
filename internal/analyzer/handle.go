package analyzer

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Handle is an analysis node attached to one source. It implements
// media.Sink: the source's output goroutine writes into a ring buffer holding
// the most recent WindowSize mono samples, and Frame turns that ring into a
// magnitude frame.
//
// Frame is meant to be called from a single render loop. All buffers are
// allocated at attach time.
type Handle struct {
	src  Source
	opts Options

	mu       sync.Mutex
	ring     []float64
	pos      int
	detached bool

	fft      *fourier.FFT
	window   []float64
	scratch  []float64
	coeffs   []complex128
	smoothed []float64
	frame    []byte
	scale    float64
}

func newHandle(src Source, opts Options) *Handle {
	n := opts.WindowSize
	return &Handle{
		src:      src,
		opts:     opts,
		ring:     make([]float64, n),
		fft:      fourier.NewFFT(n),
		window:   window.Blackman(n),
		scratch:  make([]float64, n),
		coeffs:   make([]complex128, n/2+1),
		smoothed: make([]float64, n/2),
		frame:    make([]byte, n/2),
		scale:    255 / (opts.MaxDecibels - opts.MinDecibels),
	}
}

// Width is the number of magnitude bins per frame.
func (h *Handle) Width() int { return len(h.frame) }

// WriteSamples implements media.Sink. Stereo input is downmixed to mono.
func (h *Handle) WriteSamples(samples [][2]float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.detached {
		return
	}
	if len(samples) > len(h.ring) {
		samples = samples[len(samples)-len(h.ring):]
	}
	for _, s := range samples {
		h.ring[h.pos] = (s[0] + s[1]) / 2
		h.pos++
		if h.pos == len(h.ring) {
			h.pos = 0
		}
	}
}

// Frame recomputes and returns the magnitude frame. After Detach it returns
// the last frame unchanged.
func (h *Handle) Frame() []byte {
	h.mu.Lock()
	if h.detached {
		h.mu.Unlock()
		return h.frame
	}
	n := copy(h.scratch, h.ring[h.pos:])
	copy(h.scratch[n:], h.ring[:h.pos])
	h.mu.Unlock()

	h.analyze()
	return h.frame
}

// analyze applies the window, transforms, smooths over time and maps each
// bin's decibel value onto [0, 255].
func (h *Handle) analyze() {
	for i, w := range h.window {
		h.scratch[i] *= w
	}
	h.fft.Coefficients(h.coeffs, h.scratch)

	size := float64(len(h.scratch))
	tau := h.opts.Smoothing
	for k := range h.frame {
		mag := cmplx.Abs(h.coeffs[k]) / size
		sm := tau*h.smoothed[k] + (1-tau)*mag
		if math.IsNaN(sm) || math.IsInf(sm, 0) {
			sm = 0
		}
		h.smoothed[k] = sm

		v := (20*math.Log10(sm) - h.opts.MinDecibels) * h.scale
		switch {
		case !(v > 0):
			h.frame[k] = 0
		case v >= 255:
			h.frame[k] = 255
		default:
			h.frame[k] = byte(v)
		}
	}
}

func (h *Handle) detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detached = true
}
