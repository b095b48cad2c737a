package media

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// Output is where players are sent to be heard.
type Output interface {
	SampleRate() beep.SampleRate
	Play(s beep.Streamer)
}

// NullOutput pulls streamers in real time and discards the audio. It keeps
// analysis taps fed on machines without a sound device.
type NullOutput struct {
	rate beep.SampleRate
	tick time.Duration

	mu        sync.Mutex
	streamers []beep.Streamer
	buf       [][2]float64

	stop chan struct{}
	done chan struct{}
}

// NewNullOutput returns an output at rate. With a positive tick a goroutine
// pulls one tick's worth of samples per tick; with zero the caller drives
// Pull directly.
func NewNullOutput(rate beep.SampleRate, tick time.Duration) *NullOutput {
	o := &NullOutput{
		rate: rate,
		tick: tick,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	if tick > 0 {
		go o.loop()
	} else {
		close(o.done)
	}
	return o
}

func (o *NullOutput) loop() {
	defer close(o.done)
	t := time.NewTicker(o.tick)
	defer t.Stop()
	n := o.rate.N(o.tick)
	for {
		select {
		case <-o.stop:
			return
		case <-t.C:
			o.Pull(n)
		}
	}
}

// SampleRate implements Output.
func (o *NullOutput) SampleRate() beep.SampleRate { return o.rate }

// Play implements Output.
func (o *NullOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = append(o.streamers, s)
}

// Pull streams n samples from every playing streamer and drops the ones that
// are drained.
func (o *NullOutput) Pull(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if cap(o.buf) < n {
		o.buf = make([][2]float64, n)
	}
	buf := o.buf[:n]

	live := o.streamers[:0]
	for _, s := range o.streamers {
		if _, ok := s.Stream(buf); ok {
			live = append(live, s)
		}
	}
	clear(o.streamers[len(live):])
	o.streamers = live
}

// Len returns the number of streamers still being pulled.
func (o *NullOutput) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streamers)
}

// Close stops the pull loop.
func (o *NullOutput) Close() error {
	select {
	case <-o.stop:
	default:
		close(o.stop)
	}
	<-o.done
	return nil
}
