// Package device plays media through the system sound device.
package device

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Speaker is a media.Output backed by beep's speaker. The speaker can only be
// initialized once per process, so every file is resampled to one rate.
type Speaker struct {
	rate beep.SampleRate
}

// Open initializes the sound device at rate with the given buffer latency.
func Open(rate beep.SampleRate, buffer time.Duration) (*Speaker, error) {
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &Speaker{rate: rate}, nil
}

// SampleRate implements media.Output.
func (s *Speaker) SampleRate() beep.SampleRate { return s.rate }

// Play implements media.Output.
func (s *Speaker) Play(st beep.Streamer) { speaker.Play(st) }

// Close stops all playback and releases the device.
func (s *Speaker) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}
