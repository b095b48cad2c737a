package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep/mp3"
)

// Info describes a media file without opening it for playback.
type Info struct {
	Path       string
	Type       string
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	Size       int64
}

// String renders a one-line summary for the header.
func (i Info) String() string {
	return fmt.Sprintf("%s · %s · %s · %d Hz",
		filepath.Base(i.Path),
		i.Duration.Truncate(time.Second),
		humanize.Bytes(uint64(i.Size)),
		i.SampleRate,
	)
}

// Probe reads the file header so a bad file can be rejected before it
// replaces the current source.
func Probe(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("probe: %w", err)
	}
	info := Info{Path: path, Size: st.Size()}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		info.Type = "wav"
		err = probeWAV(path, &info)
	case ".mp3":
		info.Type = "mp3"
		err = probeMP3(path, &info)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return Info{}, err
	}
	return info, nil
}

func probeWAV(path string, info *Info) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return fmt.Errorf("probe %s: not a valid WAV file", filepath.Base(path))
	}
	dur, err := d.Duration()
	if err != nil {
		return fmt.Errorf("probe %s: duration: %w", filepath.Base(path), err)
	}
	info.SampleRate = int(d.SampleRate)
	info.Channels = int(d.NumChans)
	info.BitDepth = int(d.BitDepth)
	info.Duration = dur
	return nil
}

func probeMP3(path string, info *Info) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	s, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("probe %s: %w", filepath.Base(path), err)
	}
	defer s.Close()

	info.SampleRate = int(format.SampleRate)
	info.Channels = format.NumChannels
	info.BitDepth = format.Precision * 8
	info.Duration = format.SampleRate.D(s.Len())
	return nil
}
