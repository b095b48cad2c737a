// Package export writes transcripts as csv, plain text, SubRip or WebVTT.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwulff/scrub/internal/timecode"
	"github.com/jwulff/scrub/internal/transcript"
)

// Format is an export file format, named by its file extension.
type Format string

const (
	CSV Format = "csv"
	TXT Format = "txt"
	SRT Format = "srt"
	VTT Format = "vtt"
)

// ErrUnknownFormat is returned for a format name not in Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported formats in menu order.
func Formats() []Format { return []Format{CSV, TXT, SRT, VTT} }

// ParseFormat maps a name such as "srt" or ".SRT" to a Format.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "."))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Next returns the format after f in menu order, wrapping around.
func (f Format) Next() Format {
	all := Formats()
	for i, x := range all {
		if x == f {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// Write encodes segs to w in the given format.
func Write(w io.Writer, format Format, segs []*transcript.Segment) error {
	switch format {
	case CSV:
		return writeCSV(w, segs)
	case TXT:
		return writeText(w, segs)
	case SRT:
		return writeCues(w, segs, false)
	case VTT:
		return writeCues(w, segs, true)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

// WriteFile writes segs to dir/base.<format> and returns the path.
func WriteFile(dir, base string, format Format, segs []*transcript.Segment) (string, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, base+"."+string(format))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := Write(f, format, segs); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

func writeCSV(w io.Writer, segs []*transcript.Segment) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"start_time_hms", "end_time_hms", "text"})
	for _, s := range segs {
		cw.Write([]string{s.StartLabel, s.EndLabel, s.Text})
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, segs []*transcript.Segment) error {
	bw := bufio.NewWriter(w)
	for _, s := range segs {
		fmt.Fprintf(bw, "[%s - %s] %s\n", s.StartLabel, s.EndLabel, s.Text)
	}
	return bw.Flush()
}

// writeCues writes numbered SubRip cues, or WebVTT cues when vtt is set.
func writeCues(w io.Writer, segs []*transcript.Segment, vtt bool) error {
	bw := bufio.NewWriter(w)
	sep := byte(',')
	if vtt {
		sep = '.'
		bw.WriteString("WEBVTT\n\n")
	}
	for i, s := range segs {
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1,
			timecode.FormatSubtitle(s.StartSeconds, sep),
			timecode.FormatSubtitle(s.EndSeconds, sep),
			cueText(s.Text))
	}
	return bw.Flush()
}

// cueText keeps a cue from being cut short by a blank line in its text.
func cueText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
