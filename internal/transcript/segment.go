// Package transcript holds the canonical and filtered views of a time-coded
// transcript, the word/time query engine, and the single-line edit state
// machine. All of it is driven from one goroutine and takes no locks.
package transcript

import (
	"fmt"

	"github.com/jwulff/scrub/internal/timecode"
)

// Segment is one time-coded line of transcript text.
//
// Labels are derived from the seconds values and never edited by hand. Text
// is the only field that changes after load.
type Segment struct {
	OriginalIndex int
	StartSeconds  int
	EndSeconds    int
	StartLabel    string
	EndLabel      string
	Text          string
}

// Line is a transcript line as it arrives from a transcription collaborator.
type Line struct {
	Start string `json:"start_time_hms"`
	End   string `json:"end_time_hms"`
	Text  string `json:"text"`
}

// NewSegment builds a segment from second offsets. OriginalIndex is assigned
// by Store.Load.
func NewSegment(start, end int, text string) (*Segment, error) {
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("negative offset %d-%d", start, end)
	}
	if start > end {
		return nil, fmt.Errorf("start %s after end %s",
			timecode.FormatClock(start), timecode.FormatClock(end))
	}
	if end > timecode.MaxSeconds {
		return nil, fmt.Errorf("end %ds exceeds one day", end)
	}
	return &Segment{
		StartSeconds: start,
		EndSeconds:   end,
		StartLabel:   timecode.FormatClock(start),
		EndLabel:     timecode.FormatClock(end),
		Text:         text,
	}, nil
}

// Contains reports whether second falls within [StartSeconds, EndSeconds].
func (s *Segment) Contains(second int) bool {
	return second >= s.StartSeconds && second <= s.EndSeconds
}

// Line returns the segment in wire form.
func (s *Segment) Line() Line {
	return Line{Start: s.StartLabel, End: s.EndLabel, Text: s.Text}
}

// SegmentsFromLines parses clock labels into segments, preserving order.
func SegmentsFromLines(lines []Line) ([]*Segment, error) {
	segs := make([]*Segment, 0, len(lines))
	for i, l := range lines {
		start, ok := timecode.ParseClock(l.Start)
		if !ok {
			return nil, fmt.Errorf("line %d: invalid start time %q", i, l.Start)
		}
		end, ok := timecode.ParseClock(l.End)
		if !ok {
			return nil, fmt.Errorf("line %d: invalid end time %q", i, l.End)
		}
		seg, err := NewSegment(start, end, l.Text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}
