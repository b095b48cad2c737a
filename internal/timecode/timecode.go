// Package timecode parses, validates and formats HH:MM:SS clock strings.
package timecode

import (
	"fmt"
	"strings"
)

// MaxSeconds is the last second representable as a clock string.
// Transcripts are assumed to fit within one day.
const MaxSeconds = 24*60*60 - 1

// maxDigits is the number of digits in a complete HH:MM:SS string.
const maxDigits = 6

// ParseClock converts a strict HH:MM:SS string into total seconds.
// Hours must be 00-23, minutes and seconds 00-59, each exactly two digits.
// The empty string is not a valid clock; callers decide what empty means.
func ParseClock(s string) (int, bool) {
	if len(s) != 8 || s[2] != ':' || s[5] != ':' {
		return 0, false
	}
	h, ok := twoDigits(s[0:2])
	if !ok || h > 23 {
		return 0, false
	}
	m, ok := twoDigits(s[3:5])
	if !ok || m > 59 {
		return 0, false
	}
	sec, ok := twoDigits(s[6:8])
	if !ok || sec > 59 {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}

func twoDigits(s string) (int, bool) {
	if !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// FormatClock renders seconds as zero-padded HH:MM:SS.
// Negative values clamp to zero. There is no day rollover.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatSubtitle renders seconds as HH:MM:SS<sep>000, the cue timestamp used
// by SRT (sep ',') and WebVTT (sep '.'). Segment times are whole seconds.
func FormatSubtitle(seconds int, sep byte) string {
	return FormatClock(seconds) + string(sep) + "000"
}

// IsComplete reports whether s is a fully formed, valid clock string that can
// be submitted as a time query.
func IsComplete(s string) bool {
	_, ok := ParseClock(s)
	return ok
}

// MaskPartialInput normalizes raw keystroke input into a partial clock.
// Non-digits are dropped, input is truncated to six digits and a ':' is
// inserted after every full two-digit group that is followed by more digits:
//
//	"1234"   -> "12:34"
//	"12345"  -> "12:34:5"
//	"1a2:3"  -> "12:3"
func MaskPartialInput(raw string) string {
	var digits [maxDigits]byte
	n := 0
	for i := 0; i < len(raw) && n < maxDigits; i++ {
		if isDigit(raw[i]) {
			digits[n] = raw[i]
			n++
		}
	}

	var b strings.Builder
	b.Grow(n + 2)
	for i := 0; i < n; i++ {
		if i > 0 && i%2 == 0 {
			b.WriteByte(':')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}
