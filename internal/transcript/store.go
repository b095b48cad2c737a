package transcript

import (
	"log/slog"
	"slices"
)

// Store owns the canonical segment sequence, the currently displayed view and
// a single-slot restore snapshot.
//
// The three sequences share *Segment values, so a text edit is visible in
// every view that holds the segment.
type Store struct {
	canonical   []*Segment
	current     []*Segment
	snapshot    []*Segment
	hasSnapshot bool
	log         *slog.Logger
}

// NewStore returns an empty store. A nil logger uses slog.Default.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{log: log}
}

// Load replaces the canonical and current sequences with segs, assigning
// OriginalIndex by position, and clears the snapshot.
func (s *Store) Load(segs []*Segment) {
	s.canonical = make([]*Segment, len(segs))
	for i, seg := range segs {
		seg.OriginalIndex = i
		s.canonical[i] = seg
	}
	s.current = slices.Clone(s.canonical)
	s.snapshot = nil
	s.hasSnapshot = false
}

// SetCurrent replaces the displayed view. Canonical is untouched.
func (s *Store) SetCurrent(view []*Segment) {
	s.current = slices.Clone(view)
}

// EditText replaces the text of the segment with the given original index.
// An unknown index is a caller bug and is ignored.
func (s *Store) EditText(originalIndex int, text string) {
	seg, ok := s.Segment(originalIndex)
	if !ok {
		s.log.Debug("edit for unknown segment ignored", "index", originalIndex)
		return
	}
	seg.Text = text
}

// Segment returns the canonical segment with the given original index.
func (s *Store) Segment(originalIndex int) (*Segment, bool) {
	if originalIndex < 0 || originalIndex >= len(s.canonical) {
		return nil, false
	}
	return s.canonical[originalIndex], true
}

// Canonical returns the full loaded sequence in load order.
func (s *Store) Canonical() []*Segment { return slices.Clone(s.canonical) }

// Current returns the displayed view.
func (s *Store) Current() []*Segment { return slices.Clone(s.current) }

// Len is the number of canonical segments.
func (s *Store) Len() int { return len(s.canonical) }

// Filtered reports whether the displayed view is narrower than canonical.
func (s *Store) Filtered() bool { return len(s.current) != len(s.canonical) }

// Snapshot returns the remembered prior view, if any.
func (s *Store) Snapshot() ([]*Segment, bool) {
	if !s.hasSnapshot {
		return nil, false
	}
	return slices.Clone(s.snapshot), true
}

// SaveSnapshot overwrites the snapshot with the current view. Only one prior
// view is ever kept.
func (s *Store) SaveSnapshot() {
	s.snapshot = slices.Clone(s.current)
	s.hasSnapshot = true
}

// RestoreSnapshot writes the snapshot back into current. It reports false
// when there is nothing to restore.
func (s *Store) RestoreSnapshot() bool {
	if !s.hasSnapshot {
		return false
	}
	s.current = slices.Clone(s.snapshot)
	return true
}
