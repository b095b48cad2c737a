package transcript

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Session is the single explicit aggregate for one loaded transcript: the
// store, the active query with its snapshot, and the edit state.
type Session struct {
	ID     string
	Origin string
	Store  *Store
	Engine Engine
	Editor Editor

	log *slog.Logger
}

// NewSession ingests lines from origin (a file path, database session or
// daemon job) into a fresh store.
func NewSession(origin string, lines []Line, log *slog.Logger) (*Session, error) {
	segs, err := SegmentsFromLines(lines)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", origin, err)
	}
	return NewSessionFromSegments(origin, segs, log), nil
}

// NewSessionFromSegments wraps already-built segments in a session.
func NewSessionFromSegments(origin string, segs []*Segment, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	id := uuid.NewString()
	log = log.With("session", id)

	st := NewStore(log)
	st.Load(segs)
	log.Info("transcript loaded", "origin", origin, "segments", len(segs))

	return &Session{
		ID:     id,
		Origin: origin,
		Store:  st,
		log:    log,
	}
}

// Search commits any open edit, then filters the current view.
func (s *Session) Search(q Query) []*Segment {
	s.Editor.Commit(s.Store)
	view := s.Engine.Search(q, s.Store)
	s.log.Debug("search", "word", q.Word, "time", q.Time, "matches", len(view))
	return view
}

// Reset commits any open edit, clears the query and restores the snapshot.
func (s *Session) Reset() bool {
	s.Editor.Commit(s.Store)
	return s.Engine.Reset(s.Store)
}

// BeginEdit opens a segment for editing.
func (s *Session) BeginEdit(originalIndex int) error {
	return s.Editor.BeginEdit(originalIndex, s.Store)
}

// UpdateDraft replaces the pending edit text.
func (s *Session) UpdateDraft(text string) { s.Editor.UpdateDraft(text) }

// Commit writes the pending edit, if any.
func (s *Session) Commit() bool {
	idx, _ := s.Editor.Index()
	if !s.Editor.Commit(s.Store) {
		return false
	}
	s.log.Debug("edit committed", "index", idx)
	return true
}

// Current returns the displayed view.
func (s *Session) Current() []*Segment { return s.Store.Current() }

// Export returns the full, unfiltered, post-edit sequence.
func (s *Session) Export() []*Segment { return s.Store.Canonical() }

// SegmentAt returns the first segment in the current view containing second
// and its position in that view. The position is -1 on a miss.
func (s *Session) SegmentAt(second int) (int, *Segment) {
	for i, seg := range s.Store.current {
		if seg.Contains(second) {
			return i, seg
		}
	}
	return -1, nil
}
