package transcript

import (
	"strings"

	"github.com/jwulff/scrub/internal/timecode"
)

// Query is a word and/or clock-time constraint. Empty fields impose no
// constraint.
type Query struct {
	// Word is a case-sensitive substring.
	Word string
	// Time is an HH:MM:SS clock string. Anything that does not parse is
	// treated as no time constraint.
	Time string
}

// IsEmpty reports whether both fields are empty.
func (q Query) IsEmpty() bool { return q.Word == "" && q.Time == "" }

type predicate struct {
	word    string
	at      int
	hasTime bool
}

// predicate resolves q into an effective test. ok is false when nothing
// constrains the search, which includes a malformed time with no word.
func (q Query) predicate() (p predicate, ok bool) {
	p.word = q.Word
	if q.Time != "" {
		p.at, p.hasTime = timecode.ParseClock(q.Time)
	}
	return p, p.word != "" || p.hasTime
}

func (p predicate) match(seg *Segment) bool {
	if p.word != "" && !strings.Contains(seg.Text, p.word) {
		return false
	}
	if p.hasTime && !seg.Contains(p.at) {
		return false
	}
	return true
}

// Filter applies q to view without touching any store. An unconstrained
// query returns unfiltered. Relative order of view is preserved.
func Filter(q Query, view, unfiltered []*Segment) []*Segment {
	p, ok := q.predicate()
	if !ok {
		out := make([]*Segment, len(unfiltered))
		copy(out, unfiltered)
		return out
	}
	out := make([]*Segment, 0, len(view))
	for _, seg := range view {
		if p.match(seg) {
			out = append(out, seg)
		}
	}
	return out
}

// Engine evaluates queries against a Store and tracks the active query.
type Engine struct {
	Query Query
}

// Search filters the store's current view with q. The view that was current
// before the call is saved as the snapshot, replacing any earlier one, so
// Reset undoes exactly one search.
//
// An unconstrained q clears the active filter: it returns the snapshot when a
// filter is active and one exists, and otherwise the current view, which is
// already unfiltered.
func (e *Engine) Search(q Query, st *Store) []*Segment {
	unfiltered := st.canonical
	if _, active := e.Query.predicate(); !active {
		unfiltered = st.current
	} else if st.hasSnapshot {
		unfiltered = st.snapshot
	}
	e.Query = q
	result := Filter(q, st.current, unfiltered)
	st.SaveSnapshot()
	st.SetCurrent(result)
	return st.Current()
}

// Reset clears the query and restores the snapshot, if one exists. It
// reports whether a snapshot was restored.
func (e *Engine) Reset(st *Store) bool {
	e.Query = Query{}
	return st.RestoreSnapshot()
}
