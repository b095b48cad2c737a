package transcript

import "errors"

// ErrUnknownSegment is returned when an edit targets an index that is not in
// the loaded transcript.
var ErrUnknownSegment = errors.New("unknown segment")

// EditState is the state of an Editor.
type EditState int

const (
	Idle EditState = iota
	Editing
)

func (s EditState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// Editor keeps at most one segment editable at a time.
//
// Every exit from Editing commits the draft, unchanged or not. Losing focus
// and pressing the confirm key are the same Commit event.
type Editor struct {
	state EditState
	index int
	draft string
}

// State returns the current state.
func (e *Editor) State() EditState { return e.state }

// Index returns the original index being edited.
func (e *Editor) Index() (int, bool) {
	if e.state != Editing {
		return 0, false
	}
	return e.index, true
}

// Draft returns the pending text. It is empty when Idle.
func (e *Editor) Draft() string { return e.draft }

// BeginEdit opens the segment for editing with its current text as the
// draft. If another segment is open it is committed first.
func (e *Editor) BeginEdit(originalIndex int, st *Store) error {
	seg, ok := st.Segment(originalIndex)
	if !ok {
		return ErrUnknownSegment
	}
	if e.state == Editing {
		e.Commit(st)
	}
	e.state = Editing
	e.index = originalIndex
	e.draft = seg.Text
	return nil
}

// UpdateDraft replaces the draft. Ignored unless Editing.
func (e *Editor) UpdateDraft(text string) {
	if e.state != Editing {
		return
	}
	e.draft = text
}

// Commit writes the draft into the store and returns to Idle. It reports
// whether an edit was open.
//
// Views share segments with canonical, so the snapshot already carries the
// post-edit text once EditText returns.
func (e *Editor) Commit(st *Store) bool {
	if e.state != Editing {
		return false
	}
	st.EditText(e.index, e.draft)
	e.state = Idle
	e.index = 0
	e.draft = ""
	return true
}
