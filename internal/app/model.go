package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/dustin/go-humanize"
	"github.com/jwulff/scrub/internal/daemon"
	"github.com/jwulff/scrub/internal/deck"
	"github.com/jwulff/scrub/internal/export"
	"github.com/jwulff/scrub/internal/media"
	"github.com/jwulff/scrub/internal/timecode"
	"github.com/jwulff/scrub/internal/transcript"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode tracks which input, if any, has keyboard focus.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeWord
	ModeTime
	ModeEdit
	ModeOpen
)

const seekStep = 5 * time.Second

// Options wires the model to its collaborators.
type Options struct {
	Session       *transcript.Session
	Deck          *deck.Deck
	SocketPath    string
	ExportDir     string
	FrameInterval time.Duration
	Log           *slog.Logger
}

// Model is the root bubbletea model for the scrub TUI.
type Model struct {
	sess          *transcript.Session
	deck          *deck.Deck
	socketPath    string
	exportDir     string
	frameInterval time.Duration
	log           *slog.Logger

	// Transcript view
	view     []*transcript.Segment
	selected int
	scroll   int

	// Inputs
	mode      Mode
	wordInput textinput.Model
	timeInput textinput.Model
	editInput textinput.Model
	openInput textinput.Model

	// Playback
	spectrum []byte
	position time.Duration
	duration time.Duration
	playing  bool

	// Transcription job
	tClient      *daemon.Client
	transcribing bool
	progress     float32
	jobID        string

	format export.Format

	// UI state
	width  int
	height int

	// Errors
	errorMessage   string
	errorTransient bool

	// Status
	statusText string
}

// New creates a Model. A nil session is replaced by an empty one.
func New(opts Options) Model {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Session == nil {
		opts.Session = transcript.NewSessionFromSegments("", nil, opts.Log)
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 30
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	word := textinput.New()
	word.Prompt = "word: "
	word.Placeholder = "case-sensitive text"

	tm := textinput.New()
	tm.Prompt = "time: "
	tm.Placeholder = "HH:MM:SS"
	tm.CharLimit = 9

	edit := textinput.New()
	edit.Prompt = "edit: "

	open := textinput.New()
	open.Prompt = "open: "
	open.Placeholder = "path to .wav or .mp3"

	m := Model{
		sess:          opts.Session,
		deck:          opts.Deck,
		socketPath:    opts.SocketPath,
		exportDir:     opts.ExportDir,
		frameInterval: opts.FrameInterval,
		log:           opts.Log,
		wordInput:     word,
		timeInput:     tm,
		editInput:     edit,
		openInput:     open,
		format:        export.SRT,
		statusText:    "Ready",
	}
	m.refresh()
	return m
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return m.frameCmd()
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(m.frameInterval, func(t time.Time) tea.Msg {
		return FrameTickMsg(t)
	})
}

// transcribeCmd connects to the daemon and submits path.
func transcribeCmd(socketPath, path string) tea.Cmd {
	return func() tea.Msg {
		client, err := daemon.Connect(socketPath)
		if err != nil {
			return TranscribeErrorMsg{Err: err}
		}
		id, err := client.Transcribe(path)
		if err != nil {
			client.Close()
			return TranscribeErrorMsg{Err: err}
		}
		return TranscribeStartedMsg{Client: client, JobID: id, Path: path}
	}
}

// readEventCmd reads the next event of the running job.
func readEventCmd(client *daemon.Client) tea.Cmd {
	return func() tea.Msg {
		ev, err := client.ReadEvent()
		if err != nil {
			return TranscribeErrorMsg{Err: err}
		}
		return TranscribeEventMsg{Event: ev}
	}
}

// exportCmd writes segs in the background. segs must not be shared with the
// live session.
func exportCmd(dir, base string, format export.Format, segs []*transcript.Segment) tea.Cmd {
	return func() tea.Msg {
		path, err := export.WriteFile(dir, base, format, segs)
		if err != nil {
			return ExportErrorMsg{Err: err}
		}
		var size int64
		if fi, err := os.Stat(path); err == nil {
			size = fi.Size()
		}
		return ExportedMsg{Path: path, Size: size}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case FrameTickMsg:
		m.sampleDeck()
		return m, m.frameCmd()

	case TranscribeStartedMsg:
		m.tClient = msg.Client
		m.jobID = msg.JobID
		m.transcribing = true
		m.progress = 0
		m.statusText = "Transcribing " + filepath.Base(msg.Path)
		return m, readEventCmd(m.tClient)

	case TranscribeEventMsg:
		cmd := m.handleEvent(msg.Event)
		if msg.Event.Final() {
			m.closeJob()
			return m, cmd
		}
		return m, tea.Batch(cmd, readEventCmd(m.tClient))

	case TranscribeErrorMsg:
		m.closeJob()
		return m, m.setTransientError(msg.Err.Error())

	case ExportedMsg:
		m.statusText = fmt.Sprintf("Exported %s (%s)", msg.Path, humanize.Bytes(uint64(msg.Size)))
		return m, nil

	case ExportErrorMsg:
		return m, m.setTransientError(msg.Err.Error())

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// handleEvent processes a job event and returns any resulting command.
func (m *Model) handleEvent(ev daemon.Event) tea.Cmd {
	switch ev.Event {
	case daemon.EventProgress:
		if ev.Progress != nil {
			m.progress = *ev.Progress
		}

	case daemon.EventTranscript:
		origin := "daemon job " + ev.JobID
		if info, ok := m.deckInfo(); ok {
			origin = info.Path
		}
		sess, err := transcript.NewSession(origin, ev.Lines, m.log)
		if err != nil {
			return m.setTransientError(err.Error())
		}
		m.replaceSession(sess)
		m.statusText = fmt.Sprintf("Transcribed %d lines", len(ev.Lines))

	case daemon.EventError:
		return m.setTransientError(ev.Message)
	}
	return nil
}

func (m *Model) closeJob() {
	if m.tClient != nil {
		m.tClient.Close()
		m.tClient = nil
	}
	m.transcribing = false
	m.jobID = ""
}

// replaceSession swaps in a freshly loaded transcript and clears all query
// and edit state.
func (m *Model) replaceSession(sess *transcript.Session) {
	m.sess.Commit()
	m.editInput.Blur()
	m.blurInputs()
	m.sess = sess
	m.wordInput.SetValue("")
	m.timeInput.SetValue("")
	m.selected = 0
	m.scroll = 0
	m.refresh()
}

func (m *Model) setTransientError(msg string) tea.Cmd {
	m.log.Warn("ui error", "error", msg)
	m.errorMessage = msg
	m.errorTransient = true
	return clearTransientErrorCmd()
}

// sampleDeck pulls the latest spectrum frame and playhead.
func (m *Model) sampleDeck() {
	if m.deck == nil {
		return
	}
	m.spectrum = m.deck.Sample()
	p := m.deck.Player()
	if p == nil {
		m.position, m.duration, m.playing = 0, 0, false
		return
	}
	m.position = p.Position()
	m.duration = p.Duration()
	m.playing = p.Playing()
}

func (m Model) deckInfo() (media.Info, bool) {
	if m.deck == nil {
		return media.Info{}, false
	}
	return m.deck.Info()
}

// refresh re-reads the displayed view and keeps the selection in range.
func (m *Model) refresh() {
	m.view = m.sess.Current()
	if m.selected >= len(m.view) {
		m.selected = max(0, len(m.view)-1)
	}
	m.clampScroll()
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyCtrlC {
		return m.quit()
	}

	switch m.mode {
	case ModeWord, ModeTime:
		return m.handleQueryKey(msg)
	case ModeEdit:
		return m.handleEditKey(msg)
	case ModeOpen:
		return m.handleOpenKey(msg)
	}

	switch key {
	case KeyQuit, KeyQuitUpper:
		return m.quit()

	case KeyWord:
		m.mode = ModeWord
		m.wordInput.CursorEnd()
		cmd := m.wordInput.Focus()
		return m, cmd

	case KeyTime:
		m.mode = ModeTime
		m.timeInput.CursorEnd()
		cmd := m.timeInput.Focus()
		return m, cmd

	case KeyEnter:
		m.submitQuery()
		return m, nil

	case KeyReset:
		restored := m.sess.Reset()
		m.syncInputs()
		m.refresh()
		if !restored {
			m.statusText = "Nothing to reset"
		} else {
			m.statusText = "Filter reset"
		}
		return m, nil

	case KeyJ, KeyDown:
		if m.selected < len(m.view)-1 {
			m.selected++
		}
		m.clampScroll()
		return m, nil

	case KeyK, KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		m.clampScroll()
		return m, nil

	case KeyEdit:
		seg := m.selectedSegment()
		if seg == nil {
			return m, nil
		}
		if err := m.sess.BeginEdit(seg.OriginalIndex); err != nil {
			return m, m.setTransientError(err.Error())
		}
		m.mode = ModeEdit
		m.editInput.SetValue(seg.Text)
		m.editInput.CursorEnd()
		cmd := m.editInput.Focus()
		return m, cmd

	case KeySpace:
		if p := m.player(); p != nil {
			m.playing = p.Toggle()
		}
		return m, nil

	case KeyLeft, KeyRight:
		p := m.player()
		if p == nil {
			return m, nil
		}
		step := seekStep
		if key == KeyLeft {
			step = -step
		}
		if err := p.Seek(p.Position() + step); err != nil {
			return m, m.setTransientError(err.Error())
		}
		m.position = p.Position()
		return m, nil

	case KeyGoto:
		p, seg := m.player(), m.selectedSegment()
		if p == nil || seg == nil {
			return m, nil
		}
		if err := p.Seek(time.Duration(seg.StartSeconds) * time.Second); err != nil {
			return m, m.setTransientError(err.Error())
		}
		m.position = p.Position()
		return m, nil

	case KeyOpen:
		if m.deck == nil {
			return m, nil
		}
		m.mode = ModeOpen
		cmd := m.openInput.Focus()
		return m, cmd

	case KeyFormat:
		m.format = m.format.Next()
		return m, nil

	case KeyExport:
		segs := cloneSegments(m.sess.Export())
		return m, exportCmd(m.exportDir, m.exportBase(), m.format, segs)

	case KeyTranscribe:
		info, ok := m.deckInfo()
		if !ok {
			return m, m.setTransientError("open an audio file first (o)")
		}
		if m.transcribing {
			return m, nil
		}
		m.statusText = "Submitting " + filepath.Base(info.Path)
		return m, transcribeCmd(m.socketPath, info.Path)
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.sess.Commit()
	m.closeJob()
	return m, tea.Quit
}

// handleQueryKey feeds the word or time input. Enter submits both inputs as
// one query, esc leaves the input without searching.
func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEnter:
		m.blurInputs()
		m.submitQuery()
		return m, nil
	case KeyEsc:
		m.blurInputs()
		m.syncInputs()
		return m, nil
	case KeyTab:
		if m.mode == ModeWord {
			m.wordInput.Blur()
			m.mode = ModeTime
			cmd := m.timeInput.Focus()
			return m, cmd
		}
		m.timeInput.Blur()
		m.mode = ModeWord
		cmd := m.wordInput.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.mode == ModeWord {
		m.wordInput, cmd = m.wordInput.Update(msg)
		return m, cmd
	}
	m.timeInput, cmd = m.timeInput.Update(msg)
	m.timeInput.SetValue(timecode.MaskPartialInput(m.timeInput.Value()))
	m.timeInput.CursorEnd()
	return m, cmd
}

// handleEditKey feeds the edit input. Enter, tab and esc all commit.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEnter, KeyTab, KeyEsc:
		m.sess.Commit()
		m.editInput.Blur()
		m.mode = ModeBrowse
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	m.sess.UpdateDraft(m.editInput.Value())
	return m, cmd
}

func (m Model) handleOpenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEsc:
		m.openInput.Blur()
		m.mode = ModeBrowse
		return m, nil
	case KeyEnter:
		m.openInput.Blur()
		m.mode = ModeBrowse
		path := strings.TrimSpace(m.openInput.Value())
		if path == "" {
			return m, nil
		}
		info, err := m.deck.Load(path)
		if err != nil {
			return m, m.setTransientError(err.Error())
		}
		m.openInput.SetValue("")
		m.statusText = "Loaded " + info.String()
		m.sampleDeck()
		return m, nil
	}

	var cmd tea.Cmd
	m.openInput, cmd = m.openInput.Update(msg)
	return m, cmd
}

func (m *Model) blurInputs() {
	m.wordInput.Blur()
	m.timeInput.Blur()
	m.mode = ModeBrowse
}

// submitQuery runs a search with the current input values.
func (m *Model) submitQuery() {
	q := transcript.Query{
		Word: m.wordInput.Value(),
		Time: m.timeInput.Value(),
	}
	if q.Time != "" && !timecode.IsComplete(q.Time) {
		m.statusText = "Incomplete time ignored"
	} else {
		m.statusText = "Search"
	}
	m.sess.Search(q)
	m.selected = 0
	m.scroll = 0
	m.refresh()
}

// syncInputs shows the active query in the inputs.
func (m *Model) syncInputs() {
	m.wordInput.SetValue(m.sess.Engine.Query.Word)
	m.timeInput.SetValue(m.sess.Engine.Query.Time)
}

func (m Model) selectedSegment() *transcript.Segment {
	if m.selected < 0 || m.selected >= len(m.view) {
		return nil
	}
	return m.view[m.selected]
}

func (m Model) player() *media.Player {
	if m.deck == nil {
		return nil
	}
	return m.deck.Player()
}

// playheadIndex is the view index of the first line spanning the playhead,
// or -1.
func (m Model) playheadIndex() int {
	if m.player() == nil {
		return -1
	}
	i, _ := m.sess.SegmentAt(int(m.position / time.Second))
	return i
}

func (m Model) exportBase() string {
	if info, ok := m.deckInfo(); ok {
		return strings.TrimSuffix(filepath.Base(info.Path), filepath.Ext(info.Path))
	}
	if m.sess.Origin != "" {
		return strings.TrimSuffix(filepath.Base(m.sess.Origin), filepath.Ext(m.sess.Origin))
	}
	return "transcript"
}

// cloneSegments copies segment values so a background export does not race
// with later edits.
func cloneSegments(segs []*transcript.Segment) []*transcript.Segment {
	out := make([]*transcript.Segment, len(segs))
	for i, s := range segs {
		c := *s
		out[i] = &c
	}
	return out
}

func (m *Model) clampScroll() {
	visible := m.transcriptVisibleLines() - 1
	if m.selected < m.scroll {
		m.scroll = m.selected
	}
	if m.selected >= m.scroll+visible {
		m.scroll = m.selected - visible + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}
