package app

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwulff/scrub/internal/analyzer"
	"github.com/jwulff/scrub/internal/daemon"
	"github.com/jwulff/scrub/internal/deck"
	"github.com/jwulff/scrub/internal/media"
	"github.com/jwulff/scrub/internal/transcript"
)

func testSession(t *testing.T) *transcript.Session {
	t.Helper()
	sess, err := transcript.NewSession("talk.json", []transcript.Line{
		{Start: "00:00:00", End: "00:00:04", Text: "good morning everyone"},
		{Start: "00:00:04", End: "00:00:09", Text: "the agenda is short"},
		{Start: "00:00:09", End: "00:00:15", Text: "first the budget"},
		{Start: "00:00:15", End: "00:00:21", Text: "then the agenda for next week"},
	}, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess
}

func testDeck(t *testing.T) (*deck.Deck, *media.NullOutput) {
	t.Helper()
	s, err := analyzer.New(analyzer.DefaultOptions())
	if err != nil {
		t.Fatalf("analyzer: %v", err)
	}
	out := media.NewNullOutput(8000, 0)
	t.Cleanup(func() { out.Close() })
	d := deck.New(s, out, nil)
	t.Cleanup(d.Close)
	return d, out
}

func writeWAV(t *testing.T, seconds float64) string {
	t.Helper()
	const rate = 8000
	path := filepath.Join(t.TempDir(), "talk.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	data := make([]int, int(seconds*rate))
	for i := range data {
		data[i] = int(8000 * math.Sin(2*math.Pi*300*float64(i)/rate))
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func newModel(t *testing.T) Model {
	t.Helper()
	d, _ := testDeck(t)
	m := New(Options{Session: testSession(t), Deck: d, ExportDir: t.TempDir()})
	m.width = 120
	m.height = 30
	return m
}

func applyUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func keys(m Model, ks ...tea.KeyMsg) Model {
	for _, k := range ks {
		m, _ = applyUpdate(m, k)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typed(s string) []tea.KeyMsg {
	var out []tea.KeyMsg
	for _, r := range s {
		out = append(out, runes(string(r)))
	}
	return out
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace}
	right = tea.KeyMsg{Type: tea.KeyRight}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
)

func viewTexts(m Model) []string {
	var out []string
	for _, s := range m.view {
		out = append(out, s.Text)
	}
	return out
}

func TestNewModel(t *testing.T) {
	m := New(Options{})
	if m.mode != ModeBrowse {
		t.Error("new model should browse")
	}
	if m.sess == nil || m.sess.Store.Len() != 0 {
		t.Error("new model should hold an empty session")
	}
	if m.View() != "Initializing..." {
		t.Error("view before WindowSizeMsg should be a placeholder")
	}
	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 100, Height: 24})
	if !strings.Contains(m.View(), "No transcript loaded") {
		t.Error("empty model should prompt to load a transcript")
	}
}

func TestWordSearch(t *testing.T) {
	m := newModel(t)

	m = keys(m, runes("/"))
	if m.mode != ModeWord {
		t.Fatalf("mode = %v, want word", m.mode)
	}
	m = keys(m, typed("agenda")...)
	m = keys(m, enter)

	if m.mode != ModeBrowse {
		t.Error("enter should leave the input")
	}
	got := viewTexts(m)
	if len(got) != 2 || got[0] != "the agenda is short" {
		t.Errorf("view = %v", got)
	}
	if !strings.Contains(m.View(), "TRANSCRIPT (2/4)") {
		t.Error("panel title should show filtered count")
	}
}

func TestTimeInputIsMasked(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("t"))

	want := []string{"0", "00", "00:0", "00:00", "00:00:1", "00:00:10"}
	for i, r := range "000010" {
		m = keys(m, runes(string(r)))
		if got := m.timeInput.Value(); got != want[i] {
			t.Fatalf("after %d keys value = %q, want %q", i+1, got, want[i])
		}
	}
	m = keys(m, enter)

	got := viewTexts(m)
	if len(got) != 1 || got[0] != "first the budget" {
		t.Errorf("view = %v", got)
	}
}

func TestCombinedQueryAndReset(t *testing.T) {
	m := newModel(t)

	m = keys(m, runes("/"))
	m = keys(m, typed("the")...)
	m = keys(m, tab)
	if m.mode != ModeTime {
		t.Fatalf("tab should switch to time input, mode = %v", m.mode)
	}
	m = keys(m, typed("000016")...)
	m = keys(m, enter)

	got := viewTexts(m)
	if len(got) != 1 || got[0] != "then the agenda for next week" {
		t.Fatalf("view = %v", got)
	}

	m = keys(m, runes("r"))
	if len(m.view) != 4 {
		t.Errorf("reset view = %d lines, want 4", len(m.view))
	}
	if m.wordInput.Value() != "" || m.timeInput.Value() != "" {
		t.Error("reset should clear the inputs")
	}

	fresh := keys(newModel(t), runes("r"))
	if fresh.statusText != "Nothing to reset" {
		t.Errorf("reset without search status = %q", fresh.statusText)
	}
}

func TestIncompleteTimeIgnored(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("/"))
	m = keys(m, typed("agenda")...)
	m = keys(m, tab)
	m = keys(m, typed("0000")...)
	m = keys(m, enter)

	if len(m.view) != 2 {
		t.Errorf("view = %v, want word-only filtering", viewTexts(m))
	}
	if !strings.Contains(m.renderSearchBar(), "ignored") {
		t.Error("search bar should flag the ignored time")
	}
}

func TestEscCancelsQuery(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("/"))
	m = keys(m, typed("budget")...)
	m = keys(m, esc)

	if m.mode != ModeBrowse || len(m.view) != 4 {
		t.Errorf("esc should not search: mode=%v view=%d", m.mode, len(m.view))
	}
	if m.wordInput.Value() != "" {
		t.Errorf("esc should restore the input, got %q", m.wordInput.Value())
	}
}

func TestSelectionClamps(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("k"))
	if m.selected != 0 {
		t.Errorf("selected = %d, want 0", m.selected)
	}
	for i := 0; i < 10; i++ {
		m = keys(m, runes("j"))
	}
	if m.selected != 3 {
		t.Errorf("selected = %d, want 3", m.selected)
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != 2 {
		t.Errorf("selected = %d, want 2", m.selected)
	}
}

func TestEditCommitKeys(t *testing.T) {
	for _, commit := range []tea.KeyMsg{enter, tab, esc} {
		t.Run(commit.String(), func(t *testing.T) {
			m := newModel(t)
			m = keys(m, runes("j"), runes("e"))
			if m.mode != ModeEdit {
				t.Fatalf("mode = %v, want edit", m.mode)
			}
			m = keys(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
			m = keys(m, typed("ed")...)
			if !strings.Contains(m.View(), "EDITING") {
				t.Error("view should show editing state")
			}
			m = keys(m, commit)

			if m.mode != ModeBrowse {
				t.Error("commit key should leave edit mode")
			}
			if got := m.sess.Export()[1].Text; got != "the agenda is shoed" {
				t.Errorf("canonical text = %q", got)
			}
			if got := m.view[1].Text; got != "the agenda is shoed" {
				t.Errorf("view text = %q", got)
			}
		})
	}
}

func TestSearchCommitsOpenEdit(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("e"))
	m.sess.UpdateDraft("good evening everyone")
	// Leave edit mode without a commit key by forcing browse.
	m.mode = ModeBrowse
	m = keys(m, runes("/"))
	m = keys(m, typed("evening")...)
	m = keys(m, enter)

	if got := viewTexts(m); len(got) != 1 || got[0] != "good evening everyone" {
		t.Errorf("view = %v", got)
	}
}

func TestTranscriptEventReplacesSession(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("/"))
	m = keys(m, typed("agenda")...)
	m = keys(m, enter)
	m.transcribing = true

	m, _ = applyUpdate(m, TranscribeEventMsg{Event: daemon.Event{
		Event: daemon.EventTranscript,
		JobID: "job-7",
		Lines: []transcript.Line{
			{Start: "00:00:00", End: "00:00:02", Text: "fresh"},
		},
	}})

	if m.transcribing {
		t.Error("final event should end the job")
	}
	if len(m.view) != 1 || m.view[0].Text != "fresh" {
		t.Errorf("view = %v", viewTexts(m))
	}
	if !m.sess.Engine.Query.IsEmpty() || m.wordInput.Value() != "" {
		t.Error("new session should start unfiltered")
	}
	if m.sess.Origin != "daemon job job-7" {
		t.Errorf("origin = %q", m.sess.Origin)
	}
}

func TestTranscribeProgressAndError(t *testing.T) {
	m := newModel(t)
	m.transcribing = true

	p := float32(0.4)
	m.handleEvent(daemon.Event{Event: daemon.EventProgress, Progress: &p})
	if m.progress != 0.4 {
		t.Errorf("progress = %v", m.progress)
	}

	m, cmd := applyUpdate(m, TranscribeEventMsg{Event: daemon.Event{Event: daemon.EventError, Message: "model missing"}})
	if m.errorMessage != "model missing" || !m.errorTransient || cmd == nil {
		t.Errorf("error = %q transient=%v", m.errorMessage, m.errorTransient)
	}
	if m.transcribing {
		t.Error("error event should end the job")
	}

	m, _ = applyUpdate(m, ClearTransientErrorMsg{})
	if m.errorMessage != "" {
		t.Error("transient error should clear")
	}
}

func TestTranscribeNeedsAudio(t *testing.T) {
	m := newModel(t)
	m, cmd := applyUpdate(m, runes("T"))
	if cmd == nil || !strings.Contains(m.errorMessage, "open an audio file") {
		t.Errorf("error = %q", m.errorMessage)
	}
}

func TestTranscribeConnectFailure(t *testing.T) {
	m := newModel(t)
	m.socketPath = filepath.Join(t.TempDir(), "missing.sock")
	if _, err := m.deck.Load(writeWAV(t, 1)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, cmd := applyUpdate(m, runes("T"))
	if cmd == nil {
		t.Fatal("expected transcribe command")
	}
	msg := cmd()
	if _, ok := msg.(TranscribeErrorMsg); !ok {
		t.Fatalf("msg = %T, want TranscribeErrorMsg", msg)
	}
	m, _ = applyUpdate(m, msg)
	if m.errorMessage == "" {
		t.Error("connect failure should show an error")
	}
}

func TestOpenAndPlayback(t *testing.T) {
	m := newModel(t)
	path := writeWAV(t, 20)

	m = keys(m, runes("o"))
	if m.mode != ModeOpen {
		t.Fatalf("mode = %v, want open", m.mode)
	}
	m = keys(m, typed(path)...)
	m = keys(m, enter)
	if m.errorMessage != "" {
		t.Fatalf("open failed: %s", m.errorMessage)
	}
	if m.player() == nil {
		t.Fatal("deck should hold a player")
	}

	m = keys(m, space)
	if !m.playing {
		t.Error("space should start playback")
	}
	m = keys(m, right, right)
	if m.position != 10*time.Second {
		t.Errorf("position = %v, want 10s", m.position)
	}
	if idx := m.playheadIndex(); idx != 2 {
		t.Errorf("playhead line = %d, want 2", idx)
	}
	m = keys(m, left)
	if m.position != 5*time.Second {
		t.Errorf("position = %v, want 5s", m.position)
	}

	m = keys(m, runes("j"), runes("j"), runes("j"), runes("g"))
	if m.position != 15*time.Second {
		t.Errorf("goto position = %v, want 15s", m.position)
	}

	m, cmd := applyUpdate(m, FrameTickMsg(time.Now()))
	if cmd == nil {
		t.Error("frame tick should schedule the next frame")
	}
	if len(m.spectrum) != 1024 || m.duration != 20*time.Second {
		t.Errorf("spectrum=%d duration=%v", len(m.spectrum), m.duration)
	}
	if !strings.Contains(m.View(), "00:00:15 / 00:00:20") {
		t.Error("status bar should show the playhead clock")
	}
}

func TestOpenBadPath(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("o"))
	m = keys(m, typed("/no/such/file.wav")...)
	m = keys(m, enter)
	if m.errorMessage == "" {
		t.Error("bad path should show an error")
	}
	if m.player() != nil {
		t.Error("deck should stay empty")
	}
}

func TestExportWritesCanonical(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("/"))
	m = keys(m, typed("budget")...)
	m = keys(m, enter)
	m = keys(m, runes("f"))
	if m.format != "vtt" {
		t.Fatalf("format = %q, want vtt after srt", m.format)
	}

	m, cmd := applyUpdate(m, runes("x"))
	msg := cmd()
	done, ok := msg.(ExportedMsg)
	if !ok {
		t.Fatalf("msg = %T (%v)", msg, msg)
	}
	data, err := os.ReadFile(done.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.Count(string(data), " --> "); got != 4 {
		t.Errorf("export has %d cues, want all 4", got)
	}
	if filepath.Base(done.Path) != "talk.vtt" {
		t.Errorf("path = %s", done.Path)
	}
	m, _ = applyUpdate(m, done)
	if !strings.HasPrefix(m.statusText, "Exported") {
		t.Errorf("status = %q", m.statusText)
	}
}

func TestQuitCommitsEdit(t *testing.T) {
	m := newModel(t)
	m = keys(m, runes("e"))
	m = keys(m, typed("!")...)
	_, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if got := m.sess.Export()[0].Text; got != "good morning everyone!" {
		t.Errorf("text = %q", got)
	}
}

func TestSpectrumBars(t *testing.T) {
	frame := make([]byte, 1024)
	for i := 0; i < 64; i++ {
		frame[i] = 255
	}
	rows := spectrumBars(frame, 8, 4)
	if len(rows) != 4 {
		t.Fatalf("rows = %d", len(rows))
	}
	top := []rune(stripANSI(rows[0]))
	bottom := []rune(stripANSI(rows[3]))
	if top[0] != '█' || bottom[0] != '█' {
		t.Errorf("loud column should be full: top=%q bottom=%q", string(top), string(bottom))
	}
	if bottom[7] != ' ' {
		t.Errorf("silent column should be empty: %q", string(bottom))
	}
	if spectrumBars(nil, 8, 0) != nil {
		t.Error("zero height should render nothing")
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  int
	}{
		{"short", 20, 1},
		{"one two three four", 9, 3},
		{"", 10, 1},
	}
	for _, tt := range tests {
		if got := wrapText(tt.text, tt.width); len(got) != tt.want {
			t.Errorf("wrapText(%q, %d) = %v", tt.text, tt.width, got)
		}
	}
}

func TestViewRendersAllSections(t *testing.T) {
	m := newModel(t)
	view := m.View()
	for _, want := range []string{"SCRUB", "talk.json", "SPECTRUM", "TRANSCRIPT (4/4)", "no filter", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if got := len(strings.Split(view, "\n")); got > m.height {
		t.Errorf("view has %d lines for height %d", got, m.height)
	}
}
