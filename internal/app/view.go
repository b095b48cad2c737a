package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/scrub/internal/timecode"
	"github.com/jwulff/scrub/internal/ui"
)

// Eighth-block glyphs for sub-cell bar heights.
var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

func (m Model) transcriptVisibleLines() int {
	if m.height == 0 {
		return 20
	}
	// Reserve: header(1) + status(1) + search(1) + divider(2) + error(1) + footer(1) + padding
	reserved := 8
	return max(5, m.height-reserved)
}

func (m Model) spectrumPanelWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(16, m.width*30/100)
}

func (m Model) transcriptPanelWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width-m.spectrumPanelWidth()-3)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, m.renderSearchBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	// Main content: spectrum | transcript
	sections = append(sections, m.renderMainContent())

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("SCRUB")

	var origin string
	if m.sess.Origin != "" {
		origin = ui.DimStyle.Render(" · " + m.sess.Origin)
	}

	var media string
	if info, ok := m.deckInfo(); ok {
		media = ui.DimStyle.Render("  [" + info.String() + "]")
	}

	return truncateToWidth(title+origin+media, m.width)
}

func (m Model) renderStatusBar() string {
	var state string
	switch {
	case m.player() == nil:
		state = ui.PausedStyle.Render("○ NO AUDIO")
	case m.playing:
		state = ui.PlayingStyle.Render("▶ PLAY")
	default:
		state = ui.PausedStyle.Render("❚❚ PAUSE")
	}

	var clock string
	if m.player() != nil {
		clock = "  " + ui.TimestampStyle.Render(
			timecode.FormatClock(int(m.position/time.Second))+" / "+
				timecode.FormatClock(int(m.duration/time.Second)))
	}

	var job string
	if m.transcribing {
		job = "  " + ui.SpinnerStyle.Render(fmt.Sprintf("⟳ transcribing %d%%", int(m.progress*100)))
	}

	format := "  " + ui.DimStyle.Render("export: ") + ui.SelectedStyle.Render(string(m.format))
	status := "  " + ui.StatusStyle.Render(m.statusText)

	return truncateToWidth(state+clock+job+format+status, m.width)
}

func (m Model) renderSearchBar() string {
	switch m.mode {
	case ModeWord, ModeTime:
		return m.wordInput.View() + "   " + m.timeInput.View()
	case ModeOpen:
		return m.openInput.View()
	}

	q := m.sess.Engine.Query
	if q.IsEmpty() {
		return ui.DimStyle.Render("no filter")
	}
	var parts []string
	if q.Word != "" {
		parts = append(parts, fmt.Sprintf("word %q", q.Word))
	}
	if q.Time != "" {
		if timecode.IsComplete(q.Time) {
			parts = append(parts, "time "+q.Time)
		} else {
			parts = append(parts, ui.DimStyle.Render("time "+q.Time+" (ignored)"))
		}
	}
	return ui.FilterBadgeStyle.Render("FILTER ") + strings.Join(parts, " + ")
}

func (m Model) renderMainContent() string {
	specW := m.spectrumPanelWidth()
	transcriptW := m.transcriptPanelWidth()
	contentH := m.transcriptVisibleLines()

	specLines := strings.Split(m.renderSpectrumPanel(specW, contentH), "\n")
	transcriptLines := strings.Split(m.renderTranscriptPanel(transcriptW, contentH), "\n")

	divider := ui.DividerStyle.Render("│")

	var rows []string
	for i := 0; i < contentH; i++ {
		sl := strings.Repeat(" ", specW)
		if i < len(specLines) {
			sl = padRight(specLines[i], specW)
		}
		tr := ""
		if i < len(transcriptLines) {
			tr = transcriptLines[i]
		}
		rows = append(rows, sl+divider+tr)
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderSpectrumPanel(width, height int) string {
	lines := []string{padRight(ui.PanelTitleStyle.Render("SPECTRUM"), width)}
	bars := spectrumBars(m.spectrum, width, height-1)
	lines = append(lines, bars...)
	return strings.Join(lines, "\n")
}

// spectrumBars renders frame as vertical bars, one column per group of bins.
// Bins are grouped over the lower half of the frame where speech energy sits.
func spectrumBars(frame []byte, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	levels := make([]float64, width)
	if n := len(frame) / 2; n > 0 {
		for col := range levels {
			lo := col * n / width
			hi := max(lo+1, (col+1)*n/width)
			var peak byte
			for _, v := range frame[lo:min(hi, n)] {
				peak = max(peak, v)
			}
			levels[col] = float64(peak) / 255
		}
	}

	rows := make([]string, height)
	for r := 0; r < height; r++ {
		// Row 0 is the top.
		floor := float64(height-1-r) / float64(height)
		var b strings.Builder
		for _, lvl := range levels {
			cell := (lvl - floor) * float64(height)
			var g rune
			switch {
			case cell <= 0:
				g = barGlyphs[0]
			case cell >= 1:
				g = barGlyphs[len(barGlyphs)-1]
			default:
				g = barGlyphs[int(cell*float64(len(barGlyphs)-1))]
			}
			b.WriteRune(g)
		}
		style := ui.LevelGreenStyle
		switch {
		case floor >= 0.8:
			style = ui.LevelRedStyle
		case floor >= 0.5:
			style = ui.LevelYellowStyle
		}
		rows[r] = style.Render(b.String())
	}
	return rows
}

func (m Model) renderTranscriptPanel(width, height int) string {
	title := fmt.Sprintf("TRANSCRIPT (%d/%d)", len(m.view), m.sess.Store.Len())
	var header string
	if m.mode == ModeEdit {
		header = ui.PanelTitleActiveStyle.Render(title) + ui.EditingStyle.Render(" EDITING")
	} else {
		header = ui.PanelTitleStyle.Render(title)
	}

	lines := []string{header}
	contentHeight := height - 1

	switch {
	case m.sess.Store.Len() == 0:
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  No transcript loaded."))
		lines = append(lines, ui.DimStyle.Render("  Open audio with o, then transcribe with T"))
	case len(m.view) == 0:
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  No lines match. Press r to reset."))
	default:
		// Prefix: "> [HH:MM:SS] " = 13 chars visible
		prefixWidth := 13
		textWidth := max(10, width-prefixWidth-1)
		indentStr := strings.Repeat(" ", prefixWidth)
		playhead := m.playheadIndex()

		var display []string
		selectedTop, selectedBottom := 0, 0
		for i := m.scroll; i < len(m.view); i++ {
			seg := m.view[i]
			text := seg.Text
			selected := i == m.selected
			if selected && m.mode == ModeEdit {
				text = m.editInput.Value()
			}

			marker := "  "
			if selected {
				marker = ui.SelectedStyle.Render("> ")
			}
			ts := ui.TimestampStyle.Render("[" + seg.StartLabel + "] ")

			wrapped := wrapText(text, textWidth)
			for j, wl := range wrapped {
				switch {
				case selected && m.mode == ModeEdit:
					wl = ui.EditingStyle.Render(wl)
				case i == playhead:
					wl = ui.PlayheadStyle.Render(wl)
				case selected:
					wl = ui.SelectedStyle.Render(wl)
				}
				if j == 0 {
					display = append(display, marker+ts+wl)
				} else {
					display = append(display, indentStr+wl)
				}
			}
			if selected {
				selectedBottom = len(display)
				selectedTop = selectedBottom - len(wrapped)
			}
			if len(display) >= contentHeight && i >= m.selected {
				break
			}
		}

		// Keep the whole selected line visible when wrapping pushed it down.
		start := 0
		if selectedBottom > contentHeight {
			start = min(selectedTop, selectedBottom-contentHeight)
		}
		end := min(len(display), start+contentHeight)
		lines = append(lines, display[start:end]...)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	key := func(k, desc string) string {
		return ui.FooterKeyStyle.Render(k) + ui.FooterDescStyle.Render(" "+desc)
	}

	var parts []string
	switch m.mode {
	case ModeWord, ModeTime:
		parts = append(parts, key("Enter", "Search"), key("Tab", "Word/Time"), key("Esc", "Cancel"))
	case ModeEdit:
		parts = append(parts, key("Enter/Tab/Esc", "Save"))
	case ModeOpen:
		parts = append(parts, key("Enter", "Load"), key("Esc", "Cancel"))
	default:
		parts = append(parts,
			key("/", "Word"), key("t", "Time"), key("r", "Reset"), key("e", "Edit"),
			key("Space", "Play"), key("←→", "Seek"), key("g", "Go"),
			key("o", "Open"), key("T", "Transcribe"), key("f", "Format"), key("x", "Export"),
			key("q", "Quit"))
	}

	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
