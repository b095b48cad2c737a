// Package ui holds the lipgloss palette and styles shared by the TUI.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorAccent = lipgloss.Color("#5FD7FF")
	ColorPlay   = lipgloss.Color("#87D75F")
	ColorWarn   = lipgloss.Color("#FFD75F")
	ColorAlert  = lipgloss.Color("#FF5F5F")
	ColorMuted  = lipgloss.Color("#808080")
	ColorRule   = lipgloss.Color("#3A3A3A")
	ColorText   = lipgloss.Color("#EEEEEE")
	ColorJob    = lipgloss.Color("#D787FF")
	ColorNavy   = lipgloss.Color("#1E2A44")
)

// Chrome.
var (
	TitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	DimStyle        = lipgloss.NewStyle().Foreground(ColorMuted)
	DividerStyle    = lipgloss.NewStyle().Foreground(ColorRule)
	FooterKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorWarn)
	FooterDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle      = lipgloss.NewStyle().Bold(true).Foreground(ColorAlert)
	ErrorTextStyle  = lipgloss.NewStyle().Foreground(ColorAlert)
)

// Status bar.
var (
	PlayingStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorPlay)
	PausedStyle      = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusStyle      = lipgloss.NewStyle().Foreground(ColorMuted)
	SpinnerStyle     = lipgloss.NewStyle().Foreground(ColorJob)
	FilterBadgeStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWarn)
)

// Transcript panel.
var (
	PanelTitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	PanelTitleActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	TimestampStyle        = lipgloss.NewStyle().Foreground(ColorMuted)
	SelectedStyle         = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	EditingStyle          = lipgloss.NewStyle().Foreground(ColorWarn)

	// PlayheadStyle marks the line under the audio playhead.
	PlayheadStyle = lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorText)
)

// Spectrum bands, bottom to top.
var (
	LevelGreenStyle  = lipgloss.NewStyle().Foreground(ColorPlay)
	LevelYellowStyle = lipgloss.NewStyle().Foreground(ColorWarn)
	LevelRedStyle    = lipgloss.NewStyle().Foreground(ColorAlert)
)
