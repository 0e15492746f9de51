// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application. It detects
// the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderModel lipgloss.Style

	// Message bubbles
	UserBubble    lipgloss.Style
	UserLabel     lipgloss.Style
	ModelBubble   lipgloss.Style
	ModelLabel    lipgloss.Style
	ErrorBubble   lipgloss.Style
	Timestamp     lipgloss.Style
	AttachmentTag lipgloss.Style

	// Input area
	InputContainer lipgloss.Style
	InputHint      lipgloss.Style

	// Status bar
	StatusBar       lipgloss.Style
	StatusStreaming lipgloss.Style
	StatusError     lipgloss.Style

	// Session list
	SessionItem       lipgloss.Style
	SessionItemActive lipgloss.Style
	SessionMeta       lipgloss.Style

	// Misc
	Spinner lipgloss.Style
	Help    lipgloss.Style
}

// New builds the theme for the current terminal.
func New() *Theme {
	output := termenv.DefaultOutput()
	t := &Theme{
		IsDark:       output.HasDarkBackground(),
		ColorProfile: output.Profile,
	}

	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Indigo)
	t.HeaderModel = lipgloss.NewStyle().Foreground(TextMuted)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(UserBubbleBorder).
		PaddingLeft(1)
	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)

	t.ModelBubble = lipgloss.NewStyle().
		Foreground(ModelBubbleFg).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(ModelBubbleBorder).
		PaddingLeft(1)
	t.ModelLabel = lipgloss.NewStyle().Bold(true).Foreground(Indigo)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(ErrorBubbleBorder).
		PaddingLeft(1)

	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.AttachmentTag = lipgloss.NewStyle().Foreground(Amber)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)
	t.InputHint = lipgloss.NewStyle().Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.StatusStreaming = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose)

	t.SessionItem = lipgloss.NewStyle().Foreground(TextPrimary).Padding(0, 1)
	t.SessionItemActive = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true).
		Padding(0, 1)
	t.SessionMeta = lipgloss.NewStyle().Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().Foreground(Indigo)
	t.Help = lipgloss.NewStyle().Foreground(TextMuted)

	return t
}

// GlamourStyle returns the markdown style name matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
