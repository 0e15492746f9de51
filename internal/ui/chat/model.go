// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/gemchat-tui/internal/attach"
	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/store"
	"github.com/jeranaias/gemchat-tui/internal/turn"
	"github.com/jeranaias/gemchat-tui/internal/ui/styles"
)

// viewMode selects what the main area shows.
type viewMode int

const (
	modeChat viewMode = iota
	modeSessions
)

// Model is the Bubble Tea model for the chat view.
type Model struct {
	cfg      *config.Config
	theme    *styles.Theme
	registry *store.Registry
	ctrl     *turn.Controller
	keys     KeyMap

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	// display is the UI's copy of the active conversation. It mirrors the
	// turn in progress and is replaced from the registry on commit.
	display       *model.Conversation
	streamingID   string
	streamingText string
	streaming     bool
	gate          *frameGate

	mode     viewMode
	sessions []store.SessionMeta
	cursor   int

	pendingFile  *attach.TextFile
	pendingImage *attach.ImageFile

	status string
	events <-chan turn.Event
}

// New creates the chat view.
func New(cfg *config.Config, registry *store.Registry, ctrl *turn.Controller) *Model {
	theme := styles.New()

	ta := textarea.New()
	ta.Placeholder = "Type a message... (/help for commands)"
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Model{
		cfg:      cfg,
		theme:    theme,
		registry: registry,
		ctrl:     ctrl,
		keys:     DefaultKeyMap(),
		textarea: ta,
		spinner:  sp,
		display:  registry.Active().Conversation,
		gate:     newFrameGate(defaultMaxFPS),
	}
}

// Init starts the spinner ticker.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// reloadDisplay replaces the display copy from the registry.
func (m *Model) reloadDisplay() {
	m.display = m.registry.Active().Conversation
	m.streaming = false
	m.streamingID = ""
	m.streamingText = ""
}

// initRenderer (re)builds the markdown renderer for the current width.
func (m *Model) initRenderer() {
	if !m.cfg.UI.Markdown {
		m.renderer = nil
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(m.contentWidth()),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// contentWidth is the usable text width inside the viewport.
func (m *Model) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}
