// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemchat-tui/internal/attach"
	"github.com/jeranaias/gemchat-tui/internal/export"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/turn"
)

// Update handles all incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.mode == modeSessions {
			return m.handleSessionKey(msg)
		}
		return m.handleChatKey(msg)

	case turnEventMsg:
		return m.handleTurnEvent(msg)

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Cfg
		m.ctrl.Configure(m.cfg.Model(), m.cfg.SystemInstruction)
		m.initRenderer()
		m.refreshViewport(true)
		m.status = "config reloaded"
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 2
	inputHeight := m.textarea.Height() + 1
	statusHeight := 1
	vpHeight := m.height - headerHeight - inputHeight - statusHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = newViewport(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(m.width - 2)
	m.initRenderer()
	m.refreshViewport(true)
	return m, nil
}

// =============================================================================
// CHAT MODE KEYS
// =============================================================================

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Newline):
		m.textarea.InsertString("\n")
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.handleSend()

	case key.Matches(msg, m.keys.NewChat):
		if m.ctrl.Busy() {
			m.status = "wait for the current response to finish"
			return m, nil
		}
		if _, err := m.registry.Create(); err != nil {
			m.status = "new chat failed: " + err.Error()
			return m, nil
		}
		m.reloadDisplay()
		m.refreshViewport(true)
		m.status = "started a new chat"
		return m, nil

	case key.Matches(msg, m.keys.Sessions):
		m.enterSessionList()
		return m, nil

	case key.Matches(msg, m.keys.Regenerate):
		return m.handleRegenerate()

	case key.Matches(msg, m.keys.EditLast):
		return m.handleEditLast()

	case key.Matches(msg, m.keys.Export):
		return m.handleExport()
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// handleSend submits the textarea content, or runs a slash command.
func (m *Model) handleSend() (tea.Model, tea.Cmd) {
	raw := m.textarea.Value()
	if strings.HasPrefix(strings.TrimSpace(raw), "/") {
		return m.handleCommand(strings.TrimSpace(raw))
	}

	in := turn.Input{Text: raw, File: m.pendingFile, Image: m.pendingImage}
	if in.Empty() {
		return m, nil
	}

	events, err := m.ctrl.Submit(context.Background(), in)
	if err != nil {
		if errors.Is(err, turn.ErrBusy) {
			m.status = "still responding..."
		} else {
			m.status = err.Error()
		}
		return m, nil
	}

	// Mirror the outgoing turn so the UI shows it before commit.
	m.display.Append(turn.ComposeUserMessage(in))
	placeholder := model.NewModelPlaceholder()
	m.display.Append(placeholder)
	m.streamingID = placeholder.ID
	m.streamingText = ""
	m.streaming = true
	m.events = events

	m.textarea.Reset()
	m.pendingFile = nil
	m.pendingImage = nil
	m.status = ""
	m.refreshViewport(true)
	return m, tea.Batch(waitEvent(events), m.spinner.Tick)
}

func (m *Model) handleRegenerate() (tea.Model, tea.Cmd) {
	events, err := m.ctrl.Regenerate(context.Background())
	if err != nil {
		if errors.Is(err, turn.ErrBusy) || errors.Is(err, turn.ErrNothingToRegenerate) {
			m.status = err.Error()
			return m, nil
		}
		m.status = "regenerate failed: " + err.Error()
		return m, nil
	}

	// Mirror: drop the old response, show a fresh placeholder.
	m.display.TruncateTo(m.display.Len() - 1)
	placeholder := model.NewModelPlaceholder()
	m.display.Append(placeholder)
	m.streamingID = placeholder.ID
	m.streamingText = ""
	m.streaming = true
	m.events = events
	m.refreshViewport(true)
	return m, tea.Batch(waitEvent(events), m.spinner.Tick)
}

func (m *Model) handleEditLast() (tea.Model, tea.Cmd) {
	idx := m.registry.Active().Conversation.LastUserIndex()
	if idx < 0 {
		m.status = "nothing to edit"
		return m, nil
	}
	seed, err := m.ctrl.Edit(idx)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.reloadDisplay()
	m.textarea.SetValue(seed)
	m.textarea.CursorEnd()
	m.refreshViewport(true)
	m.status = "editing previous message"
	return m, nil
}

func (m *Model) handleExport() (tea.Model, tea.Cmd) {
	path, err := export.Markdown(m.registry.Active(), nil)
	if err != nil {
		m.status = "export failed: " + err.Error()
		return m, nil
	}
	m.status = "exported to " + path
	return m, nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (m *Model) handleCommand(cmdline string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(cmdline)
	name := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch name {
	case "/help":
		m.status = "/file <path>  /image <path>  /clear  /export  /quit  (ctrl+n new, ctrl+s sessions, ctrl+r regen, ctrl+e edit)"
	case "/file":
		tf, err := attach.ReadTextFile(arg)
		if err != nil {
			m.status = err.Error()
			break
		}
		m.pendingFile = tf
		m.status = "attached " + tf.Name
	case "/image":
		img, err := attach.ReadImageFile(arg)
		if err != nil {
			m.status = err.Error()
			break
		}
		m.pendingImage = img
		m.status = "attached " + img.Name
	case "/clear":
		m.pendingFile = nil
		m.pendingImage = nil
		m.status = "attachments cleared"
	case "/export":
		m.textarea.Reset()
		return m.handleExport()
	case "/quit":
		return m, tea.Quit
	default:
		m.status = "unknown command " + name
		return m, nil
	}
	m.textarea.Reset()
	return m, nil
}

// =============================================================================
// SESSION LIST MODE
// =============================================================================

func (m *Model) enterSessionList() {
	m.sessions = m.registry.List()
	m.cursor = 0
	for i, s := range m.sessions {
		if s.Active {
			m.cursor = i
		}
	}
	m.mode = modeSessions
}

func (m *Model) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.sessions) {
			if err := m.registry.Select(m.sessions[m.cursor].ID); err != nil {
				m.status = err.Error()
			} else {
				m.reloadDisplay()
				m.refreshViewport(true)
			}
		}
		m.mode = modeChat
	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(m.sessions) {
			if err := m.registry.Delete(m.sessions[m.cursor].ID); err != nil {
				m.status = err.Error()
			}
			m.sessions = m.registry.List()
			if m.cursor >= len(m.sessions) && m.cursor > 0 {
				m.cursor--
			}
			m.reloadDisplay()
			m.refreshViewport(true)
		}
	case key.Matches(msg, m.keys.Back):
		m.mode = modeChat
	}
	return m, nil
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

func (m *Model) handleTurnEvent(msg turnEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		// Channel closed: the turn is committed. Re-read the authoritative
		// state, unless the stream belonged to a session that is gone.
		if m.registry.ActiveID() == "" || !m.streaming {
			return m, nil
		}
		m.reloadDisplay()
		m.refreshViewport(true)
		return m, nil
	}

	ev := msg.ev
	if ev.SessionID == m.registry.ActiveID() {
		m.streamingText = ev.Text
		if sm := m.display.ByID(m.streamingID); sm != nil && sm.Status == model.StatusStreaming {
			m.display.UpdateText(m.streamingID, ev.Text)
			if ev.Final {
				m.display.Finalize(m.streamingID, ev.Text, ev.Errored)
			}
		}
		if ev.Final && ev.Errored {
			m.status = "response failed"
		}
		m.refreshViewport(ev.Final || m.gate.Allow())
	}
	return m, waitEvent(m.events)
}
