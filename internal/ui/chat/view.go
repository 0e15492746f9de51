// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// View renders the whole screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.mode == modeSessions {
		b.WriteString(m.renderSessionList())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	b.WriteString(m.theme.InputContainer.Width(m.width).Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// =============================================================================
// HEADER / STATUS
// =============================================================================

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("gemchat")
	session := m.registry.Active().Title
	session = runewidth.Truncate(session, m.width/2, "...")
	modelName := m.theme.HeaderModel.Render(m.cfg.Model())

	left := title + "  " + session
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(modelName) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + modelName)
}

func (m *Model) renderStatusBar() string {
	var parts []string
	if m.streaming {
		parts = append(parts, m.theme.StatusStreaming.Render(m.spinner.View()+"streaming"))
	}
	if m.pendingFile != nil {
		parts = append(parts, m.theme.AttachmentTag.Render("[file: "+m.pendingFile.Name+"]"))
	}
	if m.pendingImage != nil {
		parts = append(parts, m.theme.AttachmentTag.Render("[image: "+m.pendingImage.Name+"]"))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if len(parts) == 0 {
		parts = append(parts, m.theme.Help.Render("enter send · ctrl+s sessions · ctrl+c quit"))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// refreshViewport rebuilds the scrollback. render=false skips the rebuild,
// used to cap redraw frequency during streaming.
func (m *Model) refreshViewport(render bool) {
	if !m.ready || !render {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m *Model) renderConversation() string {
	if m.display.IsEmpty() {
		return m.theme.Help.Render("\n  Start the conversation — type a message below.\n")
	}

	var b strings.Builder
	for _, msg := range m.display.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMessage(msg *model.Message) string {
	var label, body string

	switch msg.Role {
	case model.RoleUser:
		label = m.theme.UserLabel.Render(msg.Role.DisplayName())
		body = m.theme.UserBubble.Width(m.contentWidth()).Render(msg.Text)
	default:
		label = m.theme.ModelLabel.Render(msg.Role.DisplayName())
		switch msg.Status {
		case model.StatusErrored:
			body = m.theme.ErrorBubble.Width(m.contentWidth()).Render(msg.Text)
		case model.StatusStreaming:
			text := msg.Text
			if text == "" {
				text = m.spinner.View() + "thinking..."
			}
			body = m.theme.ModelBubble.Width(m.contentWidth()).Render(text)
		default:
			body = m.theme.ModelBubble.Width(m.contentWidth()).Render(m.renderMarkdown(msg.Text))
		}
	}

	ts := ""
	if m.cfg.UI.ShowTimestamps {
		ts = "  " + m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	}
	if msg.HasImage() {
		label += "  " + m.theme.AttachmentTag.Render("[image]")
	}
	return label + ts + "\n" + body + "\n"
}

// renderMarkdown renders final model output, falling back to plain text.
func (m *Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// SESSION LIST RENDERING
// =============================================================================

func (m *Model) renderSessionList() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("  Sessions") + "\n\n")

	for i, s := range m.sessions {
		style := m.theme.SessionItem
		prefix := "  "
		if i == m.cursor {
			style = m.theme.SessionItemActive
			prefix = "> "
		}
		marker := " "
		if s.Active {
			marker = "*"
		}
		title := runewidth.Truncate(s.Title, m.width-30, "...")
		meta := m.theme.SessionMeta.Render(
			fmt.Sprintf("%d msgs · %s", s.MessageCount, s.UpdatedAt.Format("Jan 2 15:04")))
		b.WriteString(prefix + style.Render(marker+" "+title) + "  " + meta + "\n")
	}

	b.WriteString("\n" + m.theme.Help.Render("  enter open · d delete · esc back") + "\n")

	// Pad to the viewport height so the input area stays put.
	lines := strings.Count(b.String(), "\n")
	for lines < m.viewport.Height {
		b.WriteString("\n")
		lines++
	}
	return b.String()
}
