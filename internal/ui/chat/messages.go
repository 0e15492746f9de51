// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/turn"
)

// =============================================================================
// MESSAGES
// =============================================================================

// turnEventMsg carries one streaming event. ok is false when the event
// channel closed, meaning the turn has committed.
type turnEventMsg struct {
	ev turn.Event
	ok bool
}

// statusMsg sets a transient status line.
type statusMsg string

// ConfigReloadedMsg announces a config file change picked up by the
// watcher. Sent into the program from outside Bubble Tea.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitEvent blocks on the next turn event.
func waitEvent(events <-chan turn.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return turnEventMsg{ev: ev, ok: ok}
	}
}
