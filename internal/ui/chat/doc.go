// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for the gemchat TUI.
//
// The view is a Bubble Tea model: a scrollback viewport over the active
// conversation, a textarea for input, and a status bar. Streaming updates
// arrive as events from the turn controller and are applied to a display
// copy of the conversation; the session registry stays authoritative and
// the display is re-read from it whenever a turn commits.
package chat
