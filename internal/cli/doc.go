// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the gemchat command-line surface: argument
// parsing, the one-shot ask command, image captioning, session
// management, and the Telegram bot generator. The interactive TUI
// itself lives in internal/ui/chat; this package only dispatches to it.
package cli
