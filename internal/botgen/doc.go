// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package botgen emits a ready-to-run Telegram caption-bot script: a Python
// program that forwards incoming photos to the Gemini API and replies with
// the generated description. Output is the script plus its requirements
// file, optionally syntax-highlighted for terminal display.
package botgen
