// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// gemchat.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.gemchat/config.toml
//   - ~/.gemchat/config.json
//   - Built-in defaults
//
// The API key is taken from GEMINI_API_KEY when set, overriding any value
// in the file.
package config
