// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Google Gemini API.
//
// Two calls are exposed: GenerateStream, the server-sent-events streaming
// endpoint that powers chat turns, and GenerateOnce, the blocking endpoint
// used by the one-shot caption mode. Configuration errors (missing or
// rejected API key) surface before the first delta; mid-stream failures are
// delivered through the chunk channel.
package gemini
