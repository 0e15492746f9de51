// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions: messages,
// the ordered conversation log, and session metadata.
//
// A Conversation is append-mostly. The only in-place mutation is the text of
// the single streaming model message; everything else is append or truncate.
package model
