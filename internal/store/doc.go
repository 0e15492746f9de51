// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists chat sessions.
//
// A small key-value abstraction (in-memory and SQLite implementations, with
// an optional encryption wrapper) carries one blob: the whole session
// registry serialized as JSON under a fixed key. The Registry type is the
// only writer; every mutation goes through it and is persisted before the
// call returns.
package store
