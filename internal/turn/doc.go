// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn orchestrates one chat turn end to end: compose the user
// message, snapshot history, open the streaming call, fold deltas into the
// placeholder model message, and commit the finished conversation back to
// the session registry.
//
// One turn may be in flight at a time. Submit, Regenerate, and Edit are all
// rejected while a stream is running; the controller is the single gate.
package turn
