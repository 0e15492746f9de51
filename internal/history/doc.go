// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history projects a stored conversation into the request history
// sent to the model. Projection is pure: it never mutates the conversation,
// and the same conversation always projects to the same history.
package history
