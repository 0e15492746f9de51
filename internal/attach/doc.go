// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach loads files destined for a model request: text files that
// get spliced into the prompt payload and images that travel as inline
// base64 data.
package attach
