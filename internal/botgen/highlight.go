// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package botgen

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// Highlight renders Python source with ANSI colors for terminal display.
// Falls back to the plain source if highlighting fails.
func Highlight(code string) string {
	var sb strings.Builder
	if err := quick.Highlight(&sb, code, "python", "terminal256", "monokai"); err != nil {
		return code
	}
	return sb.String()
}
