// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "golang.org/x/time/rate"

// defaultMaxFPS caps scrollback re-renders during streaming. Deltas can
// arrive far faster than a terminal can redraw without flicker.
const defaultMaxFPS = 30

// frameGate rate-limits viewport re-renders while a stream is running.
// Text updates are always recorded; only the expensive re-render is gated,
// so the final frame never shows stale text.
type frameGate struct {
	lim *rate.Limiter
}

func newFrameGate(fps int) *frameGate {
	if fps <= 0 || fps > 60 {
		fps = defaultMaxFPS
	}
	return &frameGate{lim: rate.NewLimiter(rate.Limit(fps), 1)}
}

// Allow reports whether a re-render may happen now.
func (g *frameGate) Allow() bool {
	return g.lim.Allow()
}
