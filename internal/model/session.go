// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/gemchat-tui/internal/util"
)

// DefaultTitle is the sentinel title of a session whose title has not yet
// been derived from its first user message.
const DefaultTitle = "New Chat"

// titleMaxRunes caps derived titles at a sidebar-friendly length.
const titleMaxRunes = 50

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is one persisted conversation with metadata. The title starts as
// the DefaultTitle sentinel and is derived exactly once from the first user
// message; it is never re-derived afterward.
type Session struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Conversation *Conversation `json:"conversation"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewSession creates an empty session with a generated ID and sentinel title.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:           "sess_" + uuid.NewString(),
		Title:        DefaultTitle,
		Conversation: NewConversation(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone creates a deep copy. The registry hands out clones so callers can
// read and mutate freely without touching the stored session.
func (s *Session) Clone() *Session {
	out := *s
	out.Conversation = s.Conversation.Clone()
	return &out
}

// Touch bumps the updated timestamp. Called on every store mutation.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// DeriveTitle sets the title from the first user message, once. Calling it
// again after derivation is a no-op, even if the first user message changed.
func (s *Session) DeriveTitle() {
	if s.Title != DefaultTitle {
		return
	}
	first := s.Conversation.FirstUserMessage()
	if first == nil || first.Text == "" {
		return
	}
	s.Title = deriveTitle(first.Text)
}

// deriveTitle flattens and truncates message text into a one-line title.
func deriveTitle(text string) string {
	// NFC so visually identical titles compare equal regardless of how the
	// terminal composed the input.
	text = norm.NFC.String(text)
	return util.TruncateRunes(util.CollapseWhitespace(text), titleMaxRunes)
}
