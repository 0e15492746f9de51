// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jeranaias/gemchat-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Gemini"
	default:
		return string(r)
	}
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is the lifecycle state of a message. Streaming is only valid for
// model messages and transitions to exactly one of the terminal states.
type Status string

const (
	// StatusFinal marks a completed message. Terminal.
	StatusFinal Status = "final"
	// StatusStreaming marks the in-flight model message being filled by
	// incremental deltas. At most one message per conversation may be
	// streaming at a time.
	StatusStreaming Status = "streaming"
	// StatusErrored marks a model message whose turn failed. Terminal.
	StatusErrored Status = "errored"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusFinal || s == StatusErrored
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single conversational turn entry.
//
// Text is what the UI displays. Payload is what was actually sent to the API
// for that turn (text-file content gets appended to it); Input is the text
// the user originally typed (edit re-seeds the input field from it). Both
// fall back to Text when empty, so plain messages carry no duplication.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Payload   string    `json:"payload,omitempty"`
	Input     string    `json:"input,omitempty"`
	Image     string    `json:"image,omitempty"` // base64-encoded image bytes
	MIMEType  string    `json:"mime_type,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserMessage creates a final user message.
func NewUserMessage(text string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleUser,
		Text:      text,
		Status:    StatusFinal,
		CreatedAt: time.Now(),
	}
}

// NewModelPlaceholder creates the empty streaming model message that is
// appended at turn start and filled incrementally.
func NewModelPlaceholder() *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleModel,
		Status:    StatusStreaming,
		CreatedAt: time.Now(),
	}
}

// IsStreaming reports whether the message is the in-flight placeholder.
func (m *Message) IsStreaming() bool {
	return m.Status == StatusStreaming
}

// IsError reports whether the message's turn failed.
func (m *Message) IsError() bool {
	return m.Status == StatusErrored
}

// ContextText returns the text that represents this message when projecting
// API history: the full sent payload when present, the display text otherwise.
func (m *Message) ContextText() string {
	if m.Payload != "" {
		return m.Payload
	}
	return m.Text
}

// InputText returns the originally typed text for edit re-seeding. When
// the payload diverges from the display text the message was composed
// around an attachment, and the empty typed text is the real answer; the
// display fallback only applies to plain messages that never set Input.
func (m *Message) InputText() string {
	if m.Input != "" {
		return m.Input
	}
	if m.Payload != "" && m.Payload != m.Text {
		return ""
	}
	return m.Text
}

// HasImage reports whether an image attachment is present.
func (m *Message) HasImage() bool {
	return m.Image != ""
}

// Preview returns a one-line, rune-truncated preview of the display text.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Text), maxLen)
}

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
