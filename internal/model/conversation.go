// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ERRORS
// =============================================================================

// ConversationError represents an illegal operation on a conversation.
// Use errors.Is with the sentinel values below.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrInvalidState is returned for operations that are illegal in the
	// conversation's current state: appending a second streaming message,
	// or updating text of a message that is not streaming.
	ErrInvalidState = &ConversationError{Message: "invalid conversation state"}

	// ErrMessageNotFound is returned when no message matches the given ID.
	ErrMessageNotFound = &ConversationError{Message: "message not found"}
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered message log of one chat. Order is conversation
// order and is load-bearing: it defines the context sent to the API.
type Conversation struct {
	Messages []*Message `json:"messages"`
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{Messages: make([]*Message, 0)}
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty reports whether there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Append adds a message at the end. Appending a streaming message while
// another is still streaming violates the single in-flight invariant and
// returns ErrInvalidState.
func (c *Conversation) Append(msg *Message) error {
	if msg.IsStreaming() && c.Streaming() != nil {
		return ErrInvalidState
	}
	c.Messages = append(c.Messages, msg)
	return nil
}

// TruncateTo drops all messages from index onward. An index past the end is
// a no-op; a negative index empties the conversation.
func (c *Conversation) TruncateTo(index int) {
	if index < 0 {
		index = 0
	}
	if index >= len(c.Messages) {
		return
	}
	c.Messages = c.Messages[:index]
}

// UpdateText replaces the text of the message matching id. Only legal while
// that message is streaming; the stream applicator calls this once per delta
// with its full accumulated text, so the value only ever grows.
func (c *Conversation) UpdateText(id, text string) error {
	msg := c.ByID(id)
	if msg == nil {
		return ErrMessageNotFound
	}
	if !msg.IsStreaming() {
		return ErrInvalidState
	}
	msg.Text = text
	return nil
}

// Finalize transitions the streaming message matching id to its terminal
// state, setting the final text. The transition happens exactly once;
// finalizing a message that is not streaming returns ErrInvalidState.
func (c *Conversation) Finalize(id, text string, errored bool) error {
	msg := c.ByID(id)
	if msg == nil {
		return ErrMessageNotFound
	}
	if !msg.IsStreaming() {
		return ErrInvalidState
	}
	msg.Text = text
	if errored {
		msg.Status = StatusErrored
	} else {
		msg.Status = StatusFinal
	}
	return nil
}

// =============================================================================
// LOOKUPS
// =============================================================================

// ByID returns the message with the given ID, or nil.
func (c *Conversation) ByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// Streaming returns the in-flight streaming message, or nil. The append
// invariant guarantees at most one exists.
func (c *Conversation) Streaming() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsStreaming() {
			return c.Messages[i]
		}
	}
	return nil
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// LastUserIndex returns the index of the most recent user message, or -1.
func (c *Conversation) LastUserIndex() int {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return i
		}
	}
	return -1
}

// FirstUserMessage returns the earliest user message, or nil. Title
// derivation reads from it.
func (c *Conversation) FirstUserMessage() *Message {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			return msg
		}
	}
	return nil
}

// =============================================================================
// COPYING
// =============================================================================

// Clone creates a deep copy. The registry owns the stored conversations and
// hands the UI working copies; mutations are reconciled back through the
// registry's single write path.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{Messages: make([]*Message, len(c.Messages))}
	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}
	return clone
}
