// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/model"
)

// Project converts a conversation into model request history.
//
// Only successfully completed messages participate: a message still
// streaming or finalized as errored is invisible to the model, so a failed
// exchange leaves no trace in later requests. For each included message the
// send payload is used, not the display text, and an attached image becomes
// an inline-data part placed before the text part.
func Project(conv *model.Conversation) []gemini.Content {
	if conv == nil || conv.IsEmpty() {
		return nil
	}

	contents := make([]gemini.Content, 0, conv.Len())
	for _, msg := range conv.Messages {
		if msg.Status != model.StatusFinal {
			continue
		}

		var parts []gemini.Part
		if msg.HasImage() {
			parts = append(parts, gemini.Part{
				InlineData: &gemini.Blob{
					MIMEType: msg.MIMEType,
					Data:     msg.Image,
				},
			})
		}
		if text := msg.ContextText(); text != "" {
			parts = append(parts, gemini.Part{Text: text})
		}
		if len(parts) == 0 {
			continue
		}

		contents = append(contents, gemini.Content{
			Role:  string(msg.Role),
			Parts: parts,
		})
	}
	return contents
}
