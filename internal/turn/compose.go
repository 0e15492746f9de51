// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"strings"

	"github.com/jeranaias/gemchat-tui/internal/attach"
	"github.com/jeranaias/gemchat-tui/internal/model"
)

// ApologyText replaces model output when a turn fails. Partial streamed
// text is discarded rather than shown truncated.
const ApologyText = "Sorry, I encountered an error processing your request."

// Input is what the user hands to Submit: typed text plus optional
// attachments.
type Input struct {
	Text  string
	File  *attach.TextFile
	Image *attach.ImageFile
}

// Empty reports whether there is nothing to send.
func (in Input) Empty() bool {
	return strings.TrimSpace(in.Text) == "" && in.File == nil && in.Image == nil
}

// ComposeUserMessage builds the user message for a submit. The UI also
// calls it to mirror the outgoing bubble before the turn commits.
//
// The three text fields diverge when a file rides along:
//   - Text (displayed) shows the typed text with an attachment note, or a
//     "Sent file" placeholder when nothing was typed.
//   - Payload (sent to the model) splices the whole file under a named
//     header after the typed text.
//   - Input (edit seed) is the typed text alone.
func ComposeUserMessage(in Input) *model.Message {
	typed := strings.TrimSpace(in.Text)

	display := typed
	payload := typed
	if in.File != nil {
		if typed != "" {
			payload = typed + "\n\n--- Attached File: " + in.File.Name + " ---\n" + in.File.Content
			display = typed + "\n(Attached: " + in.File.Name + ")"
		} else {
			payload = "--- Attached File: " + in.File.Name + " ---\n" + in.File.Content
			display = "Sent file: " + in.File.Name
		}
	}

	msg := model.NewUserMessage(display)
	msg.Payload = payload
	msg.Input = typed
	if in.Image != nil {
		msg.Image = in.Image.Base64
		msg.MIMEType = in.Image.MIMEType
	}
	return msg
}
