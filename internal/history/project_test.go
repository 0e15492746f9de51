// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"testing"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

func TestProject_SkipsNonFinalMessages(t *testing.T) {
	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("first"))

	errored := model.NewModelPlaceholder()
	conv.Append(errored)
	conv.Finalize(errored.ID, "Sorry, I encountered an error processing your request.", true)

	conv.Append(model.NewUserMessage("second"))
	conv.Append(model.NewModelPlaceholder()) // still streaming

	contents := Project(conv)
	if len(contents) != 2 {
		t.Fatalf("projected %d entries, want 2", len(contents))
	}
	if contents[0].Parts[0].Text != "first" || contents[1].Parts[0].Text != "second" {
		t.Errorf("unexpected projection: %+v", contents)
	}
	for _, c := range contents {
		if c.Role != "user" {
			t.Errorf("errored and streaming model turns must not project, got role %q", c.Role)
		}
	}
}

func TestProject_UsesPayloadNotDisplayText(t *testing.T) {
	conv := model.NewConversation()
	msg := model.NewUserMessage("Summarize this\n(Attached: notes.txt)")
	msg.Payload = "Summarize this\n\n--- Attached File: notes.txt ---\nfile body"
	conv.Append(msg)

	contents := Project(conv)
	if len(contents) != 1 {
		t.Fatalf("projected %d entries, want 1", len(contents))
	}
	if contents[0].Parts[0].Text != msg.Payload {
		t.Errorf("projection must use the send payload, got %q", contents[0].Parts[0].Text)
	}
}

func TestProject_ImagePartPrecedesText(t *testing.T) {
	conv := model.NewConversation()
	msg := model.NewUserMessage("what is this?")
	msg.Image = "aW1hZ2VkYXRh"
	msg.MIMEType = "image/png"
	conv.Append(msg)

	contents := Project(conv)
	if len(contents) != 1 || len(contents[0].Parts) != 2 {
		t.Fatalf("unexpected shape: %+v", contents)
	}
	if contents[0].Parts[0].InlineData == nil {
		t.Fatal("image part must come first")
	}
	if contents[0].Parts[0].InlineData.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q", contents[0].Parts[0].InlineData.MIMEType)
	}
	if contents[0].Parts[1].Text != "what is this?" {
		t.Errorf("text part = %q", contents[0].Parts[1].Text)
	}
}

func TestProject_EmptyAndNil(t *testing.T) {
	if got := Project(nil); got != nil {
		t.Errorf("nil conversation should project to nil, got %v", got)
	}
	if got := Project(model.NewConversation()); got != nil {
		t.Errorf("empty conversation should project to nil, got %v", got)
	}
}

func TestProject_DoesNotMutate(t *testing.T) {
	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("hello"))
	before := conv.Messages[0].Text

	Project(conv)
	Project(conv)

	if conv.Len() != 1 || conv.Messages[0].Text != before {
		t.Error("projection must not mutate the conversation")
	}
}
