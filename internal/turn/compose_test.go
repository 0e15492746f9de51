// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"testing"

	"github.com/jeranaias/gemchat-tui/internal/attach"
)

func TestComposeUserMessage_TextOnly(t *testing.T) {
	msg := ComposeUserMessage(Input{Text: "  hello  "})
	if msg.Text != "hello" || msg.ContextText() != "hello" || msg.InputText() != "hello" {
		t.Errorf("all three texts should be the trimmed typed text: %+v", msg)
	}
}

func TestComposeUserMessage_FileOnly(t *testing.T) {
	file := &attach.TextFile{Name: "data.csv", Content: "a,b\n1,2"}
	msg := ComposeUserMessage(Input{File: file})

	if msg.Text != "Sent file: data.csv" {
		t.Errorf("display = %q", msg.Text)
	}
	want := "--- Attached File: data.csv ---\na,b\n1,2"
	if msg.ContextText() != want {
		t.Errorf("payload = %q, want %q", msg.ContextText(), want)
	}
	if msg.InputText() != "" {
		t.Errorf("typed text = %q, want empty", msg.InputText())
	}
}

func TestComposeUserMessage_TextAndFile(t *testing.T) {
	file := &attach.TextFile{Name: "notes.txt", Content: "body"}
	msg := ComposeUserMessage(Input{Text: "summarize", File: file})

	if msg.Text != "summarize\n(Attached: notes.txt)" {
		t.Errorf("display = %q", msg.Text)
	}
	if msg.ContextText() != "summarize\n\n--- Attached File: notes.txt ---\nbody" {
		t.Errorf("payload = %q", msg.ContextText())
	}
	if msg.InputText() != "summarize" {
		t.Errorf("typed text = %q", msg.InputText())
	}
}

func TestComposeUserMessage_Image(t *testing.T) {
	img := &attach.ImageFile{Name: "x.png", MIMEType: "image/png", Base64: "aW1n"}
	msg := ComposeUserMessage(Input{Text: "caption", Image: img})
	if msg.Image != "aW1n" || msg.MIMEType != "image/png" {
		t.Errorf("image fields not carried: %+v", msg)
	}
	if !msg.HasImage() {
		t.Error("HasImage should report true")
	}
}

func TestInput_Empty(t *testing.T) {
	if !(Input{Text: "  \n "}).Empty() {
		t.Error("whitespace-only input is empty")
	}
	if (Input{File: &attach.TextFile{Name: "f"}}).Empty() {
		t.Error("file-only input is not empty")
	}
	if (Input{Image: &attach.ImageFile{Name: "i"}}).Empty() {
		t.Error("image-only input is not empty")
	}
}
