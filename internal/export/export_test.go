// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

func sampleSession(t *testing.T) *model.Session {
	t.Helper()
	s := model.NewSession()
	s.Conversation.Append(model.NewUserMessage("What is Go?"))
	mm := model.NewModelPlaceholder()
	s.Conversation.Append(mm)
	s.Conversation.Finalize(mm.ID, "A programming language.", false)
	s.DeriveTitle()
	return s
}

func TestMarkdownExport(t *testing.T) {
	s := sampleSession(t)
	opts := &Options{OutputDir: t.TempDir(), IncludeTimestamps: false}

	path, err := Markdown(s, opts)
	if err != nil {
		t.Fatalf("Markdown export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "# What is Go?") {
		t.Errorf("missing title heading:\n%s", out)
	}
	if !strings.Contains(out, "**You**") || !strings.Contains(out, "**Gemini**") {
		t.Errorf("missing role labels:\n%s", out)
	}
	if !strings.Contains(out, "A programming language.") {
		t.Error("missing model text")
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("path = %q", path)
	}
}

func TestMarkdownExport_SkipsStreamingKeepsErrored(t *testing.T) {
	s := model.NewSession()
	s.Conversation.Append(model.NewUserMessage("q1"))
	errored := model.NewModelPlaceholder()
	s.Conversation.Append(errored)
	s.Conversation.Finalize(errored.ID, "Sorry, something failed.", true)
	s.Conversation.Append(model.NewUserMessage("q2"))
	s.Conversation.Append(model.NewModelPlaceholder())

	out, err := NewMarkdownExporter(&Options{}).Export(s)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	if !strings.Contains(text, "_(failed)_") {
		t.Error("errored message should be marked")
	}
	if strings.Count(text, "**Gemini**") != 1 {
		t.Error("streaming placeholder must not export")
	}
}

func TestJSONExport_RoundTrips(t *testing.T) {
	s := sampleSession(t)

	data, err := NewJSONExporter().Export(s)
	if err != nil {
		t.Fatal(err)
	}
	var back model.Session
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if back.Title != s.Title || back.Conversation.Len() != 2 {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := sanitizeFilename(`what/is: "go"?` + "\t")
	if strings.ContainsAny(got, `/\:*?"<>| `) {
		t.Errorf("unsafe characters survived: %q", got)
	}
	if sanitizeFilename("") != "chat" {
		t.Error("empty title needs a fallback name")
	}
}
