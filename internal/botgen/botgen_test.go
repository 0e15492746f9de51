// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package botgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerate_Defaults(t *testing.T) {
	code, err := Generate(DefaultConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, want := range []string{
		`MODEL_ID = "gemini-2.5-flash"`,
		"YOUR_TELEGRAM_BOT_TOKEN",
		"YOUR_GEMINI_API_KEY",
		DefaultSystemPrompt,
		"application.run_polling()",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated script missing %q", want)
		}
	}
}

func TestGenerate_CustomConfig(t *testing.T) {
	cfg := Config{
		SystemPrompt: "Caption in French.",
		Model:        "pro",
	}
	code, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(code, `MODEL_ID = "gemini-3-pro-preview"`) {
		t.Error("model alias should resolve in the generated script")
	}
	if !strings.Contains(code, "Caption in French.") {
		t.Error("custom prompt missing")
	}
}

func TestGenerate_EscapesTripleQuotes(t *testing.T) {
	code, err := Generate(Config{SystemPrompt: `end it with """ quotes`})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(code, `with """ quotes`) {
		t.Error("unescaped triple quote would break the Python string literal")
	}
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bot")
	if err := WriteFiles(DefaultConfig(), dir); err != nil {
		t.Fatalf("WriteFiles failed: %v", err)
	}

	code, err := os.ReadFile(filepath.Join(dir, "bot.py"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(code), "def process_image") {
		t.Error("bot.py content wrong")
	}

	reqs, err := os.ReadFile(filepath.Join(dir, "requirements.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(reqs) != Requirements {
		t.Errorf("requirements.txt = %q", reqs)
	}
}

func TestHighlight_FallsBackGracefully(t *testing.T) {
	code := "print('hi')"
	out := Highlight(code)
	if out == "" {
		t.Fatal("highlight returned nothing")
	}
	if !strings.Contains(out, "print") {
		t.Error("source text lost during highlighting")
	}
}
