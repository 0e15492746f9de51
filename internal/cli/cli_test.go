// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/jeranaias/gemchat-tui/internal/store"
)

func TestParseArgs_CommandAndQuery(t *testing.T) {
	args, err := ParseArgs([]string{"ask", "what", "is", "go"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Command != "ask" {
		t.Errorf("Command = %q, want ask", args.Command)
	}
	if args.Query != "what is go" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgs_Flags(t *testing.T) {
	args, err := ParseArgs([]string{"ask", "-m", "pro", "--file", "main.go", "-q", "hello"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Model != "pro" {
		t.Errorf("Model = %q", args.Model)
	}
	if args.File != "main.go" {
		t.Errorf("File = %q", args.File)
	}
	if !args.Quiet {
		t.Error("Quiet not set")
	}
	if args.Query != "hello" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgs_MissingValue(t *testing.T) {
	if _, err := ParseArgs([]string{"ask", "--model"}); err == nil {
		t.Error("expected error for flag without value")
	}
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	if _, err := ParseArgs([]string{"--wat"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestParseArgs_NoCommand(t *testing.T) {
	args, err := ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Command != "" {
		t.Errorf("Command = %q, want empty", args.Command)
	}
}

func TestResolveSessionID(t *testing.T) {
	reg, err := store.NewRegistry(store.NewMemoryKV())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	active := reg.Active()

	id, err := resolveSessionID(reg, active.ID[:6])
	if err != nil {
		t.Fatalf("resolveSessionID: %v", err)
	}
	if id != active.ID {
		t.Errorf("resolved %q, want %q", id, active.ID)
	}

	if _, err := resolveSessionID(reg, "zzzz"); err == nil {
		t.Error("expected error for unmatched prefix")
	}

	if _, err := resolveSessionID(reg, ""); reg.Len() == 1 && err != nil {
		t.Errorf("empty prefix with one session should resolve, got %v", err)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abcdef0123456789"); got != "abcdef01" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID short input = %q", got)
	}
}
