// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/gemchat-tui/internal/gemini"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DefaultModel != gemini.ModelFlash {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.SystemInstruction != DefaultSystemInstruction {
		t.Errorf("SystemInstruction = %q", cfg.SystemInstruction)
	}
	if !cfg.UI.Markdown {
		t.Error("markdown rendering should default on")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
default_model = "pro"
system_instruction = "Be terse."

[api]
key = "file-key"

[ui]
theme = "light"
markdown = false
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Model() != gemini.ModelPro {
		t.Errorf("Model() = %q, alias should resolve", cfg.Model())
	}
	if cfg.SystemInstruction != "Be terse." {
		t.Errorf("SystemInstruction = %q", cfg.SystemInstruction)
	}
	if cfg.UI.Theme != "light" || cfg.UI.Markdown {
		t.Errorf("UI = %+v", cfg.UI)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"default_model": "lite", "ui": {"theme": "dark"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Model() != gemini.ModelLite {
		t.Errorf("Model() = %q", cfg.Model())
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte("default_model = [broken"), 0o600)

	if _, err := LoadFromPath(path); err == nil {
		t.Error("malformed TOML must fail loudly")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEMCHAT_MODEL", "pro")

	cfg := Default()
	cfg.API.Key = "file-key"
	cfg.ApplyEnvOverrides()

	if cfg.API.Key != "env-key" {
		t.Errorf("API.Key = %q, env must win", cfg.API.Key)
	}
	if cfg.DefaultModel != "pro" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "solarized"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown theme must fail validation")
	}

	cfg = Default()
	cfg.Storage.Encrypt = true
	cfg.Storage.Ephemeral = true
	if err := cfg.Validate(); err == nil {
		t.Error("encrypt + ephemeral must fail validation")
	}

	cfg = Default()
	cfg.DefaultModel = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty model must fail validation")
	}
}

func TestDataDirFallsBackToConfigDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/tmp/custom"
	dir, err := cfg.DataDir()
	if err != nil || dir != "/tmp/custom" {
		t.Errorf("DataDir = %q, %v", dir, err)
	}
}
