// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command dispatch and shared setup for gemchat CLI.
//
// Commands:
//   gemchat                 Start the interactive TUI (default)
//   gemchat ask [question]  One-shot question, or a plain REPL without a TTY UI
//   gemchat caption -i IMG  Caption an image
//   gemchat sessions ...    List, delete, export saved sessions
//   gemchat botgen [dir]    Generate a Telegram bot wired to Gemini
//   gemchat version         Print version information

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/store"
)

// Version information (set at build time by main).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// databaseFile is the on-disk KV database name under the data directory.
const databaseFile = "gemchat.db"

// =============================================================================
// SHARED SETUP
// =============================================================================

// LoadConfig loads configuration and applies CLI overrides.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.Model != "" {
		cfg.DefaultModel = args.Model
	}
	if args.Ephemeral {
		cfg.Storage.Ephemeral = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewClient builds a Gemini API client from config.
func NewClient(cfg *config.Config) (*gemini.Client, error) {
	client := gemini.NewClient(cfg.API.Key).WithModel(cfg.Model())
	if cfg.API.BaseURL != "" {
		client = client.WithBaseURL(cfg.API.BaseURL)
	}
	if !client.IsConfigured() {
		return nil, fmt.Errorf("no API key configured: set GEMINI_API_KEY or api.key in %s", configPathHint())
	}
	return client, nil
}

// OpenKV opens the configured key-value store: in-memory when ephemeral,
// SQLite otherwise, wrapped with encryption when enabled.
func OpenKV(cfg *config.Config) (store.KV, error) {
	if cfg.Storage.Ephemeral {
		return store.NewMemoryKV(), nil
	}

	dir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	var kv store.KV
	kv, err = store.OpenSQLiteKV(filepath.Join(dir, databaseFile))
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Encrypt {
		pass := config.Passphrase()
		if pass == "" {
			kv.Close()
			return nil, fmt.Errorf("storage.encrypt is enabled but GEMCHAT_PASSPHRASE is not set")
		}
		enc, err := store.NewEncryptedKV(kv, pass)
		if err != nil {
			kv.Close()
			return nil, err
		}
		kv = enc
	}
	return kv, nil
}

// OpenRegistry opens the KV store and loads the session registry.
func OpenRegistry(cfg *config.Config) (*store.Registry, store.KV, error) {
	kv, err := OpenKV(cfg)
	if err != nil {
		return nil, nil, err
	}
	reg, err := store.NewRegistry(kv)
	if err != nil {
		kv.Close()
		return nil, nil, err
	}
	return reg, kv, nil
}

func configPathHint() string {
	path, err := config.PathTOML()
	if err != nil {
		return "~/.gemchat/config.toml"
	}
	return path
}

// =============================================================================
// VERSION / HELP
// =============================================================================

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("gemchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(`gemchat - Gemini chat for your terminal

Usage:
  gemchat                     Start the interactive TUI
  gemchat ask [question]      Ask a single question (REPL when omitted)
  gemchat caption -i IMAGE    Describe an image
  gemchat sessions list       List saved sessions
  gemchat sessions show ID    Print a session transcript
  gemchat sessions delete ID  Delete a session
  gemchat sessions export ID  Export a session to markdown
  gemchat botgen [dir]        Generate a Telegram bot backed by Gemini
  gemchat version             Print version

Flags:
  -m, --model NAME    Model to use (flash, pro, lite, or a full model name)
  -f, --file PATH     Attach a text file to the question (ask)
  -i, --image PATH    Attach an image (ask, caption)
  -o, --out DIR       Output directory (sessions export, botgen)
  -q, --quiet         Suppress informational output
  --ephemeral         Keep sessions in memory only

Environment:
  GEMINI_API_KEY      API key (overrides config)
  GEMCHAT_MODEL       Default model
  GEMCHAT_PASSPHRASE  Passphrase for encrypted storage
`)
}
