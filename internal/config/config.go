// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete gemchat configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" json:"version"`
	DefaultModel string `toml:"default_model" json:"default_model"`

	// SystemInstruction primes every conversation.
	SystemInstruction string `toml:"system_instruction" json:"system_instruction"`

	// API configuration
	API APIConfig `toml:"api" json:"api"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig contains Gemini API configuration.
type APIConfig struct {
	// Key is the Gemini API key. GEMINI_API_KEY overrides it.
	Key string `toml:"key" json:"key"`
	// BaseURL overrides the API endpoint (empty = production).
	BaseURL string `toml:"base_url" json:"base_url"`
}

// StorageConfig contains session persistence configuration.
type StorageConfig struct {
	// DataDir holds the session database (empty = ~/.gemchat).
	DataDir string `toml:"data_dir" json:"data_dir"`
	// Ephemeral keeps sessions in memory only.
	Ephemeral bool `toml:"ephemeral" json:"ephemeral"`
	// Encrypt seals the session blob at rest. Requires a passphrase via
	// GEMCHAT_PASSPHRASE; the passphrase itself is never written to disk.
	Encrypt bool `toml:"encrypt" json:"encrypt"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light".
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders model output through the markdown renderer.
	Markdown bool `toml:"markdown" json:"markdown"`
	// ShowTimestamps prefixes messages with their creation time.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
}

// DefaultSystemInstruction primes the assistant persona.
const DefaultSystemInstruction = "You are a helpful, clever, and friendly AI assistant named Gemini."

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:           "1",
		DefaultModel:      gemini.ModelFlash,
		SystemInstruction: DefaultSystemInstruction,
		API:               APIConfig{},
		Storage:           StorageConfig{},
		UI: UIConfig{
			Theme:    "dark",
			Markdown: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the gemchat configuration directory (~/.gemchat).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gemchat"), nil
}

// PathTOML returns the TOML config file path.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the JSON config file path.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureDir creates the configuration directory if absent.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration with standard precedence: TOML file, then JSON
// file, then built-in defaults, with environment overrides applied last. A
// missing file is not an error; a malformed one is.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := PathTOML()
	if err == nil {
		if loadErr := LoadTOML(cfg, tomlPath); loadErr != nil && !os.IsNotExist(loadErr) {
			return nil, loadErr
		} else if loadErr == nil {
			cfg.ApplyEnvOverrides()
			return cfg, cfg.Validate()
		}
	}

	jsonPath, err := PathJSON()
	if err == nil {
		if loadErr := LoadJSON(cfg, jsonPath); loadErr != nil && !os.IsNotExist(loadErr) {
			return nil, loadErr
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// LoadTOML merges a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid TOML in %s: %w", path, err)
	}
	return nil
}

// LoadJSON merges a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

// LoadFromPath loads a config file by extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = LoadTOML(cfg, path)
	case ".json":
		err = LoadJSON(cfg, path)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes cfg to the TOML path. The file may hold the API key, so it is
// written with owner-only permissions.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return err
	}
	path, err := PathTOML()
	if err != nil {
		return err
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0o600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides lets the environment win over file values.
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.API.Key = key
	}
	if model := os.Getenv("GEMCHAT_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if instr := os.Getenv("GEMCHAT_SYSTEM_INSTRUCTION"); instr != "" {
		c.SystemInstruction = instr
	}
	if dir := os.Getenv("GEMCHAT_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if eph := os.Getenv("GEMCHAT_EPHEMERAL"); eph == "1" || eph == "true" {
		c.Storage.Ephemeral = true
	}
}

// Passphrase returns the at-rest encryption passphrase from the
// environment. Never stored in the config file.
func Passphrase() string {
	return os.Getenv("GEMCHAT_PASSPHRASE")
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model must not be empty")
	}
	switch c.UI.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("unknown theme %q (want dark or light)", c.UI.Theme)
	}
	if c.Storage.Encrypt && c.Storage.Ephemeral {
		return fmt.Errorf("encrypt and ephemeral are mutually exclusive")
	}
	return nil
}

// DataDir resolves the storage directory, falling back to the config dir.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return Dir()
}

// Model resolves the default model through friendly aliases.
func (c *Config) Model() string {
	return gemini.ResolveModel(c.DefaultModel)
}
