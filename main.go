// gemchat - Gemini chat for your terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemchat-tui/internal/cli"
	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/turn"
	"github.com/jeranaias/gemchat-tui/internal/ui/chat"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	setupLogging()

	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if args.Version {
		cli.HandleVersion()
		return
	}
	if args.Help {
		cli.HandleHelp()
		return
	}

	switch args.Command {
	case "", "chat", "tui":
		err = runTUI(args)
	case "ask":
		err = cli.HandleAsk(args)
	case "caption":
		err = cli.HandleCaption(args)
	case "sessions", "session":
		err = cli.HandleSessions(args)
	case "botgen":
		err = cli.HandleBotgen(args)
	case "version":
		cli.HandleVersion()
		return
	case "help":
		cli.HandleHelp()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args.Command)
		cli.HandleHelp()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends the default logger to a file under the config dir.
// Stderr is not an option: the TUI owns the terminal, and piped ask
// output must stay clean.
func setupLogging() {
	dir, err := config.Dir()
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	if err := config.EnsureDir(); err != nil {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "gemchat.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
}

// runTUI wires storage, the API client, and the turn controller, then
// hands the terminal to Bubble Tea.
func runTUI(args cli.Args) error {
	if !cli.IsTTY() {
		return fmt.Errorf("the TUI needs a terminal; try: gemchat ask \"...\"")
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}
	client, err := cli.NewClient(cfg)
	if err != nil {
		return err
	}

	registry, kv, err := cli.OpenRegistry(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	ctrl := turn.NewController(registry, client, cfg.Model(), cfg.SystemInstruction)
	program := tea.NewProgram(
		chat.New(cfg, registry, ctrl),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Hot-reload config edits while the TUI runs. Best effort: if the
	// watcher cannot start, the session continues with the loaded config.
	if watcher, werr := config.Watch(); werr == nil {
		defer watcher.Close()
		go func() {
			for next := range watcher.Changes() {
				next.ApplyEnvOverrides()
				if verr := next.Validate(); verr != nil {
					continue
				}
				program.Send(chat.ConfigReloadedMsg{Cfg: next})
			}
		}()
	}

	_, err = program.Run()
	return err
}
