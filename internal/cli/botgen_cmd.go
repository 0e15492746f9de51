// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// botgen_cmd.go - Telegram bot generator command for gemchat CLI.
//
// Command: botgen [dir]
//
// Examples:
//   gemchat botgen                 Print bot.py to stdout (highlighted on TTY)
//   gemchat botgen ./mybot         Write bot.py and requirements.txt to ./mybot
//   gemchat botgen ./mybot -m pro  Generate with a specific model baked in

package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/gemchat-tui/internal/botgen"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
)

// HandleBotgen handles the "botgen" command.
func HandleBotgen(args Args) error {
	cfg := botgen.DefaultConfig()
	if args.Model != "" {
		cfg.Model = gemini.ResolveModel(args.Model)
	}

	dir := args.OutputDir
	if dir == "" && len(args.Positional) > 0 {
		dir = args.Positional[0]
	}

	if dir == "" {
		code, err := botgen.Generate(cfg)
		if err != nil {
			return err
		}
		if IsStdoutTTY() {
			fmt.Print(botgen.Highlight(code))
		} else {
			fmt.Print(code)
		}
		return nil
	}

	if err := botgen.WriteFiles(cfg, dir); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Printf("%s wrote bot.py and requirements.txt to %s\n", successStyle.Render("[ok]"), dir)
		fmt.Fprintln(os.Stderr, mutedStyle.Render("Fill in the bot token and API key placeholders before running."))
	}
	return nil
}
