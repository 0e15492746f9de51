// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Argument parsing for gemchat CLI.
//
// gemchat keeps flag parsing by hand rather than pulling in a flag
// framework: the surface is small and every command shares the same
// handful of flags.

package cli

import (
	"fmt"
	"strings"
)

// Args holds parsed command-line arguments shared across commands.
type Args struct {
	// Command is the first positional argument ("ask", "caption", ...).
	Command string

	// Query is the remaining positional text joined with spaces.
	Query string

	// Positional holds the raw positional arguments after the command.
	Positional []string

	Model     string // -m, --model
	File      string // -f, --file
	Image     string // -i, --image
	OutputDir string // -o, --out
	Quiet     bool   // -q, --quiet
	Ephemeral bool   // --ephemeral
	Version   bool   // --version
	Help      bool   // -h, --help
}

// ParseArgs parses os.Args[1:] into an Args struct.
func ParseArgs(argv []string) (Args, error) {
	var args Args
	var positional []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		needsValue := func(name string) (string, error) {
			if i+1 >= len(argv) {
				return "", fmt.Errorf("%s requires a value", name)
			}
			i++
			return argv[i], nil
		}

		switch arg {
		case "-m", "--model":
			v, err := needsValue(arg)
			if err != nil {
				return args, err
			}
			args.Model = v
		case "-f", "--file":
			v, err := needsValue(arg)
			if err != nil {
				return args, err
			}
			args.File = v
		case "-i", "--image":
			v, err := needsValue(arg)
			if err != nil {
				return args, err
			}
			args.Image = v
		case "-o", "--out":
			v, err := needsValue(arg)
			if err != nil {
				return args, err
			}
			args.OutputDir = v
		case "-q", "--quiet":
			args.Quiet = true
		case "--ephemeral":
			args.Ephemeral = true
		case "--version", "-v":
			args.Version = true
		case "-h", "--help":
			args.Help = true
		default:
			if strings.HasPrefix(arg, "-") {
				return args, fmt.Errorf("unknown flag: %s", arg)
			}
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		args.Command = positional[0]
		args.Positional = positional[1:]
		args.Query = strings.Join(positional[1:], " ")
	}
	return args, nil
}
