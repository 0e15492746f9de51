// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Session management commands for gemchat CLI.
//
// Command: sessions [list|show|delete|export] [id]
//
// Examples:
//   gemchat sessions list
//   gemchat sessions show 4f8a1c2e
//   gemchat sessions delete 4f8a1c2e
//   gemchat sessions export 4f8a1c2e -o ./exports
//
// IDs may be abbreviated to a unique prefix.

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/export"
	"github.com/jeranaias/gemchat-tui/internal/store"
)

// HandleSessions handles the "sessions" command and its subcommands.
func HandleSessions(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	if cfg.Storage.Ephemeral {
		return fmt.Errorf("storage is ephemeral: there are no saved sessions")
	}

	reg, kv, err := OpenRegistry(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	sub := "list"
	if len(args.Positional) > 0 {
		sub = args.Positional[0]
	}

	switch sub {
	case "list", "ls":
		return listSessions(reg)
	case "show":
		if len(args.Positional) < 2 {
			return fmt.Errorf("usage: gemchat sessions show <id>")
		}
		return showSession(cfg, reg, args.Positional[1])
	case "delete", "rm":
		if len(args.Positional) < 2 {
			return fmt.Errorf("usage: gemchat sessions delete <id>")
		}
		return deleteSession(reg, args.Positional[1])
	case "export":
		if len(args.Positional) < 2 {
			return fmt.Errorf("usage: gemchat sessions export <id>")
		}
		return exportSession(cfg, reg, args.Positional[1], args.OutputDir)
	default:
		return fmt.Errorf("unknown sessions subcommand: %s", sub)
	}
}

func listSessions(reg *store.Registry) error {
	metas := reg.List()
	if len(metas) == 0 {
		fmt.Println(mutedStyle.Render("no sessions"))
		return nil
	}

	for _, m := range metas {
		marker := " "
		if m.Active {
			marker = successStyle.Render("*")
		}
		fmt.Printf("%s %s  %-40s %s\n",
			marker,
			noteStyle.Render(shortID(m.ID)),
			m.Title,
			mutedStyle.Render(fmt.Sprintf("%d msgs, %s", m.MessageCount, m.UpdatedAt.Format("2006-01-02 15:04"))))
	}
	return nil
}

// showSession prints a session transcript to stdout as markdown,
// glamour-rendered when stdout is a terminal.
func showSession(cfg *config.Config, reg *store.Registry, idPrefix string) error {
	id, err := resolveSessionID(reg, idPrefix)
	if err != nil {
		return err
	}
	s, err := reg.Get(id)
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	opts.IncludeTimestamps = cfg.UI.ShowTimestamps
	content, err := export.NewMarkdownExporter(opts).Export(s)
	if err != nil {
		return err
	}

	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(string(content)))
	} else {
		fmt.Print(string(content))
	}
	return nil
}

func deleteSession(reg *store.Registry, idPrefix string) error {
	id, err := resolveSessionID(reg, idPrefix)
	if err != nil {
		return err
	}
	if err := reg.Delete(id); err != nil {
		return err
	}
	fmt.Printf("%s deleted session %s\n", successStyle.Render("[ok]"), shortID(id))
	return nil
}

func exportSession(cfg *config.Config, reg *store.Registry, idPrefix, outDir string) error {
	id, err := resolveSessionID(reg, idPrefix)
	if err != nil {
		return err
	}
	s, err := reg.Get(id)
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	if outDir != "" {
		opts.OutputDir = outDir
	}
	opts.IncludeTimestamps = cfg.UI.ShowTimestamps

	path, err := export.Markdown(s, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%s exported to %s\n", successStyle.Render("[ok]"), path)
	return nil
}

// resolveSessionID expands an ID prefix to a full session ID.
func resolveSessionID(reg *store.Registry, prefix string) (string, error) {
	var matches []string
	for _, m := range reg.List() {
		if strings.HasPrefix(m.ID, prefix) {
			matches = append(matches, m.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous: matches %d sessions", prefix, len(matches))
	}
}

// shortID returns the first 8 characters of a session ID.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
