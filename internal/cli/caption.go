// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// caption.go - Image caption command for gemchat CLI.
//
// Command: caption -i IMAGE [prompt]
//
// Examples:
//   gemchat caption -i photo.png
//   gemchat caption -i diagram.webp "Explain this architecture"
//
// Sends the image with a captioning prompt and prints the description.
// Uses a single non-streaming request.

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/gemchat-tui/internal/attach"
	"github.com/jeranaias/gemchat-tui/internal/botgen"
)

// HandleCaption handles the "caption" command.
func HandleCaption(args Args) error {
	if args.Image == "" {
		// Allow the image as a positional argument too.
		if len(args.Positional) > 0 && attach.IsImagePath(args.Positional[0]) {
			args.Image = args.Positional[0]
			args.Positional = args.Positional[1:]
			args.Query = ""
			if len(args.Positional) > 0 {
				args.Query = args.Positional[0]
			}
		}
	}
	if args.Image == "" {
		return fmt.Errorf("caption requires an image: gemchat caption -i photo.png")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	client, err := NewClient(cfg)
	if err != nil {
		return err
	}

	img, err := attach.ReadImageFile(args.Image)
	if err != nil {
		return err
	}

	prompt := args.Query
	if prompt == "" {
		prompt = botgen.DefaultSystemPrompt
	}

	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s captioning %s with %s\n",
			noteStyle.Render("[+]"), img.Name, cfg.Model())
	}

	text, err := client.GenerateOnce(context.Background(), cfg.Model(), img.Base64, img.MIMEType, prompt)
	if err != nil {
		return err
	}

	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(text))
	} else {
		fmt.Println(text)
	}
	return nil
}
