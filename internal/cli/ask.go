// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question and plain REPL for gemchat CLI.
//
// Command: ask [question]
//
// Examples:
//   gemchat ask "What is the capital of France?"
//   gemchat ask "Review this:" --file main.go
//   gemchat ask -i photo.png "What breed is this dog?"
//   cat error.log | gemchat ask "What went wrong here?"
//   gemchat ask                 Interactive REPL with input history
//
// Responses stream to stdout. On a TTY the final response is
// re-rendered as markdown; piped output stays plain.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/jeranaias/gemchat-tui/internal/attach"
	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/history"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/turn"
)

// askHistoryFile stores liner input history under the config directory.
const askHistoryFile = "ask_history"

// =============================================================================
// MARKDOWN OUTPUT
// =============================================================================

var markdownRenderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultTerminalWidth),
	)
	if err != nil {
		markdownRenderer = nil
		return
	}
	markdownRenderer = r
}

func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	out, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	client, err := NewClient(cfg)
	if err != nil {
		return err
	}

	question := args.Query

	// Piped stdin becomes the question when none was given on the line.
	if question == "" && !IsTTY() {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err == nil && len(data) > 0 {
			question = strings.TrimSpace(string(data))
		}
	}

	if question == "" && args.File == "" && args.Image == "" {
		return runAskREPL(cfg, client, args)
	}

	in := turn.Input{Text: question}
	if args.File != "" {
		tf, err := attach.ReadTextFile(args.File)
		if err != nil {
			return err
		}
		in.File = tf
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s including file %s\n", noteStyle.Render("[+]"), tf.Name)
		}
	}
	if args.Image != "" {
		img, err := attach.ReadImageFile(args.Image)
		if err != nil {
			return err
		}
		in.Image = img
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s including image %s\n", noteStyle.Render("[+]"), img.Name)
		}
	}
	if in.Empty() {
		return fmt.Errorf("no question provided. Usage: gemchat ask \"your question\"")
	}

	conv := model.NewConversation()
	if err := conv.Append(turn.ComposeUserMessage(in)); err != nil {
		return err
	}
	_, err = streamAnswer(context.Background(), client, cfg, conv)
	return err
}

// streamAnswer sends the conversation and streams the reply to stdout.
// Returns the full response text.
func streamAnswer(ctx context.Context, client *gemini.Client, cfg *config.Config, conv *model.Conversation) (string, error) {
	contents := history.Project(conv)
	chunks, err := client.GenerateStream(ctx, cfg.Model(), contents, cfg.SystemInstruction)
	if err != nil {
		return "", err
	}

	// On a TTY the answer is collected and re-rendered as markdown at
	// the end; raw deltas still stream so the user sees progress.
	useMarkdown := IsStdoutTTY()

	var full strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			fmt.Fprintf(os.Stderr, "\n%s %v\n", errorStyle.Render("[error]"), chunk.Err)
			return full.String(), chunk.Err
		}
		full.WriteString(chunk.TextDelta)
		if !useMarkdown {
			fmt.Print(chunk.TextDelta)
		}
	}

	if useMarkdown {
		fmt.Print(renderMarkdown(full.String()))
	} else {
		fmt.Println()
	}
	return full.String(), nil
}

// =============================================================================
// REPL
// =============================================================================

// runAskREPL runs a line-oriented chat loop with input history.
// This is the lightweight alternative to the full TUI.
func runAskREPL(cfg *config.Config, client *gemini.Client, args Args) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	historyPath := ""
	if dir, err := config.Dir(); err == nil {
		historyPath = filepath.Join(dir, askHistoryFile)
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	if !args.Quiet {
		fmt.Printf("%s %s\n", promptStyle.Render("gemchat"), infoStyle.Render("("+cfg.Model()+")"))
		fmt.Println(mutedStyle.Render("Type /quit to exit, /clear to reset the conversation."))
	}

	conv := model.NewConversation()
	ctx := context.Background()

	for {
		input, err := line.Prompt("> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case "/quit", "/q", "/exit":
			goto done
		case "/clear", "/c":
			conv = model.NewConversation()
			fmt.Println(mutedStyle.Render("conversation cleared"))
			continue
		}

		if err := conv.Append(turn.ComposeUserMessage(turn.Input{Text: input})); err != nil {
			return err
		}

		answer, err := streamAnswer(ctx, client, cfg, conv)
		if err != nil {
			// Keep the REPL alive on transient API failures; drop the
			// failed exchange so history stays consistent.
			conv.TruncateTo(conv.Len() - 1)
			continue
		}

		reply := model.NewModelPlaceholder()
		if err := conv.Append(reply); err != nil {
			return err
		}
		if err := conv.Finalize(reply.ID, answer, false); err != nil {
			return err
		}
	}

done:
	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}
