// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"
	"time"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// MarkdownExporter renders a session as a Markdown document.
type MarkdownExporter struct {
	opts *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{opts: opts}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// Export renders the session. Streaming messages are skipped (a snapshot
// mid-turn exports only the settled history); errored messages are kept and
// marked, since the user saw them.
func (e *MarkdownExporter) Export(s *model.Session) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# " + sanitizeTitleLine(s.Title) + "\n\n")
	sb.WriteString("Created: " + s.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range s.Conversation.Messages {
		if msg.Status == model.StatusStreaming {
			continue
		}

		label := "**" + msg.Role.DisplayName() + "**"
		if msg.Status == model.StatusErrored {
			label += " _(failed)_"
		}
		if e.opts.IncludeTimestamps {
			label += " (" + msg.CreatedAt.Format("15:04") + ")"
		}
		sb.WriteString(label + ":\n\n")

		if msg.HasImage() {
			sb.WriteString("_[image attachment, " + msg.MIMEType + "]_\n\n")
		}
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n---\n\n")
	}

	return []byte(sb.String()), nil
}

// sanitizeTitleLine keeps the heading on one line.
func sanitizeTitleLine(title string) string {
	title = strings.ReplaceAll(title, "\n", " ")
	return strings.ReplaceAll(title, "\r", "")
}
