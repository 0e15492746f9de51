// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"strings"

	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/model"
)

// =============================================================================
// STREAM APPLICATOR
// =============================================================================

// applicator folds a delta sequence into the single streaming message of a
// working conversation. The accumulator only ever grows: each update writes
// the full accumulated text, so every observed value is an append-extension
// of the previous one.
type applicator struct {
	conv  *model.Conversation
	msgID string
	acc   strings.Builder
}

func newApplicator(conv *model.Conversation, msgID string) *applicator {
	return &applicator{conv: conv, msgID: msgID}
}

// applyDelta appends one delta and pushes the accumulated text into the
// streaming message. Returns the accumulated text for event reporting.
func (a *applicator) applyDelta(delta string) (string, error) {
	a.acc.WriteString(delta)
	text := a.acc.String()
	if err := a.conv.UpdateText(a.msgID, text); err != nil {
		return "", err
	}
	return text, nil
}

// finishOK finalizes the streaming message with the accumulated text.
func (a *applicator) finishOK() (string, error) {
	text := a.acc.String()
	return text, a.conv.Finalize(a.msgID, text, false)
}

// finishErrored finalizes with the fixed apology, discarding any partial
// accumulated text.
func (a *applicator) finishErrored() error {
	return a.conv.Finalize(a.msgID, ApologyText, true)
}

// drain consumes the whole chunk sequence. Returns the terminal text and
// whether the turn errored.
func (a *applicator) drain(chunks <-chan gemini.StreamChunk, emit func(text string, final, errored bool)) (string, bool) {
	for chunk := range chunks {
		if chunk.Err != nil {
			a.finishErrored()
			emit(ApologyText, true, true)
			return ApologyText, true
		}
		if chunk.TextDelta == "" {
			continue
		}
		text, err := a.applyDelta(chunk.TextDelta)
		if err != nil {
			a.finishErrored()
			emit(ApologyText, true, true)
			return ApologyText, true
		}
		emit(text, false, false)
	}

	text, err := a.finishOK()
	if err != nil {
		emit(ApologyText, true, true)
		return ApologyText, true
	}
	emit(text, true, false)
	return text, false
}
