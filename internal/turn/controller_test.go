// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jeranaias/gemchat-tui/internal/attach"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/store"
)

// fakeAPI is a scripted Streamer. It records the contents of each call and
// replays the configured deltas, optionally failing.
type fakeAPI struct {
	mu        sync.Mutex
	calls     [][]gemini.Content
	deltas    []string
	startErr  error
	streamErr error
	gate      chan struct{} // when set, the stream waits here before emitting
}

func (f *fakeAPI) GenerateStream(ctx context.Context, model string, contents []gemini.Content, systemInstruction string) (<-chan gemini.StreamChunk, error) {
	f.mu.Lock()
	f.calls = append(f.calls, contents)
	f.mu.Unlock()

	if f.startErr != nil {
		return nil, f.startErr
	}
	chunks := make(chan gemini.StreamChunk)
	go func() {
		defer close(chunks)
		if f.gate != nil {
			<-f.gate
		}
		for _, d := range f.deltas {
			chunks <- gemini.StreamChunk{TextDelta: d}
		}
		if f.streamErr != nil {
			chunks <- gemini.StreamChunk{Err: f.streamErr}
		}
	}()
	return chunks, nil
}

func (f *fakeAPI) lastCall(t *testing.T) []gemini.Content {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no API call recorded")
	}
	return f.calls[len(f.calls)-1]
}

func newTestController(t *testing.T, api *fakeAPI) (*Controller, *store.Registry) {
	t.Helper()
	reg, err := store.NewRegistry(store.NewMemoryKV())
	if err != nil {
		t.Fatal(err)
	}
	return NewController(reg, api, gemini.ModelFlash, "You are a helpful assistant."), reg
}

// drainEvents reads the channel to completion and returns all events.
func drainEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	for ev := range events {
		all = append(all, ev)
	}
	if len(all) == 0 {
		t.Fatal("turn produced no events")
	}
	return all
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit_HappyPath(t *testing.T) {
	api := &fakeAPI{deltas: []string{"Hi", " there"}}
	ctrl, reg := newTestController(t, api)

	events, err := ctrl.Submit(context.Background(), Input{Text: "Hello"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	all := drainEvents(t, events)

	last := all[len(all)-1]
	if !last.Final || last.Errored {
		t.Errorf("last event = %+v, want final non-errored", last)
	}
	if last.Text != "Hi there" {
		t.Errorf("final text = %q, want %q", last.Text, "Hi there")
	}

	conv := reg.Active().Conversation
	if conv.Len() != 2 {
		t.Fatalf("committed conversation has %d messages, want 2", conv.Len())
	}
	if conv.Messages[0].Role != model.RoleUser || conv.Messages[0].Text != "Hello" {
		t.Errorf("user message wrong: %+v", conv.Messages[0])
	}
	mm := conv.Messages[1]
	if mm.Role != model.RoleModel || mm.Status != model.StatusFinal || mm.Text != "Hi there" {
		t.Errorf("model message wrong: %+v", mm)
	}
	if ctrl.Busy() {
		t.Error("controller should be idle after commit")
	}
}

func TestSubmit_TextIsMonotonic(t *testing.T) {
	api := &fakeAPI{deltas: []string{"a", "b", "c", "d"}}
	ctrl, _ := newTestController(t, api)

	events, err := ctrl.Submit(context.Background(), Input{Text: "go"})
	if err != nil {
		t.Fatal(err)
	}
	prev := ""
	for ev := range events {
		if len(ev.Text) < len(prev) || ev.Text[:len(prev)] != prev {
			t.Fatalf("text %q is not an append-extension of %q", ev.Text, prev)
		}
		prev = ev.Text
	}
}

func TestSubmit_RejectedWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{deltas: []string{"slow"}, gate: gate}
	ctrl, reg := newTestController(t, api)

	events, err := ctrl.Submit(context.Background(), Input{Text: "first"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ctrl.Submit(context.Background(), Input{Text: "second"}); !errors.Is(err, ErrBusy) {
		t.Errorf("second submit: expected ErrBusy, got %v", err)
	}
	if _, err := ctrl.Regenerate(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("regenerate while busy: expected ErrBusy, got %v", err)
	}
	if _, err := ctrl.Edit(0); !errors.Is(err, ErrBusy) {
		t.Errorf("edit while busy: expected ErrBusy, got %v", err)
	}

	close(gate)
	drainEvents(t, events)

	// Only the first turn landed.
	conv := reg.Active().Conversation
	if conv.Len() != 2 {
		t.Errorf("conversation has %d messages, want 2", conv.Len())
	}
	if conv.Streaming() != nil {
		t.Error("no message may remain streaming after commit")
	}
}

func TestSubmit_StartFailureGoesStraightToErrored(t *testing.T) {
	api := &fakeAPI{startErr: gemini.ErrAuthFailed}
	ctrl, reg := newTestController(t, api)

	events, err := ctrl.Submit(context.Background(), Input{Text: "hello"})
	if err != nil {
		t.Fatalf("start failures surface through events, not the return: %v", err)
	}
	all := drainEvents(t, events)

	if len(all) != 1 {
		t.Errorf("expected exactly one terminal event, got %d", len(all))
	}
	if !all[0].Final || !all[0].Errored || all[0].Text != ApologyText {
		t.Errorf("event = %+v", all[0])
	}

	mm := reg.Active().Conversation.Last()
	if mm.Status != model.StatusErrored || mm.Text != ApologyText {
		t.Errorf("placeholder should be errored with the apology, got %+v", mm)
	}
	if ctrl.Busy() {
		t.Error("gate must be released after a start failure")
	}
}

func TestSubmit_MidStreamErrorDiscardsPartialText(t *testing.T) {
	api := &fakeAPI{deltas: []string{"partial answer"}, streamErr: errors.New("connection reset")}
	ctrl, reg := newTestController(t, api)

	events, err := ctrl.Submit(context.Background(), Input{Text: "q"})
	if err != nil {
		t.Fatal(err)
	}
	all := drainEvents(t, events)

	last := all[len(all)-1]
	if !last.Errored || last.Text != ApologyText {
		t.Errorf("last event = %+v", last)
	}

	mm := reg.Active().Conversation.Last()
	if mm.Text != ApologyText {
		t.Errorf("partial text must be replaced with the apology, got %q", mm.Text)
	}
	if mm.Status != model.StatusErrored {
		t.Errorf("Status = %q", mm.Status)
	}
}

func TestSubmit_EmptyInput(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeAPI{})
	if _, err := ctrl.Submit(context.Background(), Input{Text: "   "}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSubmit_DeletedSessionDiscardsResult(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{deltas: []string{"orphaned"}, gate: gate}
	ctrl, reg := newTestController(t, api)
	victim := reg.ActiveID()

	events, err := ctrl.Submit(context.Background(), Input{Text: "doomed"})
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.Delete(victim); err != nil {
		t.Fatal(err)
	}
	replacement := reg.ActiveID()

	close(gate)
	drainEvents(t, events)

	if !reg.Active().Conversation.IsEmpty() {
		t.Error("stream result for a deleted session must be discarded")
	}
	if reg.ActiveID() != replacement {
		t.Error("active session changed unexpectedly")
	}
	if ctrl.Busy() {
		t.Error("gate must be released even when the commit is discarded")
	}
}

// =============================================================================
// REGENERATE
// =============================================================================

func seedExchange(t *testing.T, reg *store.Registry, userText, modelText string) {
	t.Helper()
	conv := reg.Active().Conversation
	conv.Append(model.NewUserMessage(userText))
	mm := model.NewModelPlaceholder()
	conv.Append(mm)
	conv.Finalize(mm.ID, modelText, false)
	if err := reg.RecordTurn(reg.ActiveID(), conv); err != nil {
		t.Fatal(err)
	}
}

func TestRegenerate_ResendsLastUserTurn(t *testing.T) {
	api := &fakeAPI{deltas: []string{"Four."}}
	ctrl, reg := newTestController(t, api)
	seedExchange(t, reg, "2+2?", "4")

	events, err := ctrl.Regenerate(context.Background())
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	drainEvents(t, events)

	// The re-issued request carries the user turn as new input with no
	// history before it.
	contents := api.lastCall(t)
	if len(contents) != 1 {
		t.Fatalf("request carried %d entries, want 1", len(contents))
	}
	if contents[0].Role != "user" || contents[0].Parts[0].Text != "2+2?" {
		t.Errorf("request entry = %+v", contents[0])
	}

	conv := reg.Active().Conversation
	if conv.Len() != 2 {
		t.Fatalf("conversation has %d messages, want 2", conv.Len())
	}
	if conv.Messages[0].Text != "2+2?" {
		t.Errorf("user message must survive regenerate, got %q", conv.Messages[0].Text)
	}
	if conv.Messages[1].Text != "Four." || conv.Messages[1].Status != model.StatusFinal {
		t.Errorf("regenerated response = %+v", conv.Messages[1])
	}
}

func TestRegenerate_KeepsEarlierHistory(t *testing.T) {
	api := &fakeAPI{deltas: []string{"better answer"}}
	ctrl, reg := newTestController(t, api)
	seedExchange(t, reg, "first q", "first a")
	seedExchange(t, reg, "second q", "second a")

	events, err := ctrl.Regenerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	drainEvents(t, events)

	contents := api.lastCall(t)
	if len(contents) != 3 {
		t.Fatalf("request carried %d entries, want 3 (first exchange + resent input)", len(contents))
	}
	if contents[2].Parts[0].Text != "second q" {
		t.Errorf("last entry must be the resent user turn, got %q", contents[2].Parts[0].Text)
	}
}

func TestRegenerate_RequiresTrailingModelResponse(t *testing.T) {
	ctrl, reg := newTestController(t, &fakeAPI{})

	if _, err := ctrl.Regenerate(context.Background()); !errors.Is(err, ErrNothingToRegenerate) {
		t.Errorf("empty conversation: expected ErrNothingToRegenerate, got %v", err)
	}

	conv := reg.Active().Conversation
	conv.Append(model.NewUserMessage("unanswered"))
	reg.RecordTurn(reg.ActiveID(), conv)

	if _, err := ctrl.Regenerate(context.Background()); !errors.Is(err, ErrNothingToRegenerate) {
		t.Errorf("user-last conversation: expected ErrNothingToRegenerate, got %v", err)
	}
	if ctrl.Busy() {
		t.Error("rejected regenerate must not leave the gate held")
	}
}

// =============================================================================
// EDIT
// =============================================================================

func TestEdit_TruncatesAndSeeds(t *testing.T) {
	ctrl, reg := newTestController(t, &fakeAPI{})
	seedExchange(t, reg, "A", "B")
	seedExchange(t, reg, "C", "D")

	seed, err := ctrl.Edit(0)
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if seed != "A" {
		t.Errorf("seed = %q, want %q", seed, "A")
	}
	if !reg.Active().Conversation.IsEmpty() {
		t.Errorf("editing the first message must empty the conversation, len = %d",
			reg.Active().Conversation.Len())
	}
}

func TestEdit_MidConversation(t *testing.T) {
	ctrl, reg := newTestController(t, &fakeAPI{})
	seedExchange(t, reg, "A", "B")
	seedExchange(t, reg, "C", "D")

	seed, err := ctrl.Edit(2)
	if err != nil {
		t.Fatal(err)
	}
	if seed != "C" {
		t.Errorf("seed = %q", seed)
	}
	conv := reg.Active().Conversation
	if conv.Len() != 2 || conv.Messages[1].Text != "B" {
		t.Errorf("conversation should keep the first exchange, got %d messages", conv.Len())
	}
}

func TestEdit_RejectsModelMessage(t *testing.T) {
	ctrl, reg := newTestController(t, &fakeAPI{})
	seedExchange(t, reg, "A", "B")

	if _, err := ctrl.Edit(1); !errors.Is(err, ErrNotEditable) {
		t.Errorf("expected ErrNotEditable, got %v", err)
	}
	if _, err := ctrl.Edit(7); !errors.Is(err, model.ErrMessageNotFound) {
		t.Errorf("out of range: expected ErrMessageNotFound, got %v", err)
	}
}

func TestEdit_SeedsTypedTextNotPayload(t *testing.T) {
	ctrl, reg := newTestController(t, &fakeAPI{})

	conv := reg.Active().Conversation
	msg := model.NewUserMessage("Summarize\n(Attached: notes.txt)")
	msg.Input = "Summarize"
	msg.Payload = "Summarize\n\n--- Attached File: notes.txt ---\nbody"
	conv.Append(msg)
	reg.RecordTurn(reg.ActiveID(), conv)

	seed, err := ctrl.Edit(0)
	if err != nil {
		t.Fatal(err)
	}
	if seed != "Summarize" {
		t.Errorf("seed = %q, want the typed text alone", seed)
	}
}

func TestEdit_FileOnlyMessageSeedsEmpty(t *testing.T) {
	ctrl, reg := newTestController(t, &fakeAPI{})

	conv := reg.Active().Conversation
	file := &attach.TextFile{Name: "data.csv", Content: "a,b\n1,2"}
	conv.Append(ComposeUserMessage(Input{File: file}))
	reg.RecordTurn(reg.ActiveID(), conv)

	seed, err := ctrl.Edit(0)
	if err != nil {
		t.Fatal(err)
	}
	if seed != "" {
		t.Errorf("seed = %q, want empty: nothing was typed, only a file attached", seed)
	}
}

// =============================================================================
// ATTACHMENT SUBMISSION
// =============================================================================

func TestSubmit_FilePayloadSentButNotDisplayed(t *testing.T) {
	api := &fakeAPI{deltas: []string{"ok"}}
	ctrl, reg := newTestController(t, api)

	file := &attach.TextFile{Name: "notes.txt", Content: "secret file body"}
	events, err := ctrl.Submit(context.Background(), Input{Text: "Summarize this", File: file})
	if err != nil {
		t.Fatal(err)
	}
	drainEvents(t, events)

	contents := api.lastCall(t)
	sent := contents[0].Parts[0].Text
	if sent != "Summarize this\n\n--- Attached File: notes.txt ---\nsecret file body" {
		t.Errorf("sent payload = %q", sent)
	}

	shown := reg.Active().Conversation.Messages[0].Text
	if shown != "Summarize this\n(Attached: notes.txt)" {
		t.Errorf("displayed text = %q", shown)
	}
}

func TestSubmit_ImageRidesAsInlineData(t *testing.T) {
	api := &fakeAPI{deltas: []string{"a dog"}}
	ctrl, _ := newTestController(t, api)

	img := &attach.ImageFile{Name: "dog.png", MIMEType: "image/png", Base64: "ZG9n"}
	events, err := ctrl.Submit(context.Background(), Input{Text: "what is this?", Image: img})
	if err != nil {
		t.Fatal(err)
	}
	drainEvents(t, events)

	parts := api.lastCall(t)[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[0].InlineData.Data != "ZG9n" {
		t.Fatalf("image part must lead: %+v", parts)
	}
	if parts[1].Text != "what is this?" {
		t.Errorf("text part = %q", parts[1].Text)
	}
}
