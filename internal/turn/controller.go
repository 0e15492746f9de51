// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"context"
	"sync"

	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/history"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/store"
)

// =============================================================================
// ERRORS
// =============================================================================

// TurnError represents a turn-related error.
type TurnError struct {
	Message string
}

// Error implements the error interface.
func (e *TurnError) Error() string {
	return e.Message
}

// Is implements errors.Is support.
func (e *TurnError) Is(target error) bool {
	t, ok := target.(*TurnError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrBusy rejects an operation while a turn is in flight. Callers
	// treat it as a no-op, not a failure.
	ErrBusy = &TurnError{Message: "a turn is already in flight"}

	// ErrEmptyInput rejects a submit with nothing to send.
	ErrEmptyInput = &TurnError{Message: "nothing to send"}

	// ErrNothingToRegenerate rejects regenerate when the conversation
	// does not end with a completed model response.
	ErrNothingToRegenerate = &TurnError{Message: "no model response to regenerate"}

	// ErrNotEditable rejects edit on anything but a user message.
	ErrNotEditable = &TurnError{Message: "only user messages can be edited"}
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Streamer is the slice of the API client the controller needs.
type Streamer interface {
	GenerateStream(ctx context.Context, model string, contents []gemini.Content, systemInstruction string) (<-chan gemini.StreamChunk, error)
}

// Event reports streaming progress to the UI. Text is the full accumulated
// model output so far, never a bare delta; consumers replace, not append.
type Event struct {
	SessionID string
	MessageID string
	Text      string
	Final     bool
	Errored   bool
}

// Controller runs chat turns against the active session. At most one turn
// is in flight across all sessions; Submit, Regenerate, and Edit bounce
// with ErrBusy until the running stream commits.
type Controller struct {
	registry *store.Registry
	api      Streamer
	model    string
	sysInstr string

	mu   sync.Mutex
	busy bool
}

// NewController wires a controller to its registry and API client.
func NewController(registry *store.Registry, api Streamer, model, systemInstruction string) *Controller {
	return &Controller{
		registry: registry,
		api:      api,
		model:    model,
		sysInstr: systemInstruction,
	}
}

// Configure swaps the model and system instruction used for new turns.
// A turn already in flight keeps the values it started with.
func (c *Controller) Configure(model, systemInstruction string) {
	c.mu.Lock()
	c.model = model
	c.sysInstr = systemInstruction
	c.mu.Unlock()
}

// params snapshots the model and system instruction under the lock.
func (c *Controller) params() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model, c.sysInstr
}

// Busy reports whether a turn is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// acquire takes the single-flight gate.
func (c *Controller) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.busy = true
	return nil
}

// release frees the gate.
func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs a full turn with the given input against the active session.
// The returned channel carries progress events and closes when the turn has
// been committed (or discarded, if the session was deleted mid-stream).
func (c *Controller) Submit(ctx context.Context, in Input) (<-chan Event, error) {
	if in.Empty() {
		return nil, ErrEmptyInput
	}
	if err := c.acquire(); err != nil {
		return nil, err
	}

	sessionID := c.registry.ActiveID()
	working := c.registry.Active().Conversation

	userMsg := ComposeUserMessage(in)
	if err := working.Append(userMsg); err != nil {
		c.release()
		return nil, err
	}
	return c.startTurn(ctx, sessionID, working)
}

// =============================================================================
// REGENERATE
// =============================================================================

// Regenerate drops the last model response and re-runs the preceding user
// message as fresh input against the history that existed before it.
func (c *Controller) Regenerate(ctx context.Context) (<-chan Event, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}

	sessionID := c.registry.ActiveID()
	working := c.registry.Active().Conversation

	last := working.Last()
	if last == nil || last.Role != model.RoleModel || !last.Status.Terminal() {
		c.release()
		return nil, ErrNothingToRegenerate
	}
	userIdx := working.LastUserIndex()
	if userIdx < 0 {
		c.release()
		return nil, ErrNothingToRegenerate
	}

	// Drop only the model response. The user message stays in the store and
	// is resent as the new input, so it never doubles into the history.
	working.TruncateTo(working.Len() - 1)
	return c.startTurn(ctx, sessionID, working)
}

// =============================================================================
// EDIT
// =============================================================================

// Edit truncates the conversation at the given user message and returns its
// original typed text, for re-seeding the input field. The file-augmented
// payload is not returned; an edited resubmit re-attaches explicitly.
func (c *Controller) Edit(index int) (string, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.mu.Unlock()

	sessionID := c.registry.ActiveID()
	working := c.registry.Active().Conversation

	if index < 0 || index >= working.Len() {
		return "", model.ErrMessageNotFound
	}
	target := working.Messages[index]
	if target.Role != model.RoleUser {
		return "", ErrNotEditable
	}

	seed := target.InputText()
	working.TruncateTo(index)
	if err := c.registry.RecordTurn(sessionID, working); err != nil {
		return "", err
	}
	return seed, nil
}

// =============================================================================
// TURN EXECUTION
// =============================================================================

// startTurn appends the streaming placeholder, projects history, opens the
// stream, and hands off to the applicator. Caller holds the gate; it is
// released when the turn commits.
func (c *Controller) startTurn(ctx context.Context, sessionID string, working *model.Conversation) (<-chan Event, error) {
	placeholder := model.NewModelPlaceholder()
	if err := working.Append(placeholder); err != nil {
		c.release()
		return nil, err
	}

	// Projection sees final messages only, so the new user payload lands as
	// the last request entry and the placeholder is invisible.
	contents := history.Project(working)

	events := make(chan Event, 64)
	emit := func(text string, final, errored bool) {
		events <- Event{
			SessionID: sessionID,
			MessageID: placeholder.ID,
			Text:      text,
			Final:     final,
			Errored:   errored,
		}
	}

	apiModel, sysInstr := c.params()
	chunks, err := c.api.GenerateStream(ctx, apiModel, contents, sysInstr)
	if err != nil {
		// Failed before any byte streamed: the placeholder goes straight to
		// errored with the fixed apology.
		working.Finalize(placeholder.ID, ApologyText, true)
		c.commit(sessionID, working)
		c.release()
		emit(ApologyText, true, true)
		close(events)
		return events, nil
	}

	go func() {
		defer close(events)
		app := newApplicator(working, placeholder.ID)
		app.drain(chunks, emit)
		c.commit(sessionID, working)
		c.release()
	}()
	return events, nil
}

// commit writes the finished conversation back. A session deleted while
// the stream was running returns not-found here; the result is discarded
// and the conversation on screen stays consistent.
func (c *Controller) commit(sessionID string, working *model.Conversation) {
	_ = c.registry.RecordTurn(sessionID, working)
}
