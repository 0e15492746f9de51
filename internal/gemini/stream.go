// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// STREAM TYPES
// =============================================================================

// StreamChunk is one unit of a streaming response. Exactly one field is set:
// TextDelta carries an increment of model output, Err carries a mid-stream
// failure. A chunk with Err set is always the last chunk on the channel.
type StreamChunk struct {
	TextDelta string
	Err       error
}

// streamChannelBuffer absorbs bursts so a slow consumer does not stall the
// network read.
const streamChannelBuffer = 32

// maxSSELineSize bounds a single SSE data line. Gemini packs whole response
// candidates per event, so lines can be large.
const maxSSELineSize = 1024 * 1024

// =============================================================================
// STREAMING GENERATION
// =============================================================================

// GenerateStream starts a streaming generation over the given history.
//
// The request and status check happen synchronously: a missing key, rejected
// key, unknown model, or rate limit returns an error here, before any chunk
// is produced. Once a channel is returned, deltas arrive until the stream
// ends; a mid-stream failure arrives as a final chunk with Err set. The
// channel is always closed when the stream is done.
//
// Cancel ctx to abandon the stream; the reader goroutine notices and exits.
func (c *Client) GenerateStream(ctx context.Context, model string, contents []Content, systemInstruction string) (<-chan StreamChunk, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	model = ResolveModel(model)
	if model == "" {
		model = c.model
	}

	reqBody := generateRequest{Contents: contents}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &Content{
			Parts: []Part{{Text: systemInstruction}},
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.endpoint(model, "streamGenerateContent") + "?alt=sse"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	logRequest(req)

	start := time.Now()
	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	logResponse(resp, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, readErr := readResponse(resp)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		return nil, handleErrorResponse(resp.StatusCode, body)
	}

	chunks := make(chan StreamChunk, streamChannelBuffer)
	go c.readSSE(ctx, resp, chunks)
	return chunks, nil
}

// readSSE parses the server-sent-events body into the chunk channel.
func (c *Client) readSSE(ctx context.Context, resp *http.Response, chunks chan<- StreamChunk) {
	defer close(chunks)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxSSELineSize)

	for scanner.Scan() {
		line := scanner.Text()

		// SSE frames are "data: <json>" lines separated by blanks.
		// Comment lines (leading colon) and other fields are skipped.
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		var event generateResponse
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			sendChunk(ctx, chunks, StreamChunk{Err: fmt.Errorf("malformed stream event: %w", err)})
			return
		}
		if delta := event.text(); delta != "" {
			if !sendChunk(ctx, chunks, StreamChunk{TextDelta: delta}) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			sendChunk(ctx, chunks, StreamChunk{Err: ctx.Err()})
			return
		}
		sendChunk(ctx, chunks, StreamChunk{Err: fmt.Errorf("stream read failed: %w", err)})
	}
}

// sendChunk delivers a chunk unless the context is gone. Reports delivery.
func sendChunk(ctx context.Context, chunks chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case chunks <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
