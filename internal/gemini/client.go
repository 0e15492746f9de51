// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is the base URL for the Gemini REST API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps non-streaming response bodies to keep a
	// misbehaving endpoint from exhausting memory.
	MaxResponseSize = 10 * 1024 * 1024
)

// Model identifiers offered by the client.
const (
	ModelFlash = "gemini-2.5-flash"
	ModelPro   = "gemini-3-pro-preview"
	ModelLite  = "gemini-flash-lite-latest"
)

// ModelAliases maps friendly names to full model identifiers.
var ModelAliases = map[string]string{
	"flash": ModelFlash,
	"pro":   ModelPro,
	"lite":  ModelLite,
}

// ResolveModel expands a friendly alias to a full model identifier; unknown
// names pass through unchanged so new models work without a client update.
func ResolveModel(name string) string {
	if full, ok := ModelAliases[strings.TrimSpace(name)]; ok {
		return full
	}
	return name
}

// =============================================================================
// SHARED HTTP CLIENTS
// =============================================================================

var (
	// Shared client with connection pooling for blocking requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// Streaming client has no client-level timeout; lifetime is controlled
	// by the request context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("Gemini API key not configured")

	// ErrAuthFailed indicates the API rejected the key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")
)

// APIError represents an error response from the Gemini API.
type APIError struct {
	Code    int
	Status  string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("Gemini error [%s] (HTTP %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("Gemini error (HTTP %d): %s", e.Code, e.Message)
}

// apiErrorResponse is the API's JSON error envelope.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// Blob carries inline binary data as base64.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part is one piece of a content entry: text or inline data, never both.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Content is one turn of the request history. Role is "user" or "model".
// Part order matters to the model: an attached image precedes its text.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTextContent builds a single-text content entry.
func NewTextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

// generateRequest is the wire shape of generateContent / streamGenerateContent.
type generateRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

// generateResponse is the wire shape of a (streamed or whole) response.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Role  string `json:"role"`
			Parts []Part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

// text concatenates the text parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Gemini API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
}

// NewClient creates a client with the given API key. An empty key still
// yields a usable value; calls fail with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultBaseURL,
		model:   ModelFlash,
	}
}

// WithBaseURL overrides the API base URL (used by tests).
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithModel sets the default model, resolving friendly aliases.
func (c *Client) WithModel(model string) *Client {
	c.model = ResolveModel(model)
	return c
}

// Model returns the default model identifier.
func (c *Client) Model() string {
	return c.model
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// KeyFingerprint returns a short SHA-256 fingerprint of the API key for
// logging. The key itself is never logged, not even a fragment.
func (c *Client) KeyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// endpoint builds the URL for a model method such as "generateContent".
func (c *Client) endpoint(model, method string) string {
	return c.baseURL + "/models/" + model + ":" + method
}

// setHeaders applies the required headers for Gemini API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("User-Agent", "gemchat/0.1.0")
}

// =============================================================================
// ONE-SHOT GENERATION
// =============================================================================

// GenerateOnce performs a blocking single-shot generation with an inline
// image and a text prompt. Used by the caption mode.
func (c *Client) GenerateOnce(ctx context.Context, model, imageB64, mimeType, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	model = ResolveModel(model)
	if model == "" {
		model = c.model
	}

	reqBody := generateRequest{
		Contents: []Content{{
			Role: "user",
			Parts: []Part{
				{InlineData: &Blob{MIMEType: mimeType, Data: imageB64}},
				{Text: prompt},
			},
		}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(model, "generateContent"), bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	logRequest(req)

	start := time.Now()
	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	logResponse(resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", handleErrorResponse(resp.StatusCode, body)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return genResp.text(), nil
}

// =============================================================================
// REQUEST LOGGING
// =============================================================================

// logRequest logs an API request without exposing sensitive data: no
// headers (carry the key) and no body (carries the conversation).
func logRequest(req *http.Request) {
	log.Printf("api request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs status and duration only.
func logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("api response: %d (%v)", resp.StatusCode, duration)
}

// =============================================================================
// RESPONSE HANDLING
// =============================================================================

// readResponse reads a response body with the size cap applied.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		e := &APIError{
			Code:    statusCode,
			Status:  apiErr.Error.Status,
			Message: apiErr.Error.Message,
		}
		switch statusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuthFailed, e.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, e.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, e.Message)
		default:
			return e
		}
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{Code: statusCode, Message: string(body)}
	}
}
