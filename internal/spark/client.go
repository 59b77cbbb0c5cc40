// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spark

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/http/httpguts"

	"github.com/akirco/tui-chat/internal/conversation"
)

// maxErrorBody bounds how much of a failed response is read for the message.
const maxErrorBody = 4 * 1024

// sharedStreamingClient is used for streaming requests. It has no overall
// timeout: a reply streams until the server ends it.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the Spark chat completions endpoint.
type Client struct {
	creds      Credentials
	endpoint   string
	model      string
	httpClient *http.Client
	framing    Framing
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the completions URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces the shared streaming HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithFraming selects how the response stream is split into events.
func WithFraming(f Framing) Option {
	return func(c *Client) {
		c.framing = f
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client with the default endpoint and model.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		endpoint:   DefaultEndpoint,
		model:      DefaultModel,
		httpClient: sharedStreamingClient,
		framing:    FramingLines,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the completions URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// StreamReply sends the conversation snapshot and consumes the streamed reply.
// emit receives every content fragment as soon as it is decoded; it may be nil.
//
// Request construction failures return *RequestBuildError, network failures
// *TransportError and non-2xx responses *APIError. Undecodable stream data is
// skipped and never returned as an error.
func (c *Client) StreamReply(ctx context.Context, snapshot []conversation.Message, emit func(string)) (*Reply, error) {
	req, err := c.newRequest(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("sending completion request",
		"model", c.model,
		"messages", len(snapshot),
		"framing", c.framing)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newAPIError(resp.StatusCode, body)
	}

	reply, err := NewConsumer(c.framing, c.logger).Consume(NewReaderSource(resp.Body), emit)
	if err != nil {
		return nil, &TransportError{Op: "read stream", Err: err}
	}

	c.logger.Debug("stream finished",
		"fragments", reply.Fragments,
		"noise", reply.Noise,
		"done", reply.Done,
		"first_fragment", reply.FirstFragment.Round(time.Millisecond),
		"elapsed", reply.Elapsed.Round(time.Millisecond))

	return reply, nil
}

// newRequest builds the POST request for one turn.
func (c *Client) newRequest(ctx context.Context, snapshot []conversation.Message) (*http.Request, error) {
	if len(snapshot) == 0 {
		return nil, &RequestBuildError{Op: "messages", Err: ErrEmptyConversation}
	}

	auth := c.creds.Authorization()
	if !httpguts.ValidHeaderFieldValue(auth) {
		return nil, &RequestBuildError{Op: "authorization header", Err: ErrInvalidCredentials}
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &RequestBuildError{Op: "endpoint", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &RequestBuildError{Op: "endpoint", Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	body, err := json.Marshal(NewCompletionRequest(c.model, snapshot))
	if err != nil {
		return nil, &RequestBuildError{Op: "marshal body", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, &RequestBuildError{Op: "create request", Err: err}
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	return req, nil
}

// apiErrorResponse covers both the OpenAI-style and the flat error bodies.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// newAPIError builds an APIError from a failed response body.
func newAPIError(status int, body []byte) *APIError {
	var parsed apiErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error.Message != "" {
			return &APIError{Status: status, Message: parsed.Error.Message}
		}
		if parsed.Message != "" {
			return &APIError{Status: status, Message: parsed.Message}
		}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}
