// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spark

import (
	"fmt"
	"strings"
	"time"

	"github.com/akirco/tui-chat/internal/conversation"
)

// =============================================================================
// API CONSTANTS
// =============================================================================

const (
	// DefaultEndpoint is the Spark chat completions URL.
	DefaultEndpoint = "https://spark-api-open.xf-yun.com/v1/chat/completions"

	// DefaultModel is the Spark model identifier sent with every request.
	DefaultModel = "generalv3.5"

	// Temperature is fixed so replies are deterministic.
	Temperature = 0.0

	// MaxTokens caps the length of one reply.
	MaxTokens = 4096

	// DataPrefix starts every event line of the stream.
	DataPrefix = "data: "

	// DoneToken is the payload of the end-of-stream event.
	DoneToken = "[DONE]"

	// MaxLineSize bounds a buffered, unterminated line (64KB).
	MaxLineSize = 64 * 1024
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Credentials hold the static API key pair.
type Credentials struct {
	Key    string
	Secret string
}

// Authorization returns the bearer header value "Bearer {key}:{secret}".
func (c Credentials) Authorization() string {
	return "Bearer " + c.Key + ":" + c.Secret
}

// CompletionRequest is the request body for the chat completions endpoint.
// Temperature has no omitempty: 0.0 must reach the server.
type CompletionRequest struct {
	Model       string                 `json:"model"`
	Messages    []conversation.Message `json:"messages"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens"`
	Stream      bool                   `json:"stream"`
}

// NewCompletionRequest builds a streaming request over a copy of messages.
func NewCompletionRequest(model string, messages []conversation.Message) CompletionRequest {
	msgs := make([]conversation.Message, len(messages))
	copy(msgs, messages)
	return CompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		Stream:      true,
	}
}

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk is the JSON payload of one "data: " event.
type StreamChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// GetContent returns the first choice's delta content.
// The boolean is false when there is no choice or the content is null.
func (c *StreamChunk) GetContent() (string, bool) {
	if len(c.Choices) == 0 || c.Choices[0].Delta.Content == nil {
		return "", false
	}
	return *c.Choices[0].Delta.Content, true
}

// EventKind classifies one decoded unit of the stream.
type EventKind int

const (
	// EventNoise is a unit that could not be decoded or is not an event.
	EventNoise EventKind = iota
	// EventEmpty is a well-formed delta without text (role-only, null content).
	EventEmpty
	// EventContent carries a text fragment.
	EventContent
	// EventDone is the "[DONE]" terminator.
	EventDone
)

// String returns the name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventNoise:
		return "noise"
	case EventEmpty:
		return "empty"
	case EventContent:
		return "content"
	case EventDone:
		return "done"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one decoded unit of the stream.
type Event struct {
	Kind    EventKind
	Content string
}

// Reply is the assembled result of one streamed response.
type Reply struct {
	// Content is every fragment concatenated in arrival order.
	Content string

	// Fragments is the number of content fragments emitted.
	Fragments int

	// Noise counts skipped chunks or lines.
	Noise int

	// Done reports whether a "[DONE]" event was seen.
	Done bool

	// FirstFragment is the time from the start of reading to the first fragment.
	FirstFragment time.Duration

	// Elapsed is the total time spent reading the stream.
	Elapsed time.Duration
}

// =============================================================================
// FRAMING
// =============================================================================

// Framing selects how raw chunks are split into units before decoding.
type Framing int

const (
	// FramingLines buffers across chunks and decodes complete lines.
	FramingLines Framing = iota
	// FramingChunks decodes each chunk as a whole.
	FramingChunks
)

// String returns the configuration name of the framing.
func (f Framing) String() string {
	switch f {
	case FramingLines:
		return "lines"
	case FramingChunks:
		return "chunks"
	default:
		return fmt.Sprintf("Framing(%d)", int(f))
	}
}

// ParseFraming parses a configuration name ("lines" or "chunks").
// An empty name selects FramingLines.
func ParseFraming(name string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lines", "line":
		return FramingLines, nil
	case "chunks", "chunk":
		return FramingChunks, nil
	default:
		return FramingLines, fmt.Errorf("unknown framing %q, must be one of: lines, chunks", name)
	}
}
