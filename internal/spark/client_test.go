// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akirco/tui-chat/internal/conversation"
)

// =============================================================================
// TEST SERVER
// =============================================================================

// sseServer streams every part as its own flushed write.
func sseServer(t *testing.T, parts ...string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.record(t, r)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer does not support flushing")
			return
		}
		for _, p := range parts {
			fmt.Fprint(w, p)
			flusher.Flush()
		}
	}))
	t.Cleanup(server.Close)
	return server, captured
}

type capturedRequest struct {
	method        string
	authorization string
	contentType   string
	accept        string
	body          map[string]any
	hits          atomic.Int32
}

func (c *capturedRequest) record(t *testing.T, r *http.Request) {
	c.hits.Add(1)
	c.method = r.Method
	c.authorization = r.Header.Get("Authorization")
	c.contentType = r.Header.Get("Content-Type")
	c.accept = r.Header.Get("Accept")

	data, err := io.ReadAll(r.Body)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(data, &c.body))
}

var testCreds = Credentials{Key: "app-key", Secret: "app-secret"}

func hello() []conversation.Message {
	return []conversation.Message{conversation.NewUserMessage("hello")}
}

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestCredentials_Authorization(t *testing.T) {
	assert.Equal(t, "Bearer app-key:app-secret", testCreds.Authorization())
}

func TestNewCompletionRequest_FixedParameters(t *testing.T) {
	msgs := hello()
	req := NewCompletionRequest(DefaultModel, msgs)

	assert.Equal(t, "generalv3.5", req.Model)
	assert.Equal(t, 0.0, req.Temperature)
	assert.Equal(t, 4096, req.MaxTokens)
	assert.True(t, req.Stream)

	msgs[0].Content = "mutated"
	assert.Equal(t, "hello", req.Messages[0].Content, "request must hold its own copy")
}

func TestCompletionRequest_SerializesZeroTemperature(t *testing.T) {
	data, err := json.Marshal(NewCompletionRequest("m", hello()))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"model": "m",
		"messages": [{"role": "user", "content": "hello"}],
		"temperature": 0,
		"max_tokens": 4096,
		"stream": true
	}`, string(data))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(testCreds)
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	assert.Equal(t, DefaultModel, c.Model())

	c = NewClient(testCreds, WithEndpoint("http://localhost:1/v1"), WithModel("other"), WithEndpoint(""))
	assert.Equal(t, "http://localhost:1/v1", c.Endpoint())
	assert.Equal(t, "other", c.Model())
}

// =============================================================================
// STREAM REPLY TESTS
// =============================================================================

func TestStreamReply_EndToEnd(t *testing.T) {
	server, captured := sseServer(t,
		`data: {"choices":[{"delta":{"content":"Hi"}}]}`+"\n\n",
		`data: {"choices":[{"delta":{"content":" there"}}]}`+"\n\n",
		"data: [DONE]\n\n",
	)

	client := NewClient(testCreds, WithEndpoint(server.URL), WithHTTPClient(server.Client()))

	var fragments []string
	reply, err := client.StreamReply(context.Background(), hello(), func(s string) {
		fragments = append(fragments, s)
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi there", reply.Content)
	assert.Equal(t, []string{"Hi", " there"}, fragments)
	assert.True(t, reply.Done)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "Bearer app-key:app-secret", captured.authorization)
	assert.Equal(t, "application/json", captured.contentType)
	assert.Equal(t, "text/event-stream", captured.accept)

	assert.Equal(t, "generalv3.5", captured.body["model"])
	assert.Equal(t, 0.0, captured.body["temperature"])
	assert.Equal(t, 4096.0, captured.body["max_tokens"])
	assert.Equal(t, true, captured.body["stream"])
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "hello"}}, captured.body["messages"])
}

func TestStreamReply_SendsWholeHistory(t *testing.T) {
	server, captured := sseServer(t, "data: [DONE]\n\n")
	client := NewClient(testCreds, WithEndpoint(server.URL), WithModel("custom-model"))

	history := []conversation.Message{
		conversation.NewUserMessage("one"),
		conversation.NewAssistantMessage("two"),
		conversation.NewUserMessage("three"),
	}
	reply, err := client.StreamReply(context.Background(), history, nil)
	require.NoError(t, err)
	assert.Empty(t, reply.Content)

	assert.Equal(t, "custom-model", captured.body["model"])
	msgs, ok := captured.body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 3)
}

func TestWithFraming(t *testing.T) {
	assert.Equal(t, FramingLines, NewClient(testCreds).framing)
	assert.Equal(t, FramingChunks, NewClient(testCreds, WithFraming(FramingChunks)).framing)
}

func TestStreamReply_EmptyConversation(t *testing.T) {
	server, captured := sseServer(t)
	client := NewClient(testCreds, WithEndpoint(server.URL))

	_, err := client.StreamReply(context.Background(), nil, nil)

	var buildErr *RequestBuildError
	require.ErrorAs(t, err, &buildErr)
	assert.ErrorIs(t, err, ErrEmptyConversation)
	assert.Equal(t, int32(0), captured.hits.Load())
}

func TestStreamReply_InvalidCredentialCharacters(t *testing.T) {
	server, captured := sseServer(t)

	for _, creds := range []Credentials{
		{Key: "line\nbreak", Secret: "s"},
		{Key: "k", Secret: "nul\x00byte"},
	} {
		client := NewClient(creds, WithEndpoint(server.URL))
		_, err := client.StreamReply(context.Background(), hello(), nil)

		var buildErr *RequestBuildError
		require.ErrorAs(t, err, &buildErr)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, int32(0), captured.hits.Load(), "no request may leave with a bad header")
}

func TestStreamReply_BadEndpoint(t *testing.T) {
	client := NewClient(testCreds, WithEndpoint("ftp://example.com/chat"))
	_, err := client.StreamReply(context.Background(), hello(), nil)

	var buildErr *RequestBuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "endpoint", buildErr.Op)
}

func TestStreamReply_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(testCreds, WithEndpoint(url))
	_, err := client.StreamReply(context.Background(), hello(), nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "send request", transportErr.Op)
}

func TestStreamReply_APIError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai style", `{"error":{"message":"invalid api key","code":"401"}}`, "invalid api key"},
		{"flat", `{"code":10013,"message":"quota exceeded"}`, "quota exceeded"},
		{"plain text", "upstream unavailable\n", "upstream unavailable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			client := NewClient(testCreds, WithEndpoint(server.URL))
			_, err := client.StreamReply(context.Background(), hello(), nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.Contains(t, err.Error(), "HTTP 401")
		})
	}
}

func TestStreamReply_TransportFailureMidStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"Hi"}}]}`+"\n\n")
		w.(http.Flusher).Flush()

		// Drop the connection before the chunked body is terminated.
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer server.Close()

	client := NewClient(testCreds, WithEndpoint(server.URL))

	var fragments []string
	reply, err := client.StreamReply(context.Background(), hello(), func(s string) {
		fragments = append(fragments, s)
	})
	require.Error(t, err)
	assert.Nil(t, reply)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "read stream", transportErr.Op)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, "Hi", streamErr.Partial)
	assert.Equal(t, []string{"Hi"}, fragments, "fragments before the failure were already displayed")
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "spark API error (HTTP 500)", (&APIError{Status: 500}).Error())
	assert.Equal(t, "spark API error (HTTP 429): slow down", (&APIError{Status: 429, Message: "slow down"}).Error())
}

func TestStreamError_Error(t *testing.T) {
	err := &StreamError{Partial: "abc", Err: io.ErrUnexpectedEOF}
	assert.Contains(t, err.Error(), "3 chars")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	err = &StreamError{Err: io.ErrUnexpectedEOF}
	assert.Equal(t, "stream error: unexpected EOF", err.Error())
}
