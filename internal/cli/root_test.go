// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akirco/tui-chat/internal/config"
	"github.com/akirco/tui-chat/internal/conversation"
)

type runResult struct {
	code int
	out  string
	err  string
}

func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var out, errOut bytes.Buffer
	code := execute(context.Background(), args, streams{
		in:  strings.NewReader(stdin),
		out: &out,
		err: &errOut,
	})
	return runResult{code: code, out: out.String(), err: errOut.String()}
}

func configDir(t *testing.T, credentials string) string {
	t.Helper()
	dir := t.TempDir()
	if credentials != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.CredentialsFileName), []byte(credentials), 0o600))
	}
	return dir
}

const testCredentials = `{"sd_apikey": "k", "sd_apisecret": "s"}`

// =============================================================================
// STARTUP TESTS
// =============================================================================

func TestExecute_MissingCredentials(t *testing.T) {
	dir := configDir(t, "")

	res := run(t, "", "--config-dir", dir)

	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.out, "Please notice: "+config.CredentialsPath(dir))
	assert.NotContains(t, res.out, PromptUser, "no session is started")
}

func TestExecute_MalformedCredentials(t *testing.T) {
	for _, content := range []string{"{not json", `{"sd_apikey": "k"}`} {
		res := run(t, "hello\n", "--config-dir", configDir(t, content))

		assert.Equal(t, ExitConfigError, res.code)
		assert.Contains(t, res.err, "Error: ")
		assert.NotContains(t, res.out, PromptUser)
	}
}

func TestExecute_MalformedSettings(t *testing.T) {
	dir := configDir(t, testCredentials)
	require.NoError(t, os.WriteFile(config.SettingsPath(dir), []byte("model = \n"), 0o600))

	res := run(t, "", "--config-dir", dir)
	assert.Equal(t, ExitConfigError, res.code)
}

func TestExecute_UsageErrors(t *testing.T) {
	dir := configDir(t, testCredentials)

	tests := [][]string{
		{"--bogus"},
		{"--config-dir", dir, "--framing", "words"},
		{"--config-dir", dir, "--endpoint", "not a url"},
	}
	for _, args := range tests {
		res := run(t, "", args...)
		assert.Equal(t, ExitUsageError, res.code, "args %v", args)
	}
}

func TestExecute_Version(t *testing.T) {
	res := run(t, "", "--version")
	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.out, Version)
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCodeFor(nil))
	assert.Equal(t, ExitGeneralError, exitCodeFor(errors.New("x")))
	assert.Equal(t, ExitUsageError, exitCodeFor(UsageError(errors.New("x"))))
	assert.Equal(t, ExitConfigError, exitCodeFor(&config.ParseError{Path: "p", Err: errors.New("x")}))
	assert.Equal(t, ExitConfigError, exitCodeFor(fmt.Errorf("load: %w", config.ValidateErrors{{Field: "f"}})))
}

// =============================================================================
// END TO END
// =============================================================================

func TestExecute_ChatSession(t *testing.T) {
	var (
		mu       sync.Mutex
		requests [][]conversation.Message
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []conversation.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Error(err)
		}
		mu.Lock()
		requests = append(requests, body.Messages)
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, part := range []string{
			`data: {"choices":[{"delta":{"content":"Hi"}}]}` + "\n\n",
			"garbage\n",
			`data: {"choices":[{"delta":{"content":" there"}}]}` + "\n\n",
			"data: [DONE]\n\n",
		} {
			fmt.Fprint(w, part)
			flusher.Flush()
		}
	}))
	defer server.Close()

	dir := configDir(t, testCredentials)
	res := run(t, "hello\nn\nagain\nq\n",
		"--config-dir", dir,
		"--endpoint", server.URL,
		"--no-color",
	)

	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Equal(t, 2, strings.Count(res.out, PromptAssistant+"Hi there\n"))
	assert.Empty(t, res.err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2)
	assert.Equal(t, []conversation.Message{conversation.NewUserMessage("hello")}, requests[0])
	assert.Equal(t, []conversation.Message{conversation.NewUserMessage("again")}, requests[1])
}

func TestExecute_APIErrorKeepsSessionAlive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key"}}`)
	}))
	defer server.Close()

	res := run(t, "hello\nq\n",
		"--config-dir", configDir(t, testCredentials),
		"--endpoint", server.URL,
	)

	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.err, "Error: spark API error (HTTP 401): invalid api key")
	assert.Equal(t, 2, strings.Count(res.out, PromptUser))
}
