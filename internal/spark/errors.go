// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spark

import (
	"errors"
	"fmt"
)

// Error variables for request construction failures.
var (
	// ErrEmptyConversation indicates a request was attempted without messages.
	ErrEmptyConversation = errors.New("conversation is empty")

	// ErrInvalidCredentials indicates the key or secret cannot be sent in an HTTP header.
	ErrInvalidCredentials = errors.New("credentials contain characters not allowed in an HTTP header")
)

// RequestBuildError is a failure to construct the outbound request.
// It ends the current turn only.
type RequestBuildError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *RequestBuildError) Error() string {
	return fmt.Sprintf("build request: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RequestBuildError) Unwrap() error {
	return e.Err
}

// TransportError is a network, TLS or stream read failure.
// It ends the current turn only.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the completions endpoint.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spark API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("spark API error (HTTP %d)", e.Status)
}

// StreamError represents an error that occurred during streaming,
// preserving any partial content received before the error.
type StreamError struct {
	Partial string // Content received before error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}
