// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// ErrInterrupted is returned by a LineReader when the user presses Ctrl-C
// at the prompt.
var ErrInterrupted = errors.New("input interrupted")

// LineReader reads one line of input after showing a prompt.
// ReadLine returns io.EOF once input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader returns a liner-backed reader when in and out are both
// terminals and a plain buffered reader otherwise.
func NewLineReader(in io.Reader, out io.Writer) LineReader {
	if IsTerminal(in) && IsTerminal(out) {
		return newLinerReader()
	}
	return newPlainReader(in, out)
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// linerReader provides input history and line editing on a terminal.
// History lives for the session only and is never written to disk.
type linerReader struct {
	line *liner.State
}

func newLinerReader() *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &linerReader{line: line}
}

// ReadLine reads a line with history navigation and line editing.
func (r *linerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close restores the terminal mode.
func (r *linerReader) Close() error {
	return r.line.Close()
}

// =============================================================================
// PLAIN INPUT
// =============================================================================

// plainReader reads newline-terminated lines from a pipe or file.
type plainReader struct {
	in  *bufio.Reader
	out io.Writer
}

func newPlainReader(in io.Reader, out io.Writer) *plainReader {
	return &plainReader{in: bufio.NewReader(in), out: out}
}

// ReadLine prints the prompt and reads up to the next newline.
// A final line without a newline is still returned.
func (r *plainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close is a no-op; the underlying reader is owned by the caller.
func (r *plainReader) Close() error {
	return nil
}
