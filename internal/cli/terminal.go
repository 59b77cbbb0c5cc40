// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection and handling for the chat client.
//
// Piped or redirected streams get no colors, no line editing and no
// background color queries.

package cli

import (
	"io"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40
)

// TerminalWidth returns the width of the terminal behind w.
// Returns DefaultTerminalWidth if width cannot be determined.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(fder)
	if !ok || !IsTerminal(w) {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR DETECTION
// =============================================================================

// Color modes accepted by ColorProfile.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorProfile returns the color profile for output written to w.
//
//   - never: termenv.Ascii
//   - auto: detected, Ascii unless w is a terminal
//   - always: detected without the terminal check, at least ANSI256
func ColorProfile(mode string, w io.Writer) termenv.Profile {
	switch strings.ToLower(mode) {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		p := termenv.NewOutput(w, termenv.WithUnsafe()).EnvColorProfile()
		if p == termenv.Ascii {
			return termenv.ANSI256
		}
		return p
	default:
		if !IsTerminal(w) {
			return termenv.Ascii
		}
		return termenv.NewOutput(w).ColorProfile()
	}
}

// HasDarkBackground reports whether the terminal behind w has a dark
// background. Non-terminals are assumed dark without querying.
func HasDarkBackground(w io.Writer) bool {
	if !IsTerminal(w) {
		return true
	}
	return termenv.NewOutput(w).HasDarkBackground()
}

// =============================================================================
// SCREEN CONTROL
// =============================================================================

// ClearScreen erases the display and moves the cursor home.
func ClearScreen(w io.Writer) {
	termenv.NewOutput(w).ClearScreen()
}
