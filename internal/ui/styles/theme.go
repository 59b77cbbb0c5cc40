// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of a chat session.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Skin formats streamed reply text.
	Skin *Skin

	ReplyLabel lipgloss.Style
	Error      lipgloss.Style
	Notice     lipgloss.Style
	Muted      lipgloss.Style
}

// NewTheme creates a theme for the given color profile and background.
// Detection is left to the caller so the theme never queries a terminal.
func NewTheme(profile termenv.Profile, dark bool) *Theme {
	r := newRenderer(profile, dark)

	return &Theme{
		IsDark:       dark,
		ColorProfile: profile,
		Skin:         newSkin(r),

		ReplyLabel: r.NewStyle().Bold(true).Foreground(Cyan),
		Error:      r.NewStyle().Bold(true).Foreground(Rose),
		Notice:     r.NewStyle().Foreground(Amber),
		Muted:      r.NewStyle().Foreground(TextMuted),
	}
}

// newRenderer returns a renderer that never inspects the real terminal.
func newRenderer(profile termenv.Profile, dark bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(dark)
	return r
}
