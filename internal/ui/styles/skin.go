// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Formatter styles a piece of reply text for the terminal.
// Implementations never fail; the worst case is the input unchanged.
type Formatter interface {
	Format(text string) string
}

// Plain is a Formatter that returns text unchanged.
type Plain struct{}

// Format returns text as is.
func (Plain) Format(text string) string {
	return text
}

// =============================================================================
// SKIN
// =============================================================================

// Skin renders inline markdown spans with fixed styles.
type Skin struct {
	profile termenv.Profile
	bold    lipgloss.Style
	italic  lipgloss.Style
	code    lipgloss.Style
}

// span is one recognised inline marker.
type span struct {
	marker string
	style  func(*Skin) lipgloss.Style
}

// Longest marker first so "**" is never read as two "*".
var spans = []span{
	{"**", func(s *Skin) lipgloss.Style { return s.bold }},
	{"*", func(s *Skin) lipgloss.Style { return s.italic }},
	{"`", func(s *Skin) lipgloss.Style { return s.code }},
}

// NewSkin creates a skin rendering for the given color profile on a dark
// background.
func NewSkin(profile termenv.Profile) *Skin {
	return newSkin(newRenderer(profile, true))
}

func newSkin(r *lipgloss.Renderer) *Skin {
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return &Skin{
		profile: r.ColorProfile(),
		bold:    base.Bold(true).Foreground(Yellow),
		italic:  base.Underline(true).Bold(true).Foreground(SkyBlue),
		code:    base.Faint(true).Foreground(TextMuted),
	}
}

// Profile returns the color profile the skin renders for.
func (s *Skin) Profile() termenv.Profile {
	return s.profile
}

// Format styles the inline spans of text.
func (s *Skin) Format(text string) string {
	if !strings.ContainsAny(text, "*`") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	rest := text
	for len(rest) > 0 {
		i := strings.IndexAny(rest, "*`")
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		rest = rest[i:]

		for _, sp := range spans {
			if !strings.HasPrefix(rest, sp.marker) {
				continue
			}
			body := rest[len(sp.marker):]
			end := strings.Index(body, sp.marker)
			if end <= 0 {
				// Unmatched or empty span: keep the marker as text.
				b.WriteString(sp.marker)
				rest = body
			} else {
				b.WriteString(sp.style(s).Render(body[:end]))
				rest = body[end+len(sp.marker):]
			}
			break
		}
	}
	return b.String()
}
