// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/akirco/tui-chat/internal/ui/styles"
)

// =============================================================================
// COMMANDS
// =============================================================================

// CommandKind identifies what an input line asks for.
type CommandKind int

const (
	// CommandMessage sends the line to the model.
	CommandMessage CommandKind = iota
	// CommandQuit ends the session.
	CommandQuit
	// CommandClear clears the screen.
	CommandClear
	// CommandHelp shows the tips.
	CommandHelp
	// CommandNew starts a new conversation.
	CommandNew
)

// String returns the command keyword.
func (k CommandKind) String() string {
	switch k {
	case CommandQuit:
		return "q"
	case CommandClear:
		return "cls"
	case CommandHelp:
		return "h"
	case CommandNew:
		return "n"
	default:
		return "message"
	}
}

// Command is one parsed input line.
type Command struct {
	Kind CommandKind
	// Text is the trimmed line; for CommandMessage it is the user message.
	Text string
}

// ParseCommand classifies an input line. Matching is exact on the trimmed
// line, so "Q" or "quit" are ordinary messages.
func ParseCommand(line string) Command {
	text := strings.TrimSpace(line)

	switch text {
	case "q":
		return Command{Kind: CommandQuit, Text: text}
	case "cls":
		return Command{Kind: CommandClear, Text: text}
	case "", "h":
		return Command{Kind: CommandHelp, Text: text}
	case "n":
		return Command{Kind: CommandNew, Text: text}
	default:
		return Command{Kind: CommandMessage, Text: text}
	}
}

// =============================================================================
// HELP BANNER
// =============================================================================

const helpTitle = "sparkdesk"

// helpTips lists the commands shown in the banner, in display order.
var helpTips = []struct {
	cmd  string
	desc string
}{
	{"q", "quit prompt"},
	{"cls", "clear host"},
	{"n", "new conversation"},
}

// tipColumn is the width of the command column, including a gap.
func tipColumn() int {
	w := 0
	for _, tip := range helpTips {
		w = max(w, runewidth.StringWidth(tip.cmd))
	}
	return w + 2
}

// helpMarkdown returns the banner as a markdown document.
func helpMarkdown() string {
	col := tipColumn()

	var b strings.Builder
	b.WriteString("**" + helpTitle + "**\n\n")
	b.WriteString("tips:\n\n")
	for _, tip := range helpTips {
		b.WriteString("- `" + runewidth.FillRight(tip.cmd, col) + "` " + tip.desc + "\n")
	}
	return b.String()
}

// plainHelp returns the banner as indented text styled by f.
func plainHelp(f styles.Formatter) string {
	col := tipColumn()

	lines := []string{
		f.Format("\t **" + helpTitle + "**"),
		"\t tips:",
	}
	for _, tip := range helpTips {
		lines = append(lines, "\t ● "+runewidth.FillRight(tip.cmd, col)+tip.desc)
	}
	return strings.Join(lines, "\n")
}

// RenderHelp renders the help banner for the theme's color profile,
// wrapped to width. If markdown rendering fails the indented text
// banner is returned instead.
func RenderHelp(theme *styles.Theme, width int) string {
	style := glamourstyles.DarkStyle
	switch {
	case theme.ColorProfile == termenv.Ascii:
		style = glamourstyles.NoTTYStyle
	case !theme.IsDark:
		style = glamourstyles.LightStyle
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithColorProfile(theme.ColorProfile),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		out, renderErr := r.Render(helpMarkdown())
		if renderErr == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return plainHelp(theme.Skin)
}
