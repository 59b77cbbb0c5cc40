// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/akirco/tui-chat/internal/conversation"
	"github.com/akirco/tui-chat/internal/spark"
	"github.com/akirco/tui-chat/internal/ui/styles"
)

// Prompts shown before user input and before a streamed reply.
const (
	PromptUser      = "🐼: "
	PromptAssistant = "🤖: "
)

// Replier streams a reply for a conversation snapshot.
// *spark.Client is the production implementation.
type Replier interface {
	StreamReply(ctx context.Context, snapshot []conversation.Message, emit func(string)) (*spark.Reply, error)
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionOptions configures a Session. Input, Replier and Out are required.
type SessionOptions struct {
	Input   LineReader
	Replier Replier
	Out     io.Writer

	// Err receives turn errors. Defaults to Out.
	Err io.Writer
	// Store holds the conversation. Defaults to a new empty store.
	Store *conversation.Store
	// Theme styles output. Defaults to a plain-text theme.
	Theme *styles.Theme
	// Help is the rendered help banner. Defaults to RenderHelp(Theme).
	Help string
	// Logger receives diagnostics. Defaults to discarding them.
	Logger *log.Logger
}

// Session is one interactive chat session.
type Session struct {
	input   LineReader
	replier Replier
	out     io.Writer
	errOut  io.Writer
	store   *conversation.Store
	theme   *styles.Theme
	help    string
	logger  *log.Logger
	turns   int
}

// NewSession creates a session from opts.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		input:   opts.Input,
		replier: opts.Replier,
		out:     opts.Out,
		errOut:  opts.Err,
		store:   opts.Store,
		theme:   opts.Theme,
		help:    opts.Help,
		logger:  opts.Logger,
	}
	if s.errOut == nil {
		s.errOut = s.out
	}
	if s.store == nil {
		s.store = conversation.NewStore()
	}
	if s.theme == nil {
		s.theme = styles.NewTheme(termenv.Ascii, true)
	}
	if s.help == "" {
		s.help = RenderHelp(s.theme, DefaultTerminalWidth)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Store returns the session's conversation.
func (s *Session) Store() *conversation.Store {
	return s.store
}

// =============================================================================
// MAIN LOOP
// =============================================================================

// Run prompts for input until the user quits or input ends.
// Turn failures are reported and the loop continues; only an input error
// other than end of input or Ctrl-C is returned.
func (s *Session) Run(ctx context.Context) error {
	for {
		line, err := s.input.ReadLine(PromptUser)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
				fmt.Fprintln(s.out)
				s.logger.Debug("input closed", "reason", err, "turns", s.turns)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		cmd := ParseCommand(line)
		switch cmd.Kind {
		case CommandQuit:
			s.logger.Debug("quit", "turns", s.turns)
			return nil
		case CommandClear:
			ClearScreen(s.out)
		case CommandHelp:
			fmt.Fprintln(s.out, s.help)
		case CommandNew:
			s.logger.Debug("new conversation", "dropped", s.store.Len())
			s.store.Clear()
		default:
			s.exchange(ctx, cmd.Text)
		}
	}
}

// exchange sends one user message and streams the reply.
// On failure the user message stays in the conversation and no assistant
// message is added.
func (s *Session) exchange(ctx context.Context, text string) {
	s.turns++
	logger := s.logger.With("turn", s.turns)

	s.store.Append(conversation.NewUserMessage(text))
	logger.Debug("sending turn", "messages", s.store.Len())

	fmt.Fprint(s.out, s.theme.ReplyLabel.Render(PromptAssistant))
	s.flush()

	reply, err := s.replier.StreamReply(ctx, s.store.Snapshot(), func(fragment string) {
		io.WriteString(s.out, s.theme.Skin.Format(fragment))
		s.flush()
	})
	if err != nil {
		logger.Debug("turn failed", "err", err)
		fmt.Fprintln(s.errOut, s.theme.Error.Render("Error:")+" "+err.Error())
		return
	}

	s.store.Append(conversation.NewAssistantMessage(reply.Content))
	fmt.Fprintln(s.out)
}

// flush pushes buffered output to the terminal, if out buffers at all.
func (s *Session) flush() {
	if f, ok := s.out.(interface{ Flush() error }); ok {
		f.Flush()
	}
}
