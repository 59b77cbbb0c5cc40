// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/akirco/tui-chat/internal/config"
	"github.com/akirco/tui-chat/internal/spark"
	"github.com/akirco/tui-chat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// streams are the process's standard streams.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// options holds the command line flags.
type options struct {
	configDir string
	model     string
	endpoint  string
	framing   string
	noColor   bool
	verbose   bool
}

// =============================================================================
// ENTRY POINT
// =============================================================================

// Execute runs the command line with the process arguments and standard
// streams and returns the exit code.
func Execute() int {
	return execute(context.Background(), os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
}

func execute(ctx context.Context, args []string, s streams) int {
	cmd := newRootCmd(s)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	theme := styles.NewTheme(ColorProfile(ColorAuto, s.err), true)
	fmt.Fprintln(s.err, theme.Error.Render("Error:")+" "+err.Error())
	return exitCodeFor(err)
}

// newRootCmd builds the root command bound to s.
func newRootCmd(s streams) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "tui-chat",
		Short: "Chat with the Spark model in your terminal",
		Long: `An interactive chat client for the Spark chat completions API.

Replies are streamed and styled as they arrive. The whole conversation is
sent with every message and kept until you start a new one or quit.

Credentials are read from ~/.config/scoop/config.json:

  {"sd_apikey": "...", "sd_apisecret": "..."}

Optional settings live in ~/.config/scoop/config.toml.

At the prompt:
  q     quit
  cls   clear the screen
  h     show tips (an empty line does the same)
  n     start a new conversation`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts, s)
		},
	}

	cmd.SetIn(s.in)
	cmd.SetOut(s.out)
	cmd.SetErr(s.err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return UsageError(err)
	})
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := cmd.Flags()
	flags.StringVar(&opts.configDir, "config-dir", "", "Configuration directory (default ~/.config/scoop)")
	flags.StringVar(&opts.model, "model", "", "Model identifier (overrides the settings file)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "Chat completions URL (overrides the settings file)")
	flags.StringVar(&opts.framing, "framing", "", "Stream framing: lines or chunks (overrides the settings file)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	return cmd
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// runChat loads the configuration and runs one interactive session.
func runChat(cmd *cobra.Command, opts *options, s streams) error {
	dir := opts.configDir
	if dir == "" {
		var err error
		if dir, err = config.ConfigDir(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrCredentialsMissing) {
		theme := styles.NewTheme(ColorProfile(ColorAuto, s.out), true)
		fmt.Fprintln(s.out, theme.Notice.Render(
			fmt.Sprintf("Please notice: %s is required!", config.CredentialsPath(dir))))
		return nil
	}
	if err != nil {
		return err
	}

	if err := applyFlags(cfg, opts, cmd); err != nil {
		return err
	}

	framing, err := spark.ParseFraming(cfg.Stream.Framing)
	if err != nil {
		return UsageError(err)
	}

	logger := newLogger(s.err, cfg.Log.Level)

	profile := ColorProfile(cfg.UI.Color, s.out)
	theme := styles.NewTheme(profile, HasDarkBackground(s.out))

	client := spark.NewClient(
		spark.Credentials{Key: cfg.Credentials.Key, Secret: cfg.Credentials.Secret},
		spark.WithEndpoint(cfg.Endpoint),
		spark.WithModel(cfg.Model),
		spark.WithFraming(framing),
		spark.WithLogger(logger),
	)

	input := NewLineReader(s.in, s.out)
	defer input.Close()

	logger.Debug("session started",
		"model", client.Model(),
		"endpoint", client.Endpoint(),
		"framing", framing,
		"color", profile)

	session := NewSession(SessionOptions{
		Input:   input,
		Replier: client,
		Out:     s.out,
		Err:     s.err,
		Theme:   theme,
		Help:    RenderHelp(theme, TerminalWidth(s.out)),
		Logger:  logger,
	})
	return session.Run(cmd.Context())
}

// applyFlags overrides the loaded settings with explicitly set flags and
// validates the result.
func applyFlags(cfg *config.Config, opts *options, cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("model") {
		cfg.Model = opts.model
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = opts.endpoint
	}
	if flags.Changed("framing") {
		cfg.Stream.Framing = opts.framing
	}
	if opts.noColor {
		cfg.UI.Color = ColorNever
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	// The loaded settings were valid, so a failure here is a flag's fault.
	if err := cfg.Validate(); err != nil {
		return UsageError(err)
	}
	return nil
}

// newLogger returns the diagnostic logger, tagged with a session id.
func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.WarnLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "tui-chat",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return logger.With("session", uuid.NewString()[:8])
}
