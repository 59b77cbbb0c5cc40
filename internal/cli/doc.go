// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the command line and the interactive chat loop.
//
// # Key Types
//
//   - Session: the read, dispatch, request, display loop
//   - Command: one parsed input line (q, cls, h, n or a message)
//   - LineReader: prompt-driven line input (liner on a terminal, plain otherwise)
//   - Replier: anything that can stream a reply for a conversation snapshot
//
// # Usage
//
//	func main() {
//	    os.Exit(cli.Execute())
//	}
//
// # Commands
//
// At the prompt:
//   - q: quit
//   - cls: clear the screen
//   - h or an empty line: show the tips
//   - n: start a new conversation
//
// Anything else is sent as a user message together with the whole
// conversation so far. End of input and Ctrl-C also quit.
//
// # Exit Codes
//
// Execute returns ExitSuccess after a normal session or when the
// credentials file does not exist yet, ExitUsageError for bad flags and
// ExitConfigError when a configuration file cannot be used.
package cli
