// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the credentials and settings of the chat client.
//
// Two files live in the configuration directory (~/.config/scoop):
//
//   - config.json: required API credentials {"sd_apikey", "sd_apisecret"}
//   - config.toml: optional settings (model, endpoint, framing, color, log level)
//
// Both are read once at startup and never reloaded.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if errors.Is(err, config.ErrCredentialsMissing) {
//	    // tell the user where to put the file
//	}
//
// # Errors
//
// A missing credentials file is reported with ErrCredentialsMissing.
// Undecodable files are reported as *ParseError and invalid values as
// ValidateErrors; both mean no session can start.
package config
