// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// AppDirName is the directory under ~/.config holding both files.
	AppDirName = "scoop"

	// CredentialsFileName is the JSON credentials file.
	CredentialsFileName = "config.json"

	// SettingsFileName is the optional TOML settings file.
	SettingsFileName = "config.toml"

	DefaultModel    = "generalv3.5"
	DefaultEndpoint = "https://spark-api-open.xf-yun.com/v1/chat/completions"
	DefaultFraming  = "lines"
	DefaultColor    = "auto"
	DefaultLogLevel = "warn"
)

// ErrCredentialsMissing indicates the credentials file does not exist.
var ErrCredentialsMissing = errors.New("credentials file not found")

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	// Model is the model identifier sent with every request.
	Model string `toml:"model"`

	// Endpoint is the chat completions URL.
	Endpoint string `toml:"endpoint"`

	Stream StreamConfig `toml:"stream"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`

	// Credentials come from the JSON file only.
	Credentials Credentials `toml:"-"`
}

// StreamConfig controls how the response stream is decoded.
type StreamConfig struct {
	// Framing is "lines" (reassemble events split across chunks) or
	// "chunks" (decode every network chunk on its own).
	Framing string `toml:"framing"`
}

// UIConfig controls terminal output.
type UIConfig struct {
	// Color is "auto", "always" or "never".
	Color string `toml:"color"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level"`
}

// Credentials is the static API key pair.
type Credentials struct {
	Key    string `json:"sd_apikey"`
	Secret string `json:"sd_apisecret"`
}

// Default returns a Config with the built-in defaults and no credentials.
func Default() *Config {
	return &Config{
		Model:    DefaultModel,
		Endpoint: DefaultEndpoint,
		Stream:   StreamConfig{Framing: DefaultFraming},
		UI:       UIConfig{Color: DefaultColor},
		Log:      LogConfig{Level: DefaultLogLevel},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory path (~/.config/scoop).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// CredentialsPath returns the credentials file path inside dir.
func CredentialsPath(dir string) string {
	return filepath.Join(dir, CredentialsFileName)
}

// SettingsPath returns the settings file path inside dir.
func SettingsPath(dir string) string {
	return filepath.Join(dir, SettingsFileName)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// ParseError is a configuration file that exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the settings and credentials from dir.
// An empty dir selects ConfigDir(). The settings file is optional; the
// credentials file is required.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return nil, err
		}
	}

	cfg := Default()

	settingsPath := SettingsPath(dir)
	if _, err := os.Stat(settingsPath); err == nil {
		if err := LoadSettings(cfg, settingsPath); err != nil {
			return nil, err
		}
	}

	creds, err := LoadCredentials(CredentialsPath(dir))
	if err != nil {
		return nil, err
	}
	cfg.Credentials = creds

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCredentials reads the JSON credentials file.
// Both fields must be present and non-empty.
func LoadCredentials(path string) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return creds, fmt.Errorf("%w: %s", ErrCredentialsMissing, path)
		}
		return creds, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, &ParseError{Path: path, Err: err}
	}

	var errs ValidateErrors
	if creds.Key == "" {
		errs = append(errs, ValidationError{Field: "sd_apikey", Message: "required field is missing or empty"})
	}
	if creds.Secret == "" {
		errs = append(errs, ValidationError{Field: "sd_apisecret", Message: "required field is missing or empty"})
	}
	if len(errs) > 0 {
		return creds, &ParseError{Path: path, Err: errs}
	}
	return creds, nil
}

// LoadSettings decodes the TOML settings file into cfg.
// Keys absent from the file keep their current values; empty strings fall
// back to the defaults.
func LoadSettings(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return &ParseError{Path: path, Err: fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))}
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults fills in any empty values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	if cfg.Stream.Framing == "" {
		cfg.Stream.Framing = defaults.Stream.Framing
	}
	if cfg.UI.Color == "" {
		cfg.UI.Color = defaults.UI.Color
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
// Credentials are only checked for presence; characters that cannot travel
// in an HTTP header are reported per request instead.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, ValidationError{Field: "model", Message: "must not be empty"})
	}

	if u, err := url.Parse(c.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "endpoint",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Endpoint),
		})
	}

	validFramings := map[string]bool{"lines": true, "chunks": true}
	if !validFramings[strings.ToLower(c.Stream.Framing)] {
		errs = append(errs, ValidationError{
			Field:   "stream.framing",
			Message: fmt.Sprintf("invalid framing '%s', must be one of: lines, chunks", c.Stream.Framing),
		})
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[strings.ToLower(c.UI.Color)] {
		errs = append(errs, ValidationError{
			Field:   "ui.color",
			Message: fmt.Sprintf("invalid color mode '%s', must be one of: auto, always, never", c.UI.Color),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if c.Credentials.Key == "" {
		errs = append(errs, ValidationError{Field: "credentials.sd_apikey", Message: "must not be empty"})
	}
	if c.Credentials.Secret == "" {
		errs = append(errs, ValidationError{Field: "credentials.sd_apisecret", Message: "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
