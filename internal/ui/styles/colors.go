// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// INLINE MARKUP COLORS
// =============================================================================

// Yellow - **bold** spans in replies (bright yellow, ANSI 11)
var Yellow = lipgloss.Color("11")

// SkyBlue - *italic* spans in replies, rgb(32,157,224)
var SkyBlue = lipgloss.Color("#209DE0")

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Cyan - Brand color, reply label, banner accents
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Rose - Errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Notices and caution states
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// TextMuted - De-emphasized text, `code` spans
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
