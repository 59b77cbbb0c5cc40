// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

// =============================================================================
// MESSAGE
// =============================================================================

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single chat message in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// =============================================================================
// STORE
// =============================================================================

// Store is the ordered message history of one session.
// Role alternation is not enforced: two consecutive user messages are valid
// history (a failed turn leaves its user message unpaired).
// The zero value is an empty store ready to use.
type Store struct {
	messages []Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{messages: make([]Message, 0, 16)}
}

// Append adds a message at the end of the history.
func (s *Store) Append(msg Message) {
	s.messages = append(s.messages, msg)
}

// Snapshot returns a copy of the history in temporal order.
// Later Append or Clear calls do not affect a returned snapshot.
func (s *Store) Snapshot() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear empties the history.
func (s *Store) Clear() {
	// Drop the backing array so earlier snapshots can never alias new turns.
	s.messages = nil
}

// Len returns the number of messages in the history.
func (s *Store) Len() int {
	return len(s.messages)
}

// Last returns the most recent message and true, or false when empty.
func (s *Store) Last() (Message, bool) {
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
