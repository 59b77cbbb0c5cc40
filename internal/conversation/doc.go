// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the in-memory chat history of a session.
//
// # Key Types
//
//   - Message: a role-tagged chat message, immutable once created
//   - Store: ordered, append-only history that can be cleared
//
// # Usage
//
//	var store conversation.Store
//	store.Append(conversation.NewUserMessage("hello"))
//	req := store.Snapshot() // independent copy for one outbound request
//	store.Clear()           // start a new conversation
//
// The store is not safe for concurrent use. The session loop is its only
// writer and touches it between turns.
package conversation
