// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats and messages.
//
// These are the shapes persisted under the chat-storage record and the
// shapes the chat store hands to its consumers. They are plain values:
// the store owns all mutation and hands out deep copies.
//
// # Key Types
//
//   - Chat: a conversation with its visible transcript and imported context
//   - Message: one entry in a transcript, user or assistant
//   - Mode: conversation style (Consultation or Research)
//   - Status: explicit generation lifecycle of a message
//   - Turn: the {content, isUser} pair sent back to the backend as history
//
// # Usage
//
//	chat := model.NewChat(model.ModeConsultation, "hello", true)
//	history := chat.Context() // importedChat ++ messages, flattened
package model
