// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatstore owns all chat state: the chat list, the active chat and
// the process-wide "responding" gate that serializes generation.
//
// Every mutation replaces the slices it touches instead of editing them, so a
// State handed to a caller or listener never changes underneath it. Each
// mutation is written through to a storage.Backend, except streamed content,
// which is written at most every StreamFlushInterval and on completion. Write
// failures are logged and otherwise ignored.
//
// Usage:
//
//	store := chatstore.New(backend)
//	store.CreateChat(model.ModeConsultation, "hello", true)
//	store.Generate(ctx, store.ActiveChatID(), client)
package chatstore
