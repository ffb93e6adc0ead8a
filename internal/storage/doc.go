// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable key/value persistence for thuraya.
//
// The client keeps three records: chat state, the onboarding flag and the
// user's custom prompts. Each record is an opaque JSON document stored
// under a fixed key; the stores that own them decide its shape.
//
// # Key Types
//
//   - Backend: the key/value interface the stores write through
//   - FileBackend: one JSON file per key, written atomically
//   - SQLiteBackend: a single kv table in a pure-Go SQLite database
//   - MemoryBackend: volatile map, for tests and --storage memory
//   - Envelope: the {state, version} wrapper every record is saved in
//   - Watcher: notifies when another process rewrites a file record
//
// # Usage
//
//	backend, err := storage.Open(storage.Options{Kind: "file", Dir: dataDir})
//	data, err := backend.Get(storage.KeyChats)
//	if errors.Is(err, storage.ErrNotFound) { ... }
//
// # Storage Location
//
// File records live in ~/.thuraya/data/<key>.json by default.
package storage
