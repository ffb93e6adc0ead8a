// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import "sync"

// MemoryBackend is a volatile Backend. Nothing survives the process.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string][]byte
	writes  int
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

// Get returns a copy of the record stored under key.
func (b *MemoryBackend) Get(key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.records[key]
	if !ok {
		return nil, notFound("get", key)
	}
	return append([]byte(nil), data...), nil
}

// Put stores a copy of data under key.
func (b *MemoryBackend) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records[key] = append([]byte(nil), data...)
	b.writes++
	return nil
}

// Delete removes key.
func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.records[key]; !ok {
		return notFound("delete", key)
	}
	delete(b.records, key)
	return nil
}

// Writes returns how many successful Puts the backend has seen.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// Close is a no-op.
func (b *MemoryBackend) Close() error { return nil }
