// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/thuraya-cli/internal/util"
)

// recordExt is the file extension of every record.
const recordExt = ".json"

// FileBackend keeps each record in <Dir>/<key>.json.
type FileBackend struct {
	// Dir is the directory holding the record files.
	Dir string

	mu sync.Mutex
}

// DefaultDir returns ~/.thuraya/data.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".thuraya", "data"), nil
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
// An empty dir selects DefaultDir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, &StorageError{Op: "open", Message: "failed to create data directory", Cause: err}
	}
	return &FileBackend{Dir: dir}, nil
}

// Get reads the record stored under key.
func (b *FileBackend) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound("get", key)
		}
		return nil, &StorageError{Op: "get", Key: key, Message: "failed to read record", Cause: err}
	}
	return data, nil
}

// Put replaces the record stored under key.
func (b *FileBackend) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	// Records can hold conversation content; keep them owner-only.
	if err := util.AtomicWriteFile(b.path(key), data, 0600); err != nil {
		return &StorageError{Op: "put", Key: key, Message: "failed to write record", Cause: err}
	}
	return nil
}

// Delete removes the record stored under key.
func (b *FileBackend) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path(key)); err != nil {
		if os.IsNotExist(err) {
			return notFound("delete", key)
		}
		return &StorageError{Op: "delete", Key: key, Message: "failed to delete record", Cause: err}
	}
	return nil
}

// Keys lists the records present in the directory.
func (b *FileBackend) Keys() ([]string, error) {
	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) || strings.HasPrefix(name, ".") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, recordExt))
	}
	return keys, nil
}

// Close is a no-op for file records.
func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.Dir, key+recordExt)
}

// keyFromPath maps a record file path back to its key.
func keyFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
		return "", false
	}
	return strings.TrimSuffix(name, recordExt), true
}
