// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Record keys.
const (
	KeyChats      = "chat-storage"
	KeyOnboarding = "onboarding-storage"
	KeyPrompts    = "prompt-storage"
)

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// Backend is durable key/value storage for whole records.
//
// Put replaces the record atomically. Get returns ErrNotFound for a key
// that was never written or has been deleted.
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Delete(key string) error
	Close() error
}

// Options selects and configures a backend for Open.
type Options struct {
	// Kind is one of KindFile, KindSQLite, KindMemory (default KindFile).
	Kind string
	// Dir is the directory for file records.
	Dir string
	// SQLitePath is the database file for KindSQLite.
	SQLitePath string
}

// Open constructs the backend described by opts.
func Open(opts Options) (Backend, error) {
	switch strings.ToLower(opts.Kind) {
	case "", KindFile:
		return NewFileBackend(opts.Dir)
	case KindSQLite:
		return NewSQLiteBackend(opts.SQLitePath)
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Kind)
	}
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// validateKey keeps keys usable as file names on every platform.
func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return &StorageError{Op: "validate", Key: key, Message: "invalid key"}
	}
	return nil
}

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope wraps every persisted record. Version is always 0: the record
// schema has no migrations, so a format change is a breaking change.
type Envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// Encode marshals state inside an envelope.
func Encode(state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{State: raw, Version: 0})
}

// Decode unmarshals an envelope's state into out.
func Decode(data []byte, out any) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.State) == 0 {
		return fmt.Errorf("decode envelope: missing state")
	}
	if err := json.Unmarshal(env.State, out); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	return nil
}

// Load reads key from b and decodes its envelope into out.
// It returns ErrNotFound when the record does not exist.
func Load(b Backend, key string, out any) error {
	data, err := b.Get(key)
	if err != nil {
		return err
	}
	return Decode(data, out)
}

// Save encodes state in an envelope and writes it under key.
func Save(b Backend, key string, state any) error {
	data, err := Encode(state)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Message: "failed to encode record", Cause: err}
	}
	return b.Put(key, data)
}
