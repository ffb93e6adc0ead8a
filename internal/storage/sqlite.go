// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLiteBackend keeps all records in one SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// DefaultSQLitePath returns ~/.thuraya/thuraya.db.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".thuraya", "thuraya.db"), nil
}

// NewSQLiteBackend opens (creating if needed) the database at path.
// An empty path selects DefaultSQLitePath; ":memory:" is accepted.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path == "" {
		p, err := DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, &StorageError{Op: "open", Message: "failed to create database directory", Cause: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Message: "failed to open database", Cause: err}
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL lets another thuraya process read while this one writes, and
	// busy_timeout makes concurrent writers wait instead of failing.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA wal_autocheckpoint=1000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, &StorageError{Op: "open", Message: "failed to set pragma", Cause: err}
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Message: "failed to create schema", Cause: err}
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

// Path returns the database file location.
func (b *SQLiteBackend) Path() string {
	return b.path
}

// Get reads the record stored under key.
func (b *SQLiteBackend) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := b.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("get", key)
		}
		return nil, &StorageError{Op: "get", Key: key, Message: "query failed", Cause: err}
	}
	return value, nil
}

// Put replaces the record stored under key.
func (b *SQLiteBackend) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := b.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return &StorageError{Op: "put", Key: key, Message: "upsert failed", Cause: err}
	}
	return nil
}

// Delete removes the record stored under key.
func (b *SQLiteBackend) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	res, err := b.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return &StorageError{Op: "delete", Key: key, Message: "delete failed", Cause: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("delete", key)
	}
	return nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
