// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// ErrNotFound is returned when a record doesn't exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &StorageError{Message: "record not found"}

// StorageError describes a failed storage operation.
type StorageError struct {
	Op      string
	Key     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = e.Op + " " + e.Key + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is matches storage errors by message so keyed not-found errors compare
// equal to ErrNotFound.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

func notFound(op, key string) error {
	return &StorageError{Op: op, Key: key, Message: ErrNotFound.Message}
}
