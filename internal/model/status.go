// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
)

// Status is the generation lifecycle of a message.
//
// StatusPending is the zero value and marks messages that never take part
// in a generation (user input, import notices). It is written as an absent
// "status" field so the persisted record keeps its original shape.
type Status int

const (
	StatusPending Status = iota
	StatusLoading
	StatusStreaming
	StatusSuccess
	StatusError
)

var statusNames = map[Status]string{
	StatusPending:   "",
	StatusLoading:   "loading",
	StatusStreaming: "streaming",
	StatusSuccess:   "success",
	StatusError:     "error",
}

// String returns the persisted name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// IsTerminal reports whether the message can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// ParseStatus converts a persisted status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusPending, fmt.Errorf("unknown message status %q", name)
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
