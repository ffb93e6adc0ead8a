// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// Mode is the conversation style chosen by the user for a message.
type Mode string

const (
	// ModeConsultation is interactive follow-up advice.
	ModeConsultation Mode = "Consultation"
	// ModeResearch is single-shot informational lookup.
	ModeResearch Mode = "Research"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// WireMode maps the mode onto the value the backend expects in
// the chat request's "mode" field.
func (m Mode) WireMode() string {
	if m == ModeResearch {
		return "research"
	}
	return "active"
}

// OrDefault returns m, or ModeConsultation when m is empty.
func (m Mode) OrDefault() Mode {
	if m == "" {
		return ModeConsultation
	}
	return m
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeConsultation || m == ModeResearch
}

// ParseMode accepts the display names as well as the wire names,
// case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "consultation", "active", "c":
		return ModeConsultation, nil
	case "research", "r":
		return ModeResearch, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want consultation or research)", s)
	}
}
