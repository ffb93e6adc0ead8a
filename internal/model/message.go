// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in a chat transcript.
//
// Content only grows while Status is StatusStreaming; once Status is
// terminal the message is never modified again.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
	Mode      Mode      `json:"mode"`
	Status    Status    `json:"status,omitempty"`
}

// NewID returns a fresh random identifier for chats and messages.
func NewID() string {
	return uuid.NewString()
}

// NewUserMessage creates a message typed by the user.
func NewUserMessage(content string, mode Mode) Message {
	return Message{
		ID:        NewID(),
		Content:   content,
		IsUser:    true,
		Timestamp: time.Now(),
		Mode:      mode.OrDefault(),
	}
}

// NewAssistantPlaceholder creates the empty streaming message a generation
// fills in.
func NewAssistantPlaceholder(mode Mode) Message {
	return Message{
		ID:        NewID(),
		IsUser:    false,
		Timestamp: time.Now(),
		Mode:      mode.OrDefault(),
		Status:    StatusStreaming,
	}
}

// NewNoticeMessage creates a non-user message that is already final, such
// as the announcement appended after an import.
func NewNoticeMessage(content string, mode Mode) Message {
	return Message{
		ID:        NewID(),
		Content:   content,
		IsUser:    false,
		Timestamp: time.Now(),
		Mode:      mode.OrDefault(),
		Status:    StatusSuccess,
	}
}

// IsStreaming reports whether the message is still being generated.
func (m Message) IsStreaming() bool {
	return m.Status == StatusStreaming
}

// Turn flattens the message into the pair sent as chat history.
func (m Message) Turn() Turn {
	return Turn{Content: m.Content, IsUser: m.IsUser}
}

// Turn is one entry of the history sent with a chat request.
type Turn struct {
	Content string `json:"content"`
	IsUser  bool   `json:"isUser"`
}
