// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"github.com/jeranaias/thuraya-cli/internal/util"
)

// MaxTitleRunes is the length a chat title is cut to when derived from the
// first message.
const MaxTitleRunes = 50

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat is a persisted conversation.
//
// Messages is the visible transcript in insertion order. ImportedChat holds
// messages merged in from another chat; they are sent as context ahead of
// Messages but never interleaved with them.
type Chat struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	ImportedChat []Message `json:"importedChat"`
}

// NewChat creates a chat holding a single first message.
func NewChat(mode Mode, firstMessage string, isUser bool) Chat {
	first := NewUserMessage(firstMessage, mode)
	first.IsUser = isUser

	return Chat{
		ID:           NewID(),
		Title:        TitleFrom(firstMessage),
		Messages:     []Message{first},
		ImportedChat: []Message{},
	}
}

// TitleFrom derives a chat title from its first message.
func TitleFrom(text string) string {
	return util.TruncateRunesNoEllipsis(text, MaxTitleRunes)
}

// Clone returns a deep copy so the receiver's slices can never be mutated
// through the result.
func (c Chat) Clone() Chat {
	out := c
	out.Messages = append([]Message{}, c.Messages...)
	out.ImportedChat = append([]Message{}, c.ImportedChat...)
	return out
}

// LastUserMessage returns the most recent user message in the transcript.
func (c Chat) LastUserMessage() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsUser {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

// LastMessage returns the final message of the transcript.
func (c Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// FindMessage returns the index of the transcript message with id, or -1.
func (c Chat) FindMessage(id string) int {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Context flattens ImportedChat followed by Messages into the history sent
// to the backend.
func (c Chat) Context() []Turn {
	turns := make([]Turn, 0, len(c.ImportedChat)+len(c.Messages))
	for _, m := range c.ImportedChat {
		turns = append(turns, m.Turn())
	}
	for _, m := range c.Messages {
		turns = append(turns, m.Turn())
	}
	return turns
}

// HasImport reports whether another chat has been merged into this one.
func (c Chat) HasImport() bool {
	return len(c.ImportedChat) > 0
}

// StreamingCount returns how many transcript messages are still streaming.
func (c Chat) StreamingCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.IsStreaming() {
			n++
		}
	}
	return n
}
