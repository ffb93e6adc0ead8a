// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatstore

import (
	"github.com/jeranaias/thuraya-cli/internal/model"
)

// Outcome is how a response finished.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeError
)

// String returns "success" or "error".
func (o Outcome) String() string {
	if o == OutcomeError {
		return "error"
	}
	return "success"
}

// =============================================================================
// CHAT LIFECYCLE
// =============================================================================

// CreateChat adds a chat holding one message built from text, places it
// first in the list and makes it active. It returns the new chat id.
// Rejecting empty text is the caller's job.
func (s *Store) CreateChat(mode model.Mode, text string, isUser bool) string {
	chat := model.NewChat(mode, text, isUser)
	s.update(func(st *State) bool {
		st.Chats = append([]model.Chat{chat}, st.Chats...)
		st.ActiveChatID = chat.ID
		return true
	})
	return chat.ID
}

// DeleteChat removes the chat with id and clears the active chat if it was
// that one. Unknown ids are ignored.
func (s *Store) DeleteChat(id string) {
	s.update(func(st *State) bool {
		i := indexOf(st.Chats, id)
		if i < 0 {
			return false
		}
		chats := make([]model.Chat, 0, len(st.Chats)-1)
		chats = append(chats, st.Chats[:i]...)
		st.Chats = append(chats, st.Chats[i+1:]...)
		if st.ActiveChatID == id {
			st.ActiveChatID = ""
		}
		return true
	})
}

// SetActiveChat makes id the active chat. An empty id clears it; an
// unknown id is ignored and false is returned.
func (s *Store) SetActiveChat(id string) bool {
	ok := true
	s.update(func(st *State) bool {
		if id != "" && indexOf(st.Chats, id) < 0 {
			ok = false
			return false
		}
		if st.ActiveChatID == id {
			return false
		}
		st.ActiveChatID = id
		return true
	})
	return ok
}

// RenameChat sets the title of the chat with id. Unknown ids are ignored.
func (s *Store) RenameChat(id, title string) {
	s.update(func(st *State) bool {
		i := indexOf(st.Chats, id)
		if i < 0 {
			return false
		}
		c := st.Chats[i].Clone()
		c.Title = title
		st.Chats = replaceChat(st.Chats, i, c)
		return true
	})
}

// ClearAll removes every chat and clears the active chat.
func (s *Store) ClearAll() {
	s.update(func(st *State) bool {
		st.Chats = []model.Chat{}
		st.ActiveChatID = ""
		return true
	})
}

// =============================================================================
// MESSAGES
// =============================================================================

// AppendUserMessage appends a user message to the active chat. It does
// nothing when no chat is active and reports whether a message was added.
func (s *Store) AppendUserMessage(content string, mode model.Mode) bool {
	msg := model.NewUserMessage(content, mode)
	return s.update(func(st *State) bool {
		i := indexOf(st.Chats, st.ActiveChatID)
		if i < 0 {
			return false
		}
		c := st.Chats[i].Clone()
		c.Messages = append(c.Messages, msg)
		st.Chats = replaceChat(st.Chats, i, c)
		return true
	})
}

// ImportMessages appends msgs to the imported context of chat id and adds
// one notice message to its transcript. Repeated imports are accepted.
// Unknown ids are ignored.
func (s *Store) ImportMessages(id string, msgs []model.Message) bool {
	return s.update(func(st *State) bool {
		i := indexOf(st.Chats, id)
		if i < 0 {
			return false
		}
		c := st.Chats[i].Clone()

		mode := model.ModeConsultation
		if len(c.Messages) > 0 {
			mode = c.Messages[0].Mode.OrDefault()
		}

		c.ImportedChat = append(c.ImportedChat, msgs...)
		c.Messages = append(c.Messages, model.NewNoticeMessage(ImportNotice, mode))
		st.Chats = replaceChat(st.Chats, i, c)
		return true
	})
}

// =============================================================================
// RESPONSE LIFECYCLE
// =============================================================================

// pending carries what a generation needs once its placeholder exists.
type pending struct {
	msgID  string
	mode   model.Mode
	latest string
	// chat is the chat as it was before the placeholder was appended.
	chat model.Chat
}

// BeginAssistantResponse takes the responding gate and appends an empty
// streaming message to chat id. It returns ok=false without changing
// anything when a response is already in flight or the chat is unknown.
func (s *Store) BeginAssistantResponse(chatID string) (msgID string, ok bool) {
	p, ok := s.begin(chatID)
	return p.msgID, ok
}

func (s *Store) begin(chatID string) (pending, bool) {
	var p pending
	ok := s.update(func(st *State) bool {
		if st.IsResponding {
			return false
		}
		i := indexOf(st.Chats, chatID)
		if i < 0 {
			return false
		}
		before := st.Chats[i]

		p.mode = model.ModeConsultation
		if last, found := before.LastUserMessage(); found {
			p.mode = last.Mode.OrDefault()
			p.latest = last.Content
		}
		p.chat = before.Clone()

		placeholder := model.NewAssistantPlaceholder(p.mode)
		p.msgID = placeholder.ID

		c := before.Clone()
		c.Messages = append(c.Messages, placeholder)
		st.Chats = replaceChat(st.Chats, i, c)
		st.IsResponding = true
		return true
	})
	return p, ok
}

// AppendStreamChunk appends chunk to a streaming message. It does nothing
// if the chat or message is gone or the message is no longer streaming.
// Streamed content reaches the backend at most every StreamFlushInterval
// and always when the response completes.
func (s *Store) AppendStreamChunk(chatID, msgID, chunk string) {
	if chunk == "" {
		return
	}
	s.commit(func(st *State) bool {
		i := indexOf(st.Chats, chatID)
		if i < 0 {
			return false
		}
		j := st.Chats[i].FindMessage(msgID)
		if j < 0 || !st.Chats[i].Messages[j].IsStreaming() {
			return false
		}
		c := st.Chats[i].Clone()
		c.Messages[j].Content += chunk
		st.Chats = replaceChat(st.Chats, i, c)
		return true
	}, true)
}

// CompleteResponse moves a streaming message to its terminal status and
// always releases the responding gate.
//
// On success a non-empty finalContent replaces the streamed content. On
// error the content becomes finalContent when given, FailureText otherwise.
// A message that is missing or already terminal is left untouched.
func (s *Store) CompleteResponse(chatID, msgID string, outcome Outcome, finalContent string) {
	s.update(func(st *State) bool {
		changed := st.IsResponding
		st.IsResponding = false

		i := indexOf(st.Chats, chatID)
		if i < 0 {
			return changed
		}
		j := st.Chats[i].FindMessage(msgID)
		if j < 0 || !st.Chats[i].Messages[j].IsStreaming() {
			return changed
		}

		c := st.Chats[i].Clone()
		m := &c.Messages[j]
		switch outcome {
		case OutcomeError:
			m.Status = model.StatusError
			m.Content = FailureText
			if finalContent != "" {
				m.Content = finalContent
			}
		default:
			m.Status = model.StatusSuccess
			if finalContent != "" {
				m.Content = finalContent
			}
		}
		st.Chats = replaceChat(st.Chats, i, c)
		return true
	})
}
