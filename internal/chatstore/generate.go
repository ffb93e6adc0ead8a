// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatstore

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/thuraya-cli/internal/model"
)

// Streamer produces a reply for a chat, one chunk at a time, in arrival
// order. It must not return before its last onChunk call has returned, and
// it reports failures as content rather than errors.
type Streamer interface {
	StreamResponse(ctx context.Context, mode model.Mode, latest string, chat model.Chat, onChunk func(string))
}

// StreamerFunc adapts a function to Streamer.
type StreamerFunc func(ctx context.Context, mode model.Mode, latest string, chat model.Chat, onChunk func(string))

// StreamResponse calls f.
func (f StreamerFunc) StreamResponse(ctx context.Context, mode model.Mode, latest string, chat model.Chat, onChunk func(string)) {
	f(ctx, mode, latest, chat, onChunk)
}

// Submit errors.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrResponding   = errors.New("a response is already in progress")
	ErrUnknownChat  = errors.New("chat not found")
	ErrSelfImport   = errors.New("cannot import a chat into itself")
	ErrImported     = errors.New("chat already has an imported conversation")
)

// Generate streams a reply into chat id. It returns the id of the assistant
// message and false when nothing was started because a response is already
// in flight or the chat is unknown.
//
// The responding gate is released on every path, including a panic in the
// streamer, which marks the message as failed.
func (s *Store) Generate(ctx context.Context, chatID string, st Streamer) (msgID string, ok bool) {
	p, started := s.begin(chatID)
	if !started {
		return "", false
	}
	// Set before the deferred recover so a panicking streamer still
	// reports a started generation.
	msgID, ok = p.msgID, true

	log := logrus.WithFields(logrus.Fields{"chat": chatID, "message": p.msgID, "mode": p.mode})
	log.Debug("GENERATE_START")

	outcome := OutcomeError
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("GENERATE_PANIC")
			outcome = OutcomeError
		}
		s.CompleteResponse(chatID, p.msgID, outcome, "")
		log.WithField("outcome", outcome).Debug("GENERATE_DONE")
	}()

	st.StreamResponse(ctx, p.mode, p.latest, p.chat, func(chunk string) {
		s.AppendStreamChunk(chatID, p.msgID, chunk)
	})
	outcome = OutcomeSuccess
	return msgID, true
}

// Submit sends text as the user: it starts a chat when none is active,
// appends to the active chat otherwise, then generates the reply.
// Blank text and submissions while responding are rejected unchanged.
func (s *Store) Submit(ctx context.Context, text string, mode model.Mode, st Streamer) (chatID string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	if s.IsResponding() {
		return "", ErrResponding
	}

	chatID = s.ActiveChatID()
	if chatID == "" || !s.AppendUserMessage(text, mode) {
		chatID = s.CreateChat(mode, text, true)
	}

	if _, ok := s.Generate(ctx, chatID, st); !ok {
		return chatID, ErrResponding
	}
	return chatID, nil
}

// ImportChat merges the transcript of chat sourceID into the active chat.
// With no active chat, a new chat is opened for the import and titled after
// the source. It returns the chat that received the import.
func (s *Store) ImportChat(sourceID string, mode model.Mode) (string, error) {
	source, ok := s.Chat(sourceID)
	if !ok {
		return "", ErrUnknownChat
	}

	if target, ok := s.ActiveChat(); ok {
		if target.ID == sourceID {
			return "", ErrSelfImport
		}
		if target.HasImport() {
			return "", ErrImported
		}
		s.ImportMessages(target.ID, source.Messages)
		return target.ID, nil
	}

	target := s.CreateChat(mode, ImportSessionNotice, false)
	s.ImportMessages(target, source.Messages)
	s.RenameChat(target, ImportedTitlePrefix+source.Title)
	return target, nil
}
