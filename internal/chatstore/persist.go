// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatstore

import (
	"bytes"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/thuraya-cli/internal/model"
	"github.com/jeranaias/thuraya-cli/internal/storage"
)

// record is the persisted shape of the store. The responding gate is not
// part of it.
type record struct {
	Chats        []model.Chat `json:"chats"`
	ActiveChatID *string      `json:"activeChatId"`
}

func toRecord(st State) record {
	r := record{Chats: st.Chats}
	if st.ActiveChatID != "" {
		id := st.ActiveChatID
		r.ActiveChatID = &id
	}
	return r
}

// persist writes st to the backend. Failures only cost durability. Callers
// hold s.mu.
func (s *Store) persist(st State) {
	data, err := storage.Encode(toRecord(st))
	if err == nil {
		err = s.backend.Put(storage.KeyChats, data)
	}
	if err != nil {
		logrus.WithError(err).WithField("key", storage.KeyChats).Warn("failed to persist chats")
		return
	}
	s.lastSaved = data
	s.dirty = false
	s.lastFlush = time.Now()
}

// read fetches the raw record. found is false when there is none or it
// cannot be read.
func (s *Store) read() (data []byte, found bool) {
	data, err := s.backend.Get(storage.KeyChats)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logrus.WithError(err).WithField("key", storage.KeyChats).Warn("failed to load chats")
		}
		return nil, false
	}
	return data, true
}

// decode turns a raw record into state, filling empty lists and dropping an
// active chat id that names no chat.
func decode(data []byte) (st State, ok bool) {
	var r record
	if err := storage.Decode(data, &r); err != nil {
		logrus.WithError(err).WithField("key", storage.KeyChats).Warn("failed to decode chats")
		return State{}, false
	}

	st.Chats = r.Chats
	if st.Chats == nil {
		st.Chats = []model.Chat{}
	}
	for i := range st.Chats {
		if st.Chats[i].Messages == nil {
			st.Chats[i].Messages = []model.Message{}
		}
		if st.Chats[i].ImportedChat == nil {
			st.Chats[i].ImportedChat = []model.Message{}
		}
	}
	if r.ActiveChatID != nil && indexOf(st.Chats, *r.ActiveChatID) >= 0 {
		st.ActiveChatID = *r.ActiveChatID
	}
	return st, true
}

// rehydrate restores the persisted record at startup. No generation can be
// running yet, so any message still streaming belongs to a process that
// died mid-response and is marked failed.
func (s *Store) rehydrate() {
	data, found := s.read()
	if !found {
		return
	}
	st, ok := decode(data)
	if !ok {
		return
	}

	orphans := 0
	for i := range st.Chats {
		for j := range st.Chats[i].Messages {
			m := &st.Chats[i].Messages[j]
			if m.IsStreaming() {
				m.Status = model.StatusError
				m.Content = FailureText
				orphans++
			}
		}
	}

	s.mu.Lock()
	s.state = st
	s.lastSaved = data
	if orphans > 0 {
		logrus.WithField("count", orphans).Info("marked interrupted responses as failed")
		s.persist(st)
	}
	s.mu.Unlock()
}

// Reload replaces chats and the active chat with the persisted record, for
// picking up writes made by another process. It returns false and keeps
// the current state while a response is in flight here, when the record
// is the one this store last wrote, or when a mutation landed while the
// record was being read.
func (s *Store) Reload() bool {
	s.mu.Lock()
	if s.state.IsResponding {
		s.mu.Unlock()
		return false
	}
	rev := s.rev
	s.mu.Unlock()

	data, found := s.read()
	if !found {
		return false
	}

	s.mu.Lock()
	if s.state.IsResponding || s.rev != rev || bytes.Equal(data, s.lastSaved) {
		s.mu.Unlock()
		return false
	}
	st, ok := decode(data)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.state = st
	s.rev++
	s.lastSaved = data
	snapshot := st.clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}
