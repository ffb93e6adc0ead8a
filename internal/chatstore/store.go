// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatstore

import (
	"sync"
	"time"

	"github.com/jeranaias/thuraya-cli/internal/model"
	"github.com/jeranaias/thuraya-cli/internal/storage"
)

// =============================================================================
// STATE
// =============================================================================

// State is an immutable view of the store.
type State struct {
	// Chats in most-recent-first order.
	Chats []model.Chat
	// ActiveChatID is "" when no chat is active.
	ActiveChatID string
	// IsResponding is true while a generation is in flight anywhere.
	IsResponding bool
}

// Chat returns the chat with id.
func (s State) Chat(id string) (model.Chat, bool) {
	if i := indexOf(s.Chats, id); i >= 0 {
		return s.Chats[i], true
	}
	return model.Chat{}, false
}

// ActiveChat returns the active chat, if any.
func (s State) ActiveChat() (model.Chat, bool) {
	if s.ActiveChatID == "" {
		return model.Chat{}, false
	}
	return s.Chat(s.ActiveChatID)
}

func (s State) clone() State {
	out := s
	out.Chats = make([]model.Chat, len(s.Chats))
	for i := range s.Chats {
		out.Chats[i] = s.Chats[i].Clone()
	}
	return out
}

func indexOf(chats []model.Chat, id string) int {
	for i := range chats {
		if chats[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// STORE
// =============================================================================

// StreamFlushInterval bounds how often streamed content alone is written
// to the backend. Any other change writes immediately.
const StreamFlushInterval = 250 * time.Millisecond

// Listener is called with the new state after every mutation.
type Listener func(State)

// Store is the single owner of chat state. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	state   State
	backend storage.Backend

	// rev counts committed changes; Reload discards reads that raced one.
	rev uint64
	// lastSaved holds the bytes of this store's last successful write.
	lastSaved []byte
	// dirty is set while streamed content is waiting to be written.
	dirty     bool
	lastFlush time.Time

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// New creates a store backed by b and rehydrates it from the chat record.
// A nil backend keeps state in memory only.
func New(b storage.Backend) *Store {
	if b == nil {
		b = storage.NewMemoryBackend()
	}
	s := &Store{
		backend:   b,
		state:     State{Chats: []model.Chat{}},
		listeners: make(map[int]Listener),
	}
	s.rehydrate()
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Chats returns a deep copy of all chats, most recent first.
func (s *Store) Chats() []model.Chat {
	return s.Snapshot().Chats
}

// Chat returns a deep copy of the chat with id.
func (s *Store) Chat(id string) (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.Chat(id)
	if !ok {
		return model.Chat{}, false
	}
	return c.Clone(), true
}

// ActiveChat returns a deep copy of the active chat.
func (s *Store) ActiveChat() (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.ActiveChat()
	if !ok {
		return model.Chat{}, false
	}
	return c.Clone(), true
}

// ActiveChatID returns the active chat id or "".
func (s *Store) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ActiveChatID
}

// IsResponding reports whether a generation is in flight.
func (s *Store) IsResponding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsResponding
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenerMu.Lock()
			delete(s.listeners, id)
			s.listenerMu.Unlock()
		})
	}
}

// update applies fn to a shallow copy of the state. fn returns false to
// signal that nothing changed; the state is then left as it was. Changed
// state is persisted under the lock so records are written in mutation
// order, and listeners run after the lock is released.
func (s *Store) update(fn func(st *State) bool) bool {
	return s.commit(fn, false)
}

// commit is update with write coalescing: when chunkOnly is set the write
// is deferred until StreamFlushInterval has passed since the last one.
// The next write of any kind carries the deferred content with it.
func (s *Store) commit(fn func(st *State) bool, chunkOnly bool) bool {
	s.mu.Lock()
	next := s.state
	if !fn(&next) {
		s.mu.Unlock()
		return false
	}
	persistChats := !sameChats(s.state, next)
	s.state = next
	s.rev++
	if persistChats {
		if chunkOnly && time.Since(s.lastFlush) < StreamFlushInterval {
			s.dirty = true
		} else {
			s.persist(next)
		}
	}
	snapshot := next.clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// Flush writes streamed content that is still waiting for its interval.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.persist(s.state)
	}
}

// sameChats reports whether only the responding flag changed, which is
// not part of the persisted record.
func sameChats(a, b State) bool {
	if a.ActiveChatID != b.ActiveChatID || len(a.Chats) != len(b.Chats) {
		return false
	}
	if len(a.Chats) == 0 {
		return true
	}
	return &a.Chats[0] == &b.Chats[0]
}

func (s *Store) notify(st State) {
	s.listenerMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// replaceChat returns a copy of chats with chats[i] replaced by c.
func replaceChat(chats []model.Chat, i int, c model.Chat) []model.Chat {
	out := append([]model.Chat{}, chats...)
	out[i] = c
	return out
}
