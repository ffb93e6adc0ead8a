// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatstore

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thuraya-cli/internal/model"
	"github.com/jeranaias/thuraya-cli/internal/storage"
)

// failingBackend rejects every write.
type failingBackend struct {
	*storage.MemoryBackend
}

func (failingBackend) Put(string, []byte) error { return errors.New("quota exceeded") }

func newStore(t *testing.T) (*Store, *storage.MemoryBackend) {
	t.Helper()
	b := storage.NewMemoryBackend()
	return New(b), b
}

func streamingCount(s *Store, chatID string) int {
	c, _ := s.Chat(chatID)
	return c.StreamingCount()
}

// =============================================================================
// CHAT LIFECYCLE
// =============================================================================

func TestCreateChat(t *testing.T) {
	s, _ := newStore(t)

	id := s.CreateChat(model.ModeConsultation, "hello", true)

	st := s.Snapshot()
	require.Len(t, st.Chats, 1)
	assert.Equal(t, id, st.ActiveChatID)
	require.Len(t, st.Chats[0].Messages, 1)
	assert.True(t, st.Chats[0].Messages[0].IsUser)
	assert.Equal(t, "hello", st.Chats[0].Messages[0].Content)
	assert.Equal(t, "hello", st.Chats[0].Title)
	assert.Empty(t, st.Chats[0].ImportedChat)
}

func TestCreateChat_MostRecentFirst(t *testing.T) {
	s, _ := newStore(t)
	first := s.CreateChat(model.ModeConsultation, "one", true)
	second := s.CreateChat(model.ModeResearch, "two", true)

	chats := s.Chats()
	require.Len(t, chats, 2)
	assert.Equal(t, second, chats[0].ID)
	assert.Equal(t, first, chats[1].ID)
	assert.Equal(t, second, s.ActiveChatID())
}

func TestCreateChat_TitleTruncated(t *testing.T) {
	s, _ := newStore(t)
	long := strings.Repeat("ق", 80)
	id := s.CreateChat(model.ModeConsultation, long, true)

	c, ok := s.Chat(id)
	require.True(t, ok)
	assert.Equal(t, 50, len([]rune(c.Title)))
	assert.Equal(t, long, c.Messages[0].Content)
}

func TestDeleteChat_ActiveClearsActive(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "a", true)

	s.DeleteChat(id)

	assert.Empty(t, s.ActiveChatID())
	assert.Empty(t, s.Chats())
}

func TestDeleteChat_InactiveKeepsActive(t *testing.T) {
	s, _ := newStore(t)
	other := s.CreateChat(model.ModeConsultation, "a", true)
	active := s.CreateChat(model.ModeConsultation, "b", true)

	s.DeleteChat(other)

	assert.Equal(t, active, s.ActiveChatID())
	assert.Len(t, s.Chats(), 1)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	s, b := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "a", true)
	before := s.Snapshot()
	writes := b.Writes()

	assert.NotPanics(t, func() {
		s.DeleteChat("missing")
		s.AppendStreamChunk("missing", "missing", "x")
		s.AppendStreamChunk(id, "missing", "x")
		s.RenameChat("missing", "t")
		s.ImportMessages("missing", []model.Message{model.NewUserMessage("m", model.ModeConsultation)})
	})

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, writes, b.Writes())

	// Completing an unknown message still releases the gate and touches
	// no chat.
	s.CompleteResponse("missing", "missing", OutcomeSuccess, "")
	assert.Equal(t, before.Chats, s.Snapshot().Chats)
	assert.False(t, s.IsResponding())
}

func TestSetActiveChat(t *testing.T) {
	s, _ := newStore(t)
	a := s.CreateChat(model.ModeConsultation, "a", true)
	s.CreateChat(model.ModeConsultation, "b", true)

	assert.True(t, s.SetActiveChat(a))
	assert.Equal(t, a, s.ActiveChatID())

	assert.False(t, s.SetActiveChat("missing"))
	assert.Equal(t, a, s.ActiveChatID())

	assert.True(t, s.SetActiveChat(""))
	assert.Empty(t, s.ActiveChatID())
}

func TestRenameAndClearAll(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "a", true)

	s.RenameChat(id, "Contract review")
	c, _ := s.Chat(id)
	assert.Equal(t, "Contract review", c.Title)

	s.ClearAll()
	assert.Empty(t, s.Chats())
	assert.Empty(t, s.ActiveChatID())
}

func TestAppendUserMessage_NoActiveChat(t *testing.T) {
	s, _ := newStore(t)
	assert.False(t, s.AppendUserMessage("lost", model.ModeConsultation))
	assert.Empty(t, s.Chats())

	id := s.CreateChat(model.ModeConsultation, "a", true)
	assert.True(t, s.AppendUserMessage("b", model.ModeResearch))
	c, _ := s.Chat(id)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, model.ModeResearch, c.Messages[1].Mode)
}

// =============================================================================
// RESPONSE LIFECYCLE
// =============================================================================

func TestBeginAssistantResponse_IdempotentWhileBusy(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeResearch, "q", true)

	msgID, ok := s.BeginAssistantResponse(id)
	require.True(t, ok)
	require.NotEmpty(t, msgID)

	_, ok = s.BeginAssistantResponse(id)
	assert.False(t, ok)

	assert.Equal(t, 1, streamingCount(s, id))
	c, _ := s.Chat(id)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, model.ModeResearch, c.Messages[1].Mode)
	assert.Empty(t, c.Messages[1].Content)
}

func TestBeginAssistantResponse_GateIsStoreWide(t *testing.T) {
	s, _ := newStore(t)
	a := s.CreateChat(model.ModeConsultation, "a", true)
	b := s.CreateChat(model.ModeConsultation, "b", true)

	_, ok := s.BeginAssistantResponse(a)
	require.True(t, ok)
	_, ok = s.BeginAssistantResponse(b)
	assert.False(t, ok)
	assert.Equal(t, 0, streamingCount(s, b))
}

func TestBeginAssistantResponse_NoUserMessageDefaultsToConsultation(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeResearch, "notice", false)

	msgID, ok := s.BeginAssistantResponse(id)
	require.True(t, ok)

	c, _ := s.Chat(id)
	i := c.FindMessage(msgID)
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, model.ModeConsultation, c.Messages[i].Mode)
}

func TestAppendStreamChunk_ChunkingInvariance(t *testing.T) {
	inputs := [][]string{
		{"Hello, world"},
		{"Hel", "lo, ", "world"},
		{"H", "e", "l", "l", "o", ",", " ", "w", "o", "r", "l", "d"},
		{"", "Hello", "", ", world"},
	}

	for _, chunks := range inputs {
		s, _ := newStore(t)
		id := s.CreateChat(model.ModeConsultation, "q", true)
		msgID, ok := s.BeginAssistantResponse(id)
		require.True(t, ok)

		for _, chunk := range chunks {
			s.AppendStreamChunk(id, msgID, chunk)
		}

		c, _ := s.Chat(id)
		assert.Equal(t, "Hello, world", c.Messages[c.FindMessage(msgID)].Content, "chunks %q", chunks)
	}
}

func TestCompleteResponse_ErrorReleasesGate(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "q", true)

	msgID, ok := s.BeginAssistantResponse(id)
	require.True(t, ok)
	s.AppendStreamChunk(id, msgID, "partial")
	s.CompleteResponse(id, msgID, OutcomeError, "")

	assert.False(t, s.IsResponding())
	c, _ := s.Chat(id)
	m := c.Messages[c.FindMessage(msgID)]
	assert.Equal(t, model.StatusError, m.Status)
	assert.Equal(t, FailureText, m.Content)

	next, ok := s.BeginAssistantResponse(id)
	assert.True(t, ok)
	assert.NotEqual(t, msgID, next)
}

func TestCompleteResponse_TerminalIsFinal(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "q", true)
	msgID, _ := s.BeginAssistantResponse(id)
	s.AppendStreamChunk(id, msgID, "done")
	s.CompleteResponse(id, msgID, OutcomeSuccess, "")

	s.AppendStreamChunk(id, msgID, " more")
	s.CompleteResponse(id, msgID, OutcomeError, "")

	c, _ := s.Chat(id)
	m := c.Messages[c.FindMessage(msgID)]
	assert.Equal(t, model.StatusSuccess, m.Status)
	assert.Equal(t, "done", m.Content)
}

func TestCompleteResponse_Override(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "q", true)
	msgID, _ := s.BeginAssistantResponse(id)
	s.AppendStreamChunk(id, msgID, "draft")
	s.CompleteResponse(id, msgID, OutcomeSuccess, "final")

	c, _ := s.Chat(id)
	assert.Equal(t, "final", c.Messages[c.FindMessage(msgID)].Content)
}

func TestDeleteChatMidStream(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "q", true)
	msgID, _ := s.BeginAssistantResponse(id)

	s.DeleteChat(id)
	s.AppendStreamChunk(id, msgID, "late")
	s.CompleteResponse(id, msgID, OutcomeSuccess, "")

	assert.Empty(t, s.Chats())
	assert.False(t, s.IsResponding())
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImportMessages(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeResearch, "q", true)
	m1 := model.NewUserMessage("m1", model.ModeConsultation)
	m2 := model.NewNoticeMessage("m2", model.ModeConsultation)

	require.True(t, s.ImportMessages(id, []model.Message{m1, m2}))

	c, _ := s.Chat(id)
	assert.Equal(t, []model.Message{m1, m2}, c.ImportedChat)
	require.Len(t, c.Messages, 2)
	notice := c.Messages[1]
	assert.False(t, notice.IsUser)
	assert.Equal(t, ImportNotice, notice.Content)
	assert.Equal(t, model.StatusSuccess, notice.Status)
	assert.Equal(t, model.ModeResearch, notice.Mode)

	// Repeated imports are not rejected here.
	require.True(t, s.ImportMessages(id, []model.Message{m1}))
	c, _ = s.Chat(id)
	assert.Len(t, c.ImportedChat, 3)
	assert.Len(t, c.Messages, 3)
}

// =============================================================================
// COPY-ON-WRITE AND NOTIFICATION
// =============================================================================

func TestSnapshotsAreImmutable(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "q", true)
	before := s.Snapshot()

	before.Chats[0].Messages[0].Content = "tampered"
	s.AppendUserMessage("second", model.ModeConsultation)

	c, _ := s.Chat(id)
	assert.Equal(t, "q", c.Messages[0].Content)
	assert.Len(t, before.Chats[0].Messages, 1)
}

func TestSubscribe(t *testing.T) {
	s, _ := newStore(t)

	var mu sync.Mutex
	var seen []State
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	id := s.CreateChat(model.ModeConsultation, "q", true)
	s.DeleteChat("missing")
	unsubscribe()
	unsubscribe()
	s.RenameChat(id, "t")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, id, seen[0].ActiveChatID)
}

func TestConcurrentMutations(t *testing.T) {
	s, _ := newStore(t)
	id := s.CreateChat(model.ModeConsultation, "q", true)
	msgID, _ := s.BeginAssistantResponse(id)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AppendStreamChunk(id, msgID, "x")
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_, _ = s.BeginAssistantResponse(id)
		}()
	}
	wg.Wait()

	c, _ := s.Chat(id)
	assert.Equal(t, strings.Repeat("x", 50), c.Messages[c.FindMessage(msgID)].Content)
	assert.Equal(t, 1, c.StreamingCount())
}
