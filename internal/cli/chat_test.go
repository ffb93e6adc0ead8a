// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thuraya-cli/internal/chatstore"
	"github.com/jeranaias/thuraya-cli/internal/config"
	"github.com/jeranaias/thuraya-cli/internal/model"
	"github.com/jeranaias/thuraya-cli/internal/storage"
)

func newTestSession(t *testing.T, svc *fakeService) (*chatSession, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL + "/api/v1"
	cfg.Storage.Backend = storage.KindMemory
	app := newAppWithBackend(cfg, storage.NewMemoryBackend())

	var out bytes.Buffer
	return newChatSession(app, &out, &out), &out
}

func TestChatSession_MessagesAndCommands(t *testing.T) {
	svc := &fakeService{reply: "reply"}
	s, out := newTestSession(t, svc)
	ctx := context.Background()

	quit, err := s.handle(ctx, "first")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, "reply\n", out.String())

	_, err = s.handle(ctx, "/new")
	require.NoError(t, err)
	_, err = s.handle(ctx, "/mode research")
	require.NoError(t, err)
	assert.Equal(t, "research> ", s.prompt())
	_, err = s.handle(ctx, "second")
	require.NoError(t, err)

	reqs := svc.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "research", reqs[1].Mode)
	assert.Len(t, s.app.Chats.Chats(), 2)

	out.Reset()
	_, err = s.handle(ctx, "/list")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))

	_, err = s.handle(ctx, "/switch 2")
	require.NoError(t, err)
	active, ok := s.app.Chats.ActiveChat()
	require.True(t, ok)
	assert.Equal(t, "first", active.Title)

	_, err = s.handle(ctx, "/rename Lease questions")
	require.NoError(t, err)
	active, _ = s.app.Chats.ActiveChat()
	assert.Equal(t, "Lease questions", active.Title)

	_, err = s.handle(ctx, "/import 1")
	require.NoError(t, err)
	active, _ = s.app.Chats.ActiveChat()
	assert.True(t, active.HasImport())

	_, err = s.handle(ctx, "/import 1")
	assert.ErrorIs(t, err, chatstore.ErrImported)

	_, err = s.handle(ctx, "/delete")
	require.NoError(t, err)
	assert.Len(t, s.app.Chats.Chats(), 1)
	assert.Empty(t, s.app.Chats.ActiveChatID())

	quit, err = s.handle(ctx, "/exit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestChatSession_Errors(t *testing.T) {
	s, _ := newTestSession(t, &fakeService{reply: "ok"})
	ctx := context.Background()

	_, err := s.handle(ctx, "/bogus")
	require.ErrorAs(t, err, new(*ValidationError))

	_, err = s.handle(ctx, "/renme x")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "/rename", ve.Example)

	_, err = s.handle(ctx, "/switch")
	require.ErrorAs(t, err, new(*ValidationError))

	_, err = s.handle(ctx, "/show")
	require.ErrorAs(t, err, new(*NotFoundError))

	_, err = s.handle(ctx, "/mode lawyer")
	require.ErrorAs(t, err, new(*ValidationError))
	assert.Equal(t, model.ModeConsultation, s.mode)
}

func TestChatSession_WelcomeOnce(t *testing.T) {
	s, out := newTestSession(t, &fakeService{})

	s.welcome()
	assert.Contains(t, out.String(), "Welcome to thuraya")
	assert.True(t, s.app.Onboarding.HasCompletedOnboarding())

	out.Reset()
	s.welcome()
	assert.NotContains(t, out.String(), "Welcome")
}

func TestChatSession_Prompts(t *testing.T) {
	s, out := newTestSession(t, &fakeService{})
	s.app.Prompts.AddCustomPrompt("Review my NDA")

	_, err := s.handle(context.Background(), "/prompts nda")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Review my NDA")
}

func TestApp_WatchIsNoopWithoutFileBackend(t *testing.T) {
	s, _ := newTestSession(t, &fakeService{})
	stop, err := s.app.Watch()
	require.NoError(t, err)
	stop()
}

func TestApp_WatchReloadsChatsFromAnotherSession(t *testing.T) {
	dir := t.TempDir()
	open := func() *App {
		b, err := storage.NewFileBackend(dir)
		require.NoError(t, err)
		cfg := config.Default()
		cfg.Storage.Dir = dir
		return newAppWithBackend(cfg, b)
	}
	first, second := open(), open()

	stop, err := first.Watch()
	require.NoError(t, err)
	defer stop()

	second.Chats.CreateChat(model.ModeConsultation, "from the other terminal", true)

	require.Eventually(t, func() bool {
		return len(first.Chats.Chats()) == 1
	}, 3*time.Second, 20*time.Millisecond)
}
