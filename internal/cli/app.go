// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/thuraya-cli/internal/backend"
	"github.com/jeranaias/thuraya-cli/internal/chatstore"
	"github.com/jeranaias/thuraya-cli/internal/config"
	"github.com/jeranaias/thuraya-cli/internal/docs"
	"github.com/jeranaias/thuraya-cli/internal/model"
	"github.com/jeranaias/thuraya-cli/internal/prefs"
	"github.com/jeranaias/thuraya-cli/internal/storage"
)

// App holds the components every command works against.
type App struct {
	Config     *config.Config
	Storage    storage.Backend
	Chats      *chatstore.Store
	Client     *backend.Client
	Docs       *docs.Store
	Prompts    *prefs.Prompts
	Onboarding *prefs.Onboarding
}

// NewApp opens the configured storage backend and wires the stores and the
// service client on top of it.
func NewApp(cfg *config.Config) (*App, error) {
	b, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return newAppWithBackend(cfg, b), nil
}

func newAppWithBackend(cfg *config.Config, b storage.Backend) *App {
	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.Timeout(),
		StreamTimeout: cfg.StreamTimeout(),
		TypingSpeed:   cfg.API.TypingSpeed,
	})

	logrus.WithFields(logrus.Fields{
		"storage":  cfg.Storage.Backend,
		"base_url": client.Config().BaseURL,
	}).Debug("APP_INIT")

	return &App{
		Config:     cfg,
		Storage:    b,
		Chats:      chatstore.New(b),
		Client:     client,
		Docs:       docs.NewStore(client),
		Prompts:    prefs.NewPrompts(b),
		Onboarding: prefs.NewOnboarding(b),
	}
}

// Close writes pending chat content and releases the storage backend.
func (a *App) Close() error {
	if a == nil || a.Storage == nil {
		return nil
	}
	if a.Chats != nil {
		a.Chats.Flush()
	}
	return a.Storage.Close()
}

// Watch reloads the chat list whenever another process rewrites it. It is a
// no-op unless the file backend is in use and storage.watch is enabled.
// The returned function stops the watcher.
func (a *App) Watch() (stop func(), err error) {
	fb, ok := a.Storage.(*storage.FileBackend)
	if !ok || !a.Config.Storage.Watch {
		return func() {}, nil
	}

	w, err := storage.NewWatcher(fb, storage.DefaultDebounce, func(key string) {
		if key != storage.KeyChats {
			return
		}
		if a.Chats.Reload() {
			logrus.WithField("key", key).Debug("CHATS_RELOADED")
		}
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = w.Close() }, nil
}

// streamer adapts the service client to the chat store, echoing every chunk
// to out as it arrives.
func (a *App) streamer(out io.Writer) chatstore.Streamer {
	return chatstore.StreamerFunc(func(ctx context.Context, mode model.Mode, latest string, chat model.Chat, onChunk func(string)) {
		a.Client.StreamResponse(ctx, mode, latest, chat, func(chunk string) {
			onChunk(chunk)
			if out != nil {
				io.WriteString(out, chunk)
			}
		})
	})
}
