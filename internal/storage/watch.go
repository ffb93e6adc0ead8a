// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long a record must be quiet before a change fires.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports changes to file records made by other processes.
// Writes go through a temp file and a rename, so a single Put can raise
// several events; they are coalesced per key.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(key string)

	mu      sync.Mutex
	pending map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// NewWatcher watches the record directory of b and calls onChange with the
// key of every record that changed. A zero debounce selects DefaultDebounce.
func NewWatcher(b *FileBackend, debounce time.Duration, onChange func(key string)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(b.Dir); err != nil {
		fw.Close()
		return nil, &StorageError{Op: "watch", Message: "failed to watch data directory", Cause: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      b.Dir,
		watcher:  fw,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.done.Add(2)
	go w.processEvents()
	go w.processPending()
	return w, nil
}

// Close stops watching and waits for the goroutines to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.done.Wait()
	return err
}

func (w *Watcher) processEvents() {
	defer w.done.Done()
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			key, ok := keyFromPath(event.Name)
			if !ok {
				continue
			}
			w.mu.Lock()
			w.pending[key] = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).WithField("dir", w.dir).Warn("storage watcher error")
		}
	}
}

func (w *Watcher) processPending() {
	defer w.done.Done()
	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var ready []string
			for key, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					ready = append(ready, key)
					delete(w.pending, key)
				}
			}
			w.mu.Unlock()

			for _, key := range ready {
				w.onChange(key)
			}
		}
	}
}
