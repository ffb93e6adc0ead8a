// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/thuraya-cli/internal/storage"
)

type onboardingRecord struct {
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`
}

// Onboarding is the persisted onboarding flag.
type Onboarding struct {
	mu      sync.Mutex
	backend storage.Backend
	state   onboardingRecord
}

// NewOnboarding loads the flag from b.
func NewOnboarding(b storage.Backend) *Onboarding {
	o := &Onboarding{backend: b}
	load(b, storage.KeyOnboarding, &o.state)
	return o
}

// HasCompletedOnboarding reports whether the user finished onboarding.
func (o *Onboarding) HasCompletedOnboarding() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.HasCompletedOnboarding
}

// SetHasCompletedOnboarding sets and persists the flag.
func (o *Onboarding) SetHasCompletedOnboarding(done bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.HasCompletedOnboarding = done
	save(o.backend, storage.KeyOnboarding, o.state)
}

// load decodes key into out, leaving out untouched when the record is
// missing or unreadable.
func load(b storage.Backend, key string, out any) {
	if err := storage.Load(b, key, out); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logrus.WithError(err).WithField("key", key).Warn("failed to load preferences")
	}
}

// save writes state under key. Failures only cost durability.
func save(b storage.Backend, key string, state any) {
	if err := storage.Save(b, key, state); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to persist preferences")
	}
}
