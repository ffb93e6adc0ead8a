// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

import (
	"strings"
	"sync"

	"github.com/jeranaias/thuraya-cli/internal/storage"
)

// CustomCategory names the category holding the user's saved prompts.
const CustomCategory = "Custom"

// Category is a named group of prompt templates.
type Category struct {
	Name    string
	Prompts []string
}

type promptRecord struct {
	CustomPrompts []string `json:"customPrompts"`
}

// Prompts is the persisted list of user-authored prompts.
type Prompts struct {
	mu      sync.Mutex
	backend storage.Backend
	state   promptRecord
}

// NewPrompts loads the saved prompts from b.
func NewPrompts(b storage.Backend) *Prompts {
	p := &Prompts{backend: b}
	load(b, storage.KeyPrompts, &p.state)
	if p.state.CustomPrompts == nil {
		p.state.CustomPrompts = []string{}
	}
	return p
}

// CustomPrompts returns the saved prompts in the order they were added.
func (p *Prompts) CustomPrompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.state.CustomPrompts...)
}

// AddCustomPrompt saves prompt after trimming it. Blank prompts are
// ignored; the return value reports whether one was added.
func (p *Prompts) AddCustomPrompt(prompt string) bool {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.CustomPrompts = append(append([]string{}, p.state.CustomPrompts...), prompt)
	save(p.backend, storage.KeyPrompts, p.state)
	return true
}

// RemoveCustomPrompt deletes every saved prompt equal to prompt and
// reports how many were removed.
func (p *Prompts) RemoveCustomPrompt(prompt string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := make([]string, 0, len(p.state.CustomPrompts))
	for _, existing := range p.state.CustomPrompts {
		if existing != prompt {
			kept = append(kept, existing)
		}
	}
	removed := len(p.state.CustomPrompts) - len(kept)
	if removed > 0 {
		p.state.CustomPrompts = kept
		save(p.backend, storage.KeyPrompts, p.state)
	}
	return removed
}

// Categories returns the built-in categories followed by the Custom
// category when any prompts are saved.
func (p *Prompts) Categories() []Category {
	out := BuiltinCategories()
	if custom := p.CustomPrompts(); len(custom) > 0 {
		out = append(out, Category{Name: CustomCategory, Prompts: custom})
	}
	return out
}

// SearchPrompts returns the categories whose name or any prompt contains
// term, ignoring case. Matching categories are returned whole. An empty
// term matches everything.
func (p *Prompts) SearchPrompts(term string) []Category {
	needle := strings.ToLower(term)
	var out []Category
	for _, c := range p.Categories() {
		if matches(c, needle) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c Category, needle string) bool {
	if strings.Contains(strings.ToLower(c.Name), needle) {
		return true
	}
	for _, prompt := range c.Prompts {
		if strings.Contains(strings.ToLower(prompt), needle) {
			return true
		}
	}
	return false
}
