// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs runs document operations (summarize, compare, image to text)
// and holds their result for display.
//
// Each run moves the store through idle -> loading -> success|error. A new
// run clears the previous error and response. The store does not queue
// runs; callers disable their trigger while IsLoading is true.
package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/thuraya-cli/internal/backend"
)

// Operation is a document operation.
type Operation string

const (
	OpSummarize   Operation = "summarize"
	OpCompare     Operation = "compare"
	OpImageToText Operation = "image-to-text"
)

// Operations lists every operation in display order.
var Operations = []Operation{OpSummarize, OpCompare, OpImageToText}

// ParseOperation converts a name to an Operation.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	switch s {
	case "ocr", "image":
		return OpImageToText, nil
	}
	return "", fmt.Errorf("unknown document operation %q", s)
}

// Processor performs the remote half of each operation.
// *backend.Client implements it.
type Processor interface {
	Summarize(ctx context.Context, doc *backend.Document) (string, error)
	Compare(ctx context.Context, v1, v2 *backend.Document) (string, error)
	ImageToText(ctx context.Context, img *backend.Document) (json.RawMessage, error)
}

// Phase of the operation state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Result is the answer of a successful operation.
type Result struct {
	Op Operation
	// Text holds the summary or comparison.
	Text string
	// Raw holds the image-to-text answer exactly as received.
	Raw json.RawMessage
}

// State is a snapshot of the store.
type State struct {
	Phase     Phase
	IsLoading bool
	Error     string
	Response  *Result
}

// Store holds the selected operation, the latest result and the names of
// recently processed documents. It is safe for concurrent use.
type Store struct {
	proc Processor

	mu         sync.Mutex
	selected   Operation
	state      State
	recentDocs []string
}

// NewStore creates a store with summarize selected.
func NewStore(proc Processor) *Store {
	return &Store{
		proc:       proc,
		selected:   OpSummarize,
		recentDocs: []string{},
	}
}

// SelectedOp returns the operation Process will run.
func (s *Store) SelectedOp() Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SetSelectedOp selects the operation Process will run.
func (s *Store) SetSelectedOp(op Operation) {
	s.mu.Lock()
	s.selected = op
	s.mu.Unlock()
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ClearResponse drops the result and error and returns to idle.
func (s *Store) ClearResponse() {
	s.mu.Lock()
	s.state = State{Phase: PhaseIdle}
	s.mu.Unlock()
}

// RecentDocs returns the recorded document names, oldest first.
func (s *Store) RecentDocs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.recentDocs...)
}

// AddRecentDoc records a document name.
func (s *Store) AddRecentDoc(name string) {
	s.mu.Lock()
	s.recentDocs = append(s.recentDocs, name)
	s.mu.Unlock()
}

// Process runs the selected operation on docs and returns the final state.
// Summarize and image-to-text use docs[0]; compare needs exactly two
// documents and fails without a request otherwise.
func (s *Store) Process(ctx context.Context, docs ...*backend.Document) State {
	s.mu.Lock()
	op := s.selected
	s.state = State{Phase: PhaseLoading, IsLoading: true}
	s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"op": op, "docs": len(docs)})

	result, err := s.run(ctx, op, docs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.WithError(err).Warn("document operation failed")
		s.state = State{Phase: PhaseError, Error: err.Error()}
		return s.state
	}
	for _, d := range docs {
		if d != nil {
			s.recentDocs = append(s.recentDocs, d.Name)
		}
	}
	s.state = State{Phase: PhaseSuccess, Response: result}
	return s.state
}

func (s *Store) run(ctx context.Context, op Operation, docs []*backend.Document) (*Result, error) {
	var first *backend.Document
	if len(docs) > 0 {
		first = docs[0]
	}
	if first == nil && op != OpCompare {
		return nil, backend.ErrNoDocument
	}

	switch op {
	case OpSummarize:
		text, err := s.proc.Summarize(ctx, first)
		if err != nil {
			return nil, err
		}
		return &Result{Op: op, Text: text}, nil

	case OpCompare:
		if len(docs) != 2 || docs[0] == nil || docs[1] == nil {
			return nil, backend.ErrCompareNeedsTwo
		}
		text, err := s.proc.Compare(ctx, docs[0], docs[1])
		if err != nil {
			return nil, err
		}
		return &Result{Op: op, Text: text}, nil

	case OpImageToText:
		raw, err := s.proc.ImageToText(ctx, first)
		if err != nil {
			return nil, err
		}
		return &Result{Op: op, Raw: raw}, nil

	default:
		return nil, fmt.Errorf("no document operation selected")
	}
}
