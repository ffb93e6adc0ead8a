// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thuraya-cli/internal/backend"
)

// fakeProcessor records calls and returns canned answers.
type fakeProcessor struct {
	calls int
	err   error
	// seen is the state observed from inside a call.
	store *Store
	seen  State
}

func (f *fakeProcessor) observe() {
	f.calls++
	if f.store != nil {
		f.seen = f.store.State()
	}
}

func (f *fakeProcessor) Summarize(_ context.Context, doc *backend.Document) (string, error) {
	f.observe()
	if f.err != nil {
		return "", f.err
	}
	return "summary of " + doc.Name, nil
}

func (f *fakeProcessor) Compare(_ context.Context, v1, v2 *backend.Document) (string, error) {
	f.observe()
	if f.err != nil {
		return "", f.err
	}
	return v1.Name + " vs " + v2.Name, nil
}

func (f *fakeProcessor) ImageToText(_ context.Context, img *backend.Document) (json.RawMessage, error) {
	f.observe()
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"text":"ocr"}`), nil
}

func doc(name string) *backend.Document {
	return backend.NewDocument(name, []byte("x"))
}

func TestProcess_Summarize(t *testing.T) {
	p := &fakeProcessor{}
	s := NewStore(p)
	p.store = s

	assert.Equal(t, OpSummarize, s.SelectedOp())
	st := s.Process(context.Background(), doc("a.pdf"))

	assert.Equal(t, PhaseLoading, p.seen.Phase)
	assert.True(t, p.seen.IsLoading)

	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
	require.NotNil(t, st.Response)
	assert.Equal(t, "summary of a.pdf", st.Response.Text)
	assert.Equal(t, []string{"a.pdf"}, s.RecentDocs())
}

func TestProcess_CompareWithOneFileFailsWithoutRequest(t *testing.T) {
	p := &fakeProcessor{}
	s := NewStore(p)
	s.SetSelectedOp(OpCompare)

	st := s.Process(context.Background(), doc("only.pdf"))

	assert.Equal(t, PhaseError, st.Phase)
	assert.NotEmpty(t, st.Error)
	assert.Nil(t, st.Response)
	assert.Zero(t, p.calls)
	assert.Equal(t, st, s.State())
}

func TestProcess_Compare(t *testing.T) {
	p := &fakeProcessor{}
	s := NewStore(p)
	s.SetSelectedOp(OpCompare)

	st := s.Process(context.Background(), doc("v1.pdf"), doc("v2.pdf"))
	require.NotNil(t, st.Response)
	assert.Equal(t, "v1.pdf vs v2.pdf", st.Response.Text)
	assert.Equal(t, []string{"v1.pdf", "v2.pdf"}, s.RecentDocs())
}

func TestProcess_ImageToText(t *testing.T) {
	s := NewStore(&fakeProcessor{})
	s.SetSelectedOp(OpImageToText)

	st := s.Process(context.Background(), doc("scan.png"))
	require.NotNil(t, st.Response)
	assert.JSONEq(t, `{"text":"ocr"}`, string(st.Response.Raw))
}

func TestProcess_ErrorClearsResponse(t *testing.T) {
	p := &fakeProcessor{}
	s := NewStore(p)
	require.NotNil(t, s.Process(context.Background(), doc("a.pdf")).Response)

	p.err = errors.New("HTTP error! status: 500, message: Unknown error")
	st := s.Process(context.Background(), doc("b.pdf"))

	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, "HTTP error! status: 500, message: Unknown error", st.Error)
	assert.Nil(t, st.Response)
}

func TestProcess_LoadingClearsPreviousError(t *testing.T) {
	p := &fakeProcessor{err: errors.New("down")}
	s := NewStore(p)
	p.store = s
	s.Process(context.Background(), doc("a.pdf"))

	p.err = nil
	st := s.Process(context.Background(), doc("a.pdf"))

	assert.Empty(t, p.seen.Error)
	assert.Nil(t, p.seen.Response)
	assert.Equal(t, PhaseSuccess, st.Phase)
}

func TestClearResponse(t *testing.T) {
	s := NewStore(&fakeProcessor{})
	s.Process(context.Background(), doc("a.pdf"))
	s.ClearResponse()
	assert.Equal(t, State{Phase: PhaseIdle}, s.State())
}

func TestParseOperation(t *testing.T) {
	for in, want := range map[string]Operation{
		"summarize":     OpSummarize,
		"compare":       OpCompare,
		"image-to-text": OpImageToText,
		"ocr":           OpImageToText,
	} {
		got, err := ParseOperation(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseOperation("translate")
	assert.Error(t, err)
}

func TestAddRecentDoc(t *testing.T) {
	s := NewStore(&fakeProcessor{})
	s.AddRecentDoc("x.pdf")
	docs := s.RecentDocs()
	docs[0] = "changed"
	assert.Equal(t, []string{"x.pdf"}, s.RecentDocs())
}

func TestProcess_NoDocument(t *testing.T) {
	p := &fakeProcessor{}
	s := NewStore(p)

	st := s.Process(context.Background())
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, backend.ErrNoDocument.Error(), st.Error)
	assert.Zero(t, p.calls)
}
