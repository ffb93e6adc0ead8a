// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thuraya-cli/internal/backend"
	"github.com/jeranaias/thuraya-cli/internal/chatstore"
	"github.com/jeranaias/thuraya-cli/internal/config"
	"github.com/jeranaias/thuraya-cli/internal/model"
)

// =============================================================================
// FAKE SERVICE
// =============================================================================

// fakeService records requests and answers like the assistant service.
type fakeService struct {
	mu      sync.Mutex
	chats   []backend.ChatRequest
	uploads []string

	reply  string
	status int
	detail string
}

func (f *fakeService) requests() []backend.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.ChatRequest(nil), f.chats...)
}

func (f *fakeService) uploadPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *fakeService) fail(w http.ResponseWriter) bool {
	if f.status == 0 {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	json.NewEncoder(w).Encode(map[string]string{"detail": f.detail})
	return true
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat", func(w http.ResponseWriter, r *http.Request) {
		var req backend.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.chats = append(f.chats, req)
		f.mu.Unlock()
		if f.fail(w) {
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, f.reply)
	})
	upload := func(answer func(r *http.Request) any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.uploads = append(f.uploads, r.URL.Path)
			f.mu.Unlock()
			if f.fail(w) {
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(answer(r))
		}
	}
	mux.HandleFunc("/api/v1/summarize_doc", upload(func(r *http.Request) any {
		_, hdr, _ := r.FormFile(backend.FieldFile)
		return backend.SummaryResponse{Summary: "Summary of " + hdr.Filename}
	}))
	mux.HandleFunc("/api/v1/compare_docs", upload(func(r *http.Request) any {
		return backend.ComparisonResponse{Comparison: "Clause 4 changed"}
	}))
	mux.HandleFunc("/api/v1/gradio_chat", upload(func(r *http.Request) any {
		return map[string]any{"text": "نص مستخرج", "pages": 1}
	}))
	return mux
}

// setupEnv points HOME, storage and the service URL at test fixtures.
func setupEnv(t *testing.T, svc *fakeService) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)

	t.Setenv("THURAYA_API_URL", srv.URL+"/api/v1")
	t.Setenv("THURAYA_STORAGE", "file")
	t.Setenv("THURAYA_DATA_DIR", filepath.Join(home, "data"))
	t.Setenv("THURAYA_MODE", "")
	t.Setenv("THURAYA_LOG_LEVEL", "")
	return home
}

// execute runs one command line and returns its stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_StreamsAndPersists(t *testing.T) {
	svc := &fakeService{reply: "Hello there"}
	setupEnv(t, svc)

	out, _, err := execute(t, "", "ask", "What", "is", "a", "lease?")
	require.NoError(t, err)
	assert.Equal(t, "Hello there\n", out)

	reqs := svc.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "What is a lease?", reqs[0].UserPrompt)
	assert.Equal(t, "active", reqs[0].Mode)

	out, _, err = execute(t, "", "chats", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "What is a lease?")
	assert.True(t, strings.HasPrefix(out, "*"), "new chat should be active: %q", out)

	out, _, err = execute(t, "", "chats", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "> What is a lease?")
	assert.Contains(t, out, "Hello there")
}

func TestAsk_ContinuesActiveChat(t *testing.T) {
	svc := &fakeService{reply: "ok"}
	setupEnv(t, svc)

	_, _, err := execute(t, "", "ask", "first question")
	require.NoError(t, err)
	_, _, err = execute(t, "", "ask", "second question")
	require.NoError(t, err)

	reqs := svc.requests()
	require.Len(t, reqs, 2)
	var history []string
	for _, turn := range reqs[1].ChatHistory {
		history = append(history, turn.Content)
	}
	assert.Contains(t, history, "first question")

	out, _, err := execute(t, "", "chats", "list")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"), "both questions belong to one chat")
}

func TestAsk_NewStartsAnotherChat(t *testing.T) {
	setupEnv(t, &fakeService{reply: "ok"})

	_, _, err := execute(t, "", "ask", "one")
	require.NoError(t, err)
	_, _, err = execute(t, "", "ask", "--new", "two")
	require.NoError(t, err)

	out, _, err := execute(t, "", "chats", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "two", "most recent chat is listed first")
}

func TestAsk_ResearchMode(t *testing.T) {
	svc := &fakeService{reply: "ok"}
	setupEnv(t, svc)

	_, _, err := execute(t, "", "ask", "-m", "research", "precedents")
	require.NoError(t, err)
	require.Len(t, svc.requests(), 1)
	assert.Equal(t, "research", svc.requests()[0].Mode)
}

func TestAsk_ReadsStdin(t *testing.T) {
	svc := &fakeService{reply: "ok"}
	setupEnv(t, svc)

	_, _, err := execute(t, "  from stdin \n", "ask", "-")
	require.NoError(t, err)
	require.Len(t, svc.requests(), 1)
	assert.Equal(t, "from stdin", svc.requests()[0].UserPrompt)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := &fakeService{reply: "ok"}
	setupEnv(t, svc)

	_, _, err := execute(t, "   ", "ask")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Empty(t, svc.requests())
}

func TestAsk_ServiceErrorKeepsMarker(t *testing.T) {
	setupEnv(t, &fakeService{status: http.StatusInternalServerError, detail: "boom"})

	out, _, err := execute(t, "", "ask", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitGeneralError, GetExitCode(err))
	assert.Contains(t, out, strings.TrimSpace(backend.ErrorMarker))

	// The marker is part of the saved reply.
	out, _, err = execute(t, "", "chats", "export")
	require.NoError(t, err)
	var chat model.Chat
	require.NoError(t, json.Unmarshal([]byte(out), &chat))
	last, ok := chat.LastMessage()
	require.True(t, ok)
	assert.Equal(t, model.StatusSuccess, last.Status)
	assert.True(t, strings.HasSuffix(last.Content, backend.ErrorMarker))
}

// =============================================================================
// CHATS
// =============================================================================

func TestChats_RenameUseDelete(t *testing.T) {
	setupEnv(t, &fakeService{reply: "ok"})

	_, _, err := execute(t, "", "ask", "alpha")
	require.NoError(t, err)
	_, _, err = execute(t, "", "ask", "--new", "beta")
	require.NoError(t, err)

	_, _, err = execute(t, "", "chats", "rename", "2", "Renamed", "alpha")
	require.NoError(t, err)
	_, _, err = execute(t, "", "chats", "use", "2")
	require.NoError(t, err)

	out, _, err := execute(t, "", "chats", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "*"))
	assert.Contains(t, lines[1], "Renamed alpha")

	_, _, err = execute(t, "", "chats", "delete", "2")
	require.NoError(t, err)
	_, _, err = execute(t, "", "chats", "show")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf, "deleting the active chat leaves none active")

	_, _, err = execute(t, "", "chats", "clear")
	require.ErrorAs(t, err, new(*ValidationError))
	_, _, err = execute(t, "", "chats", "clear", "--yes")
	require.NoError(t, err)
	out, _, _ = execute(t, "", "chats", "list")
	assert.Contains(t, out, "No chats yet.")
}

func TestChats_ExportMarkdown(t *testing.T) {
	setupEnv(t, &fakeService{reply: "**bold** answer"})

	_, _, err := execute(t, "", "ask", "question")
	require.NoError(t, err)
	out, _, err := execute(t, "", "chats", "export", "--format", "md")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "---\ntitle: question\n"))
	assert.Contains(t, out, "\n# question\n")
	assert.Contains(t, out, "### You")
	assert.Contains(t, out, "**bold** answer")
}

func TestChats_ExportHTMLToFile(t *testing.T) {
	setupEnv(t, &fakeService{reply: "**bold**\n\n<script>x</script>"})

	_, _, err := execute(t, "", "ask", "question")
	require.NoError(t, err)
	dir := t.TempDir()
	out, _, err := execute(t, "", "chats", "export", "-f", "html", "-o", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<strong>bold</strong>")
	assert.NotContains(t, string(data), "<script>")
}

func TestChats_ExportUnknownFormat(t *testing.T) {
	setupEnv(t, &fakeService{reply: "ok"})

	_, _, err := execute(t, "", "chats", "export", "-f", "pdf")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestChats_Import(t *testing.T) {
	svc := &fakeService{reply: "ok"}
	setupEnv(t, svc)

	_, _, err := execute(t, "", "ask", "source question")
	require.NoError(t, err)
	_, _, err = execute(t, "", "ask", "--new", "target question")
	require.NoError(t, err)

	out, _, err := execute(t, "", "chats", "import", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 messages")

	_, _, err = execute(t, "", "chats", "import", "2")
	assert.ErrorIs(t, err, chatstore.ErrImported)

	_, _, err = execute(t, "", "ask", "follow up")
	require.NoError(t, err)
	reqs := svc.requests()
	history := reqs[len(reqs)-1].ChatHistory
	require.NotEmpty(t, history)
	assert.Equal(t, "source question", history[0].Content, "imported turns come first")
}

func TestResolveChat(t *testing.T) {
	chats := []model.Chat{
		{ID: "abc12345-0000"},
		{ID: "abd99999-0000"},
		{ID: "ffff0000-1111"},
	}
	tests := []struct {
		ref     string
		want    string
		wantErr any
	}{
		{ref: "abc12345-0000", want: "abc12345-0000"},
		{ref: "2", want: "abd99999-0000"},
		{ref: "#3", want: "ffff0000-1111"},
		{ref: "ff", want: "ffff0000-1111"},
		{ref: "ab", wantErr: new(*ValidationError)},
		{ref: "zz", wantErr: new(*NotFoundError)},
		{ref: "9", wantErr: new(*NotFoundError)},
		{ref: " ", wantErr: new(*ValidationError)},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveChat(chats, tt.ref)
			if tt.wantErr != nil {
				require.ErrorAs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// DOCS
// =============================================================================

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDocs_Summarize(t *testing.T) {
	svc := &fakeService{}
	setupEnv(t, svc)

	out, _, err := execute(t, "", "docs", "summarize", writeDoc(t, "contract.txt", "terms"))
	require.NoError(t, err)
	assert.Equal(t, "Summary of contract.txt\n", out)
	assert.Equal(t, []string{"/api/v1/summarize_doc"}, svc.uploadPaths())
}

func TestDocs_Compare(t *testing.T) {
	svc := &fakeService{}
	setupEnv(t, svc)

	out, _, err := execute(t, "", "docs", "compare",
		writeDoc(t, "v1.txt", "one"), writeDoc(t, "v2.txt", "two"))
	require.NoError(t, err)
	assert.Equal(t, "Clause 4 changed\n", out)
}

func TestDocs_CompareNeedsTwoWithoutRequest(t *testing.T) {
	svc := &fakeService{}
	setupEnv(t, svc)

	_, errOut, err := execute(t, "", "docs", "compare", writeDoc(t, "v1.txt", "one"))
	require.Error(t, err)
	assert.Contains(t, errOut, "Please select two files to compare.")
	assert.Empty(t, svc.uploadPaths())

	var reported *ReportedError
	assert.ErrorAs(t, err, &reported)
	var buf bytes.Buffer
	DisplayError(&buf, err)
	assert.Empty(t, buf.String(), "reported errors are not printed twice")
}

func TestDocs_ErrorPanel(t *testing.T) {
	setupEnv(t, &fakeService{status: http.StatusUnprocessableEntity, detail: "unsupported file"})

	out, errOut, err := execute(t, "", "docs", "summarize", writeDoc(t, "x.bin", "\x00\x01"))
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Document operation failed")
	assert.Contains(t, errOut, "HTTP error! status: 422, message: unsupported file")
}

func TestDocs_OCRPrintsJSON(t *testing.T) {
	setupEnv(t, &fakeService{})

	out, _, err := execute(t, "", "docs", "run", "ocr", writeDoc(t, "scan.png", "png"))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "نص مستخرج", got["text"])
}

func TestDocs_MissingFile(t *testing.T) {
	setupEnv(t, &fakeService{})

	_, _, err := execute(t, "", "docs", "summarize", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

// =============================================================================
// PROMPTS, ONBOARDING, CONFIG
// =============================================================================

func TestPrompts(t *testing.T) {
	setupEnv(t, &fakeService{})

	_, _, err := execute(t, "", "prompts", "add", "Draft", "a", "tenancy", "notice")
	require.NoError(t, err)

	out, _, err := execute(t, "", "prompts", "search", "TENANCY")
	require.NoError(t, err)
	assert.Contains(t, out, "Custom")
	assert.Contains(t, out, "Draft a tenancy notice")

	_, _, err = execute(t, "", "prompts", "remove", "Draft a tenancy notice")
	require.NoError(t, err)
	_, _, err = execute(t, "", "prompts", "remove", "Draft a tenancy notice")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	out, _, err = execute(t, "", "prompts", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Custom")
}

func TestOnboarding(t *testing.T) {
	setupEnv(t, &fakeService{})

	out, _, err := execute(t, "", "onboarding", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")

	_, _, err = execute(t, "", "onboarding", "complete")
	require.NoError(t, err)
	out, _, _ = execute(t, "", "onboarding", "status")
	assert.Contains(t, out, "complete")

	_, _, err = execute(t, "", "onboarding", "reset")
	require.NoError(t, err)
	out, _, _ = execute(t, "", "onboarding", "status")
	assert.Contains(t, out, "pending")
}

func TestConfig_InitSetGet(t *testing.T) {
	home := setupEnv(t, &fakeService{})

	out, _, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	path := filepath.Join(home, ".thuraya", "config.toml")
	assert.Contains(t, out, path)

	_, _, err = execute(t, "", "config", "init")
	require.ErrorAs(t, err, new(*ValidationError))

	_, _, err = execute(t, "", "config", "set", "ui.width", "120")
	require.NoError(t, err)
	out, _, err = execute(t, "", "config", "get", "ui.width")
	require.NoError(t, err)
	assert.Equal(t, "120\n", out)

	_, _, err = execute(t, "", "config", "set", "ui.width", "5")
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	// Environment overrides are not written back.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), os.Getenv("THURAYA_API_URL"))
}

func TestConfig_Show(t *testing.T) {
	setupEnv(t, &fakeService{})

	out, _, err := execute(t, "", "config", "show")
	require.NoError(t, err)
	for _, key := range config.GetAllKeys() {
		assert.Contains(t, out, key)
	}

	out, _, err = execute(t, "", "config", "show", "--json")
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, os.Getenv("THURAYA_API_URL"), cfg.API.BaseURL)
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	setupEnv(t, &fakeService{})

	out, _, err := execute(t, "", "--storage", "memory", "--mode", "r", "config", "get", "chat.default_mode")
	require.NoError(t, err)
	assert.Equal(t, "Research\n", out)

	_, _, err = execute(t, "", "--mode", "lawyer", "config", "show")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.New("x"), ExitGeneralError},
		{&ValidationError{Field: "f"}, ExitUsageError},
		{fmt.Errorf("wrapped: %w", &NotFoundError{Resource: "chat"}), ExitNotFoundError},
		{config.ValidateErrors{{Field: "ui.width"}}, ExitConfigError},
		{backend.ErrTimeout, ExitTimeoutError},
		{&backend.ClientError{Type: backend.ErrTypeConnection}, ExitNetworkError},
		{&ReportedError{Err: backend.ErrCompareNeedsTwo}, ExitUsageError},
		{chatstore.ErrEmptyMessage, ExitUsageError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetExitCode(tt.err), "%v", tt.err)
	}
}

// =============================================================================
// DOCTOR
// =============================================================================

func TestDoctor_Healthy(t *testing.T) {
	setupEnv(t, &fakeService{reply: "ok"})
	_, _, err := execute(t, "", "ask", "hello")
	require.NoError(t, err)

	out, _, err := execute(t, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Config valid (using defaults)")
	assert.Contains(t, out, "file storage writable")
	assert.Contains(t, out, "1 saved chats")
	assert.Contains(t, out, "Service reachable")
	assert.NotContains(t, out, "[FAIL]")
}

func TestDoctor_ServiceDownJSON(t *testing.T) {
	setupEnv(t, &fakeService{reply: "ok"})
	t.Setenv("THURAYA_API_URL", "http://127.0.0.1:1/api/v1")

	out, _, err := execute(t, "", "doctor", "--json")
	require.Error(t, err)
	assert.Equal(t, ExitGeneralError, GetExitCode(err))

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Checks []struct {
				Name   string `json:"name"`
				Status string `json:"status"`
			} `json:"checks"`
			Summary DoctorSummary `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Summary.Failed)
	for _, c := range resp.Data.Checks {
		if c.Name == "Service" {
			assert.Equal(t, "fail", c.Status)
		}
	}
}
