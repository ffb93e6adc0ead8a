// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/thuraya-cli/internal/model"
	"github.com/jeranaias/thuraya-cli/internal/storage"
)

// withHome points the config directory at a temp dir and clears overrides.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"THURAYA_API_URL", "THURAYA_STORAGE", "THURAYA_DATA_DIR", "THURAYA_MODE", "THURAYA_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return home
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != "http://localhost:8000/api/v1" {
		t.Errorf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.TypingSpeed != 0.001 {
		t.Errorf("unexpected typing speed %v", cfg.API.TypingSpeed)
	}
	if cfg.Storage.Backend != storage.KindFile {
		t.Errorf("unexpected backend %q", cfg.Storage.Backend)
	}
	if cfg.Mode() != model.ModeConsultation {
		t.Errorf("unexpected mode %q", cfg.Mode())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"valid", func(c *Config) {}, "", false},
		{"bad url", func(c *Config) { c.API.BaseURL = "localhost:8000" }, "api.base_url", true},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://host/api" }, "api.base_url", true},
		{"negative timeout", func(c *Config) { c.API.TimeoutSecs = -1 }, "api.timeout_secs", true},
		{"negative typing", func(c *Config) { c.API.TypingSpeed = -0.5 }, "api.typing_speed", true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend", true},
		{"sqlite backend", func(c *Config) { c.Storage.Backend = "SQLite" }, "", false},
		{"bad mode", func(c *Config) { c.Chat.DefaultMode = "casual" }, "chat.default_mode", true},
		{"wire mode", func(c *Config) { c.Chat.DefaultMode = "research" }, "", false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level", true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format", true},
		{"narrow ui", func(c *Config) { c.UI.Width = 5 }, "ui.width", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidateErrors, got %T", err)
			}
			if verrs[0].Field != tt.field {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.field)
			}
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = ""
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	var verrs ValidateErrors
	if !errors.As(err, &verrs) || len(verrs) != 2 {
		t.Fatalf("expected two errors, got %v", err)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("errors should be joined: %q", err.Error())
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	withHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("expected default base url, got %q", cfg.API.BaseURL)
	}
}

func TestLoad_TOMLWithEnvOverride(t *testing.T) {
	home := withHome(t)
	dir := filepath.Join(home, ".thuraya")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	content := `
[api]
base_url = "https://legal.example.com/api/v1"
timeout_secs = 60

[chat]
default_mode = "Research"

[ui]
width = 100
`
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("THURAYA_STORAGE", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://legal.example.com/api/v1" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
	if cfg.StreamTimeout() != 30*time.Second {
		t.Errorf("stream timeout should keep its default, got %v", cfg.StreamTimeout())
	}
	if cfg.Mode() != model.ModeResearch {
		t.Errorf("mode = %q", cfg.Mode())
	}
	if cfg.UI.Width != 100 {
		t.Errorf("width = %d", cfg.UI.Width)
	}
	if !cfg.UI.Markdown {
		t.Error("markdown should keep its default")
	}
	if cfg.StorageOptions().Kind != storage.KindSQLite {
		t.Errorf("storage kind = %q", cfg.StorageOptions().Kind)
	}

	if os.PathSeparator == '/' {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("config permissions = %o, want 0600", info.Mode().Perm())
		}
	}
}

func TestLoad_JSONFallback(t *testing.T) {
	home := withHome(t)
	dir := filepath.Join(home, ".thuraya")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"log":{"level":"debug"}}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
}

func TestLoad_BrokenFileReturnsDefaultsAndError(t *testing.T) {
	home := withHome(t)
	dir := filepath.Join(home, ".thuraya")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api\nbase_url="), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err == nil {
		t.Fatal("expected a load error")
	}
	if cfg == nil || cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("expected defaults alongside the error, got %+v", cfg)
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	withHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "http://10.0.0.5:8000/api/v1"
	cfg.Storage.Backend = storage.KindSQLite
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# thuraya configuration file") {
		t.Error("missing header comment")
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("api.base_url", "http://example.com/api/v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Set("ui.width", "120"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Set("api.typing_speed", "0.01"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Set("ui.markdown", "no"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if v, _ := cfg.Get("api.base_url"); v != "http://example.com/api/v1" {
		t.Errorf("base_url = %v", v)
	}
	if v, _ := cfg.Get("ui.width"); v != 120 {
		t.Errorf("width = %v", v)
	}
	if cfg.API.TypingSpeed != 0.01 {
		t.Errorf("typing_speed = %v", cfg.API.TypingSpeed)
	}
	if cfg.UI.Markdown {
		t.Error("markdown should be false")
	}

	if err := cfg.Set("ui.width", "wide"); err == nil {
		t.Error("expected error for non-integer width")
	}
	if _, err := cfg.Get("api"); err == nil {
		t.Error("expected error for a section key")
	}
	if _, err := cfg.Get("nope.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestGetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.API.BaseURL = "http://other/api"
	if cfg.API.BaseURL == clone.API.BaseURL {
		t.Error("clone shares state with original")
	}
}
