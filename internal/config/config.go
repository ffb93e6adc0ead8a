// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/jeranaias/thuraya-cli/internal/model"
	"github.com/jeranaias/thuraya-cli/internal/storage"
	"github.com/jeranaias/thuraya-cli/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete thuraya configuration.
type Config struct {
	API     APIConfig     `toml:"api" json:"api"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Chat    ChatConfig    `toml:"chat" json:"chat"`
	Log     LogConfig     `toml:"log" json:"log"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// APIConfig configures the assistant service client.
type APIConfig struct {
	// BaseURL is the API root including the version prefix.
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds document requests.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// StreamTimeoutSecs bounds the wait for the first response byte of a chat.
	StreamTimeoutSecs int `toml:"stream_timeout_secs" json:"stream_timeout_secs"`
	// TypingSpeed is the server-side delay per character, in seconds.
	TypingSpeed float64 `toml:"typing_speed" json:"typing_speed"`
}

// StorageConfig selects where chats and preferences are kept.
type StorageConfig struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string `toml:"backend" json:"backend"`
	// Dir holds file records (default ~/.thuraya/data).
	Dir string `toml:"dir" json:"dir"`
	// SQLitePath is the database for the sqlite backend
	// (default ~/.thuraya/thuraya.db).
	SQLitePath string `toml:"sqlite_path" json:"sqlite_path"`
	// Watch reloads chats written by other sessions (file backend only).
	Watch bool `toml:"watch" json:"watch"`
}

// ChatConfig holds conversation defaults.
type ChatConfig struct {
	// DefaultMode is "Consultation" or "Research".
	DefaultMode string `toml:"default_mode" json:"default_mode"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a logrus level name.
	Level string `toml:"level" json:"level"`
	// Format is "text" or "json".
	Format string `toml:"format" json:"format"`
}

// UIConfig configures terminal output.
type UIConfig struct {
	// Markdown renders completed replies with glamour when stdout is a TTY.
	Markdown bool `toml:"markdown" json:"markdown"`
	// Width is the word-wrap width for rendered markdown.
	Width int `toml:"width" json:"width"`
}

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8000/api/v1",
			TimeoutSecs:       120,
			StreamTimeoutSecs: 30,
			TypingSpeed:       0.001,
		},
		Storage: StorageConfig{
			Backend: storage.KindFile,
			Watch:   true,
		},
		Chat: ChatConfig{
			DefaultMode: string(model.ModeConsultation),
		},
		Log: LogConfig{
			Level:  "warning",
			Format: "text",
		},
		UI: UIConfig{
			Markdown: true,
			Width:    80,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the thuraya configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".thuraya"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the path of the chat REPL's line history.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions narrows a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
//
// When a config file exists but cannot be parsed, the defaults are returned
// together with the parse error.
func Load() (*Config, error) {
	var loadErr error

	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			cfg, err := LoadFromPath(path)
			if err == nil {
				return cfg, nil
			}
			loadErr = err
		}
	}

	if loadErr == nil {
		if path, err := ConfigPathJSON(); err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				cfg, err := LoadFromPath(path)
				if err == nil {
					return cfg, nil
				}
				loadErr = err
			}
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("could not ensure secure permissions")
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	for _, key := range meta.Undecoded() {
		logrus.WithField("key", key.String()).Warn("unknown config key ignored")
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("could not ensure secure permissions")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file on top of the
// defaults, then applies environment overrides and validates.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills zero values that have no meaning of their own.
func (c *Config) SetDefaults() {
	d := Default()

	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.StreamTimeoutSecs == 0 {
		c.API.StreamTimeoutSecs = d.API.StreamTimeoutSecs
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Chat.DefaultMode == "" {
		c.Chat.DefaultMode = d.Chat.DefaultMode
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.UI.Width == 0 {
		c.UI.Width = d.UI.Width
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# thuraya configuration file\n")
	b.WriteString("# Generated by thuraya - edit with care\n")
	b.WriteString("\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: fmt.Sprintf("must be an http(s) URL, got %q", c.API.BaseURL)})
	}
	if c.API.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "api.timeout_secs", Message: "must not be negative"})
	}
	if c.API.StreamTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "api.stream_timeout_secs", Message: "must not be negative"})
	}
	if c.API.TypingSpeed < 0 {
		errs = append(errs, ValidationError{Field: "api.typing_speed", Message: "must not be negative"})
	}

	switch strings.ToLower(c.Storage.Backend) {
	case storage.KindFile, storage.KindSQLite, storage.KindMemory:
	default:
		errs = append(errs, ValidationError{Field: "storage.backend", Message: fmt.Sprintf("must be file, sqlite or memory, got %q", c.Storage.Backend)})
	}

	if _, err := model.ParseMode(c.Chat.DefaultMode); err != nil {
		errs = append(errs, ValidationError{Field: "chat.default_mode", Message: err.Error()})
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{Field: "log.level", Message: err.Error()})
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, ValidationError{Field: "log.format", Message: fmt.Sprintf("must be text or json, got %q", c.Log.Format)})
	}

	if c.UI.Width < 20 || c.UI.Width > 400 {
		errs = append(errs, ValidationError{Field: "ui.width", Message: "must be between 20 and 400"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - THURAYA_API_URL: overrides api.base_url
//   - THURAYA_STORAGE: overrides storage.backend
//   - THURAYA_DATA_DIR: overrides storage.dir
//   - THURAYA_MODE: overrides chat.default_mode
//   - THURAYA_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("THURAYA_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("THURAYA_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("THURAYA_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("THURAYA_MODE"); v != "" {
		c.Chat.DefaultMode = v
	}
	if v := os.Getenv("THURAYA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns api.timeout_secs as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// StreamTimeout returns api.stream_timeout_secs as a duration.
func (c *Config) StreamTimeout() time.Duration {
	return time.Duration(c.API.StreamTimeoutSecs) * time.Second
}

// Mode returns chat.default_mode, or Consultation when it does not parse.
func (c *Config) Mode() model.Mode {
	m, err := model.ParseMode(c.Chat.DefaultMode)
	if err != nil {
		return model.ModeConsultation
	}
	return m
}

// StorageOptions returns the options for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Kind:       strings.ToLower(c.Storage.Backend),
		Dir:        c.Storage.Dir,
		SQLitePath: c.Storage.SQLitePath,
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"api.base_url",
		"api.timeout_secs",
		"api.stream_timeout_secs",
		"api.typing_speed",
		"storage.backend",
		"storage.dir",
		"storage.sqlite_path",
		"storage.watch",
		"chat.default_mode",
		"log.level",
		"log.format",
		"ui.markdown",
		"ui.width",
	}
}

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.width").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Clone returns a copy of the configuration. Config holds only values, so
// a struct copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
