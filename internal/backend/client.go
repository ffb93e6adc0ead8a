// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Defaults used when a ClientConfig field is zero.
const (
	DefaultBaseURL       = "http://localhost:8000/api/v1"
	DefaultTimeout       = 120 * time.Second
	DefaultStreamTimeout = 30 * time.Second
	DefaultTypingSpeed   = 0.001
)

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the API root including its version prefix
	// (default: http://localhost:8000/api/v1)
	BaseURL string

	// Timeout for document requests, which wait for the whole answer
	// (default: 120s)
	Timeout time.Duration

	// StreamTimeout bounds the wait for the response headers of /chat. The
	// body itself streams for as long as the server keeps writing.
	// (default: 30s)
	StreamTimeout time.Duration

	// TypingSpeed is sent as typing_speed, the server's per-character delay
	// in seconds (default: 0.001)
	TypingSpeed float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		StreamTimeout: DefaultStreamTimeout,
		TypingSpeed:   DefaultTypingSpeed,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the legal assistant service. It is safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient()
//	client.StreamResponse(ctx, model.ModeConsultation, "hello", chat, func(s string) {
//	    fmt.Print(s)
//	})
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with a custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.StreamTimeout == 0 {
		config.StreamTimeout = DefaultStreamTimeout
	}
	if config.TypingSpeed == 0 {
		config.TypingSpeed = DefaultTypingSpeed
	}

	// No overall timeout for streaming: the body may legitimately take
	// minutes. Only the wait for headers is bounded.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = config.StreamTimeout

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		streamClient: &http.Client{
			Transport: transport,
		},
	}
}

// Config returns the effective configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

func (c *Client) endpoint(path string) string {
	return c.config.BaseURL + path
}

// Ping reports whether the service answers HTTP at all and how long the
// round trip took. Any status code counts as reachable.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.StreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/"), nil)
	if err != nil {
		return 0, &ClientError{Type: ErrTypeValidation, Message: "invalid base URL", Cause: err}
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, transportError(err)
	}
	resp.Body.Close()
	return time.Since(start), nil
}

// transportError classifies an error returned by http.Client.Do.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return ErrTimeout
	}
	return &ClientError{Type: ErrTypeConnection, Message: "failed to reach backend", Cause: err}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
