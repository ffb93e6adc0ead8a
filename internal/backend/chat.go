// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/thuraya-cli/internal/model"
)

// ErrorMarker is appended to a reply when streaming fails.
const ErrorMarker = "\n\n**خطأ:** تعذر توليد الرد. يرجى المحاولة مرة أخرى."

// =============================================================================
// STREAMING CHAT
// =============================================================================

// NewChatRequest builds the /chat body for a reply to latest in chat. The
// history is the chat's imported messages followed by its transcript.
func (c *Client) NewChatRequest(mode model.Mode, latest string, chat model.Chat) ChatRequest {
	return ChatRequest{
		UserPrompt:  latest,
		Mode:        mode.WireMode(),
		ChatHistory: chat.Context(),
		TypingSpeed: c.config.TypingSpeed,
	}
}

// ChatStream sends a chat request and calls onChunk for each character of
// the reply, synchronously and in arrival order. It returns when the body
// ends or an error occurs.
func (c *Client) ChatStream(ctx context.Context, reqBody ChatRequest, onChunk func(string)) error {
	if reqBody.ChatHistory == nil {
		reqBody.ChatHistory = []model.Turn{}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/chat"), bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")

	start := time.Now()
	log := logrus.WithFields(logrus.Fields{"mode": reqBody.Mode, "history": len(reqBody.ChatHistory)})
	log.Debug("CHAT_REQUEST")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError(resp)
	}

	reader := NewStreamReader(resp.Body, resp.Header.Get("Content-Type"))
	err = reader.Process(ctx, onChunk)

	log.WithFields(logrus.Fields{
		"charset": reader.Charset(),
		"chars":   reader.Runes(),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("CHAT_RESPONSE")

	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
	}
	return nil
}

// StreamResponse streams a reply to latest in chat. It never fails: any
// error ends the reply with ErrorMarker, after whatever partial content
// already arrived.
func (c *Client) StreamResponse(ctx context.Context, mode model.Mode, latest string, chat model.Chat, onChunk func(string)) {
	err := c.ChatStream(ctx, c.NewChatRequest(mode, latest, chat), onChunk)
	if err != nil {
		logrus.WithError(err).WithField("chat", chat.ID).Warn("chat stream failed")
		onChunk(ErrorMarker)
	}
}
