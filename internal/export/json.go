// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/thuraya-cli/internal/model"
)

// JSONExporter exports chats in their stored JSON shape.
// Options are ignored; the output always holds the complete chat so that it
// can be read back.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(*Options) *JSONExporter {
	return &JSONExporter{}
}

// Export converts a chat to indented JSON. Empty chats are allowed.
func (e *JSONExporter) Export(chat model.Chat) ([]byte, error) {
	data, err := json.MarshalIndent(chat, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
