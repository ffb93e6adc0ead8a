// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "github.com/jeranaias/thuraya-cli/internal/model"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	UserPrompt  string       `json:"userPrompt"`
	Mode        string       `json:"mode"`
	ChatHistory []model.Turn `json:"chatHistory"`
	TypingSpeed float64      `json:"typing_speed"`
}

// SummaryResponse is the body of a successful POST /summarize_doc.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// ComparisonResponse is the body of a successful POST /compare_docs.
type ComparisonResponse struct {
	Comparison string `json:"comparison"`
}

// Multipart field names.
const (
	FieldFile   = "file"
	FieldFileV1 = "file_v1"
	FieldFileV2 = "file_v2"
	FieldImage  = "image"
)
