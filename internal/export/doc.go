// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes saved chats as JSON, Markdown or HTML.
//
// # Key Types
//
//   - Exporter: converts a chat to one format
//   - Options: metadata, timestamps and HTML theme
//
// # Supported Formats
//
//   - JSON: the chat exactly as it is stored, re-importable
//   - Markdown: human-readable, with a YAML front matter block
//   - HTML: a standalone page; message bodies are rendered from markdown
//     and sanitized
//
// # Usage
//
//	exp, err := export.ForFormat("md", nil)
//	data, err := exp.Export(chat)
//
// Or straight to a file in opts.OutputDir:
//
//	path, err := export.ExportToFile(chat, exp, opts)
package export
