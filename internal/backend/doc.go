// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the legal assistant service.
//
// The service exposes one streaming endpoint (/chat), which answers with a
// raw text body, and three document endpoints that take multipart uploads
// and answer with JSON:
//
//	POST /chat           {userPrompt, mode, chatHistory, typing_speed} -> text stream
//	POST /summarize_doc  file                                          -> {summary}
//	POST /compare_docs   file_v1, file_v2                              -> {comparison}
//	POST /gradio_chat    image                                         -> any JSON
//
// Non-2xx answers are reported as ClientError with the message
// "HTTP error! status: <code>, message: <detail>".
package backend
