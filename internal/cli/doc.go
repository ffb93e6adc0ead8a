// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the terminal front end of thuraya.
//
// It wires the configuration, the storage backend, the chat store, the
// document store and the service client together and exposes them as a
// cobra command tree.
//
// # Key Types
//
//   - App: the wired components shared by every command
//   - ChatCLI: line editing and input history for the interactive session
//
// # Usage
//
//	os.Exit(cli.Execute())
//
// # Commands Overview
//
//   - ask: one question, streamed to stdout
//   - chat: interactive session with slash commands
//   - chats: list, show, switch, rename, delete and export saved chats
//   - docs: summarize, compare or OCR documents
//   - prompts: browse and manage the prompt catalog
//   - onboarding: show or change the onboarding flag
//   - config: inspect and edit ~/.thuraya/config.toml
package cli
