// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the thuraya packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writes (temp file, fsync, rename)
//   - TruncateRunes / TruncateRunesNoEllipsis: UTF-8 safe truncation
//   - FitWidth: display-width aware truncation and padding for table columns
//   - SingleLine: collapse newlines for one-line previews
//
// # Usage
//
//	title := util.TruncateRunesNoEllipsis(firstMessage, 50)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
