// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatstore

// User-facing text written into transcripts.
const (
	// FailureText replaces the content of a response that failed.
	FailureText = "Failed to generate response. Please try again."

	// ImportNotice is appended to a chat that received imported messages.
	ImportNotice = "**تم استيراد المحادثة بنجاح**\n\nتم إضافة السياق من المحادثة السابقة. يمكنك الآن المحادثة مع الاحتفاظ بالسياق المستورد."

	// ImportSessionNotice opens the chat created for an import when no chat
	// was active.
	ImportSessionNotice = "**تم بدء جلسة جديدة بمحادثة مستوردة**"

	// ImportedTitlePrefix prefixes the title of a chat created for an import.
	ImportedTitlePrefix = "Imported: "
)
