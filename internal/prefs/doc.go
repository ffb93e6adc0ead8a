// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prefs holds the small persisted user records: whether onboarding
// has been completed, and the prompts the user saved. It also carries the
// built-in prompt catalogue.
package prefs
