// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation for destructive commands.
//
// One pattern for every command that deletes chats:
//   1. If --yes is present, proceed without prompting
//   2. If stdin is not a terminal, fail with a usage error (can't prompt)
//   3. Otherwise, ask and proceed only on "y" or "yes"

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmationOptions describes where and whether to ask.
type ConfirmationOptions struct {
	// Yes is set when --yes was passed.
	Yes bool
	// Command is shown in the error when a prompt is impossible.
	Command string

	In  io.Reader
	Out io.Writer
}

// RequireConfirmation asks the user to confirm action.
//
// It returns true when confirmed and false when the user declined. The error
// is non-nil only when confirmation is needed but no prompt can be shown.
func RequireConfirmation(action string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if !isTerminalReader(opts.In) {
		return false, &ValidationError{
			Field:   "confirmation",
			Reason:  "cannot prompt without a terminal, pass --yes",
			Example: opts.Command + " --yes",
		}
	}
	return PromptYesNo(opts.In, opts.Out, action+"?"), nil
}

// PromptYesNo prints question and reads one line of answer from in.
// Anything other than y or yes is a no.
func PromptYesNo(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return false
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes"
}

// ShowCancellationMessage displays a standard cancellation message.
func ShowCancellationMessage(w io.Writer) {
	fmt.Fprintln(w, DimStyle.Render("Cancelled."))
}
