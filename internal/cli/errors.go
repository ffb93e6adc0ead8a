// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for thuraya commands.
//
// Commands always return errors and never print-and-return-nil. Execute
// displays the error once and maps it to an exit code.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/thuraya-cli/internal/backend"
	"github.com/jeranaias/thuraya-cli/internal/chatstore"
	"github.com/jeranaias/thuraya-cli/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the service could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a chat or file was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // e.g. "docs"
	Action  string // e.g. "compare"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // e.g. "chat"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ReportedError wraps an error the command has already shown to the user.
// It only contributes the exit code.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w in the standard format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var reported *ReportedError
	if errors.As(err, &reported) {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}
	if errors.Is(err, chatstore.ErrEmptyMessage) {
		return ExitUsageError
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitNotFoundError
	}

	var cfgErrs config.ValidateErrors
	if errors.As(err, &cfgErrs) {
		return ExitConfigError
	}

	if errors.Is(err, backend.ErrTimeout) {
		return ExitTimeoutError
	}
	var clientErr *backend.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case backend.ErrTypeConnection:
			return ExitNetworkError
		case backend.ErrTypeTimeout:
			return ExitTimeoutError
		case backend.ErrTypeValidation:
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
