// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type ErrorType
	// Status is the HTTP status code for ErrTypeHTTPStatus, 0 otherwise.
	Status  int
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeHTTPStatus
	ErrTypeInvalidResponse
	ErrTypeValidation
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeHTTPStatus:
		return "http_status"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCompareNeedsTwo = &ClientError{Type: ErrTypeValidation, Message: "Please select two files to compare."}
	ErrNoDocument      = &ClientError{Type: ErrTypeValidation, Message: "Please select a file."}
)

// unknownDetail is used when an error body carries no usable detail.
const unknownDetail = "Unknown error"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// statusError builds the error for a non-2xx response from its
// {"detail": ...} body.
func statusError(resp *http.Response) *ClientError {
	detail := unknownDetail

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if d := detailText(payload.Detail); d != "" {
			detail = d
		}
	}

	return &ClientError{
		Type:    ErrTypeHTTPStatus,
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP error! status: %d, message: %s", resp.StatusCode, detail),
	}
}

// detailText renders a detail value as text. Validation failures carry a
// list of objects rather than a string; those are passed on as compact JSON.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}
