// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// DOCUMENTS
// =============================================================================

// Document is a named file to upload.
type Document struct {
	// Name is sent as the part's file name; the service uses its extension
	// to pick a parser.
	Name string
	// ContentType of the part (default application/octet-stream).
	ContentType string
	// Content is read once, when the request is built.
	Content io.Reader
}

// NewDocument wraps data as a document called name.
func NewDocument(name string, data []byte) *Document {
	return &Document{Name: name, Content: bytes.NewReader(data)}
}

// OpenDocument reads the file at path into a Document.
func OpenDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	doc := NewDocument(filepath.Base(path), data)
	doc.ContentType = contentTypeFor(doc.Name, data)
	return doc, nil
}

func contentTypeFor(name string, data []byte) string {
	switch filepath.Ext(name) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain; charset=utf-8"
	}
	return http.DetectContentType(data)
}

type part struct {
	field string
	doc   *Document
}

// =============================================================================
// DOCUMENT OPERATIONS
// =============================================================================

// Summarize uploads doc to /summarize_doc and returns the summary.
func (c *Client) Summarize(ctx context.Context, doc *Document) (string, error) {
	if doc == nil {
		return "", ErrNoDocument
	}
	var out SummaryResponse
	if err := c.upload(ctx, "/summarize_doc", &out, part{FieldFile, doc}); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Compare uploads two versions of a document to /compare_docs and returns
// the comparison. Both documents are required; nothing is sent otherwise.
func (c *Client) Compare(ctx context.Context, v1, v2 *Document) (string, error) {
	if v1 == nil || v2 == nil {
		return "", ErrCompareNeedsTwo
	}
	var out ComparisonResponse
	if err := c.upload(ctx, "/compare_docs", &out, part{FieldFileV1, v1}, part{FieldFileV2, v2}); err != nil {
		return "", err
	}
	return out.Comparison, nil
}

// ImageToText uploads img to /gradio_chat and returns the JSON answer as
// received.
func (c *Client) ImageToText(ctx context.Context, img *Document) (json.RawMessage, error) {
	if img == nil {
		return nil, ErrNoDocument
	}
	var out json.RawMessage
	if err := c.upload(ctx, "/gradio_chat", &out, part{FieldImage, img}); err != nil {
		return nil, err
	}
	return out, nil
}

// upload posts parts as multipart/form-data and decodes the JSON answer
// into out.
func (c *Client) upload(ctx context.Context, path string, out any, parts ...part) error {
	body, contentType, err := encodeParts(parts)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to encode upload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	log := logrus.WithFields(logrus.Fields{"path": path, "bytes": body.Len()})
	log.Debug("UPLOAD_REQUEST")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("UPLOAD_RESPONSE")

	if !isSuccess(resp.StatusCode) {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeParts(parts []part) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.field), quoteEscaper.Replace(p.doc.Name)))
		ct := p.doc.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		fw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if p.doc.Content != nil {
			if _, err := io.Copy(fw, p.doc.Content); err != nil {
				return nil, "", fmt.Errorf("read %s: %w", p.doc.Name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
