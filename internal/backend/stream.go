// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bufio"
	"context"
	"io"
	"mime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader decodes a raw text body into single characters.
//
// The body is run through the decoder for its declared charset and read a
// rune at a time, so a multi-byte character split across network reads is
// delivered once, whole.
type StreamReader struct {
	reader  *bufio.Reader
	charset string
	runes   int
}

// NewStreamReader creates a stream reader for a body with the given
// Content-Type header. A missing or unknown charset is read as UTF-8.
func NewStreamReader(r io.Reader, contentType string) *StreamReader {
	name, enc := charsetFor(contentType)
	return &StreamReader{
		reader:  bufio.NewReader(transform.NewReader(r, enc.NewDecoder())),
		charset: name,
	}
}

// Charset returns the name of the charset the body is decoded with.
func (s *StreamReader) Charset() string {
	return s.charset
}

// Runes returns how many characters have been delivered.
func (s *StreamReader) Runes() int {
	return s.runes
}

// Process reads the stream and calls fn once per character, in order.
// fn runs on the reading goroutine, so the next character is not read until
// it returns. Process returns nil at end of stream.
func (s *StreamReader) Process(ctx context.Context, fn func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r, _, err := s.reader.ReadRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		s.runes++
		fn(string(r))
	}
}

// charsetFor resolves the charset parameter of a Content-Type value.
func charsetFor(contentType string) (string, encoding.Encoding) {
	const fallback = "utf-8"

	if contentType == "" {
		return fallback, unicode.UTF8
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fallback, unicode.UTF8
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" {
		return fallback, unicode.UTF8
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		logrus.WithField("charset", label).Debug("unknown response charset, reading as utf-8")
		return fallback, unicode.UTF8
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = strings.ToLower(label)
	}
	return name, enc
}
