// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jeranaias/thuraya-cli/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports chats to a standalone HTML page with embedded CSS.
// Message bodies are converted from markdown and then sanitized.
type HTMLExporter struct {
	options  *Options
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options:  opts,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   bluemonday.UGCPolicy(),
	}
}

// Export converts a chat to HTML.
func (e *HTMLExporter) Export(chat model.Chat) ([]byte, error) {
	if len(chat.Messages) == 0 && len(chat.ImportedChat) == 0 {
		return nil, ErrEmptyChat
	}

	theme := e.options.Theme
	if theme != "dark" {
		theme = "light"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html>\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(chat.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"thuraya\">\n")
	sb.WriteString(htmlCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(chat))
	}

	if chat.HasImport() {
		sb.WriteString("        <section class=\"imported\">\n")
		sb.WriteString("            <h2>Imported Conversation</h2>\n")
		for _, msg := range chat.ImportedChat {
			if err := e.renderMessage(&sb, msg); err != nil {
				return nil, err
			}
		}
		sb.WriteString("        </section>\n")
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range chat.Messages {
		if err := e.renderMessage(&sb, msg); err != nil {
			return nil, err
		}
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>thuraya</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(chat model.Chat) string {
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1 dir=\"auto\">%s</h1>\n", html.EscapeString(chat.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	if first := firstTimestamp(chat); !first.IsZero() {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Started:</strong> %s</span>\n", formatTimestamp(first)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(chat.Messages)))
	if chat.HasImport() {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Imported:</strong> %d</span>\n", len(chat.ImportedChat)))
	}
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

func (e *HTMLExporter) renderMessage(sb *strings.Builder, msg model.Message) error {
	class := "assistant"
	if msg.IsUser {
		class = "user"
	}
	if msg.Status == model.StatusError {
		class += " failed"
	}

	body, err := e.renderContent(msg.Content)
	if err != nil {
		return fmt.Errorf("render message %s: %w", msg.ID, err)
	}

	sb.WriteString(fmt.Sprintf("            <article class=\"message %s\">\n", class))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role\">%s</span>\n", html.EscapeString(roleLabel(msg))))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\" dir=\"auto\">\n")
	sb.WriteString(body)
	sb.WriteString("                </div>\n")
	sb.WriteString("            </article>\n")
	return nil
}

// renderContent converts markdown to sanitized HTML.
func (e *HTMLExporter) renderContent(content string) (string, error) {
	var buf bytes.Buffer
	if err := e.markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return string(e.policy.SanitizeBytes(buf.Bytes())), nil
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const htmlCSS = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Tahoma, "Noto Naskh Arabic", sans-serif; line-height: 1.7; }
        .light-theme { background: #f7f7f8; color: #1f2328; }
        .dark-theme { background: #0d1117; color: #e6edf3; }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header { margin-bottom: 2rem; }
        .header h1 { font-size: 1.6rem; margin-bottom: 0.5rem; }
        .metadata { display: flex; gap: 1.5rem; flex-wrap: wrap; font-size: 0.85rem; opacity: 0.75; }
        .imported { border-left: 3px solid #8b949e; padding-left: 1rem; margin-bottom: 2rem; opacity: 0.85; }
        .imported h2 { font-size: 1.1rem; margin-bottom: 1rem; }
        .message { border-radius: 8px; padding: 1rem 1.25rem; margin-bottom: 1rem; }
        .light-theme .message.user { background: #ddf4ff; }
        .light-theme .message.assistant { background: #ffffff; border: 1px solid #d0d7de; }
        .dark-theme .message.user { background: #1f3a5f; }
        .dark-theme .message.assistant { background: #161b22; border: 1px solid #30363d; }
        .message.failed { border-color: #cf222e !important; }
        .message-header { display: flex; justify-content: space-between; font-size: 0.8rem; margin-bottom: 0.5rem; opacity: 0.8; }
        .role { font-weight: 600; }
        .message-content p { margin-bottom: 0.75rem; }
        .message-content ul, .message-content ol { margin: 0 1.5rem 0.75rem; }
        .message-content pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; background: rgba(127,127,127,0.12); }
        .message-content table { border-collapse: collapse; margin-bottom: 0.75rem; }
        .message-content th, .message-content td { border: 1px solid rgba(127,127,127,0.4); padding: 0.25rem 0.5rem; }
        .footer { margin-top: 2rem; font-size: 0.8rem; opacity: 0.6; text-align: center; }
    </style>
`
