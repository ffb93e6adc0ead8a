// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Markdown rendering and chat listings.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"github.com/sirupsen/logrus"

	"github.com/jeranaias/thuraya-cli/internal/model"
	"github.com/jeranaias/thuraya-cli/internal/util"
)

// Renderer prints assistant output, as markdown on a terminal and as plain
// text everywhere else.
type Renderer struct {
	out      io.Writer
	markdown bool
	md       *glamour.TermRenderer
}

// NewRenderer creates a renderer for out. Markdown is only rendered when
// enabled and out is a terminal.
func NewRenderer(out io.Writer, markdown bool, width int) *Renderer {
	r := &Renderer{out: out}
	if !markdown || !isTerminalWriter(out) {
		return r
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logrus.WithError(err).Debug("markdown renderer unavailable")
		return r
	}
	r.md = md
	r.markdown = true
	return r
}

// Markdown reports whether replies are rendered rather than streamed.
func (r *Renderer) Markdown() bool {
	return r.markdown
}

// Render returns content rendered as markdown, or unchanged when markdown
// output is off or rendering fails.
func (r *Renderer) Render(content string) string {
	if !r.markdown {
		return content
	}
	out, err := r.md.Render(content)
	if err != nil {
		return content
	}
	return out
}

// PrintReply writes a finished assistant reply.
func (r *Renderer) PrintReply(content string) {
	if r.markdown {
		fmt.Fprint(r.out, r.Render(content))
		return
	}
	fmt.Fprintln(r.out, content)
}

// PrintTranscript writes every message of chat, imported turns first.
func (r *Renderer) PrintTranscript(chat model.Chat) {
	fmt.Fprintln(r.out, TitleStyle.Render(chat.Title))
	if chat.HasImport() {
		fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("(%d imported messages)", len(chat.ImportedChat))))
		for _, m := range chat.ImportedChat {
			r.printMessage(m)
		}
		fmt.Fprintln(r.out, RenderSeparator(40))
	}
	for _, m := range chat.Messages {
		r.printMessage(m)
	}
}

func (r *Renderer) printMessage(m model.Message) {
	if m.IsUser {
		fmt.Fprintf(r.out, "%s %s\n", UserStyle.Render(">"), m.Content)
		return
	}
	label := AssistantStyle.Render(string(m.Mode.OrDefault()))
	switch m.Status {
	case model.StatusError:
		label += " " + ErrorStyle.Render("[failed]")
	case model.StatusStreaming, model.StatusLoading:
		label += " " + WarningStyle.Render("[incomplete]")
	}
	fmt.Fprintln(r.out, label)
	r.PrintReply(m.Content)
}

// chat list columns
const (
	markerWidth = 2
	idWidth     = 8
	countWidth  = 5
)

// PrintChatList writes one line per chat, most recent first, marking the
// active chat with '*'.
func PrintChatList(w io.Writer, chats []model.Chat, activeID string, width int) {
	if len(chats) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No chats yet."))
		return
	}
	titleWidth := width - markerWidth - idWidth - countWidth - 3
	if titleWidth < 10 {
		titleWidth = 10
	}
	for _, c := range chats {
		marker := " "
		if c.ID == activeID {
			marker = "*"
		}
		title := util.FitWidth(util.SingleLine(c.Title), titleWidth)
		fmt.Fprintf(w, "%s %s %s %s\n",
			padRight(marker, markerWidth-1),
			DimStyle.Render(shortID(c.ID)),
			padRight(title, titleWidth),
			padLeft(fmt.Sprint(len(c.Messages)), countWidth),
		)
	}
}

// shortID returns the first characters of a chat id, enough to select it.
func shortID(id string) string {
	if len(id) <= idWidth {
		return id
	}
	return id[:idWidth]
}

func padRight(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}
