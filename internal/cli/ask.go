// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Examples:
//
//	thuraya ask "What is the notice period for termination?"
//	thuraya ask --new -m research "Precedents on lease disputes"
//	echo "question" | thuraya ask -

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thuraya-cli/internal/backend"
	"github.com/jeranaias/thuraya-cli/internal/chatstore"
	"github.com/jeranaias/thuraya-cli/internal/model"
)

type askOptions struct {
	newChat bool
	chat    string
	stream  bool
}

func newAskCommand(o *rootOptions) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask one question and stream the reply",
		Long: `Ask sends a question to the assistant and prints the reply.

Without --new the question continues the active chat, if there is one.
Use "-" or pipe text on stdin to read the question from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := questionText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			app, err := o.App()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAsk(ctx, app, cmd.OutOrStdout(), cmd.ErrOrStderr(), text, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.newChat, "new", "n", false, "Start a new chat instead of continuing the active one")
	cmd.Flags().StringVarP(&opts.chat, "chat", "c", "", "Continue the given chat (id, id prefix or list number)")
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "Print characters as they arrive even on a terminal")
	return cmd
}

// questionText joins the arguments, or reads stdin when there are none or
// the only argument is "-".
func questionText(in io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read question: %w", err)
		}
		args = []string{string(data)}
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", &ValidationError{Field: "question", Reason: "must not be empty", Example: `thuraya ask "your question"`}
	}
	return text, nil
}

func runAsk(ctx context.Context, app *App, out, errOut io.Writer, text string, opts *askOptions) error {
	if opts.newChat {
		app.Chats.SetActiveChat("")
	}
	if opts.chat != "" {
		id, err := resolveChat(app.Chats.Chats(), opts.chat)
		if err != nil {
			return err
		}
		app.Chats.SetActiveChat(id)
	}

	r := NewRenderer(out, app.Config.UI.Markdown && !opts.stream, app.Config.UI.Width)
	chatID, err := submit(ctx, app, r, errOut, text, app.Config.Mode())
	if err != nil {
		return err
	}
	return replyOutcome(app.Chats, chatID)
}

// submit sends text through the chat store. Characters are echoed as they
// arrive unless the reply is rendered as markdown once complete.
func submit(ctx context.Context, app *App, r *Renderer, errOut io.Writer, text string, mode model.Mode) (string, error) {
	var echo io.Writer = r.out
	var progress *progressLine
	if r.Markdown() {
		progress = newProgressLine(errOut)
		echo = progress
	}

	chatID, err := app.Chats.Submit(ctx, text, mode, app.streamer(echo))
	if progress != nil {
		progress.Clear()
	}
	if err != nil {
		return "", err
	}

	chat, _ := app.Chats.Chat(chatID)
	last, ok := chat.LastMessage()
	switch {
	case !ok:
	case r.Markdown():
		r.PrintReply(last.Content)
	default:
		fmt.Fprintln(r.out)
	}
	return chatID, nil
}

// replyOutcome turns a reply that ended in the error marker or a failed
// message into an error for the exit code.
func replyOutcome(store *chatstore.Store, chatID string) error {
	chat, ok := store.Chat(chatID)
	if !ok {
		return nil
	}
	last, ok := chat.LastMessage()
	if !ok || last.IsUser {
		return nil
	}
	if last.Status == model.StatusError || strings.HasSuffix(last.Content, backend.ErrorMarker) {
		return &CommandError{Command: "ask", Action: "generate", Reason: "the service did not complete the reply"}
	}
	return nil
}

// progressLine counts streamed characters on a terminal while the reply is
// held back for markdown rendering. On anything else it discards.
type progressLine struct {
	w      io.Writer
	active bool
	n      int
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w, active: isTerminalWriter(w)}
}

func (p *progressLine) Write(b []byte) (int, error) {
	if !p.active {
		return len(b), nil
	}
	p.n += len([]rune(string(b)))
	if p.n%40 == 1 {
		fmt.Fprintf(p.w, "\r%s", DimStyle.Render(fmt.Sprintf("receiving... %d characters", p.n)))
	}
	return len(b), nil
}

// Clear erases the progress line.
func (p *progressLine) Clear() {
	if p.active && p.n > 0 {
		fmt.Fprint(p.w, "\r\033[K")
	}
}
