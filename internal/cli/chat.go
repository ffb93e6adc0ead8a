// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat session.
//
// Interactive Commands (during chat):
//
//	/help, /h           Show available commands
//	/new                Start a new chat with the next message
//	/list, /l           List saved chats
//	/switch <chat>      Continue another chat
//	/show               Print the active chat
//	/rename <title>     Rename the active chat
//	/delete [chat]      Delete a chat (default: the active one)
//	/import <chat>      Import another chat as context
//	/mode [name]        Show or switch the conversation mode
//	/prompts [term]     Browse suggested prompts
//	/clear              Delete every chat
//	/exit, /quit, /q    Leave the session
//	Ctrl+C              Cancel the reply being streamed
//	Ctrl+D              Leave the session

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeranaias/thuraya-cli/internal/config"
	"github.com/jeranaias/thuraya-cli/internal/model"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := config.HistoryPath()
	if err != nil {
		historyFile = ""
	}

	c := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// SaveHistory saves command history to file.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		logrus.WithError(err).Debug("could not save input history")
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// ReadInput reads a line with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	return c.line.Prompt(prompt)
}

// AppendHistory adds a line to history.
func (c *ChatCLI) AppendHistory(input string) {
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func newChatCommand(o *rootOptions) *cobra.Command {
	var (
		newChat bool
		chatRef string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Chat opens an interactive session. Every message is streamed back as it is
written and saved, so the session can be resumed later. Type /help for the
session commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.App()
			if err != nil {
				return err
			}
			s := newChatSession(app, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if newChat {
				app.Chats.SetActiveChat("")
			}
			if chatRef != "" {
				if _, err := s.handle(cmd.Context(), "/switch "+chatRef); err != nil {
					return err
				}
			}
			return runChat(cmd.Context(), app, s)
		},
	}
	cmd.Flags().BoolVarP(&newChat, "new", "n", false, "Start with a new chat")
	cmd.Flags().StringVarP(&chatRef, "chat", "c", "", "Resume the given chat (id, id prefix or list number)")
	return cmd
}

func runChat(ctx context.Context, app *App, s *chatSession) error {
	stopWatch, err := app.Watch()
	if err != nil {
		logrus.WithError(err).Warn("WATCH_FAILED: changes from other sessions will not be picked up")
	} else {
		defer stopWatch()
	}

	input := NewChatCLI()
	defer input.Close()

	s.welcome()
	for {
		line, err := input.ReadInput(s.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(s.out, DimStyle.Render("(type /exit or press Ctrl+D to leave)"))
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		input.AppendHistory(line)

		quit, err := s.handle(ctx, line)
		if err != nil {
			DisplayError(s.errOut, err)
		}
		if quit {
			return nil
		}
	}
}

// =============================================================================
// SESSION
// =============================================================================

// chatSession interprets the lines typed in an interactive chat.
type chatSession struct {
	app    *App
	out    io.Writer
	errOut io.Writer
	mode   model.Mode
	r      *Renderer
}

func newChatSession(app *App, out, errOut io.Writer) *chatSession {
	return &chatSession{
		app:    app,
		out:    out,
		errOut: errOut,
		mode:   app.Config.Mode(),
		r:      NewRenderer(out, app.Config.UI.Markdown, app.Config.UI.Width),
	}
}

func (s *chatSession) prompt() string {
	if s.mode == model.ModeResearch {
		return "research> "
	}
	return "> "
}

// welcome greets first-time users once and records that they have been
// shown the introduction.
func (s *chatSession) welcome() {
	if s.app.Onboarding.HasCompletedOnboarding() {
		if chat, ok := s.app.Chats.ActiveChat(); ok {
			fmt.Fprintf(s.out, "%s %s\n", DimStyle.Render("Continuing:"), chat.Title)
		}
		return
	}
	fmt.Fprintln(s.out, TitleStyle.Render("Welcome to thuraya"))
	fmt.Fprintln(s.out, "Ask a legal question and the reply is streamed as it is written.")
	fmt.Fprintln(s.out, "Consultation mode answers directly; Research mode digs into sources (/mode research).")
	fmt.Fprintln(s.out, DimStyle.Render("Type /prompts for suggestions or /help for every command."))
	s.app.Onboarding.SetHasCompletedOnboarding(true)
}

// handle runs one input line. It reports whether the session should end.
func (s *chatSession) handle(ctx context.Context, line string) (quit bool, err error) {
	if !strings.HasPrefix(line, "/") {
		return false, s.ask(ctx, line)
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "exit", "quit", "q":
		return true, nil
	case "help", "h", "?":
		s.help()
	case "new":
		s.app.Chats.SetActiveChat("")
		fmt.Fprintln(s.out, DimStyle.Render("The next message starts a new chat."))
	case "list", "l":
		st := s.app.Chats.Snapshot()
		PrintChatList(s.out, st.Chats, st.ActiveChatID, s.app.Config.UI.Width)
	case "switch", "s":
		if arg == "" {
			return false, &ValidationError{Field: "chat", Reason: "missing", Example: "/switch 2"}
		}
		id, err := resolveChat(s.app.Chats.Chats(), arg)
		if err != nil {
			return false, err
		}
		s.app.Chats.SetActiveChat(id)
		chat, _ := s.app.Chats.Chat(id)
		fmt.Fprintf(s.out, "%s %s\n", DimStyle.Render("Active chat:"), chat.Title)
	case "show":
		chat, ok := s.app.Chats.ActiveChat()
		if !ok {
			return false, &NotFoundError{Resource: "chat", ID: "(no active chat)"}
		}
		s.r.PrintTranscript(chat)
	case "rename":
		chat, ok := s.app.Chats.ActiveChat()
		if !ok {
			return false, &NotFoundError{Resource: "chat", ID: "(no active chat)"}
		}
		if arg == "" {
			return false, &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		s.app.Chats.RenameChat(chat.ID, arg)
	case "delete":
		id := s.app.Chats.ActiveChatID()
		if arg != "" {
			if id, err = resolveChat(s.app.Chats.Chats(), arg); err != nil {
				return false, err
			}
		}
		if id == "" {
			return false, &NotFoundError{Resource: "chat", ID: "(no active chat)"}
		}
		s.app.Chats.DeleteChat(id)
		fmt.Fprintln(s.out, DimStyle.Render("Chat deleted."))
	case "import":
		if arg == "" {
			return false, &ValidationError{Field: "chat", Reason: "missing", Example: "/import 3"}
		}
		src, err := resolveChat(s.app.Chats.Chats(), arg)
		if err != nil {
			return false, err
		}
		if _, err := s.app.Chats.ImportChat(src, s.mode); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, SuccessStyle.Render("Conversation imported."))
	case "mode", "m":
		if arg == "" {
			fmt.Fprintf(s.out, "Mode: %s\n", s.mode)
			return false, nil
		}
		m, err := model.ParseMode(arg)
		if err != nil {
			return false, &ValidationError{Field: "mode", Value: arg, Reason: err.Error()}
		}
		s.mode = m
		fmt.Fprintf(s.out, "Mode: %s\n", s.mode)
	case "prompts", "p":
		printCategories(s.out, s.app.Prompts.SearchPrompts(arg))
	case "clear":
		s.app.Chats.ClearAll()
		fmt.Fprintln(s.out, DimStyle.Render("All chats deleted."))
	default:
		example := "/help"
		if guess := SuggestCommand(name); guess != "" {
			example = "/" + guess
		}
		return false, &ValidationError{Field: "command", Value: "/" + name, Reason: "unknown command", Example: example}
	}
	return false, nil
}

// ask streams the reply to one message. Ctrl+C cancels the stream.
func (s *chatSession) ask(ctx context.Context, text string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := submit(ctx, s.app, s.r, s.errOut, text, s.mode)
	return err
}

func (s *chatSession) help() {
	rows := [][2]string{
		{"/new", "Start a new chat with the next message"},
		{"/list", "List saved chats"},
		{"/switch <chat>", "Continue another chat"},
		{"/show", "Print the active chat"},
		{"/rename <title>", "Rename the active chat"},
		{"/delete [chat]", "Delete a chat"},
		{"/import <chat>", "Import another chat as context"},
		{"/mode [name]", "Show or switch mode (consultation, research)"},
		{"/prompts [term]", "Browse suggested prompts"},
		{"/clear", "Delete every chat"},
		{"/exit", "Leave the session"},
	}
	for _, r := range rows {
		fmt.Fprintf(s.out, "%s %s\n", RenderLabel(r[0]), r[1])
	}
}
