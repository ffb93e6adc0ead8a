// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats.go - Saved chat management.
//
// Chats are referred to by full id, an unambiguous id prefix, or their
// 1-based position in "thuraya chats list".

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thuraya-cli/internal/export"
	"github.com/jeranaias/thuraya-cli/internal/model"
)

func newChatsCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chats",
		Aliases: []string{"history"},
		Short:   "Manage saved chats",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List chats, most recent first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				st := app.Chats.Snapshot()
				PrintChatList(cmd.OutOrStdout(), st.Chats, st.ActiveChatID, app.Config.UI.Width)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show [chat]",
			Short: "Print a chat transcript (default: the active chat)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				chat, err := chatArg(app, args)
				if err != nil {
					return err
				}
				NewRenderer(cmd.OutOrStdout(), app.Config.UI.Markdown, app.Config.UI.Width).PrintTranscript(chat)
				return nil
			},
		},
		&cobra.Command{
			Use:     "use <chat>",
			Aliases: []string{"switch"},
			Short:   "Make a chat the active one",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				chat, err := chatArg(app, args)
				if err != nil {
					return err
				}
				app.Chats.SetActiveChat(chat.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Active chat: %s\n", chat.Title)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <chat> <title...>",
			Short: "Rename a chat",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				chat, err := chatArg(app, args[:1])
				if err != nil {
					return err
				}
				title := strings.TrimSpace(strings.Join(args[1:], " "))
				if title == "" {
					return &ValidationError{Field: "title", Reason: "must not be empty"}
				}
				app.Chats.RenameChat(chat.ID, title)
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %q\n", title)
				return nil
			},
		},
		&cobra.Command{
			Use:     "delete <chat>",
			Aliases: []string{"rm"},
			Short:   "Delete a chat",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				chat, err := chatArg(app, args)
				if err != nil {
					return err
				}
				app.Chats.DeleteChat(chat.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", chat.Title)
				return nil
			},
		},
		newChatsClearCommand(o),
		newChatsExportCommand(o),
		newChatsImportCommand(o),
	)
	return cmd
}

func newChatsClearCommand(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.App()
			if err != nil {
				return err
			}
			n := len(app.Chats.Chats())
			ok, err := RequireConfirmation(fmt.Sprintf("Delete all %d chats", n), ConfirmationOptions{
				Yes:     yes,
				Command: "thuraya chats clear",
				In:      cmd.InOrStdin(),
				Out:     cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			if !ok {
				ShowCancellationMessage(cmd.ErrOrStderr())
				return nil
			}
			app.Chats.ClearAll()
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d chats\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting every chat")
	return cmd
}

func newChatsExportCommand(o *rootOptions) *cobra.Command {
	var (
		format string
		outDir string
		theme  string
	)
	cmd := &cobra.Command{
		Use:   "export [chat]",
		Short: "Write a chat as JSON, markdown or HTML",
		Long: `Export writes a chat to stdout, or to a new file in the directory given
with --output. JSON output holds the chat exactly as it is stored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := export.DefaultOptions()
			opts.Theme = theme
			exp, err := export.ForFormat(format, opts)
			if err != nil {
				return &ValidationError{Field: "format", Value: format, Reason: "must be one of " + strings.Join(export.Formats, ", ")}
			}
			app, err := o.App()
			if err != nil {
				return err
			}
			chat, err := chatArg(app, args)
			if err != nil {
				return err
			}

			if outDir != "" {
				opts.OutputDir = outDir
				path, err := export.ExportToFile(chat, exp, opts)
				if err != nil {
					return &CommandError{Command: "chats export", Action: "write", Reason: "could not write export", Err: err}
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			data, err := exp.Export(chat)
			if err != nil {
				return &CommandError{Command: "chats export", Action: "export", Reason: "could not export chat", Err: err}
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format ("+strings.Join(export.Formats, ", ")+")")
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "Write to a new file in this directory")
	cmd.Flags().StringVar(&theme, "theme", "light", "HTML theme (light, dark)")
	return cmd
}

func newChatsImportCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <chat>",
		Short: "Import a chat's messages into the active chat as context",
		Long: `Import copies the messages of another chat into the active chat. They
are sent with every later question as earlier conversation. When no chat is
active a new one is started for the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.App()
			if err != nil {
				return err
			}
			source, err := chatArg(app, args)
			if err != nil {
				return err
			}
			id, err := app.Chats.ImportChat(source.ID, app.Config.Mode())
			if err != nil {
				return err
			}
			target, _ := app.Chats.Chat(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d messages into %q\n", len(source.Messages), target.Title)
			return nil
		},
	}
	return cmd
}

// chatArg resolves the optional chat argument, defaulting to the active chat.
func chatArg(app *App, args []string) (model.Chat, error) {
	if len(args) == 0 {
		chat, ok := app.Chats.ActiveChat()
		if !ok {
			return model.Chat{}, &NotFoundError{Resource: "chat", ID: "(no active chat)"}
		}
		return chat, nil
	}
	id, err := resolveChat(app.Chats.Chats(), args[0])
	if err != nil {
		return model.Chat{}, err
	}
	chat, ok := app.Chats.Chat(id)
	if !ok {
		return model.Chat{}, &NotFoundError{Resource: "chat", ID: args[0]}
	}
	return chat, nil
}

// resolveChat finds a chat by exact id, list number or unique id prefix.
func resolveChat(chats []model.Chat, ref string) (string, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return "", &ValidationError{Field: "chat", Reason: "must not be empty"}
	}
	for _, c := range chats {
		if c.ID == ref {
			return c.ID, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(chats) && len(ref) < idWidth {
		return chats[n-1].ID, nil
	}

	var match string
	for _, c := range chats {
		if strings.HasPrefix(c.ID, ref) {
			if match != "" {
				return "", &ValidationError{Field: "chat", Value: ref, Reason: "prefix matches more than one chat"}
			}
			match = c.ID
		}
	}
	if match == "" {
		return "", &NotFoundError{Resource: "chat", ID: ref}
	}
	return match, nil
}
