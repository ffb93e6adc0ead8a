// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thuraya-cli/internal/prefs"
)

func newPromptsCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Browse suggested prompts and manage your own",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every prompt category",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				printCategories(cmd.OutOrStdout(), app.Prompts.Categories())
				return nil
			},
		},
		&cobra.Command{
			Use:   "search <term...>",
			Short: "Show the categories whose name or prompts contain term",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				printCategories(cmd.OutOrStdout(), app.Prompts.SearchPrompts(strings.Join(args, " ")))
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <prompt...>",
			Short: "Save a custom prompt",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				text := strings.Join(args, " ")
				if !app.Prompts.AddCustomPrompt(text) {
					return &ValidationError{Field: "prompt", Reason: "must not be empty"}
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Prompt saved."))
				return nil
			},
		},
		&cobra.Command{
			Use:     "remove <prompt...>",
			Aliases: []string{"rm"},
			Short:   "Remove a custom prompt",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				text := strings.Join(args, " ")
				if app.Prompts.RemoveCustomPrompt(text) == 0 {
					return &NotFoundError{Resource: "prompt", ID: text}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Prompt removed.")
				return nil
			},
		},
	)
	return cmd
}

// printCategories writes each category title followed by its prompts.
func printCategories(w io.Writer, cats []prefs.Category) {
	if len(cats) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No matching prompts."))
		return
	}
	for i, c := range cats {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, TitleStyle.Render(c.Name))
		for _, p := range c.Prompts {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
}
