// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOnboardingCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Show or change whether the welcome introduction was seen",
	}

	set := func(done bool, msg string) *cobra.Command {
		use := "reset"
		short := "Show the introduction again on the next chat"
		if done {
			use, short = "complete", "Mark the introduction as seen"
		}
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				app.Onboarding.SetHasCompletedOnboarding(done)
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			},
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Print whether onboarding is complete",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := o.App()
				if err != nil {
					return err
				}
				status := "pending"
				if app.Onboarding.HasCompletedOnboarding() {
					status = "complete"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", RenderLabel("Onboarding:"), status)
				return nil
			},
		},
		set(true, "Onboarding marked complete."),
		set(false, "Onboarding reset."),
	)
	return cmd
}
