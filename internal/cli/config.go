// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Subcommands:
//
//	show                Display the effective configuration
//	path                Show the configuration file path
//	init [--force]      Write a default configuration file
//	get <key>           Print one value (dot notation, e.g. api.base_url)
//	set <key> <value>   Change one value in the configuration file

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thuraya-cli/internal/config"
)

func newConfigCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), o.cfg.String())
				return nil
			}
			return printConfig(cmd.OutOrStdout(), o.cfg)
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.configFile()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return &ValidationError{Field: "config", Value: path, Reason: "already exists", Example: "thuraya config init --force"}
			}
			if err := saveConfigFile(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	cmd.AddCommand(
		show,
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := o.configFile()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		initCmd,
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := o.cfg.Get(args[0])
				if err != nil {
					return &ValidationError{Field: "key", Value: args[0], Reason: err.Error(), Example: "thuraya config get api.base_url"}
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one value in the configuration file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := o.configFile()
				if err != nil {
					return err
				}
				cfg, err := loadConfigFile(path)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return &ValidationError{Field: "key", Value: args[0], Reason: err.Error()}
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := saveConfigFile(cfg, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
				return nil
			},
		},
	)
	return cmd
}

// configFile returns the file config commands read and write: --config when
// given, otherwise ~/.thuraya/config.toml.
func (o *rootOptions) configFile() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.ConfigPathTOML()
}

// loadConfigFile reads path on top of the defaults without environment or
// flag overrides, so set only writes what the file already held plus the
// change. A missing file yields the defaults.
func loadConfigFile(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.LoadJSON(cfg, path)
	} else {
		err = config.LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

func saveConfigFile(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

// printConfig writes every key in dot notation with its value.
func printConfig(w io.Writer, cfg *config.Config) error {
	fmt.Fprintln(w, TitleStyle.Render("thuraya configuration"))
	section := ""
	for _, key := range config.GetAllKeys() {
		head, _, _ := strings.Cut(key, ".")
		if head != section {
			section = head
			fmt.Fprintf(w, "\n[%s]\n", section)
		}
		v, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s\n", RenderLabel(key), ValueStyle.Render(fmt.Sprint(v)))
	}
	return nil
}
