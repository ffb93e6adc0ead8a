// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeranaias/thuraya-cli/internal/config"
	"github.com/jeranaias/thuraya-cli/internal/model"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// rootOptions carries the persistent flags and the lazily built App.
type rootOptions struct {
	configPath  string
	logLevel    string
	apiURL      string
	storageKind string
	dataDir     string
	mode        string

	cfg *config.Config
	app *App
}

// NewRootCommand builds the thuraya command tree.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "thuraya",
		Short: "Terminal client for the thuraya legal assistant",
		Long: `thuraya talks to the legal assistant service from the terminal.
Conversations are streamed as they are written and saved locally, so a chat
can be resumed later or imported into another one.`,
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return o.app.Close()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Config file (default ~/.thuraya/config.toml)")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level (trace,debug,info,warn,error)")
	pf.StringVar(&o.apiURL, "api-url", "", "Service base URL including /api/v1")
	pf.StringVar(&o.storageKind, "storage", "", "Storage backend (file,sqlite,memory)")
	pf.StringVar(&o.dataDir, "data-dir", "", "Directory for file storage")
	pf.StringVarP(&o.mode, "mode", "m", "", "Conversation mode (consultation,research)")

	cmd.AddCommand(
		newAskCommand(o),
		newChatCommand(o),
		newChatsCommand(o),
		newDocsCommand(o),
		newPromptsCommand(o),
		newOnboardingCommand(o),
		newConfigCommand(o),
		newDoctorCommand(o),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		DisplayError(cmd.ErrOrStderr(), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// setup loads the configuration, applies the persistent flags on top of it
// and configures logging.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if cfg == nil {
		return err
	}
	if err != nil {
		logrus.WithError(err).Warn("CONFIG_LOAD_FAILED: using defaults")
	}

	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}
	if o.storageKind != "" {
		cfg.Storage.Backend = o.storageKind
	}
	if o.dataDir != "" {
		cfg.Storage.Dir = o.dataDir
	}
	if o.mode != "" {
		m, err := model.ParseMode(o.mode)
		if err != nil {
			return &ValidationError{Field: "mode", Value: o.mode, Reason: err.Error(), Example: "--mode research"}
		}
		cfg.Chat.DefaultMode = string(m)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := setupLogging(cfg.Log, cmd.ErrOrStderr()); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// App returns the wired components, opening storage on first use.
func (o *rootOptions) App() (*App, error) {
	if o.app != nil {
		return o.app, nil
	}
	app, err := NewApp(o.cfg)
	if err != nil {
		return nil, err
	}
	o.app = app
	return app, nil
}

// setupLogging configures the standard logrus logger.
func setupLogging(lc config.LogConfig, w io.Writer) error {
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		return fmt.Errorf("cannot parse log-level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(w)

	if lc.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		// Millisecond precision helps when timing streamed responses.
		formatter := new(logrus.TextFormatter)
		formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
		formatter.FullTimestamp = true
		logrus.SetFormatter(formatter)
	}
	logrus.Debug("debug logging enabled")
	return nil
}
