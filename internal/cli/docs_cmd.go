// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs_cmd.go - Document summarize, compare and image-to-text commands.
//
// Examples:
//
//	thuraya docs summarize contract.pdf
//	thuraya docs compare lease-2023.docx lease-2024.docx
//	thuraya docs ocr scan.png

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thuraya-cli/internal/backend"
	"github.com/jeranaias/thuraya-cli/internal/docs"
)

func newDocsCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"doc"},
		Short:   "Summarize, compare or read documents",
	}

	op := func(use, short string, op docs.Operation, args cobra.PositionalArgs) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.runDocs(cmd, op, args)
			},
		}
	}

	cmd.AddCommand(
		op("summarize <file>", "Summarize a document", docs.OpSummarize, cobra.ExactArgs(1)),
		op("compare <file> <file>", "Compare two versions of a document", docs.OpCompare, cobra.RangeArgs(1, 2)),
		op("ocr <image>", "Extract the text of an image", docs.OpImageToText, cobra.ExactArgs(1)),
		&cobra.Command{
			Use:   "run <operation> <file...>",
			Short: "Run an operation by name (summarize, compare, image-to-text)",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				op, err := docs.ParseOperation(args[0])
				if err != nil {
					return &ValidationError{Field: "operation", Value: args[0], Reason: err.Error()}
				}
				return o.runDocs(cmd, op, args[1:])
			},
		},
	)
	return cmd
}

func (o *rootOptions) runDocs(cmd *cobra.Command, op docs.Operation, paths []string) error {
	app, err := o.App()
	if err != nil {
		return err
	}
	documents := make([]*backend.Document, 0, len(paths))
	for _, p := range paths {
		d, err := backend.OpenDocument(p)
		if errors.Is(err, os.ErrNotExist) {
			return &NotFoundError{Resource: "file", ID: p}
		}
		if err != nil {
			return err
		}
		documents = append(documents, d)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runDocOperation(ctx, app, op, documents, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// runDocOperation runs op through the document store and prints the result,
// or the failure in an error panel.
func runDocOperation(ctx context.Context, app *App, op docs.Operation, documents []*backend.Document, out, errOut io.Writer) error {
	app.Docs.SetSelectedOp(op)
	tty := isTerminalWriter(errOut)
	if tty {
		fmt.Fprintln(errOut, DimStyle.Render(fmt.Sprintf("%s: working...", op)))
	}

	start := time.Now()
	st := app.Docs.Process(ctx, documents...)
	if tty {
		fmt.Fprintln(errOut, DimStyle.Render(fmt.Sprintf("%s: %s", op, formatDurationShort(time.Since(start)))))
	}
	if st.Phase == docs.PhaseError {
		fmt.Fprintln(errOut, RenderErrorPanel("Document operation failed", st.Error))
		return &ReportedError{Err: errors.New(st.Error)}
	}

	res := st.Response
	if res.Op == docs.OpImageToText {
		var buf bytes.Buffer
		if err := json.Indent(&buf, res.Raw, "", "  "); err != nil {
			buf.Reset()
			buf.Write(res.Raw)
		}
		fmt.Fprintln(out, buf.String())
		return nil
	}
	NewRenderer(out, app.Config.UI.Markdown, app.Config.UI.Width).PrintReply(res.Text)
	return nil
}
