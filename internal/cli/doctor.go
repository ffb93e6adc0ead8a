// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Health checks for the local setup.
//
// Command: doctor
// Aliases: diag
//
// Checks performed:
//   1. Config       - which file is in effect
//   2. Storage      - the backend can write, read and delete a record
//   3. Chats        - saved chats load and none is left mid-stream
//   4. Service      - the assistant service answers HTTP
//   5. Terminal     - width and color support
//
// Exit Codes:
//   0   All checks passed (warnings allowed)
//   1   One or more checks failed

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/jeranaias/thuraya-cli/internal/storage"
)

// =============================================================================
// DOCTOR STYLES
// =============================================================================

var (
	checkPassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	checkWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	checkFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	fixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			PaddingLeft(2)
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarn:
		return "warn"
	case CheckFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText writes the status by name in --json output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Symbol returns the bracketed marker for the check status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return checkPassStyle.Render("[OK]")
	case CheckWarn:
		return checkWarnStyle.Render("[!!]")
	case CheckFail:
		return checkFailStyle.Render("[FAIL]")
	default:
		return "?"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"` // Suggested fix
}

// Render returns a formatted string representation of the health check.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), c.Message)
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

// DoctorSummary counts check results for --json output.
type DoctorSummary struct {
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// =============================================================================
// COMMAND
// =============================================================================

func newDoctorCommand(o *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"diag"},
		Short:   "Check configuration, storage and the service connection",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := o.runAllChecks(cmd.Context())
			return printDoctor(cmd.OutOrStdout(), checks, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func printDoctor(w io.Writer, checks []*HealthCheck, asJSON bool) error {
	var sum DoctorSummary
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			sum.Passed++
		case CheckWarn:
			sum.Warned++
		case CheckFail:
			sum.Failed++
		}
	}
	sum.Healthy = sum.Failed == 0

	var failure error
	if sum.Failed > 0 {
		failure = &ReportedError{Err: fmt.Errorf("%d health check(s) failed", sum.Failed)}
	}

	if asJSON {
		resp := NewJSONResponse("doctor", map[string]interface{}{
			"checks":  checks,
			"summary": sum,
		})
		if failure != nil {
			resp.Fail(failure.Error())
		}
		if err := resp.Print(w); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(w, TitleStyle.Render("thuraya doctor"))
	fmt.Fprintln(w, RenderSeparator(41))
	for _, check := range checks {
		fmt.Fprintln(w, check.Render())
	}
	fmt.Fprintln(w, RenderSeparator(41))

	parts := []string{fmt.Sprintf("%d passed", sum.Passed)}
	if sum.Warned > 0 {
		parts = append(parts, checkWarnStyle.Render(fmt.Sprintf("%d warning", sum.Warned)))
	}
	if sum.Failed > 0 {
		parts = append(parts, checkFailStyle.Render(fmt.Sprintf("%d failed", sum.Failed)))
	}
	fmt.Fprintln(w, DimStyle.Render(strings.Join(parts, ", ")))
	return failure
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

// runAllChecks runs every check. Storage problems do not stop the service
// check from running.
func (o *rootOptions) runAllChecks(ctx context.Context) []*HealthCheck {
	if ctx == nil {
		ctx = context.Background()
	}
	checks := []*HealthCheck{o.checkConfig()}

	app, err := o.App()
	if err != nil {
		checks = append(checks, &HealthCheck{
			Name:    "Storage",
			Status:  CheckFail,
			Message: fmt.Sprintf("Could not open %s storage: %s", o.cfg.Storage.Backend, err),
			Fix:     "Check storage.dir and storage.sqlite_path, or run with --storage memory",
		})
		app = newAppWithBackend(o.cfg, storage.NewMemoryBackend())
		defer app.Close()
	} else {
		checks = append(checks, checkStorage(app), checkChats(app))
	}

	checks = append(checks, checkService(ctx, app), checkTerminal())
	return checks
}

func (o *rootOptions) checkConfig() *HealthCheck {
	check := &HealthCheck{Name: "Config"}

	path, err := o.configFile()
	if err != nil {
		check.Status = CheckWarn
		check.Message = "Could not determine config path"
		return check
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		check.Status = CheckPass
		check.Message = "Config valid (using defaults)"
		check.Fix = "Run: thuraya config init"
		return check
	}
	check.Status = CheckPass
	check.Message = "Config valid: " + path
	return check
}

// doctorProbeKey is written and removed again by the storage check.
const doctorProbeKey = "doctor-probe"

func checkStorage(app *App) *HealthCheck {
	check := &HealthCheck{Name: "Storage"}
	kind := app.Config.Storage.Backend

	probe := []byte("ok")
	if err := app.Storage.Put(doctorProbeKey, probe); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("%s storage not writable: %s", kind, err)
		check.Fix = "Check permissions on the data directory"
		return check
	}
	got, err := app.Storage.Get(doctorProbeKey)
	if err == nil && string(got) != string(probe) {
		err = fmt.Errorf("read back %q", got)
	}
	if delErr := app.Storage.Delete(doctorProbeKey); err == nil {
		err = delErr
	}
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("%s storage read check failed: %s", kind, err)
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("%s storage writable", kind)
	if kind == storage.KindMemory {
		check.Status = CheckWarn
		check.Message = "memory storage: chats are lost on exit"
		check.Fix = "Run: thuraya config set storage.backend file"
	}
	return check
}

func checkChats(app *App) *HealthCheck {
	check := &HealthCheck{Name: "Chats"}

	chats := app.Chats.Chats()
	streaming := 0
	for _, c := range chats {
		streaming += c.StreamingCount()
	}
	if streaming > 0 {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("%d saved chats, %d replies still marked as generating", len(chats), streaming)
		check.Fix = "Another thuraya session may be answering right now"
		return check
	}
	check.Status = CheckPass
	check.Message = fmt.Sprintf("%d saved chats", len(chats))
	return check
}

func checkService(ctx context.Context, app *App) *HealthCheck {
	check := &HealthCheck{Name: "Service"}
	url := app.Client.Config().BaseURL

	rtt, err := app.Client.Ping(ctx)
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Service not reachable at %s: %s", url, err)
		check.Fix = "Start the service or run: thuraya config set api.base_url <url>"
		return check
	}
	check.Status = CheckPass
	check.Message = fmt.Sprintf("Service reachable at %s (%s)", url, formatDurationShort(rtt))
	return check
}

func checkTerminal() *HealthCheck {
	check := &HealthCheck{Name: "Terminal", Status: CheckPass}
	if !IsStdoutTTY() {
		check.Message = "Output is not a terminal: plain text, no markdown rendering"
		return check
	}
	width := GetTerminalWidth()
	check.Message = fmt.Sprintf("Terminal width %d", width)
	if GetColorProfile() == termenv.Ascii {
		check.Message += ", no color"
	}
	return check
}
