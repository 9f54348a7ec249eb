package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// SimpleUI implements UI using cobra Command's output as a plain log.
type SimpleUI struct {
	cmd   *cobra.Command
	paint painter
	mode  StartMode
}

// NewSimpleUI creates a new SimpleUI. Colours are used only when the
// command writes to a terminal.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	ui := &SimpleUI{cmd: cmd, paint: plainPainter()}

	if IsTTY(cmd.OutOrStdout()) {
		ui.paint = colourPainter()
	}

	return ui
}

func colourPainter() painter {
	return painter{
		pass:     color.New(color.FgGreen, color.Bold).SprintFunc(),
		fail:     color.New(color.FgRed, color.Bold).SprintFunc(),
		removed:  color.New(color.FgRed).SprintFunc(),
		added:    color.New(color.FgGreen).SprintFunc(),
		emphasis: color.New(color.ReverseVideo, color.Bold).SprintFunc(),
		faint:    color.New(color.Faint).SprintFunc(),
	}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mode = newStartConfig(options).mode

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayRunInfo announces the run.
func (s *SimpleUI) DisplayRunInfo(_ context.Context, info RunInfo) {
	s.printf("Running %d test(s) of %s with %d worker(s)\n", info.Tests, info.Project, info.Parallel)
	s.printf("Binary: %s\nRun: %s\n\n", info.Binary, info.RunID)
}

// DisplayTestList prints the configured tests as a table.
func (s *SimpleUI) DisplayTestList(ctx context.Context, entries []TestEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderTestListTable(entries))

	return nil
}

func renderTestListTable(entries []TestEntry) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"#", "Name", "Kind", "Timeout", "Protected"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
	})

	for _, entry := range entries {
		timeout := "default"
		if entry.Timeout > 0 {
			timeout = fmt.Sprintf("%gs", entry.Timeout)
		}

		protected := ""
		if entry.Protected {
			protected = "yes"
		}

		table.Append([]string{fmt.Sprintf("%d", entry.Number), entry.Name, string(entry.Kind), timeout, protected})
	}

	table.SetFooter([]string{"", fmt.Sprintf("Total %d", len(entries)), "", "", ""})

	table.Render()

	return tableBuffer.String()
}

// DisplayStartingTest shows info about the test starting.
func (s *SimpleUI) DisplayStartingTest(ctx context.Context, meta m.TestMeta) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Starting test #%d %s\n", meta.Number, meta.Name)
}

// DisplayCompletedTest shows the verdict of a test and, when it failed, why.
func (s *SimpleUI) DisplayCompletedTest(_ context.Context, result m.TestResult) {
	s.printf("[%s] #%d %s (%s)\n", s.paint.status(result), result.Number, result.Name, formatDuration(result.Duration))

	if !result.Passed {
		s.printf("%s", s.paint.renderDetails(result))
	}
}

// DisplayReport prints the summary table of a report. In view mode the
// failure details are printed first.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.mode == ModeView {
		s.printf("Report %s of %s (%s)\n\n", report.RunID, report.Project, report.StartedAt.Format("2006-01-02 15:04:05"))

		for _, result := range report.Results {
			s.DisplayCompletedTest(ctx, result)
		}
	}

	s.printf("\n%s", renderReportTable(report))

	return nil
}

func renderReportTable(report m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"#", "Name", "Kind", "Result", "Similarity", "Exit", "Leaks", "Errors", "Time"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, result := range report.Results {
		table.Append([]string{
			fmt.Sprintf("%d", result.Number),
			result.Name,
			string(result.Kind),
			statusLabel(result),
			fmt.Sprintf("%.2f", result.Similarity),
			formatExit(result.ExitCode),
			formatCount(result.Diagnostics.Leaks),
			formatCount(result.Diagnostics.Errors),
			formatDuration(result.Duration),
		})
	}

	passed, _ := report.Summary()
	table.SetFooter([]string{
		"", fmt.Sprintf("Total %d", len(report.Results)), "",
		fmt.Sprintf("Passed %d", passed), "", "", "", "", formatDuration(report.Duration),
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out(), format, args...)
}

func (s *SimpleUI) out() io.Writer {
	return s.cmd.OutOrStdout()
}
