// Package controller renders test runs for the terminal.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeList
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	total int
}

// WithRunMode sets the UI to test execution mode for total tests.
func WithRunMode(total int) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
		c.total = total
	}
}

// WithListMode sets the UI to list the configured tests.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithViewMode sets the UI to render a saved report.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeRun}
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// RunInfo describes a run about to start.
type RunInfo struct {
	RunID    string
	Project  string
	Binary   m.Path
	Tests    int
	Parallel int
}

// TestEntry is one row of the test listing.
type TestEntry struct {
	Number    int
	Name      string
	Kind      m.TestKind
	Timeout   float64
	Protected bool
}

// UI displays the progress and outcome of test runs.
// Runners call the Display methods from several goroutines, one at a time.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayRunInfo(ctx context.Context, info RunInfo)
	DisplayTestList(ctx context.Context, entries []TestEntry) error
	DisplayStartingTest(ctx context.Context, meta m.TestMeta)
	DisplayCompletedTest(ctx context.Context, result m.TestResult)
	DisplayReport(ctx context.Context, report m.Report) error
}

// NewUI returns the interactive UI on a terminal and the plain UI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
