package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tcrun.dev/pkg/tcrun/internal/adapter"
	"tcrun.dev/pkg/tcrun/internal/controller"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// RunArgs contains the arguments for a test run.
type RunArgs struct {
	Project *m.ProjectDefinition
	Binary  m.Binary
	Options m.RunOptions
	Tests   []m.TestcaseDefinition
	// Names restricts the run to the named tests. Empty runs all of them.
	Names    []string
	Reports  m.Path // empty skips saving the report
	SpillDir m.Path
}

// ListArgs contains the arguments for listing tests.
type ListArgs struct {
	Tests []m.TestcaseDefinition
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Reports m.Path
}

// Workflow defines the use cases of the harness.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.Report, error)
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ReportStore
	controller.UI
	processes adapter.ProcessAdapter
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	reportStore adapter.ReportStore,
	processes adapter.ProcessAdapter,
	ui controller.UI,
) Workflow {
	return &workflow{
		ReportStore: reportStore,
		UI:          ui,
		processes:   processes,
	}
}

// Run executes the selected tests against the binary and saves the report.
// A binary that did not compile aborts the run before any test starts.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.Report, error) {
	if !args.Binary.Compiled {
		slog.Error("Binary is not compiled", "binary", args.Binary.Path, "errors", args.Binary.Errors)
		return m.Report{}, m.ErrBinaryNotCompiled
	}

	selected, err := selectTests(args.Tests, args.Names)
	if err != nil {
		return m.Report{}, err
	}

	env := NewEnvironment(args.Project, args.Binary, args.Options, w.processes)
	tests := buildTests(selected, env)

	// Rendering and saving still happen when the run was interrupted, so the
	// partial results are not lost.
	uiCtx := context.WithoutCancel(ctx)

	if err := w.Start(uiCtx, controller.WithRunMode(len(tests))); err != nil {
		return m.Report{}, fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(uiCtx)

	w.DisplayRunInfo(uiCtx, controller.RunInfo{
		RunID:    args.Options.RunID,
		Project:  env.Project.Name,
		Binary:   args.Binary.Path,
		Tests:    len(tests),
		Parallel: args.Options.Parallel,
	})

	startedAt := time.Now()

	results, err := NewRunner(w.UI, args.Options.Parallel, string(args.SpillDir)).RunTests(ctx, tests)
	if err != nil {
		return m.Report{}, fmt.Errorf("run tests: %w", err)
	}

	report := m.Report{
		RunID:     args.Options.RunID,
		Project:   env.Project.Name,
		Binary:    args.Binary.Path,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Results:   results,
	}

	passed, failed := report.Summary()
	slog.Info("Run finished", "run", report.RunID, "passed", passed, "failed", failed, "duration", report.Duration)

	if args.Reports != "" {
		if err := w.SaveReport(args.Reports, report); err != nil {
			return report, fmt.Errorf("save report: %w", err)
		}
	}

	if err := w.DisplayReport(uiCtx, report); err != nil {
		return report, fmt.Errorf("display report: %w", err)
	}

	w.Wait(uiCtx)

	return report, nil
}

// List shows the configured tests without running them.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	entries := make([]controller.TestEntry, 0, len(args.Tests))

	for i, def := range args.Tests {
		entries = append(entries, controller.TestEntry{
			Number:    i + 1,
			Name:      def.Name,
			Kind:      kindOf(def),
			Timeout:   def.Timeout,
			Protected: def.Protected,
		})
	}

	if err := w.DisplayTestList(ctx, entries); err != nil {
		return fmt.Errorf("display tests: %w", err)
	}

	return nil
}

// View renders a previously saved report.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(args.Reports)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	if err := w.DisplayReport(ctx, report); err != nil {
		return fmt.Errorf("display report: %w", err)
	}

	return nil
}

type numberedDefinition struct {
	number int
	def    m.TestcaseDefinition
}

// selectTests keeps the named definitions in config order. Tests keep the
// number of their position in the full list.
func selectTests(defs []m.TestcaseDefinition, names []string) ([]numberedDefinition, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = false
	}

	selected := make([]numberedDefinition, 0, len(defs))

	for i, def := range defs {
		if _, ok := wanted[def.Name]; len(names) > 0 && !ok {
			continue
		}

		wanted[def.Name] = true

		selected = append(selected, numberedDefinition{number: i + 1, def: def})
	}

	for _, name := range names {
		if !wanted[name] {
			return nil, fmt.Errorf("unknown test %q", name)
		}
	}

	return selected, nil
}

func buildTests(defs []numberedDefinition, env *Environment) []Test {
	tests := make([]Test, 0, len(defs))

	for _, nd := range defs {
		test, err := NewTest(nd.def, nd.number, env)
		if err != nil {
			slog.Warn("Invalid testcase", "test", nd.def.Name, "number", nd.number, "error", err)
			test = &invalidTest{meta: nd.def.Meta(nd.number), kind: kindOf(nd.def), err: err}
		}

		tests = append(tests, test)
	}

	return tests
}

func kindOf(def m.TestcaseDefinition) m.TestKind {
	if def.Kind == "" {
		return m.KindIO
	}

	return def.Kind
}
