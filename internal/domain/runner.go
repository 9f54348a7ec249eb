package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"tcrun.dev/pkg/tcrun/internal/controller"
	m "tcrun.dev/pkg/tcrun/internal/model"
	"tcrun.dev/pkg/tcrun/pkg"
)

// Runner executes tests concurrently and collects their results.
type Runner interface {
	RunTests(ctx context.Context, tests []Test) ([]m.TestResult, error)
}

type runner struct {
	ui       controller.UI
	parallel int
	spillDir string
}

// NewRunner constructs a Runner with at most parallel tests in flight.
// Results are spilled to a file below spillDir while the run is going.
func NewRunner(ui controller.UI, parallel int, spillDir string) Runner {
	if parallel < 1 {
		parallel = 1
	}

	return &runner{ui: ui, parallel: parallel, spillDir: spillDir}
}

// RunTests runs every test and returns the results ordered by test number.
// A failing test never stops its siblings: its error becomes a failed result.
func (r *runner) RunTests(ctx context.Context, tests []Test) ([]m.TestResult, error) {
	spill, err := pkg.NewFileSpill[m.TestResult](r.spillDir)
	if err != nil {
		return nil, fmt.Errorf("create result spill: %w", err)
	}

	defer func() {
		if err := spill.Close(); err != nil {
			slog.Warn("Failed to close result spill", "path", spill.Path(), "error", err)
		}
	}()

	var (
		group   errgroup.Group
		uiMutex sync.Mutex
	)

	group.SetLimit(r.parallel)

	for _, test := range tests {
		group.Go(func() error {
			meta := test.Meta()

			uiMutex.Lock()
			r.ui.DisplayStartingTest(ctx, meta)
			uiMutex.Unlock()

			result := runIsolated(ctx, test)

			uiMutex.Lock()
			r.ui.DisplayCompletedTest(ctx, result.Redacted())
			uiMutex.Unlock()

			if err := spill.Append(result); err != nil {
				return fmt.Errorf("spill result of test %d: %w", meta.Number, err)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		slog.Error("Run aborted", "error", err)
		return nil, err
	}

	results := make([]m.TestResult, 0, spill.Len())

	err = spill.Range(func(_ uint64, result m.TestResult) error {
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read result spill: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Number < results[j].Number })

	return results, nil
}

func runIsolated(ctx context.Context, test Test) m.TestResult {
	meta := test.Meta()

	result, err := test.Run(ctx)
	if err != nil {
		slog.Error("Test failed to run", "test", meta.Name, "number", meta.Number, "error", err)
		return m.NewErrorResult(meta, test.Kind(), err)
	}

	return result
}

// invalidTest stands in for a definition that could not be built, so the
// problem is reported as that test's result.
type invalidTest struct {
	meta m.TestMeta
	kind m.TestKind
	err  error
}

func (t *invalidTest) Meta() m.TestMeta { return t.meta }

func (t *invalidTest) Kind() m.TestKind { return t.kind }

func (t *invalidTest) Run(context.Context) (m.TestResult, error) {
	return m.TestResult{}, t.err
}
