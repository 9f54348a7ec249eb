package domain

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"tcrun.dev/pkg/tcrun/internal/diff"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// exitMatched is false when no exit code is expected: a test without an
// expectation can never pass.
func exitMatched(expected, actual *int) bool {
	return expected != nil && actual != nil && *expected == *actual
}

func auxExact(aux *m.AuxDiffResult, spec *m.AuxDiffSpec) bool {
	if spec == nil {
		return true
	}

	return aux.Ratio() == 1.0
}

// diffContext bounds a diff computation. It is detached from the test
// deadline so that a timed out test still gets its diff.
func diffContext(ctx context.Context, opts m.RunOptions) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), opts.DiffTimeout)
}

// removeStaleAuxOutput deletes an auxiliary output that an earlier run left
// behind so it cannot be mistaken for this run's output.
func removeStaleAuxOutput(spec *m.AuxDiffSpec) {
	if spec == nil {
		return
	}

	if err := os.Remove(string(spec.OutFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to remove stale auxiliary output", "path", spec.OutFile, "error", err)
	}
}

// compareAux diffs the auxiliary output file against its reference.
func compareAux(ctx context.Context, spec *m.AuxDiffSpec, opts m.RunOptions) (*m.AuxDiffResult, error) {
	if spec == nil {
		return nil, nil
	}

	actual, err := os.ReadFile(string(spec.OutFile))
	if err != nil {
		return nil, m.NewTestingError(m.AuxOutputFileNotFound, spec.OutFile, err)
	}

	expected, err := os.ReadFile(string(spec.ExpFile))
	if err != nil {
		return nil, m.NewTestingError(m.ReferenceFileNotFound, spec.ExpFile, err)
	}

	ctx, cancel := diffContext(ctx, opts)
	defer cancel()

	result := &m.AuxDiffResult{Mode: spec.Mode, OutFile: spec.OutFile, ExpFile: spec.ExpFile}

	switch spec.Mode {
	case m.DiffBinary:
		bin := diff.Binary(ctx, expected, actual)
		result.Binary = &bin
	case m.DiffText:
		text := diff.Text(ctx, string(expected), string(actual))
		result.Text = &text
	}

	return result, nil
}

// attachError records a problem found after the child ran without
// discarding what was already measured.
func attachError(result *m.TestResult, err error) {
	if err == nil || result.Error != nil {
		return
	}

	kind := m.KindOf(err)
	if kind == "" {
		kind = m.InvalidTestcase
	}

	result.Passed = false
	result.Error = &m.TestError{Kind: kind, Message: err.Error()}
}
