package domain

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"tcrun.dev/pkg/tcrun/internal/adapter"
	"tcrun.dev/pkg/tcrun/internal/diff"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// ioTest feeds all input at once and compares the whole output.
type ioTest struct {
	meta m.TestMeta
	spec m.IoSpec
	env  *Environment
}

func (t *ioTest) Meta() m.TestMeta { return t.meta }

func (t *ioTest) Kind() m.TestKind { return m.KindIO }

func (t *ioTest) Run(ctx context.Context) (m.TestResult, error) {
	input, err := readSource(t.spec.InFile, t.spec.InString, m.InputFileNotFound)
	if err != nil {
		return m.TestResult{}, err
	}

	expected, err := readSource(t.spec.ExpFile, t.spec.ExpString, m.ReferenceFileNotFound)
	if err != nil {
		return m.TestResult{}, err
	}

	inv, err := t.env.invocation(t.meta.Number, t.spec.Args)
	if err != nil {
		return m.TestResult{}, err
	}

	removeStaleAuxOutput(t.meta.AuxDiff)

	runCtx, cancel := timedContext(ctx, t.env, t.meta)
	defer cancel()

	start := time.Now()

	proc, err := t.env.Processes.Spawn(t.env.processSpec(inv, t.spec.Env, 2*len(expected)))
	if err != nil {
		return m.TestResult{}, err
	}

	if err := proc.Write(input); err != nil {
		slog.Debug("Child refused input", "test", t.meta.Name, "error", err)
	}

	if err := proc.CloseInput(); err != nil {
		slog.Debug("Failed to close child input", "test", t.meta.Name, "error", err)
	}

	output, status, timedOut := collectOutput(runCtx, proc, t.env.Options)
	duration := time.Since(start)

	diffCtx, diffCancel := diffContext(ctx, t.env.Options)
	textDiff := diff.Text(diffCtx, string(expected), string(output))
	diffCancel()

	result := m.TestResult{
		Number:           t.meta.Number,
		Name:             t.meta.Name,
		Description:      t.meta.Description,
		Protected:        t.meta.Protected,
		Kind:             m.KindIO,
		Timeout:          timedOut,
		Truncated:        proc.Truncated(),
		ExitCode:         status.Code,
		ExpectedExitCode: t.spec.ExitCode,
		Similarity:       textDiff.Ratio,
		Diff:             &textDiff,
		Diagnostics:      collectDiagnostics(inv),
		CommandLine:      inv.String(),
		Input:            string(input),
		Duration:         duration,
	}

	aux, auxErr := compareAux(ctx, t.meta.AuxDiff, t.env.Options)
	result.AuxDiff = aux

	result.Passed = exitMatched(t.spec.ExitCode, status.Code) &&
		textDiff.Equal() &&
		!timedOut &&
		auxExact(aux, t.meta.AuxDiff)

	attachError(&result, auxErr)

	slog.Info("Batch test finished", "test", t.meta.Name, "passed", result.Passed,
		"timeout", timedOut, "similarity", result.Similarity, "duration", duration)

	return result, nil
}

// collectOutput drains the child's stdout with bounded polls until it exits
// or ctx expires. On expiry the child is killed and its exit code is nil.
func collectOutput(ctx context.Context, proc adapter.Process, opts m.RunOptions) ([]byte, adapter.ExitStatus, bool) {
	var out bytes.Buffer

	for {
		status, exited := proc.PollExit()
		out.Write(proc.ReadAvailable(remaining(ctx, opts.PollInterval)))

		if exited {
			out.Write(proc.ReadAvailable(0))
			return out.Bytes(), status, false
		}

		if ctx.Err() != nil {
			if _, ok := proc.KillAndDrain(opts.KillGrace); !ok {
				slog.Warn("Abandoned child after timeout", "pid", proc.Pid())
			}

			out.Write(proc.ReadAvailable(0))

			return out.Bytes(), adapter.ExitStatus{}, true
		}
	}
}
