package domain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"tcrun.dev/pkg/tcrun/internal/adapter"
	"tcrun.dev/pkg/tcrun/internal/diff"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// DefaultPrompt completes an Output step at the end of a line.
const DefaultPrompt = `\n$`

// ordIoTest drives an interactive exchange from a script.
type ordIoTest struct {
	meta   m.TestMeta
	spec   m.OrdIoSpec
	prompt *regexp.Regexp
	env    *Environment
}

func newOrdIoTest(meta m.TestMeta, env *Environment, spec m.OrdIoSpec) (*ordIoTest, error) {
	if spec.Prompt == "" {
		spec.Prompt = DefaultPrompt
	}

	prompt, err := regexp.Compile(spec.Prompt)
	if err != nil {
		return nil, m.NewTestingError(m.InvalidTestcase, "", fmt.Errorf("invalid prompt %q: %w", spec.Prompt, err))
	}

	return &ordIoTest{meta: meta, spec: spec, prompt: prompt, env: env}, nil
}

func (t *ordIoTest) Meta() m.TestMeta { return t.meta }

func (t *ordIoTest) Kind() m.TestKind { return m.KindOrdIO }

// capturedStep is one element of the transcript actually exchanged.
type capturedStep struct {
	kind   m.StepKind
	text   []byte
	unsent bool
}

func (t *ordIoTest) Run(ctx context.Context) (m.TestResult, error) {
	script, err := LoadScript(t.spec.IoFile)
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

	proc, err := t.env.Processes.Spawn(t.env.processSpec(inv, t.spec.Env, t.env.Options.MaxOutputBytes))
	if err != nil {
		return m.TestResult{}, err
	}

	ex := &exchange{proc: proc, prompt: t.prompt, opts: t.env.Options}
	captured, timedOut := ex.run(runCtx, script)
	status := ex.finish(runCtx, &captured)
	duration := time.Since(start)

	emptyHonoured := emptyStepsHonoured(script, captured)
	truncated := truncateFinalOutput(script, captured) || proc.Truncated()

	ioDiffs, similarity := scoreTranscript(ctx, script, captured, t.env.Options)

	result := m.TestResult{
		Number:           t.meta.Number,
		Name:             t.meta.Name,
		Description:      t.meta.Description,
		Protected:        t.meta.Protected,
		Kind:             m.KindOrdIO,
		Timeout:          timedOut,
		Truncated:        truncated,
		ExitCode:         status.Code,
		ExpectedExitCode: t.spec.ExitCode,
		Similarity:       similarity,
		IODiffs:          ioDiffs,
		Diagnostics:      collectDiagnostics(inv),
		CommandLine:      inv.String(),
		Input:            scriptInput(script),
		Duration:         duration,
	}

	aux, auxErr := compareAux(ctx, t.meta.AuxDiff, t.env.Options)
	result.AuxDiff = aux

	result.Passed = exitMatched(t.spec.ExitCode, status.Code) &&
		similarity == 1.0 &&
		emptyHonoured &&
		!timedOut &&
		auxExact(aux, t.meta.AuxDiff)

	if !timedOut {
		attachError(&result, validateStructure(script, captured))
	}

	attachError(&result, auxErr)

	slog.Info("Ordered test finished", "test", t.meta.Name, "passed", result.Passed,
		"timeout", timedOut, "steps", len(captured), "of", len(script), "duration", duration)

	return result, nil
}

// exchange is the state of one scripted conversation with a child.
type exchange struct {
	proc   adapter.Process
	prompt *regexp.Regexp
	opts   m.RunOptions
}

// run walks the script. The transcript stops early when the deadline fires
// (timedOut) or when the child is gone before a non-empty expected Output.
func (e *exchange) run(ctx context.Context, script []m.Step) ([]capturedStep, bool) {
	captured := make([]capturedStep, 0, len(script))

	for i, step := range script {
		switch step.Kind {
		case m.StepInput:
			captured = append(captured, e.send(step))
		case m.StepOutput:
			text, outcome := e.await(ctx, step)

			if outcome == outcomeGone {
				slog.Debug("Child gone before expected output", "step", i, "pid", e.proc.Pid())
				return captured, false
			}

			captured = append(captured, capturedStep{kind: m.StepOutput, text: text})

			if outcome == outcomeTimeout {
				return captured, true
			}
		}
	}

	return captured, false
}

func (e *exchange) send(step m.Step) capturedStep {
	sent := capturedStep{kind: m.StepInput, text: []byte(step.Text)}

	if _, exited := e.proc.PollExit(); exited {
		sent.unsent = true
		return sent
	}

	flushes := 1
	if step.Flush {
		flushes = 2
	}

	err := e.proc.Write(sent.text)
	for i := 0; err == nil && i < flushes; i++ {
		err = e.proc.Flush()
	}

	if err != nil {
		slog.Debug("Failed to deliver input", "pid", e.proc.Pid(), "error", err)
		sent.unsent = true
	}

	return sent
}

type awaitOutcome int

const (
	outcomeComplete awaitOutcome = iota
	outcomeTimeout
	outcomeGone
)

// await collects output for one Output step until the prompt matches.
func (e *exchange) await(ctx context.Context, step m.Step) ([]byte, awaitOutcome) {
	// Nothing is expected: one poll catches surprise output.
	if step.Text == "" {
		return e.proc.ReadAvailable(remaining(ctx, e.opts.PollInterval)), outcomeComplete
	}

	var buf []byte

	for {
		if len(buf) > 0 && e.prompt.Match(buf) {
			return buf, outcomeComplete
		}

		if ctx.Err() != nil {
			return buf, outcomeTimeout
		}

		_, exited := e.proc.PollExit()
		chunk := e.proc.ReadAvailable(remaining(ctx, e.opts.PollInterval))
		buf = append(buf, chunk...)

		if exited && len(chunk) == 0 {
			if len(buf) == 0 {
				return nil, outcomeGone
			}

			return buf, outcomeComplete
		}
	}
}

// finish catches trailing output, closes stdin and resolves the exit status.
func (e *exchange) finish(ctx context.Context, captured *[]capturedStep) adapter.ExitStatus {
	tail := e.drain(remaining(ctx, e.opts.DrainGrace))
	appendTail(captured, tail)

	if err := e.proc.CloseInput(); err != nil {
		slog.Debug("Failed to close child input", "pid", e.proc.Pid(), "error", err)
	}

	if status, ok := e.proc.WaitExit(remaining(ctx, e.opts.DrainGrace)); ok {
		appendTail(captured, e.proc.ReadAvailable(0))
		return status
	}

	if _, ok := e.proc.KillAndDrain(e.opts.KillGrace); !ok {
		slog.Warn("Abandoned child after exchange", "pid", e.proc.Pid())
	}

	appendTail(captured, e.proc.ReadAvailable(0))

	return adapter.ExitStatus{}
}

func (e *exchange) drain(window time.Duration) []byte {
	var out []byte

	deadline := time.Now().Add(window)

	for {
		_, exited := e.proc.PollExit()
		chunk := e.proc.ReadAvailable(max(time.Until(deadline), 0))
		out = append(out, chunk...)

		if (exited && len(chunk) == 0) || !time.Now().Before(deadline) {
			return out
		}
	}
}

// appendTail adds late output to the last Output step of the transcript.
func appendTail(captured *[]capturedStep, tail []byte) {
	if len(tail) == 0 {
		return
	}

	steps := *captured
	if n := len(steps); n > 0 && steps[n-1].kind == m.StepOutput {
		steps[n-1].text = append(steps[n-1].text, tail...)
		return
	}

	*captured = append(steps, capturedStep{kind: m.StepOutput, text: tail})
}

// emptyStepsHonoured reports whether every Output step that expects nothing
// captured nothing.
func emptyStepsHonoured(script []m.Step, captured []capturedStep) bool {
	for i, step := range script {
		if step.Kind != m.StepOutput || step.Text != "" || i >= len(captured) {
			continue
		}

		if len(captured[i].text) > 0 {
			return false
		}
	}

	return true
}

// truncateFinalOutput caps the last captured Output step at twice the
// reference's last Output step.
func truncateFinalOutput(script []m.Step, captured []capturedStep) bool {
	refLast, capLast := -1, -1

	for i := range script {
		if script[i].Kind == m.StepOutput {
			refLast = i
		}
	}

	for i := range captured {
		if captured[i].kind == m.StepOutput {
			capLast = i
		}
	}

	if refLast < 0 || capLast < 0 {
		return false
	}

	limit := 2 * len(script[refLast].Text)
	if len(captured[capLast].text) <= limit {
		return false
	}

	captured[capLast].text = captured[capLast].text[:limit]

	return true
}

// validateStructure checks that the transcript lines up with the script.
func validateStructure(script []m.Step, captured []capturedStep) error {
	if len(script) != len(captured) {
		return m.NewTestingError(m.ProtocolMismatch, "",
			fmt.Errorf("transcript has %d steps, script has %d", len(captured), len(script)))
	}

	for i := range script {
		if script[i].Kind != captured[i].kind {
			return m.NewTestingError(m.ProtocolMismatch, "",
				fmt.Errorf("step %d is %s in the transcript but %s in the script", i+1, captured[i].kind, script[i].Kind))
		}
	}

	return nil
}

// scoreTranscript diffs every reference step against its captured
// counterpart. Similarity is weighted by the reference step's length.
func scoreTranscript(ctx context.Context, script []m.Step, captured []capturedStep, opts m.RunOptions) ([]m.IODiff, float64) {
	diffCtx, cancel := diffContext(ctx, opts)
	defer cancel()

	ioDiffs := make([]m.IODiff, 0, len(script))

	var weighted, total float64

	for i, step := range script {
		if step.Kind == m.StepInput {
			unsent := i >= len(captured) || captured[i].kind != m.StepInput || captured[i].unsent
			ioDiffs = append(ioDiffs, m.IODiff{Kind: m.StepInput, Input: step.Text, Unsent: unsent})

			continue
		}

		actual := ""
		if i < len(captured) && captured[i].kind == m.StepOutput {
			actual = string(captured[i].text)
		}

		stepDiff := diff.Text(diffCtx, step.Text, actual)
		ioDiffs = append(ioDiffs, m.IODiff{Kind: m.StepOutput, Diff: &stepDiff})

		weight := float64(len(step.Text))
		weighted += weight * stepDiff.Ratio
		total += weight
	}

	if total == 0 {
		return ioDiffs, 0.0
	}

	return ioDiffs, weighted / total
}

func scriptInput(script []m.Step) string {
	var b strings.Builder

	for _, step := range script {
		if step.Kind == m.StepInput {
			b.WriteString(step.Text)
		}
	}

	return b.String()
}
