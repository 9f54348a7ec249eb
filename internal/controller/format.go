package controller

import (
	"fmt"
	"strings"
	"time"

	m "tcrun.dev/pkg/tcrun/internal/model"
)

const (
	passLabel    = "PASS"
	failLabel    = "FAIL"
	errorLabel   = "ERROR"
	unknownValue = "-"
)

// painter colours fragments of the output. The zero painter leaves text as is.
type painter struct {
	pass     func(a ...interface{}) string
	fail     func(a ...interface{}) string
	removed  func(a ...interface{}) string
	added    func(a ...interface{}) string
	emphasis func(a ...interface{}) string
	faint    func(a ...interface{}) string
}

func plain(a ...interface{}) string { return fmt.Sprint(a...) }

func plainPainter() painter {
	return painter{pass: plain, fail: plain, removed: plain, added: plain, emphasis: plain, faint: plain}
}

func statusLabel(result m.TestResult) string {
	switch {
	case result.Error != nil:
		return errorLabel
	case result.Passed:
		return passLabel
	}

	return failLabel
}

func (p painter) status(result m.TestResult) string {
	label := statusLabel(result)
	if label == passLabel {
		return p.pass(label)
	}

	return p.fail(label)
}

func formatExit(code *int) string {
	if code == nil {
		return unknownValue
	}

	return fmt.Sprintf("%d", *code)
}

func formatCount(n int) string {
	if n < 0 {
		return unknownValue
	}

	return fmt.Sprintf("%d", n)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// failureNotes lists why a result did not pass.
func failureNotes(result m.TestResult) []string {
	var notes []string

	if result.Error != nil {
		notes = append(notes, result.Error.Message)
	}

	if result.Timeout {
		notes = append(notes, "timed out")
	}

	if result.Truncated {
		notes = append(notes, "output truncated")
	}

	if result.ExpectedExitCode == nil {
		notes = append(notes, "no expected exit code configured")
	} else if result.ExitCode == nil || *result.ExitCode != *result.ExpectedExitCode {
		notes = append(notes, fmt.Sprintf("exit %s, expected %d", formatExit(result.ExitCode), *result.ExpectedExitCode))
	}

	if result.Error == nil && result.Similarity < 1 {
		notes = append(notes, fmt.Sprintf("similarity %.2f", result.Similarity))
	}

	if aux := result.AuxDiff; aux != nil && aux.Ratio() < 1 {
		notes = append(notes, fmt.Sprintf("%s differs (similarity %.2f)", aux.OutFile, aux.Ratio()))
	}

	return notes
}

// renderTextDiff writes a unified-style rendering of d, one line per
// segment, with differing tokens emphasized.
func (p painter) renderTextDiff(b *strings.Builder, d *m.TextDiff, indent string) {
	if d == nil {
		return
	}

	for _, seg := range d.Segments {
		prefix, colour := "  ", p.faint

		switch seg.Tag {
		case m.DiffRemove:
			prefix, colour = "- ", p.removed
		case m.DiffAdd:
			prefix, colour = "+ ", p.added
		case m.DiffSame:
		}

		b.WriteString(indent)
		b.WriteString(colour(prefix))

		for _, span := range seg.Spans {
			text := strings.TrimSuffix(span.Text, "\n")
			if span.Emphasized && seg.Tag != m.DiffSame {
				b.WriteString(p.emphasis(text))
			} else {
				b.WriteString(colour(text))
			}
		}

		if !strings.HasSuffix(seg.Text(), "\n") {
			b.WriteString(p.faint(" (no newline)"))
		}

		b.WriteString("\n")
	}

	if d.Partial {
		fmt.Fprintf(b, "%s%s\n", indent, p.faint("(diff incomplete: deadline reached)"))
	}
}

// renderDetails describes a failed result: notes, then the diff.
func (p painter) renderDetails(result m.TestResult) string {
	var b strings.Builder

	for _, note := range failureNotes(result) {
		fmt.Fprintf(&b, "    %s\n", note)
	}

	if result.Protected {
		b.WriteString("    (details hidden for protected test)\n")
		return b.String()
	}

	p.renderTextDiff(&b, result.Diff, "    ")

	for i, step := range result.IODiffs {
		switch step.Kind {
		case m.StepInput:
			suffix := ""
			if step.Unsent {
				suffix = p.fail(" (not delivered)")
			}

			fmt.Fprintf(&b, "    step %d < %s%s\n", i+1, strings.TrimSuffix(step.Input, "\n"), suffix)
		case m.StepOutput:
			if step.Diff != nil && step.Diff.Ratio < 1 && len(step.Diff.Segments) > 0 {
				fmt.Fprintf(&b, "    step %d >\n", i+1)
				p.renderTextDiff(&b, step.Diff, "      ")
			}
		}
	}

	if aux := result.AuxDiff; aux != nil && aux.Text != nil && aux.Text.Ratio < 1 {
		fmt.Fprintf(&b, "    %s:\n", aux.OutFile)
		p.renderTextDiff(&b, aux.Text, "      ")
	}

	return b.String()
}
