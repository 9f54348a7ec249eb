package domain

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	m "tcrun.dev/pkg/tcrun/internal/model"
)

// Script directive prefixes.
const (
	directiveLine     = "> "
	directiveFragment = "? "
	directiveInput    = "< "
	directiveFlush    = "!"
	directiveComment  = "#"
)

// LoadScript reads and parses an ordered-exchange script file.
func LoadScript(path m.Path) ([]m.Step, error) {
	file, err := os.Open(string(path))
	if err != nil {
		slog.Error("Failed to open script", "path", path, "error", err)
		return nil, m.NewTestingError(m.ScriptFileNotFound, path, err)
	}
	defer file.Close()

	steps, err := ParseScript(file)
	if err != nil {
		return nil, m.NewTestingError(m.ScriptFileNotFound, path, err)
	}

	return steps, nil
}

// ParseScript turns script directives into exchange steps. Adjacent steps of
// the same kind are merged; the result always starts and ends with an
// Output step.
func ParseScript(r io.Reader) ([]m.Step, error) {
	var steps []m.Step

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		step, ok := parseDirective(line)
		if !ok {
			if line != "" && !strings.HasPrefix(line, directiveComment) {
				slog.Warn("Skipping unknown script directive", "line", lineNo, "text", line)
			}

			continue
		}

		steps = appendStep(steps, step)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	if len(steps) == 0 || steps[0].Kind != m.StepOutput {
		steps = append([]m.Step{{Kind: m.StepOutput}}, steps...)
	}

	if steps[len(steps)-1].Kind != m.StepOutput {
		steps = append(steps, m.Step{Kind: m.StepOutput})
	}

	return steps, nil
}

// parseDirective maps one script line to a step. A bare ">" or "<" is an
// empty line whose trailing blank was stripped. "!" text is sent as is.
func parseDirective(line string) (m.Step, bool) {
	switch {
	case line == strings.TrimSpace(directiveLine):
		return m.Step{Kind: m.StepOutput, Text: "\n"}, true
	case line == strings.TrimSpace(directiveInput):
		return m.Step{Kind: m.StepInput, Text: "\n"}, true
	case strings.HasPrefix(line, directiveLine):
		return m.Step{Kind: m.StepOutput, Text: line[len(directiveLine):] + "\n"}, true
	case strings.HasPrefix(line, directiveFragment):
		return m.Step{Kind: m.StepOutput, Text: line[len(directiveFragment):]}, true
	case strings.HasPrefix(line, directiveInput):
		return m.Step{Kind: m.StepInput, Text: line[len(directiveInput):] + "\n"}, true
	case strings.HasPrefix(line, directiveFlush):
		return m.Step{Kind: m.StepInput, Text: line[len(directiveFlush):], Flush: true}, true
	}

	return m.Step{}, false
}

func appendStep(steps []m.Step, step m.Step) []m.Step {
	if n := len(steps); n > 0 && steps[n-1].Kind == step.Kind {
		steps[n-1].Text += step.Text
		steps[n-1].Flush = steps[n-1].Flush || step.Flush

		return steps
	}

	return append(steps, step)
}
