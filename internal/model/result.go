package model

import "time"

// DiagnosticsSentinel marks counts that could not be determined.
const DiagnosticsSentinel = -1

// Diagnostics are the memory-checker counts of a run.
//
// Errors is the count of the last "N errors from M contexts" summary.
// Leaks is the number of leaked blocks (definitely, indirectly and
// possibly lost) of the last leak summary.
type Diagnostics struct {
	Enabled bool   `yaml:"enabled"`
	LogPath Path   `yaml:"log_path,omitempty"`
	Leaks   int    `yaml:"leaks"`
	Errors  int    `yaml:"errors"`
	Note    string `yaml:"note,omitempty"`
}

// UnknownDiagnostics returns sentinel counts.
func UnknownDiagnostics(enabled bool, logPath Path, note string) Diagnostics {
	return Diagnostics{
		Enabled: enabled,
		LogPath: logPath,
		Leaks:   DiagnosticsSentinel,
		Errors:  DiagnosticsSentinel,
		Note:    note,
	}
}

// TestError is the serialisable form of a test-local failure.
type TestError struct {
	Kind    ErrorKind `yaml:"kind"`
	Message string    `yaml:"message"`
}

// TestResult is the outcome of one testcase. It is built once by the test
// and never mutated.
type TestResult struct {
	Number           int            `yaml:"number"`
	Name             string         `yaml:"name"`
	Description      string         `yaml:"description,omitempty"`
	Protected        bool           `yaml:"protected,omitempty"`
	Kind             TestKind       `yaml:"kind"`
	Passed           bool           `yaml:"passed"`
	Timeout          bool           `yaml:"timeout"`
	Truncated        bool           `yaml:"truncated"`
	ExitCode         *int           `yaml:"exit_code"`
	ExpectedExitCode *int           `yaml:"expected_exit_code"`
	Similarity       float64        `yaml:"similarity"`
	Diff             *TextDiff      `yaml:"diff,omitempty"`
	IODiffs          []IODiff       `yaml:"io_diffs,omitempty"`
	AuxDiff          *AuxDiffResult `yaml:"aux_diff,omitempty"`
	Diagnostics      Diagnostics    `yaml:"diagnostics"`
	CommandLine      string         `yaml:"command_line,omitempty"`
	Input            string         `yaml:"input,omitempty"`
	Duration         time.Duration  `yaml:"duration"`
	Error            *TestError     `yaml:"error,omitempty"`
}

// NewErrorResult builds the failed result recorded for a test-local error.
func NewErrorResult(meta TestMeta, kind TestKind, err error) TestResult {
	testErr := &TestError{Kind: KindOf(err), Message: err.Error()}
	if testErr.Kind == "" {
		testErr.Kind = InvalidTestcase
	}

	return TestResult{
		Number:      meta.Number,
		Name:        meta.Name,
		Description: meta.Description,
		Protected:   meta.Protected,
		Kind:        kind,
		Passed:      false,
		Diagnostics: UnknownDiagnostics(false, "", ""),
		Error:       testErr,
	}
}

// Redacted returns a copy without the details a protected test must hide.
func (r TestResult) Redacted() TestResult {
	if !r.Protected {
		return r
	}

	r.Diff = nil
	r.IODiffs = nil
	r.AuxDiff = nil
	r.Input = ""
	r.CommandLine = ""

	return r
}
