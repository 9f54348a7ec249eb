package model

import "time"

// DefaultTimeout applies when neither the testcase nor the project sets one.
const DefaultTimeout = 5 * time.Second

// DiagnosticsOptions configures the memory checker wrapped around the child.
type DiagnosticsOptions struct {
	Enabled bool
	Tool    string   // executable looked up on PATH, e.g. valgrind
	Flags   []string // tool flags placed before the binary
	LogDir  Path     // per-run logs are written below this directory
}

// ProjectDefinition is the read-only project configuration shared by all tests.
type ProjectDefinition struct {
	Name        string
	BinaryPath  Path
	BuildDir    Path // working directory of the child process
	TestDir     Path // base for relative in/exp/io files
	Timeout     time.Duration
	Unbuffered  bool // wrap the child with stdbuf to disable stdio buffering
	Diagnostics DiagnosticsOptions
}

// TimeoutFor returns the wall-clock budget for a test.
func (p *ProjectDefinition) TimeoutFor(meta TestMeta) time.Duration {
	if meta.Timeout > 0 {
		return meta.Timeout
	}

	if p != nil && p.Timeout > 0 {
		return p.Timeout
	}

	return DefaultTimeout
}

// Binary is the handle to the candidate program, produced once per run.
type Binary struct {
	Path     Path
	Compiled bool
	Warnings int
	Errors   int
}

// RunOptions are the run-wide knobs threaded into every test at construction.
type RunOptions struct {
	RunID          string
	Parallel       int
	PollInterval   time.Duration // ordered-mode read poll
	DrainGrace     time.Duration // trailing output window after the script
	KillGrace      time.Duration // wait after SIGKILL before abandoning the child
	DiffTimeout    time.Duration
	MaxOutputBytes int // capture cap for ordered tests, negative means unlimited
	Verbose        bool
}

// Default run option values.
const (
	DefaultPollInterval   = 250 * time.Millisecond
	DefaultDrainGrace     = 300 * time.Millisecond
	DefaultKillGrace      = 2 * time.Second
	DefaultDiffTimeout    = 5 * time.Second
	DefaultMaxOutputBytes = 16 << 20
)

// DefaultRunOptions returns options populated with the defaults above.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Parallel:       1,
		PollInterval:   DefaultPollInterval,
		DrainGrace:     DefaultDrainGrace,
		KillGrace:      DefaultKillGrace,
		DiffTimeout:    DefaultDiffTimeout,
		MaxOutputBytes: DefaultMaxOutputBytes,
	}
}
