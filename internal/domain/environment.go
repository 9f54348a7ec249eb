package domain

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tcrun.dev/pkg/tcrun/internal/adapter"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

const unbufferTool = "stdbuf"

// Environment is the read-only context shared by every test of a run. It is
// built before the first test starts and outlives all of them.
type Environment struct {
	Project   *m.ProjectDefinition
	Binary    m.Binary
	Options   m.RunOptions
	Processes adapter.ProcessAdapter

	lookPath func(file string) (string, error)
}

// NewEnvironment constructs an Environment.
func NewEnvironment(project *m.ProjectDefinition, binary m.Binary, options m.RunOptions, processes adapter.ProcessAdapter) *Environment {
	if project == nil {
		project = &m.ProjectDefinition{}
	}

	return &Environment{
		Project:   project,
		Binary:    binary,
		Options:   options,
		Processes: processes,
		lookPath:  exec.LookPath,
	}
}

// invocation is the concrete command used to start one test's child.
type invocation struct {
	path    string
	args    []string
	logPath m.Path
}

func (i invocation) String() string {
	return strings.Join(append([]string{i.path}, i.args...), " ")
}

// invocation builds the command line for test number n, wrapping the binary
// with stdbuf and the memory checker when those are configured.
func (e *Environment) invocation(n int, args []string) (invocation, error) {
	var argv []string

	if e.Project.Unbuffered {
		tool, err := e.lookPath(unbufferTool)
		if err != nil {
			return invocation{}, m.NewTestingError(m.MissingExternalTool, unbufferTool, err)
		}

		argv = append(argv, tool, "-o0", "-e0")
	}

	var logPath m.Path

	diag := e.Project.Diagnostics
	if diag.Enabled {
		tool, err := e.lookPath(diag.Tool)
		if err != nil {
			return invocation{}, m.NewTestingError(m.MissingExternalTool, m.Path(diag.Tool), err)
		}

		logPath = e.diagnosticsLogPath(n)
		if err := os.MkdirAll(filepath.Dir(string(logPath)), 0o750); err != nil {
			slog.Error("Failed to create diagnostics log dir", "path", logPath, "error", err)
			return invocation{}, fmt.Errorf("create diagnostics log dir: %w", err)
		}

		// A log left over from an earlier run would be parsed as this run's.
		if err := os.Remove(string(logPath)); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove stale diagnostics log", "path", logPath, "error", err)
		}

		argv = append(argv, tool, "--log-file="+string(logPath))
		argv = append(argv, diag.Flags...)
	}

	argv = append(argv, string(e.Binary.Path))
	argv = append(argv, args...)

	return invocation{path: argv[0], args: argv[1:], logPath: logPath}, nil
}

func (e *Environment) diagnosticsLogPath(n int) m.Path {
	dir := e.Project.Diagnostics.LogDir
	if dir == "" {
		dir = m.Path(os.TempDir())
	}

	return m.Path(filepath.Join(string(dir), e.Options.RunID, fmt.Sprintf("test_%d.log", n)))
}

// processSpec assembles the spawn request for an invocation.
func (e *Environment) processSpec(inv invocation, env []m.EnvVar, outputLimit int) adapter.ProcessSpec {
	return adapter.ProcessSpec{
		Path:        inv.path,
		Args:        inv.args,
		Env:         resolveEnv(env),
		Dir:         string(e.Project.BuildDir),
		OutputLimit: outputLimit,
	}
}
