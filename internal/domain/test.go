package domain

import (
	"context"
	"fmt"
	"os"
	"time"

	m "tcrun.dev/pkg/tcrun/internal/model"
)

// Test is a single configured testcase bound to a run environment.
type Test interface {
	Meta() m.TestMeta
	Kind() m.TestKind
	// Run executes the test. Errors are local to this test; the returned
	// result is only meaningful when err is nil.
	Run(ctx context.Context) (m.TestResult, error)
}

// NewTest builds the test for definition number n (1-based).
func NewTest(def m.TestcaseDefinition, n int, env *Environment) (Test, error) {
	meta := def.Meta(n)

	vars, err := ParseEnv(def.Env)
	if err != nil {
		return nil, err
	}

	testDir := env.Project.TestDir

	if meta.AuxDiff != nil {
		meta.AuxDiff.OutFile = meta.AuxDiff.OutFile.Resolve(env.Project.BuildDir)
		meta.AuxDiff.ExpFile = meta.AuxDiff.ExpFile.Resolve(testDir)

		if meta.AuxDiff.Mode != m.DiffText && meta.AuxDiff.Mode != m.DiffBinary {
			return nil, m.NewTestingError(m.InvalidTestcase, "", fmt.Errorf("unknown diff mode %q", meta.AuxDiff.Mode))
		}
	}

	kind := def.Kind
	if kind == "" {
		kind = m.KindIO
	}

	switch kind {
	case m.KindIO:
		return &ioTest{
			meta: meta,
			env:  env,
			spec: m.IoSpec{
				InFile:    m.Path(def.InFile).Resolve(testDir),
				InString:  def.InString,
				ExpFile:   m.Path(def.ExpFile).Resolve(testDir),
				ExpString: def.ExpString,
				Args:      def.Args,
				Env:       vars,
				ExitCode:  def.ExitCode,
			},
		}, nil
	case m.KindOrdIO:
		if def.IoFile == "" {
			return nil, m.NewTestingError(m.InvalidTestcase, "", fmt.Errorf("test %q has no io_file", def.Name))
		}

		return newOrdIoTest(meta, env, m.OrdIoSpec{
			IoFile:   m.Path(def.IoFile).Resolve(testDir),
			Prompt:   def.IoPrompt,
			Args:     def.Args,
			Env:      vars,
			ExitCode: def.ExitCode,
		})
	}

	return nil, m.NewTestingError(m.InvalidTestcase, "", fmt.Errorf("unknown test kind %q", def.Kind))
}

// readSource returns the file contents when path is set, else the literal.
func readSource(path m.Path, literal string, missing m.ErrorKind) ([]byte, error) {
	if path == "" {
		return []byte(literal), nil
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, m.NewTestingError(missing, path, err)
	}

	return data, nil
}

// timedContext bounds ctx by the test's timeout.
func timedContext(ctx context.Context, env *Environment, meta m.TestMeta) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, env.Project.TimeoutFor(meta))
}

// remaining is the time left before ctx's deadline, capped at limit.
func remaining(ctx context.Context, limit time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return limit
	}

	return max(min(time.Until(deadline), limit), 0)
}
