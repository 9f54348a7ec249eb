package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

func writeFile(t *testing.T, dir m.Path, name, content string) string {
	t.Helper()

	path := filepath.Join(string(dir), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func runDefinition(t *testing.T, env *Environment, def m.TestcaseDefinition) m.TestResult {
	t.Helper()

	test, err := NewTest(def, 1, env)
	require.NoError(t, err)

	result, err := test.Run(context.Background())
	require.NoError(t, err)

	return result
}

func TestIoTest_Passes(t *testing.T) {
	env := shellEnvironment(t, nil)
	writeFile(t, env.Project.TestDir, "sum.in", "3\n4\n")

	result := runDefinition(t, env, m.TestcaseDefinition{
		Name:      "sum",
		Args:      []string{"-c", "read a; read b; echo $((a + b))"},
		InFile:    "sum.in",
		ExpString: "7\n",
		ExitCode:  exitCode(0),
	})

	assert.True(t, result.Passed)
	assert.Equal(t, m.KindIO, result.Kind)
	assert.InDelta(t, 1.0, result.Similarity, 1e-9)
	require.NotNil(t, result.ExitCode)
	assert.Equal(t, 0, *result.ExitCode)
	assert.Equal(t, "3\n4\n", result.Input)
	assert.Contains(t, result.CommandLine, "/bin/sh -c")
	assert.False(t, result.Diagnostics.Enabled)
	assert.Nil(t, result.Error)
}

func TestIoTest_Failures(t *testing.T) {
	tests := []struct {
		name  string
		def   m.TestcaseDefinition
		check func(t *testing.T, result m.TestResult)
	}{
		{
			name: "wrong output",
			def: m.TestcaseDefinition{
				Args: []string{"-c", "echo 8"}, ExpString: "7\n", ExitCode: exitCode(0),
			},
			check: func(t *testing.T, result m.TestResult) {
				assert.False(t, result.Passed)
				assert.Less(t, result.Similarity, 1.0)
				require.NotNil(t, result.Diff)
				assert.False(t, result.Diff.Equal())
			},
		},
		{
			name: "wrong exit code",
			def: m.TestcaseDefinition{
				Args: []string{"-c", "echo 7; exit 3"}, ExpString: "7\n", ExitCode: exitCode(0),
			},
			check: func(t *testing.T, result m.TestResult) {
				assert.False(t, result.Passed)
				assert.InDelta(t, 1.0, result.Similarity, 1e-9)
				require.NotNil(t, result.ExitCode)
				assert.Equal(t, 3, *result.ExitCode)
			},
		},
		{
			name: "no expected exit code never passes",
			def: m.TestcaseDefinition{
				Args: []string{"-c", "echo 7"}, ExpString: "7\n",
			},
			check: func(t *testing.T, result m.TestResult) {
				assert.False(t, result.Passed)
				assert.InDelta(t, 1.0, result.Similarity, 1e-9)
			},
		},
		{
			name: "output truncated at twice the reference",
			def: m.TestcaseDefinition{
				Args: []string{"-c", "echo abcdefghij"}, ExpString: "ab\n", ExitCode: exitCode(0),
			},
			check: func(t *testing.T, result m.TestResult) {
				assert.False(t, result.Passed)
				assert.True(t, result.Truncated)

				require.NotNil(t, result.Diff)

				var actual string
				for _, seg := range result.Diff.Segments {
					if seg.Tag != m.DiffRemove {
						actual += seg.Text()
					}
				}

				assert.Equal(t, "abcdef", actual)
			},
		},
		{
			name: "env override reaches the child",
			def: m.TestcaseDefinition{
				Args: []string{"-c", "echo $GREETING"}, Env: []string{"GREETING=hi"}, ExpString: "hi\n", ExitCode: exitCode(0),
			},
			check: func(t *testing.T, result m.TestResult) {
				assert.True(t, result.Passed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := shellEnvironment(t, nil)
			tt.def.Name = tt.name
			tt.check(t, runDefinition(t, env, tt.def))
		})
	}
}

func TestIoTest_Timeout(t *testing.T) {
	env := shellEnvironment(t, nil)

	start := time.Now()
	result := runDefinition(t, env, m.TestcaseDefinition{
		Name:      "hang",
		Args:      []string{"-c", "echo partial; sleep 10"},
		ExpString: "done\n",
		ExitCode:  exitCode(0),
		Timeout:   1,
	})

	assert.Less(t, time.Since(start), 6*time.Second)
	assert.True(t, result.Timeout)
	assert.False(t, result.Passed)
	assert.Nil(t, result.ExitCode)
	require.NotNil(t, result.Diff)

	var captured string
	for _, seg := range result.Diff.Segments {
		if seg.Tag == m.DiffAdd {
			captured += seg.Text()
		}
	}

	assert.Equal(t, "partial\n", captured)
}

func TestIoTest_MissingFiles(t *testing.T) {
	env := shellEnvironment(t, nil)

	missingInput, err := NewTest(m.TestcaseDefinition{Name: "in", InFile: "absent.in", Args: []string{"-c", "true"}}, 1, env)
	require.NoError(t, err)

	_, err = missingInput.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, m.InputFileNotFound, m.KindOf(err))

	missingRef, err := NewTest(m.TestcaseDefinition{Name: "exp", ExpFile: "absent.out", Args: []string{"-c", "true"}}, 2, env)
	require.NoError(t, err)

	_, err = missingRef.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, m.ReferenceFileNotFound, m.KindOf(err))
}

func TestIoTest_AuxDiff(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		mode       m.DiffMode
		wantPassed bool
		wantKind   m.ErrorKind
	}{
		{name: "text match", script: "printf 'x\\ny\\n' > out.txt; echo ok", mode: m.DiffText, wantPassed: true},
		{name: "binary match", script: "printf 'x\\ny\\n' > out.txt; echo ok", mode: m.DiffBinary, wantPassed: true},
		{name: "text mismatch", script: "printf 'x\\nz\\n' > out.txt; echo ok", mode: m.DiffText},
		{name: "missing output", script: "echo ok", mode: m.DiffText, wantKind: m.AuxOutputFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := shellEnvironment(t, nil)
			writeFile(t, env.Project.TestDir, "out.expected", "x\ny\n")

			// A file left behind by an earlier run must not count.
			writeFile(t, env.Project.BuildDir, "out.txt", "x\ny\n")

			result := runDefinition(t, env, m.TestcaseDefinition{
				Name:        tt.name,
				Args:        []string{"-c", tt.script},
				ExpString:   "ok\n",
				ExitCode:    exitCode(0),
				AddOutFile:  "out.txt",
				AddExpFile:  "out.expected",
				AddDiffMode: tt.mode,
			})

			assert.Equal(t, tt.wantPassed, result.Passed)
			require.NotNil(t, result.ExitCode)

			if tt.wantKind != "" {
				require.NotNil(t, result.Error)
				assert.Equal(t, tt.wantKind, result.Error.Kind)
				assert.InDelta(t, 1.0, result.Similarity, 1e-9)

				return
			}

			require.NotNil(t, result.AuxDiff)
			assert.Equal(t, tt.mode, result.AuxDiff.Mode)
		})
	}
}

func TestIoTest_Diagnostics(t *testing.T) {
	toolDir := t.TempDir()
	tool := filepath.Join(toolDir, "fakecheck")

	// Writes a memcheck style log, then runs the wrapped command.
	script := `#!/bin/sh
log="${1#--log-file=}"
shift
shift
cat > "$log" <<'EOF'
==1== LEAK SUMMARY:
==1==    definitely lost: 10 bytes in 2 blocks
==1==      possibly lost: 4 bytes in 1 blocks
==1== ERROR SUMMARY: 5 errors from 2 contexts (suppressed: 0 from 0)
EOF
exec "$@"
`
	require.NoError(t, os.WriteFile(tool, []byte(script), 0o700))

	env := shellEnvironment(t, &m.ProjectDefinition{
		Name: "diag",
		Diagnostics: m.DiagnosticsOptions{
			Enabled: true,
			Tool:    tool,
			Flags:   []string{"--leak-check=full"},
			LogDir:  m.Path(t.TempDir()),
		},
	})

	result := runDefinition(t, env, m.TestcaseDefinition{
		Name:      "leaky",
		Args:      []string{"-c", "echo hi"},
		ExpString: "hi\n",
		ExitCode:  exitCode(0),
	})

	assert.True(t, result.Passed)
	assert.True(t, result.Diagnostics.Enabled)
	assert.Equal(t, 5, result.Diagnostics.Errors)
	assert.Equal(t, 3, result.Diagnostics.Leaks)
	assert.Contains(t, result.CommandLine, "--log-file=")
}
