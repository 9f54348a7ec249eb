package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"tcrun.dev/pkg/tcrun/internal/domain"
	domainmocks "tcrun.dev/pkg/tcrun/internal/domain/mocks"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

func newTestRunCmd(t *testing.T) (*domainmocks.MockWorkflow, func(args ...string) error) {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	execute := func(args ...string) error {
		cmd := newRootCmd()
		cmd.AddCommand(newRunCmd())
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"run"}, args...))

		return cmd.Execute()
	}

	return mockWorkflow, execute
}

func passingReport() m.Report {
	return m.Report{Results: []m.TestResult{{Number: 1, Name: "a", Passed: true}}}
}

func TestRunCmd_RunsAllTests(t *testing.T) {
	mockWorkflow, execute := newTestRunCmd(t)

	mockWorkflow.EXPECT().Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Options.Parallel == 2 &&
			args.Options.RunID != "" &&
			args.Reports == m.Path(".tcrun-reports") &&
			len(args.Names) == 0 &&
			args.Project != nil &&
			args.Project.BinaryPath == m.Path(defaultProjectBinary)
	})).Return(passingReport(), nil).Once()

	require.NoError(t, execute("--parallel", "2"))
}

func TestRunCmd_SelectsTestsByName(t *testing.T) {
	mockWorkflow, execute := newTestRunCmd(t)

	mockWorkflow.EXPECT().Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return len(args.Names) == 2 && args.Names[0] == "sum" && args.Names[1] == "chat"
	})).Return(passingReport(), nil).Once()

	require.NoError(t, execute("sum", "chat"))
}

func TestRunCmd_OutputFlag(t *testing.T) {
	mockWorkflow, execute := newTestRunCmd(t)

	mockWorkflow.EXPECT().Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Reports == m.Path("./elsewhere")
	})).Return(passingReport(), nil).Once()

	require.NoError(t, execute("-o", "./elsewhere"))
}

func TestRunCmd_ChecksBinary(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "prog")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o700))
	t.Setenv("TCRUN_PROJECT_BINARY", binary)

	mockWorkflow, execute := newTestRunCmd(t)

	mockWorkflow.EXPECT().Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Binary.Compiled && args.Binary.Path == m.Path(binary)
	})).Return(passingReport(), nil).Once()

	require.NoError(t, execute())
}

func TestRunCmd_FailsWhenATestFails(t *testing.T) {
	mockWorkflow, execute := newTestRunCmd(t)

	report := m.Report{Results: []m.TestResult{{Number: 1, Passed: true}, {Number: 2}}}
	mockWorkflow.EXPECT().Run(mock.Anything, mock.Anything).Return(report, nil).Once()

	err := execute()
	require.ErrorIs(t, err, errTestsFailed)
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestRunCmd_PropagatesWorkflowErrors(t *testing.T) {
	mockWorkflow, execute := newTestRunCmd(t)

	mockWorkflow.EXPECT().Run(mock.Anything, mock.Anything).Return(m.Report{}, m.ErrBinaryNotCompiled).Once()

	err := execute()
	require.ErrorIs(t, err, m.ErrBinaryNotCompiled)
	assert.False(t, errors.Is(err, errTestsFailed))
}

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()

	assert.Equal(t, "run [names...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Equal(t, runLongDescription, cmd.Long)

	parallelFlag := cmd.Flags().Lookup("parallel")
	require.NotNil(t, parallelFlag)
	assert.Equal(t, "p", parallelFlag.Shorthand)
}
