package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"tcrun.dev/pkg/tcrun/internal/adapter"
	adaptermocks "tcrun.dev/pkg/tcrun/internal/adapter/mocks"
	"tcrun.dev/pkg/tcrun/internal/controller"
	controllermocks "tcrun.dev/pkg/tcrun/internal/controller/mocks"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

func shellRunArgs(t *testing.T, tests ...m.TestcaseDefinition) RunArgs {
	t.Helper()

	opts := testOptions()
	opts.Parallel = 2

	return RunArgs{
		Project:  &m.ProjectDefinition{Name: "calc", BuildDir: m.Path(t.TempDir()), TestDir: m.Path(t.TempDir())},
		Binary:   m.Binary{Path: "/bin/sh", Compiled: true},
		Options:  opts,
		Tests:    tests,
		Reports:  m.Path(t.TempDir()),
		SpillDir: m.Path(t.TempDir()),
	}
}

func expectRunUI(ui *controllermocks.MockUI) {
	ui.EXPECT().Start(mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()
	ui.EXPECT().DisplayRunInfo(mock.Anything, mock.Anything).Return().Once()
	ui.EXPECT().DisplayStartingTest(mock.Anything, mock.Anything).Return().Maybe()
	ui.EXPECT().DisplayCompletedTest(mock.Anything, mock.Anything).Return().Maybe()
	ui.EXPECT().Wait(mock.Anything).Return().Once()
}

func TestWorkflow_Run(t *testing.T) {
	args := shellRunArgs(t,
		m.TestcaseDefinition{Name: "echo", Args: []string{"-c", "echo hi"}, ExpString: "hi\n", ExitCode: exitCode(0)},
		m.TestcaseDefinition{Name: "wrong", Args: []string{"-c", "echo bye"}, ExpString: "hi\n", ExitCode: exitCode(0)},
		m.TestcaseDefinition{Name: "exit", Args: []string{"-c", "echo done; exit 2"}, ExpString: "done\n", ExitCode: exitCode(2)},
	)

	ui := controllermocks.NewMockUI(t)
	expectRunUI(ui)
	ui.EXPECT().DisplayReport(mock.Anything, mock.MatchedBy(func(report m.Report) bool {
		return len(report.Results) == 3
	})).Return(nil).Once()

	store := adaptermocks.NewMockReportStore(t)
	store.EXPECT().SaveReport(args.Reports, mock.Anything).Return(nil).Once()

	wf := NewWorkflow(store, adapter.NewLocalProcessAdapter(), ui)

	report, err := wf.Run(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, "test-run", report.RunID)
	assert.Equal(t, "calc", report.Project)
	require.Len(t, report.Results, 3)

	assert.True(t, report.Results[0].Passed)
	assert.False(t, report.Results[1].Passed)
	assert.True(t, report.Results[2].Passed)

	passed, failed := report.Summary()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)
}

func TestWorkflow_RunSelectsByName(t *testing.T) {
	args := shellRunArgs(t,
		m.TestcaseDefinition{Name: "first", Args: []string{"-c", "echo 1"}, ExpString: "1\n", ExitCode: exitCode(0)},
		m.TestcaseDefinition{Name: "second", Args: []string{"-c", "echo 2"}, ExpString: "2\n", ExitCode: exitCode(0)},
		m.TestcaseDefinition{Name: "third", Kind: "fuzz"},
	)
	args.Names = []string{"third", "second"}
	args.Reports = ""

	ui := controllermocks.NewMockUI(t)
	expectRunUI(ui)
	ui.EXPECT().DisplayReport(mock.Anything, mock.Anything).Return(nil).Once()

	wf := NewWorkflow(adaptermocks.NewMockReportStore(t), adapter.NewLocalProcessAdapter(), ui)

	report, err := wf.Run(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	assert.Equal(t, 2, report.Results[0].Number)
	assert.True(t, report.Results[0].Passed)

	assert.Equal(t, 3, report.Results[1].Number)
	assert.False(t, report.Results[1].Passed)
	require.NotNil(t, report.Results[1].Error)
	assert.Equal(t, m.InvalidTestcase, report.Results[1].Error.Kind)
}

func TestWorkflow_RunFailsBeforeStarting(t *testing.T) {
	t.Run("binary not compiled", func(t *testing.T) {
		args := shellRunArgs(t, m.TestcaseDefinition{Name: "a"})
		args.Binary.Compiled = false

		wf := NewWorkflow(adaptermocks.NewMockReportStore(t), nil, controllermocks.NewMockUI(t))

		_, err := wf.Run(context.Background(), args)
		require.ErrorIs(t, err, m.ErrBinaryNotCompiled)
	})

	t.Run("unknown test name", func(t *testing.T) {
		args := shellRunArgs(t, m.TestcaseDefinition{Name: "a"})
		args.Names = []string{"b"}

		wf := NewWorkflow(adaptermocks.NewMockReportStore(t), nil, controllermocks.NewMockUI(t))

		_, err := wf.Run(context.Background(), args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown test "b"`)
	})

	t.Run("ui fails to start", func(t *testing.T) {
		args := shellRunArgs(t, m.TestcaseDefinition{Name: "a"})

		ui := controllermocks.NewMockUI(t)
		ui.EXPECT().Start(mock.Anything, mock.Anything).Return(errors.New("no terminal")).Once()

		wf := NewWorkflow(adaptermocks.NewMockReportStore(t), nil, ui)

		_, err := wf.Run(context.Background(), args)
		require.ErrorContains(t, err, "no terminal")
	})
}

func TestWorkflow_RunReportsSaveError(t *testing.T) {
	args := shellRunArgs(t, m.TestcaseDefinition{Name: "a", Args: []string{"-c", "true"}, ExitCode: exitCode(0)})

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()
	ui.EXPECT().DisplayRunInfo(mock.Anything, mock.Anything).Return().Once()
	ui.EXPECT().DisplayStartingTest(mock.Anything, mock.Anything).Return().Once()
	ui.EXPECT().DisplayCompletedTest(mock.Anything, mock.Anything).Return().Once()

	store := adaptermocks.NewMockReportStore(t)
	store.EXPECT().SaveReport(mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	wf := NewWorkflow(store, adapter.NewLocalProcessAdapter(), ui)

	report, err := wf.Run(context.Background(), args)
	require.ErrorContains(t, err, "disk full")
	assert.Len(t, report.Results, 1)
}

func TestWorkflow_List(t *testing.T) {
	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()
	ui.EXPECT().DisplayTestList(mock.Anything, []controller.TestEntry{
		{Number: 1, Name: "a", Kind: m.KindIO, Timeout: 2},
		{Number: 2, Name: "b", Kind: m.KindOrdIO, Protected: true},
	}).Return(nil).Once()

	wf := NewWorkflow(adaptermocks.NewMockReportStore(t), nil, ui)

	err := wf.List(context.Background(), ListArgs{Tests: []m.TestcaseDefinition{
		{Name: "a", Timeout: 2},
		{Name: "b", Kind: m.KindOrdIO, Protected: true},
	}})
	require.NoError(t, err)
}

func TestWorkflow_View(t *testing.T) {
	saved := m.Report{RunID: "r1", Project: "calc", Results: []m.TestResult{{Number: 1, Name: "a", Passed: true}}}

	t.Run("renders the saved report", func(t *testing.T) {
		store := adaptermocks.NewMockReportStore(t)
		store.EXPECT().LoadReport(m.Path("reports")).Return(saved, nil).Once()

		ui := controllermocks.NewMockUI(t)
		ui.EXPECT().Start(mock.Anything, mock.Anything).Return(nil).Once()
		ui.EXPECT().Close(mock.Anything).Return().Once()
		ui.EXPECT().DisplayReport(mock.Anything, saved).Return(nil).Once()

		wf := NewWorkflow(store, nil, ui)
		require.NoError(t, wf.View(context.Background(), ViewArgs{Reports: "reports"}))
	})

	t.Run("missing report", func(t *testing.T) {
		store := adaptermocks.NewMockReportStore(t)
		store.EXPECT().LoadReport(mock.Anything).Return(m.Report{}, errors.New("no such file")).Once()

		wf := NewWorkflow(store, nil, controllermocks.NewMockUI(t))

		err := wf.View(context.Background(), ViewArgs{Reports: "reports"})
		require.ErrorContains(t, err, "load report")
	})
}

func TestSelectTests(t *testing.T) {
	defs := []m.TestcaseDefinition{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	all, err := selectTests(defs, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[2].number)

	some, err := selectTests(defs, []string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "a", some[0].def.Name)
	assert.Equal(t, 1, some[0].number)
	assert.Equal(t, 3, some[1].number)
}
