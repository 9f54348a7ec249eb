package domain

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	adaptermocks "tcrun.dev/pkg/tcrun/internal/adapter/mocks"
	controllermocks "tcrun.dev/pkg/tcrun/internal/controller/mocks"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

type fakeTest struct {
	meta   m.TestMeta
	delay  time.Duration
	err    error
	active *atomic.Int32
	peak   *atomic.Int32
}

func (f *fakeTest) Meta() m.TestMeta { return f.meta }

func (f *fakeTest) Kind() m.TestKind { return m.KindIO }

func (f *fakeTest) Run(context.Context) (m.TestResult, error) {
	if f.active != nil {
		n := f.active.Add(1)
		defer f.active.Add(-1)

		for {
			peak := f.peak.Load()
			if n <= peak || f.peak.CompareAndSwap(peak, n) {
				break
			}
		}
	}

	time.Sleep(f.delay)

	if f.err != nil {
		return m.TestResult{}, f.err
	}

	return m.TestResult{
		Number:    f.meta.Number,
		Name:      f.meta.Name,
		Protected: f.meta.Protected,
		Passed:    true,
		Input:     "secret",
	}, nil
}

// fixedTest returns a prepared result.
type fixedTest struct {
	result m.TestResult
}

func (f *fixedTest) Meta() m.TestMeta {
	return m.TestMeta{Number: f.result.Number, Name: f.result.Name}
}

func (f *fixedTest) Kind() m.TestKind { return f.result.Kind }

func (f *fixedTest) Run(context.Context) (m.TestResult, error) { return f.result, nil }

func quietUI(t *testing.T) *controllermocks.MockUI {
	t.Helper()

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().DisplayStartingTest(mock.Anything, mock.Anything).Return().Maybe()
	ui.EXPECT().DisplayCompletedTest(mock.Anything, mock.Anything).Return().Maybe()

	return ui
}

func TestRunner_OrdersResultsByNumber(t *testing.T) {
	tests := []Test{
		&fakeTest{meta: m.TestMeta{Number: 1, Name: "slow"}, delay: 150 * time.Millisecond},
		&fakeTest{meta: m.TestMeta{Number: 2, Name: "fast"}},
		&fakeTest{meta: m.TestMeta{Number: 3, Name: "medium"}, delay: 50 * time.Millisecond},
	}

	results, err := NewRunner(quietUI(t), 3, t.TempDir()).RunTests(context.Background(), tests)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, result := range results {
		assert.Equal(t, i+1, result.Number)
		assert.True(t, result.Passed)
	}
}

func TestRunner_IsolatesFailingTests(t *testing.T) {
	tests := []Test{
		&fakeTest{meta: m.TestMeta{Number: 1, Name: "ok"}},
		&fakeTest{meta: m.TestMeta{Number: 2, Name: "broken"},
			err: m.NewTestingError(m.ReferenceFileNotFound, "missing.out", errors.New("no such file"))},
		&invalidTest{meta: m.TestMeta{Number: 3, Name: "invalid"}, kind: "fuzz",
			err: m.NewTestingError(m.InvalidTestcase, "", errors.New(`unknown test kind "fuzz"`))},
	}

	results, err := NewRunner(quietUI(t), 2, t.TempDir()).RunTests(context.Background(), tests)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Passed)

	assert.False(t, results[1].Passed)
	require.NotNil(t, results[1].Error)
	assert.Equal(t, m.ReferenceFileNotFound, results[1].Error.Kind)
	assert.Equal(t, m.DiagnosticsSentinel, results[1].Diagnostics.Leaks)

	assert.False(t, results[2].Passed)
	assert.Equal(t, m.TestKind("fuzz"), results[2].Kind)
	assert.Equal(t, m.InvalidTestcase, results[2].Error.Kind)
}

func TestRunner_KeepsZeroExitCodes(t *testing.T) {
	prepared := m.TestResult{
		Number:           1,
		Name:             "zero",
		Kind:             m.KindIO,
		Passed:           true,
		ExitCode:         exitCode(0),
		ExpectedExitCode: exitCode(0),
		Similarity:       1,
		Duration:         20 * time.Millisecond,
	}

	results, err := NewRunner(quietUI(t), 1, t.TempDir()).RunTests(context.Background(), []Test{&fixedTest{result: prepared}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NotNil(t, results[0].ExitCode)
	require.NotNil(t, results[0].ExpectedExitCode)
	assert.Equal(t, 0, *results[0].ExitCode)
	assert.Equal(t, 0, *results[0].ExpectedExitCode)
	assert.Equal(t, prepared, results[0])
}

func TestRunner_BatchTestKeepsExitStatus(t *testing.T) {
	env := shellEnvironment(t, nil)

	test, err := NewTest(m.TestcaseDefinition{
		Name:      "sum",
		Args:      []string{"-c", "read a; read b; echo $((a + b))"},
		InString:  "3\n4\n",
		ExpString: "7\n",
		ExitCode:  exitCode(0),
	}, 1, env)
	require.NoError(t, err)

	results, err := NewRunner(quietUI(t), 1, t.TempDir()).RunTests(context.Background(), []Test{test})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].Passed)
	require.NotNil(t, results[0].ExitCode)
	require.NotNil(t, results[0].ExpectedExitCode)
	assert.Equal(t, 0, *results[0].ExitCode)
	assert.Equal(t, 0, *results[0].ExpectedExitCode)
	require.NotNil(t, results[0].Diff)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
}

func TestRunner_HonoursParallelLimit(t *testing.T) {
	var active, peak atomic.Int32

	tests := make([]Test, 0, 8)
	for i := 1; i <= 8; i++ {
		tests = append(tests, &fakeTest{
			meta:   m.TestMeta{Number: i},
			delay:  30 * time.Millisecond,
			active: &active,
			peak:   &peak,
		})
	}

	results, err := NewRunner(quietUI(t), 2, t.TempDir()).RunTests(context.Background(), tests)
	require.NoError(t, err)
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunner_RedactsProtectedResultsForDisplay(t *testing.T) {
	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().DisplayStartingTest(mock.Anything, mock.MatchedBy(func(meta m.TestMeta) bool {
		return meta.Name == "hidden"
	})).Return().Once()
	ui.EXPECT().DisplayCompletedTest(mock.Anything, mock.MatchedBy(func(result m.TestResult) bool {
		return result.Protected && result.Input == ""
	})).Return().Once()

	tests := []Test{&fakeTest{meta: m.TestMeta{Number: 1, Name: "hidden", Protected: true}}}

	results, err := NewRunner(ui, 1, t.TempDir()).RunTests(context.Background(), tests)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "secret", results[0].Input, "the stored result keeps its details")
}

func TestRunner_SpawnFailure(t *testing.T) {
	processes := adaptermocks.NewMockProcessAdapter(t)
	processes.EXPECT().Spawn(mock.Anything).
		Return(nil, m.NewTestingError(m.SpawnFailed, "/bin/sh", errors.New("permission denied"))).Once()

	project := &m.ProjectDefinition{Name: "spawn", BuildDir: m.Path(t.TempDir()), TestDir: m.Path(t.TempDir())}
	env := NewEnvironment(project, m.Binary{Path: "/bin/sh", Compiled: true}, testOptions(), processes)

	test, err := NewTest(m.TestcaseDefinition{Name: "nope", ExpString: "x\n"}, 1, env)
	require.NoError(t, err)

	results, err := NewRunner(quietUI(t), 1, t.TempDir()).RunTests(context.Background(), []Test{test})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Error)
	assert.Equal(t, m.SpawnFailed, results[0].Error.Kind)
}

func TestNewRunner_ClampsParallel(t *testing.T) {
	r, ok := NewRunner(nil, 0, "").(*runner)
	require.True(t, ok)
	assert.Equal(t, 1, r.parallel)
}
