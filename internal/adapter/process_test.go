package adapter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

func spawnShell(t *testing.T, script string, limit int) Process {
	t.Helper()

	proc, err := NewLocalProcessAdapter().Spawn(ProcessSpec{
		Path:        "/bin/sh",
		Args:        []string{"-c", script},
		OutputLimit: limit,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		proc.KillAndDrain(time.Second)
	})

	return proc
}

func readUntilExit(proc Process, within time.Duration) string {
	var out strings.Builder

	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		out.Write(proc.ReadAvailable(50 * time.Millisecond))

		if _, exited := proc.PollExit(); exited {
			out.Write(proc.ReadAvailable(0))
			break
		}
	}

	return out.String()
}

func TestLocalProcess_EchoesInput(t *testing.T) {
	proc := spawnShell(t, "read a; read b; echo $((a + b))", UnlimitedOutput)

	require.NoError(t, proc.Write([]byte("3\n4\n")))
	require.NoError(t, proc.CloseInput())

	out := readUntilExit(proc, 5*time.Second)
	assert.Equal(t, "7\n", out)

	status, ok := proc.WaitExit(time.Second)
	require.True(t, ok)
	require.NotNil(t, status.Code)
	assert.Equal(t, 0, *status.Code)
	assert.False(t, proc.Truncated())
}

func TestLocalProcess_ExitCode(t *testing.T) {
	proc := spawnShell(t, "exit 3", UnlimitedOutput)

	status, ok := proc.WaitExit(5 * time.Second)
	require.True(t, ok)
	require.NotNil(t, status.Code)
	assert.Equal(t, 3, *status.Code)
}

func TestLocalProcess_ReadAvailableIsBounded(t *testing.T) {
	proc := spawnShell(t, "sleep 10", UnlimitedOutput)

	start := time.Now()
	out := proc.ReadAvailable(100 * time.Millisecond)

	assert.Empty(t, out)
	assert.Less(t, time.Since(start), 2*time.Second)

	_, exited := proc.PollExit()
	assert.False(t, exited)
}

func TestLocalProcess_KillAndDrainTerminatesGroup(t *testing.T) {
	// The background sleep holds stdout open; only a group kill releases it.
	proc := spawnShell(t, "sleep 10 & sleep 10; wait", UnlimitedOutput)

	start := time.Now()
	status, ok := proc.KillAndDrain(5 * time.Second)

	require.True(t, ok)
	assert.Nil(t, status.Code, "signaled child has no exit code")
	assert.Less(t, time.Since(start), 5*time.Second)

	_, exited := proc.PollExit()
	assert.True(t, exited)
}

func TestLocalProcess_OutputLimit(t *testing.T) {
	proc := spawnShell(t, "printf 'abcdefghij'", 4)

	out := readUntilExit(proc, 5*time.Second)

	assert.Equal(t, "abcd", out)
	assert.True(t, proc.Truncated())
}

func TestLocalProcess_WriteAfterCloseFails(t *testing.T) {
	proc := spawnShell(t, "cat >/dev/null", UnlimitedOutput)

	require.NoError(t, proc.CloseInput())
	require.NoError(t, proc.CloseInput(), "closing twice is harmless")

	assert.ErrorIs(t, proc.Write([]byte("late\n")), ErrInputClosed)
}

func TestLocalProcess_SpawnFailure(t *testing.T) {
	_, err := NewLocalProcessAdapter().Spawn(ProcessSpec{Path: "/does/not/exist/binary"})

	require.Error(t, err)
	assert.Equal(t, m.SpawnFailed, m.KindOf(err))
}

func TestLocalProcess_EnvOverride(t *testing.T) {
	proc, err := NewLocalProcessAdapter().Spawn(ProcessSpec{
		Path:        "/bin/sh",
		Args:        []string{"-c", "printf '%s' \"$TCRUN_PROBE\""},
		Env:         []string{"TCRUN_PROBE=visible"},
		OutputLimit: UnlimitedOutput,
	})
	require.NoError(t, err)

	assert.Equal(t, "visible", readUntilExit(proc, 5*time.Second))
}

func TestOutputSink_ReportsFullWrite(t *testing.T) {
	sink := newOutputSink(3)

	n, err := sink.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = sink.Write([]byte("more"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Equal(t, []byte("hel"), sink.take())
	assert.Nil(t, sink.take())
	assert.True(t, sink.isTruncated())
}
