package adapter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// UnlimitedOutput disables the capture cap of a ProcessSpec.
const UnlimitedOutput = -1

// waitDelay bounds how long Wait keeps copying output after the child exits,
// in case a grandchild still holds the pipe.
const waitDelay = time.Second

// ErrInputClosed is returned by writes issued after CloseInput.
var ErrInputClosed = errors.New("child input already closed")

// ProcessSpec describes a child process to spawn.
type ProcessSpec struct {
	Path string
	Args []string
	// Env holds KEY=VALUE overrides applied on top of the host environment.
	Env []string
	Dir string
	// OutputLimit is the number of stdout bytes kept; negative keeps everything.
	OutputLimit int
	// Stderr receives the child's stderr; nil discards it.
	Stderr io.Writer
}

// ExitStatus is the outcome of a finished child. Code is nil when the child
// was terminated by a signal.
type ExitStatus struct {
	Code *int
}

// ProcessAdapter abstracts spawning supervised child processes.
type ProcessAdapter interface {
	// Spawn starts the child with stdin and stdout piped.
	Spawn(spec ProcessSpec) (Process, error)
}

// Process is a handle on a running child. Every method returns within the
// bounds given by its arguments.
type Process interface {
	// Pid returns the child's process id.
	Pid() int
	// Write queues data for the child's stdin. It reports an earlier
	// delivery failure, e.g. because the child is gone.
	Write(data []byte) error
	// Flush pushes queued input to the pipe.
	Flush() error
	// CloseInput flushes and closes stdin.
	CloseInput() error
	// ReadAvailable returns the output that arrived, waiting at most maxWait
	// when nothing is buffered yet.
	ReadAvailable(maxWait time.Duration) []byte
	// PollExit reports the exit status without blocking.
	PollExit() (ExitStatus, bool)
	// WaitExit waits at most maxWait for the child to exit.
	WaitExit(maxWait time.Duration) (ExitStatus, bool)
	// KillAndDrain kills the process group and waits up to grace for the
	// child to terminate. It reports false when the child was abandoned.
	KillAndDrain(grace time.Duration) (ExitStatus, bool)
	// Truncated reports whether output beyond OutputLimit was dropped.
	Truncated() bool
}

// LocalProcessAdapter spawns children with os/exec.
type LocalProcessAdapter struct{}

// NewLocalProcessAdapter constructs a LocalProcessAdapter.
func NewLocalProcessAdapter() *LocalProcessAdapter {
	return &LocalProcessAdapter{}
}

// Spawn starts the child in its own process group.
func (a *LocalProcessAdapter) Spawn(spec ProcessSpec) (Process, error) {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = waitDelay

	sink := newOutputSink(spec.OutputLimit)
	cmd.Stdout = sink
	cmd.Stderr = spec.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, m.NewTestingError(m.SpawnFailed, m.Path(spec.Path), err)
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to spawn child", "path", spec.Path, "args", spec.Args, "error", err)
		return nil, m.NewTestingError(m.SpawnFailed, m.Path(spec.Path), err)
	}

	proc := &localProcess{
		cmd:    cmd,
		output: sink,
		input:  newInputQueue(stdin),
		done:   make(chan struct{}),
	}

	go proc.input.run()
	go proc.wait()

	slog.Debug("Spawned child", "path", spec.Path, "pid", cmd.Process.Pid)

	return proc, nil
}

type localProcess struct {
	cmd    *exec.Cmd
	output *outputSink
	input  *inputQueue
	done   chan struct{}
	status ExitStatus
}

func (p *localProcess) wait() {
	err := p.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			slog.Debug("Child wait returned", "pid", p.Pid(), "error", err)
		}
	}

	p.status = statusOf(p.cmd.ProcessState)
	p.input.shutdown()
	close(p.done)
}

func statusOf(state *os.ProcessState) ExitStatus {
	if state == nil {
		return ExitStatus{}
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{}
	}

	code := state.ExitCode()
	if code < 0 {
		return ExitStatus{}
	}

	return ExitStatus{Code: &code}
}

func (p *localProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *localProcess) Write(data []byte) error {
	return p.input.push(inputRequest{data: data})
}

func (p *localProcess) Flush() error {
	return p.input.push(inputRequest{flush: true})
}

func (p *localProcess) CloseInput() error {
	return p.input.close()
}

func (p *localProcess) ReadAvailable(maxWait time.Duration) []byte {
	if data := p.output.take(); len(data) > 0 {
		return data
	}

	if maxWait <= 0 {
		return nil
	}

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	select {
	case <-p.output.notify:
	case <-p.done:
	case <-timer.C:
	}

	return p.output.take()
}

func (p *localProcess) PollExit() (ExitStatus, bool) {
	select {
	case <-p.done:
		return p.status, true
	default:
		return ExitStatus{}, false
	}
}

func (p *localProcess) WaitExit(maxWait time.Duration) (ExitStatus, bool) {
	if status, ok := p.PollExit(); ok || maxWait <= 0 {
		return status, ok
	}

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.status, true
	case <-timer.C:
		return ExitStatus{}, false
	}
}

func (p *localProcess) KillAndDrain(grace time.Duration) (ExitStatus, bool) {
	if status, ok := p.PollExit(); ok {
		return status, true
	}

	pid := p.Pid()
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		slog.Warn("Failed to kill process group", "pid", pid, "error", err)

		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			slog.Warn("Failed to kill child", "pid", pid, "error", err)
		}
	}

	status, ok := p.WaitExit(grace)
	if !ok {
		slog.Warn("Child did not terminate after kill, abandoning it", "pid", pid, "grace", grace)
		return ExitStatus{}, false
	}

	return status, true
}

func (p *localProcess) Truncated() bool {
	return p.output.isTruncated()
}

// outputSink collects stdout. Writes never block the copying goroutine, so a
// chatty child cannot stall on a full pipe.
type outputSink struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	kept      int
	truncated bool
	notify    chan struct{}
}

func newOutputSink(limit int) *outputSink {
	return &outputSink{limit: limit, notify: make(chan struct{}, 1)}
}

func (s *outputSink) Write(p []byte) (int, error) {
	n := len(p)

	s.mu.Lock()
	if s.limit >= 0 {
		room := max(s.limit-s.kept, 0)
		if len(p) > room {
			s.truncated = true
			p = p[:room]
		}
	}

	s.buf.Write(p)
	s.kept += len(p)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}

	return n, nil
}

func (s *outputSink) take() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf.Len() == 0 {
		return nil
	}

	data := bytes.Clone(s.buf.Bytes())
	s.buf.Reset()

	return data
}

func (s *outputSink) isTruncated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.truncated
}

type inputRequest struct {
	data  []byte
	flush bool
	close bool
}

// inputQueue feeds stdin from its own goroutine so that a child which does
// not read cannot block the caller. The queue is unbounded.
type inputQueue struct {
	mu      sync.Mutex
	pending []inputRequest
	closed  bool
	err     error
	wake    chan struct{}
	stdin   io.WriteCloser
}

func newInputQueue(stdin io.WriteCloser) *inputQueue {
	return &inputQueue{stdin: stdin, wake: make(chan struct{}, 1)}
}

func (q *inputQueue) push(req inputRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}

	if q.closed {
		return ErrInputClosed
	}

	if req.data != nil {
		req.data = bytes.Clone(req.data)
	}

	q.pending = append(q.pending, req)

	if req.close {
		q.closed = true
	}

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return nil
}

func (q *inputQueue) close() error {
	err := q.push(inputRequest{flush: true, close: true})
	if errors.Is(err, ErrInputClosed) {
		return nil
	}

	return err
}

// shutdown stops the writer goroutine once the child is gone, whatever
// state the queue is in.
func (q *inputQueue) shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.pending = append(q.pending, inputRequest{close: true})
		q.closed = true
	}

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *inputQueue) next() inputRequest {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			req := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()

			return req
		}
		q.mu.Unlock()

		<-q.wake
	}
}

func (q *inputQueue) fail(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err == nil {
		q.err = fmt.Errorf("write to child stdin: %w", err)
	}
}

func (q *inputQueue) run() {
	writer := bufio.NewWriter(q.stdin)

	for {
		req := q.next()

		var err error
		if len(req.data) > 0 {
			_, err = writer.Write(req.data)
		}

		if err == nil && req.flush {
			err = writer.Flush()
		}

		if err != nil {
			q.fail(err)
		}

		if req.close {
			if closeErr := q.stdin.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
				slog.Debug("Failed to close child stdin", "error", closeErr)
			}

			return
		}
	}
}
