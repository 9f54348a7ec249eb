package controller

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

const (
	progressWidth    = 40
	maxProgressWidth = 80
	runningShown     = 8
	recentShown      = 5
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	markStyle    = lipgloss.NewStyle().Bold(true).Reverse(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func styled(style lipgloss.Style) func(a ...interface{}) string {
	return func(a ...interface{}) string {
		return style.Render(fmt.Sprint(a...))
	}
}

func stylePainter() painter {
	return painter{
		pass:     styled(passStyle),
		fail:     styled(failStyle),
		removed:  styled(removedStyle),
		added:    styled(addedStyle),
		emphasis: styled(markStyle),
		faint:    styled(faintStyle),
	}
}

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
	paint  painter
	mode   StartMode

	mu        sync.Mutex
	program   *tea.Program
	done      chan struct{}
	runErr    error
	completed []m.TestResult
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output, paint: stylePainter()}
}

// Start initializes the UI. In run mode a progress program is started and
// runs until the report is displayed or Close is called.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	t.mode = cfg.mode

	if cfg.mode != ModeRun {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	t.program = tea.NewProgram(
		newRunModel(cfg.total, t.paint),
		tea.WithOutput(t.output),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			t.mu.Lock()
			t.runErr = err
			t.mu.Unlock()
		}
	}()

	return nil
}

// Close stops the progress program, if any, and waits for it to exit.
func (t *TUI) Close(ctx context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Wait blocks until the progress program exits.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// DisplayRunInfo prints the run header. The progress program renders below it.
func (t *TUI) DisplayRunInfo(_ context.Context, info RunInfo) {
	t.send(runInfoMsg{info: info})
}

// DisplayTestList prints the configured tests.
func (t *TUI) DisplayTestList(ctx context.Context, entries []TestEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(t.output, "%s\n\n%s", titleStyle.Render("tcrun tests"), renderTestListTable(entries))

	return err
}

// DisplayStartingTest marks a test as running.
func (t *TUI) DisplayStartingTest(_ context.Context, meta m.TestMeta) {
	t.send(testStartedMsg{meta: meta})
}

// DisplayCompletedTest records a verdict and advances the progress bar.
func (t *TUI) DisplayCompletedTest(_ context.Context, result m.TestResult) {
	t.mu.Lock()
	t.completed = append(t.completed, result)
	t.mu.Unlock()

	t.send(testCompletedMsg{result: result})
}

// DisplayReport ends the progress program and prints every result in
// completion order, followed by the summary table.
func (t *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	results := report.Results

	switch t.mode {
	case ModeRun:
		t.send(runFinishedMsg{})
		t.Wait(ctx)

		t.mu.Lock()
		results = t.completed
		t.mu.Unlock()
	case ModeView:
		fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(fmt.Sprintf("Report %s of %s", report.RunID, report.Project)))
	case ModeList:
		results = nil
	}

	for _, result := range results {
		b.WriteString(renderCompletedLine(t.paint, result))

		if !result.Passed {
			b.WriteString(t.paint.renderDetails(result))
		}
	}

	fmt.Fprintf(&b, "\n%s", renderReportTable(report))

	if _, err := fmt.Fprint(t.output, b.String()); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.runErr
}

func renderRunInfo(info RunInfo) string {
	return fmt.Sprintf("%s\n%s\n\n",
		titleStyle.Render(fmt.Sprintf("tcrun %s: %d test(s), %d worker(s)", info.Project, info.Tests, info.Parallel)),
		faintStyle.Render(fmt.Sprintf("binary %s, run %s", info.Binary, info.RunID)),
	)
}

func renderCompletedLine(p painter, result m.TestResult) string {
	return fmt.Sprintf("%s #%d %s %s\n", p.status(result), result.Number, result.Name,
		p.faint(formatDuration(result.Duration)))
}

type (
	runInfoMsg       struct{ info RunInfo }
	testStartedMsg   struct{ meta m.TestMeta }
	testCompletedMsg struct{ result m.TestResult }
	runFinishedMsg   struct{}
)

// runModel is the Bubble Tea model of a test run in progress.
type runModel struct {
	total    int
	done     int
	passed   int
	header   string
	running  map[int]string
	recent   []string
	paint    painter
	spinner  spinner.Model
	progress progress.Model
	finished bool
}

func newRunModel(total int, paint painter) runModel {
	return runModel{
		total:    total,
		running:  make(map[int]string),
		paint:    paint,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
	}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.progress.Width = min(max(msg.Width-30, progressWidth/2), maxProgressWidth)

		return rm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd

	case runInfoMsg:
		rm.header = renderRunInfo(msg.info)

		return rm, nil

	case testStartedMsg:
		rm.running[msg.meta.Number] = msg.meta.Name

		return rm, nil

	case testCompletedMsg:
		return rm.complete(msg.result)

	case runFinishedMsg:
		rm.finished = true

		return rm, tea.Quit
	}

	return rm, nil
}

func (rm runModel) complete(result m.TestResult) (tea.Model, tea.Cmd) {
	delete(rm.running, result.Number)

	rm.done++
	if result.Passed {
		rm.passed++
	}

	rm.recent = append(rm.recent, renderCompletedLine(rm.paint, result))
	if len(rm.recent) > recentShown {
		rm.recent = rm.recent[len(rm.recent)-recentShown:]
	}

	return rm, nil
}

func (rm runModel) fraction() float64 {
	if rm.total <= 0 {
		return 0
	}

	return float64(rm.done) / float64(rm.total)
}

func (rm runModel) View() string {
	if rm.finished {
		return rm.header
	}

	var b strings.Builder

	b.WriteString(rm.header)

	for _, line := range rm.recent {
		b.WriteString(line)
	}

	fmt.Fprintf(&b, "%s %s %d/%d (%d passed)\n",
		rm.spinner.View(), rm.progress.ViewAs(rm.fraction()), rm.done, rm.total, rm.passed)

	numbers := make([]int, 0, len(rm.running))
	for n := range rm.running {
		numbers = append(numbers, n)
	}

	sort.Ints(numbers)

	for i, n := range numbers {
		if i == runningShown {
			fmt.Fprintf(&b, "  %s\n", rm.paint.faint(fmt.Sprintf("... and %d more", len(numbers)-runningShown)))
			break
		}

		fmt.Fprintf(&b, "  %s #%d %s\n", rm.paint.faint("running"), n, rm.running[n])
	}

	return b.String()
}
