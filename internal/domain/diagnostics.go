package domain

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	m "tcrun.dev/pkg/tcrun/internal/model"
)

var (
	errorSummaryPattern = regexp.MustCompile(`ERROR SUMMARY:\s+([\d,]+)\s+errors?\s+from\s+([\d,]+)\s+contexts?`)
	leakSummaryPattern  = regexp.MustCompile(`LEAK SUMMARY:`)
	lostBlocksPattern   = regexp.MustCompile(`(definitely|indirectly|possibly) lost:\s+[\d,]+\s+bytes\s+in\s+([\d,]+)\s+blocks?`)
)

var errNoSummary = errors.New("no error summary in diagnostics log")

// ParseDiagnosticsLog extracts error and leak counts from a memory checker
// log. The last summary in the file wins, so a log that was appended to by
// several runs reports the final one.
func ParseDiagnosticsLog(path m.Path) (m.Diagnostics, error) {
	file, err := os.Open(string(path))
	if err != nil {
		slog.Warn("Failed to open diagnostics log", "path", path, "error", err)
		return m.Diagnostics{}, m.NewTestingError(m.DiagnosticsLogNotFound, path, err)
	}
	defer file.Close()

	var (
		errorsCount = -1
		leaks       int
		inLeak      bool
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)

	for scanner.Scan() {
		line := scanner.Text()

		if leakSummaryPattern.MatchString(line) {
			inLeak = true
			leaks = 0

			continue
		}

		if match := lostBlocksPattern.FindStringSubmatch(line); match != nil {
			if inLeak {
				leaks += parseCount(match[2])
			}

			continue
		}

		if match := errorSummaryPattern.FindStringSubmatch(line); match != nil {
			errorsCount = parseCount(match[1])
			inLeak = false
		}
	}

	if err := scanner.Err(); err != nil {
		return m.Diagnostics{}, m.NewTestingError(m.DiagnosticsLogNotFound, path, fmt.Errorf("read log: %w", err))
	}

	if errorsCount < 0 {
		return m.Diagnostics{}, m.NewTestingError(m.DiagnosticsLogParseError, path, errNoSummary)
	}

	return m.Diagnostics{
		Enabled: true,
		LogPath: path,
		Leaks:   leaks,
		Errors:  errorsCount,
	}, nil
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}

	return n
}

// collectDiagnostics parses the log of a finished child. Failures degrade
// to sentinel counts with the reason kept in the note.
func collectDiagnostics(inv invocation) m.Diagnostics {
	if inv.logPath == "" {
		return m.UnknownDiagnostics(false, "", "")
	}

	diag, err := ParseDiagnosticsLog(inv.logPath)
	if err != nil {
		return m.UnknownDiagnostics(true, inv.logPath, err.Error())
	}

	return diag
}
