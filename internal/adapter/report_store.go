package adapter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// ReportFileName is the report written into the reports directory.
const ReportFileName = "report.yaml"

// ReportStore persists run reports.
type ReportStore interface {
	SaveReport(path m.Path, report m.Report) error
	LoadReport(path m.Path) (m.Report, error)
}

// YAMLReportStore stores reports as YAML files.
type YAMLReportStore struct{}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReport writes the report into the directory at path, both as the
// latest report and under its run id. Protected results are redacted.
func (s *YAMLReportStore) SaveReport(path m.Path, report m.Report) error {
	dir := string(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("Failed to create reports dir", "path", dir, "error", err)
		return fmt.Errorf("create reports dir: %w", err)
	}

	redacted := report
	redacted.Results = make([]m.TestResult, len(report.Results))

	for i, result := range report.Results {
		redacted.Results[i] = result.Redacted()
	}

	data, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	targets := []string{filepath.Join(dir, ReportFileName)}
	if report.RunID != "" {
		targets = append(targets, filepath.Join(dir, report.RunID+".yaml"))
	}

	for _, target := range targets {
		if err := os.WriteFile(target, data, 0o600); err != nil {
			slog.Error("Failed to write report", "path", target, "error", err)
			return fmt.Errorf("write report: %w", err)
		}
	}

	slog.Info("Saved report", "path", targets[0], "results", len(report.Results))

	return nil
}

// LoadReport reads a report. path may be a reports directory or a report
// file.
func (s *YAMLReportStore) LoadReport(path m.Path) (m.Report, error) {
	target := string(path)

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, ReportFileName)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		slog.Error("Failed to read report", "path", target, "error", err)
		return m.Report{}, fmt.Errorf("read report: %w", err)
	}

	var report m.Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.Report{}, fmt.Errorf("decode report %s: %w", target, err)
	}

	return report, nil
}
