package model

import "time"

// Report is the persisted outcome of a whole run.
type Report struct {
	RunID     string        `yaml:"run_id"`
	Project   string        `yaml:"project"`
	Binary    Path          `yaml:"binary"`
	StartedAt time.Time     `yaml:"started_at"`
	Duration  time.Duration `yaml:"duration"`
	Results   []TestResult  `yaml:"results"`
}

// Summary counts passed and failed results.
func (r Report) Summary() (passed, failed int) {
	for _, result := range r.Results {
		if result.Passed {
			passed++
		} else {
			failed++
		}
	}

	return passed, failed
}
