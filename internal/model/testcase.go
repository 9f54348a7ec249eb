package model

import "time"

// AuxDiffSpec pairs a file written by the child with its reference.
type AuxDiffSpec struct {
	OutFile Path
	ExpFile Path
	Mode    DiffMode
}

// TestMeta carries the identity of a testcase.
type TestMeta struct {
	Number      int // 1-based, config order
	Name        string
	Description string
	Timeout     time.Duration // zero falls back to the project timeout
	Protected   bool
	AuxDiff     *AuxDiffSpec
}

// EnvVar is an environment override for the child. Inherit copies the
// harness's own value of Key.
type EnvVar struct {
	Key     string
	Value   string
	Inherit bool
}

// IoSpec describes a batch testcase.
type IoSpec struct {
	InFile    Path
	InString  string
	ExpFile   Path
	ExpString string
	Args      []string
	Env       []EnvVar
	ExitCode  *int
}

// OrdIoSpec describes an ordered interactive testcase.
type OrdIoSpec struct {
	IoFile   Path
	Prompt   string
	Args     []string
	Env      []EnvVar
	ExitCode *int
}

// TestcaseDefinition is one entry of the `tests` configuration list.
type TestcaseDefinition struct {
	Name        string   `mapstructure:"name" yaml:"name"`
	Description string   `mapstructure:"description" yaml:"description,omitempty"`
	Kind        TestKind `mapstructure:"kind" yaml:"kind"`
	Args        []string `mapstructure:"args" yaml:"args,omitempty"`
	InFile      string   `mapstructure:"in_file" yaml:"in_file,omitempty"`
	InString    string   `mapstructure:"in_string" yaml:"in_string,omitempty"`
	ExpFile     string   `mapstructure:"exp_file" yaml:"exp_file,omitempty"`
	ExpString   string   `mapstructure:"exp_string" yaml:"exp_string,omitempty"`
	IoFile      string   `mapstructure:"io_file" yaml:"io_file,omitempty"`
	IoPrompt    string   `mapstructure:"io_prompt" yaml:"io_prompt,omitempty"`
	ExitCode    *int     `mapstructure:"exit_code" yaml:"exit_code,omitempty"`
	Timeout     float64  `mapstructure:"timeout" yaml:"timeout,omitempty"` // seconds
	Env         []string `mapstructure:"env" yaml:"env,omitempty"`
	AddOutFile  string   `mapstructure:"add_out_file" yaml:"add_out_file,omitempty"`
	AddExpFile  string   `mapstructure:"add_exp_file" yaml:"add_exp_file,omitempty"`
	AddDiffMode DiffMode `mapstructure:"add_diff_mode" yaml:"add_diff_mode,omitempty"`
	Protected   bool     `mapstructure:"protected" yaml:"protected,omitempty"`
}

// Meta builds the TestMeta for the definition at the given 1-based position.
func (d TestcaseDefinition) Meta(number int) TestMeta {
	meta := TestMeta{
		Number:      number,
		Name:        d.Name,
		Description: d.Description,
		Timeout:     time.Duration(d.Timeout * float64(time.Second)),
		Protected:   d.Protected,
	}

	if d.AddOutFile != "" || d.AddExpFile != "" {
		mode := d.AddDiffMode
		if mode == "" {
			mode = DiffText
		}

		meta.AuxDiff = &AuxDiffSpec{
			OutFile: Path(d.AddOutFile),
			ExpFile: Path(d.AddExpFile),
			Mode:    mode,
		}
	}

	return meta
}
