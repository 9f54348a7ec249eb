package model

// DiffTag classifies a diff segment.
type DiffTag string

const (
	// DiffSame marks content present on both sides.
	DiffSame DiffTag = "same"
	// DiffRemove marks content only in the expected side.
	DiffRemove DiffTag = "remove"
	// DiffAdd marks content only in the actual side.
	DiffAdd DiffTag = "add"
)

// Span is a run of characters inside a segment. Emphasized spans are the
// tokens that differ from the paired line on the other side.
type Span struct {
	Emphasized bool   `yaml:"emphasized,omitempty"`
	Text       string `yaml:"text"`
}

// Segment is one line of a text diff.
type Segment struct {
	Tag   DiffTag `yaml:"tag"`
	Spans []Span  `yaml:"spans"`
}

// Text concatenates the spans of the segment.
func (s Segment) Text() string {
	var out string
	for _, span := range s.Spans {
		out += span.Text
	}

	return out
}

// TextDiff is the line-granular diff of expected against actual text.
type TextDiff struct {
	Segments []Segment `yaml:"segments"`
	Ratio    float64   `yaml:"ratio"`
	// Partial is set when the deadline cut the computation short.
	Partial bool `yaml:"partial,omitempty"`
}

// Equal reports whether the diff describes identical non-empty inputs.
func (d TextDiff) Equal() bool {
	return d.Ratio == 1.0
}

// BinaryBlock is a run of raw bytes.
type BinaryBlock struct {
	Tag  DiffTag `yaml:"tag"`
	Data []byte  `yaml:"data"`
}

// BinaryDiff is the byte-granular diff of two blobs.
type BinaryDiff struct {
	Blocks  []BinaryBlock `yaml:"blocks"`
	Ratio   float64       `yaml:"ratio"`
	Partial bool          `yaml:"partial,omitempty"`
}

// AuxDiffResult is the comparison of the auxiliary output file.
type AuxDiffResult struct {
	Mode    DiffMode    `yaml:"mode"`
	OutFile Path        `yaml:"out_file"`
	ExpFile Path        `yaml:"exp_file"`
	Text    *TextDiff   `yaml:"text,omitempty"`
	Binary  *BinaryDiff `yaml:"binary,omitempty"`
}

// Ratio returns the similarity of whichever diff mode was used.
func (a *AuxDiffResult) Ratio() float64 {
	switch {
	case a == nil:
		return 0
	case a.Text != nil:
		return a.Text.Ratio
	case a.Binary != nil:
		return a.Binary.Ratio
	}

	return 0
}

// StepKind tells input steps from output steps in an ordered script.
type StepKind string

const (
	// StepInput is text sent to the child.
	StepInput StepKind = "input"
	// StepOutput is text expected from (or captured from) the child.
	StepOutput StepKind = "output"
)

// Step is one element of an ordered script or of a captured transcript.
type Step struct {
	Kind StepKind
	Text string
	// Flush requests a double flush after writing (the `!` directive).
	Flush bool
}

// IODiff is the per-step record of an ordered test.
type IODiff struct {
	Kind   StepKind  `yaml:"kind"`
	Input  string    `yaml:"input,omitempty"`
	Unsent bool      `yaml:"unsent,omitempty"`
	Diff   *TextDiff `yaml:"diff,omitempty"`
}
