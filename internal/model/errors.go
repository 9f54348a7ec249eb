package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the taxonomy of test-local failures.
type ErrorKind string

// Error kinds.
const (
	SpawnFailed              ErrorKind = "SpawnFailed"
	InputFileNotFound        ErrorKind = "InputFileNotFound"
	ReferenceFileNotFound    ErrorKind = "ReferenceFileNotFound"
	AuxOutputFileNotFound    ErrorKind = "AuxOutputFileNotFound"
	ScriptFileNotFound       ErrorKind = "ScriptFileNotFound"
	DiagnosticsLogNotFound   ErrorKind = "DiagnosticsLogNotFound"
	DiagnosticsLogParseError ErrorKind = "DiagnosticsLogParseError"
	ProtocolMismatch         ErrorKind = "ProtocolMismatch"
	MissingExternalTool      ErrorKind = "MissingExternalTool"
	InvalidTestcase          ErrorKind = "InvalidTestcase"
)

// ErrBinaryNotCompiled is the only run-wide fatal condition.
var ErrBinaryNotCompiled = errors.New("binary is not compiled, skipping all tests")

// TestingError is a failure scoped to a single testcase.
type TestingError struct {
	Kind ErrorKind
	Path Path
	Err  error
}

// NewTestingError builds a TestingError.
func NewTestingError(kind ErrorKind, path Path, err error) *TestingError {
	return &TestingError{Kind: kind, Path: path, Err: err}
}

func (e *TestingError) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *TestingError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind of err, or "" when err is not a TestingError.
func KindOf(err error) ErrorKind {
	var testingErr *TestingError
	if errors.As(err, &testingErr) {
		return testingErr.Kind
	}

	return ""
}
