// Package model defines the data structures shared by the test execution engine.
package model

import "path/filepath"

// Path represents a file system path.
type Path string

// Resolve returns p joined onto base unless p is already absolute or empty.
func (p Path) Resolve(base Path) Path {
	if p == "" || filepath.IsAbs(string(p)) || base == "" {
		return p
	}

	return Path(filepath.Join(string(base), string(p)))
}

// TestKind discriminates the closed set of testcase protocols.
type TestKind string

const (
	// KindIO is the one-shot batch protocol: all input at once, whole output diffed.
	KindIO TestKind = "IO"
	// KindOrdIO is the ordered interactive protocol driven by a script.
	KindOrdIO TestKind = "OrdIO"
)

// DiffMode selects how an auxiliary output file is compared.
type DiffMode string

const (
	// DiffText compares files line by line.
	DiffText DiffMode = "text"
	// DiffBinary compares files byte by byte.
	DiffBinary DiffMode = "binary"
)
