package diff

import (
	"context"

	m "tcrun.dev/pkg/tcrun/internal/model"
)

// Binary diffs two byte slices with no line semantics.
func Binary(ctx context.Context, expected, actual []byte) m.BinaryDiff {
	ops, partial := compute(ctx, expected, actual)

	blocks := make([]m.BinaryBlock, 0, len(ops))

	for _, o := range ops {
		switch o.tag {
		case opEqual:
			blocks = append(blocks, m.BinaryBlock{Tag: m.DiffSame, Data: clone(expected[o.aStart:o.aEnd])})
		case opDelete:
			blocks = append(blocks, m.BinaryBlock{Tag: m.DiffRemove, Data: clone(expected[o.aStart:o.aEnd])})
		case opInsert:
			blocks = append(blocks, m.BinaryBlock{Tag: m.DiffAdd, Data: clone(actual[o.bStart:o.bEnd])})
		}
	}

	return m.BinaryDiff{
		Blocks:  blocks,
		Ratio:   ratio(ops, len(expected), len(actual)),
		Partial: partial,
	}
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}
