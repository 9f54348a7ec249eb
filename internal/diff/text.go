package diff

import (
	"context"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

// maxInlineTokens bounds the per-line token matcher, which is quadratic.
const maxInlineTokens = 2000

// Text diffs expected against actual line by line. Segments come in
// expected order; every removed line paired with an added line carries
// emphasized spans for the tokens that differ.
func Text(ctx context.Context, expected, actual string) m.TextDiff {
	a := SplitLines(expected)
	b := SplitLines(actual)

	ops, partial := compute(ctx, a, b)

	return m.TextDiff{
		Segments: segments(ctx, ops, a, b),
		Ratio:    ratio(ops, len(a), len(b)),
		Partial:  partial,
	}
}

// SplitLines splits s after every newline, keeping the terminators.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}

	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func segments(ctx context.Context, ops []op, a, b []string) []m.Segment {
	out := make([]m.Segment, 0, len(a)+len(b))

	for i := 0; i < len(ops); i++ {
		current := ops[i]

		switch current.tag {
		case opEqual:
			for _, line := range a[current.aStart:current.aEnd] {
				out = append(out, plainSegment(m.DiffSame, line))
			}
		case opDelete:
			removed := a[current.aStart:current.aEnd]

			var added []string
			if i+1 < len(ops) && ops[i+1].tag == opInsert {
				added = b[ops[i+1].bStart:ops[i+1].bEnd]
				i++
			}

			out = append(out, pairedSegments(ctx, removed, added)...)
		case opInsert:
			for _, line := range b[current.bStart:current.bEnd] {
				out = append(out, plainSegment(m.DiffAdd, line))
			}
		}
	}

	return out
}

func plainSegment(tag m.DiffTag, line string) m.Segment {
	return m.Segment{Tag: tag, Spans: []m.Span{{Text: line}}}
}

// pairedSegments lists removed lines before added lines, emphasizing the
// differences of the i-th removed line against the i-th added line.
func pairedSegments(ctx context.Context, removed, added []string) []m.Segment {
	removedSegs := make([]m.Segment, len(removed))
	addedSegs := make([]m.Segment, len(added))

	for i := range removed {
		removedSegs[i] = plainSegment(m.DiffRemove, removed[i])
	}

	for i := range added {
		addedSegs[i] = plainSegment(m.DiffAdd, added[i])
	}

	for i := 0; i < len(removed) && i < len(added); i++ {
		if ctx.Err() != nil {
			break
		}

		removedSpans, addedSpans, ok := inlineSpans(removed[i], added[i])
		if !ok {
			continue
		}

		removedSegs[i].Spans = removedSpans
		addedSegs[i].Spans = addedSpans
	}

	return append(removedSegs, addedSegs...)
}

func inlineSpans(oldLine, newLine string) ([]m.Span, []m.Span, bool) {
	oldTokens := tokenize(oldLine)
	newTokens := tokenize(newLine)

	if len(oldTokens) > maxInlineTokens || len(newTokens) > maxInlineTokens {
		return nil, nil, false
	}

	matcher := difflib.NewMatcherWithJunk(oldTokens, newTokens, false, nil)

	var oldSpans, newSpans []m.Span

	for _, code := range matcher.GetOpCodes() {
		emphasized := code.Tag != 'e'
		oldSpans = appendSpan(oldSpans, strings.Join(oldTokens[code.I1:code.I2], ""), emphasized)
		newSpans = appendSpan(newSpans, strings.Join(newTokens[code.J1:code.J2], ""), emphasized)
	}

	return oldSpans, newSpans, true
}

func appendSpan(spans []m.Span, text string, emphasized bool) []m.Span {
	if text == "" {
		return spans
	}

	if n := len(spans); n > 0 && spans[n-1].Emphasized == emphasized {
		spans[n-1].Text += text
		return spans
	}

	return append(spans, m.Span{Emphasized: emphasized, Text: text})
}

// tokenize splits a line into words, whitespace runs and single symbols.
func tokenize(line string) []string {
	var tokens []string

	runes := []rune(line)
	for start := 0; start < len(runes); {
		end := start + 1
		class := runeClass(runes[start])

		if class != classSymbol {
			for end < len(runes) && runeClass(runes[end]) == class {
				end++
			}
		}

		tokens = append(tokens, string(runes[start:end]))
		start = end
	}

	return tokens
}

type tokenClass int

const (
	classWord tokenClass = iota
	classSpace
	classSymbol
)

func runeClass(r rune) tokenClass {
	switch {
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	case r == '\n':
		return classSymbol
	case unicode.IsSpace(r):
		return classSpace
	}

	return classSymbol
}
