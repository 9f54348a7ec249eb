// Package diff computes structured diffs and similarity ratios between
// expected and actual program output.
package diff

import (
	"context"
	"sort"
)

type opTag int

const (
	opEqual opTag = iota
	opDelete
	opInsert
)

// op covers a[aStart:aEnd] and b[bStart:bEnd]. Equal ops have ranges of the
// same length, deletes an empty b range and inserts an empty a range.
type op struct {
	tag                        opTag
	aStart, aEnd, bStart, bEnd int
}

// differ runs patience diffing with a linear-space Myers fallback. The
// deadline is checked between recursion steps and inside the Myers loop;
// once it has passed every unresolved region is emitted as delete+insert.
type differ[T comparable] struct {
	ctx     context.Context
	a, b    []T
	ops     []op
	partial bool
}

func compute[T comparable](ctx context.Context, a, b []T) ([]op, bool) {
	d := &differ[T]{ctx: ctx, a: a, b: b}
	d.patience(0, len(a), 0, len(b))

	return d.ops, d.partial
}

func (d *differ[T]) expired() bool {
	if d.ctx.Err() != nil {
		d.partial = true
		return true
	}

	return false
}

func (d *differ[T]) emit(tag opTag, aStart, aEnd, bStart, bEnd int) {
	if aStart == aEnd && bStart == bEnd {
		return
	}

	if n := len(d.ops); n > 0 {
		last := &d.ops[n-1]
		if last.tag == tag && last.aEnd == aStart && last.bEnd == bStart {
			last.aEnd = aEnd
			last.bEnd = bEnd

			return
		}
	}

	d.ops = append(d.ops, op{tag: tag, aStart: aStart, aEnd: aEnd, bStart: bStart, bEnd: bEnd})
}

// replace emits a[aLo:aHi] as deleted and b[bLo:bHi] as inserted.
func (d *differ[T]) replace(aLo, aHi, bLo, bHi int) {
	if aLo < aHi {
		d.emit(opDelete, aLo, aHi, bLo, bLo)
	}

	if bLo < bHi {
		d.emit(opInsert, aHi, aHi, bLo, bHi)
	}
}

// trim strips the common prefix and suffix of the region and emits them.
// It returns the narrowed bounds and the suffix length still to emit.
func (d *differ[T]) trim(aLo, aHi, bLo, bHi int) (int, int, int, int, int) {
	start := 0
	for aLo+start < aHi && bLo+start < bHi && d.a[aLo+start] == d.b[bLo+start] {
		start++
	}

	d.emit(opEqual, aLo, aLo+start, bLo, bLo+start)
	aLo += start
	bLo += start

	end := 0
	for aHi-end > aLo && bHi-end > bLo && d.a[aHi-end-1] == d.b[bHi-end-1] {
		end++
	}

	return aLo, aHi - end, bLo, bHi - end, end
}

func (d *differ[T]) patience(aLo, aHi, bLo, bHi int) {
	aLo, aHi, bLo, bHi, suffix := d.trim(aLo, aHi, bLo, bHi)
	defer d.emit(opEqual, aHi, aHi+suffix, bHi, bHi+suffix)

	switch {
	case aLo == aHi || bLo == bHi:
		d.replace(aLo, aHi, bLo, bHi)
		return
	case d.expired():
		d.replace(aLo, aHi, bLo, bHi)
		return
	}

	anchors := d.uniqueAnchors(aLo, aHi, bLo, bHi)
	if len(anchors) == 0 {
		d.myers(aLo, aHi, bLo, bHi)
		return
	}

	prevA, prevB := aLo, bLo
	for _, anchor := range anchors {
		d.patience(prevA, anchor.a, prevB, anchor.b)
		d.emit(opEqual, anchor.a, anchor.a+1, anchor.b, anchor.b+1)
		prevA, prevB = anchor.a+1, anchor.b+1
	}

	d.patience(prevA, aHi, prevB, bHi)
}

type anchor struct{ a, b int }

// uniqueAnchors pairs elements occurring exactly once on each side and
// keeps the longest subsequence increasing on both sides.
func (d *differ[T]) uniqueAnchors(aLo, aHi, bLo, bHi int) []anchor {
	type occurrence struct {
		countA, countB int
		posA, posB     int
	}

	seen := make(map[T]*occurrence)

	for i := aLo; i < aHi; i++ {
		entry, ok := seen[d.a[i]]
		if !ok {
			entry = &occurrence{}
			seen[d.a[i]] = entry
		}

		entry.countA++
		entry.posA = i
	}

	for j := bLo; j < bHi; j++ {
		entry, ok := seen[d.b[j]]
		if !ok {
			continue
		}

		entry.countB++
		entry.posB = j
	}

	candidates := make([]anchor, 0)

	for _, entry := range seen {
		if entry.countA == 1 && entry.countB == 1 {
			candidates = append(candidates, anchor{a: entry.posA, b: entry.posB})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].a < candidates[j].a })

	return longestIncreasing(candidates)
}

// longestIncreasing returns the longest run of candidates (sorted by a)
// whose b positions also increase, using patience sorting.
func longestIncreasing(candidates []anchor) []anchor {
	if len(candidates) == 0 {
		return nil
	}

	tails := make([]int, 0, len(candidates))
	prev := make([]int, len(candidates))

	for i, candidate := range candidates {
		pos := sort.Search(len(tails), func(k int) bool {
			return candidates[tails[k]].b >= candidate.b
		})

		if pos > 0 {
			prev[i] = tails[pos-1]
		} else {
			prev[i] = -1
		}

		if pos == len(tails) {
			tails = append(tails, i)
		} else {
			tails[pos] = i
		}
	}

	result := make([]anchor, len(tails))
	for i, k := len(tails)-1, tails[len(tails)-1]; i >= 0; i, k = i-1, prev[k] {
		result[i] = candidates[k]
	}

	return result
}

// myers diffs the region by recursive middle-snake bisection.
func (d *differ[T]) myers(aLo, aHi, bLo, bHi int) {
	aLo, aHi, bLo, bHi, suffix := d.trim(aLo, aHi, bLo, bHi)
	defer d.emit(opEqual, aHi, aHi+suffix, bHi, bHi+suffix)

	if aLo == aHi || bLo == bHi || d.expired() {
		d.replace(aLo, aHi, bLo, bHi)
		return
	}

	x0, y0, x1, y1, ok := d.middleSnake(aLo, aHi, bLo, bHi)
	if !ok {
		d.replace(aLo, aHi, bLo, bHi)
		return
	}

	// Both halves must shrink or the recursion would not terminate.
	if (x0 == aLo && y0 == bLo && x1 == aHi && y1 == bHi) ||
		(x0 == aHi && y0 == bHi) || (x1 == aLo && y1 == bLo) {
		d.replace(aLo, aHi, bLo, bHi)
		return
	}

	d.myers(aLo, x0, bLo, y0)
	d.emit(opEqual, x0, x1, y0, y1)
	d.myers(x1, aHi, y1, bHi)
}

// middleSnake returns the middle snake (x0,y0)-(x1,y1) in absolute
// coordinates. ok is false when the deadline passed during the search.
func (d *differ[T]) middleSnake(aLo, aHi, bLo, bHi int) (int, int, int, int, bool) {
	n := aHi - aLo
	m := bHi - bLo
	delta := n - m
	odd := delta%2 != 0
	maxD := (n + m + 1) / 2
	offset := maxD + 1

	forward := make([]int, 2*maxD+3)
	backward := make([]int, 2*maxD+3)

	for step := 0; step <= maxD; step++ {
		if d.expired() {
			return 0, 0, 0, 0, false
		}

		for k := -step; k <= step; k += 2 {
			var x int
			if k == -step || (k != step && forward[offset+k-1] < forward[offset+k+1]) {
				x = forward[offset+k+1]
			} else {
				x = forward[offset+k-1] + 1
			}

			y := x - k
			startX, startY := x, y

			for x < n && y < m && d.a[aLo+x] == d.b[bLo+y] {
				x++
				y++
			}

			forward[offset+k] = x

			reverseK := delta - k
			if odd && reverseK >= -(step-1) && reverseK <= step-1 && x+backward[offset+reverseK] >= n {
				return aLo + startX, bLo + startY, aLo + x, bLo + y, true
			}
		}

		for k := -step; k <= step; k += 2 {
			var x int
			if k == -step || (k != step && backward[offset+k-1] < backward[offset+k+1]) {
				x = backward[offset+k+1]
			} else {
				x = backward[offset+k-1] + 1
			}

			y := x - k
			startX, startY := x, y

			for x < n && y < m && d.a[aLo+n-1-x] == d.b[bLo+m-1-y] {
				x++
				y++
			}

			backward[offset+k] = x

			forwardK := delta - k
			if !odd && forwardK >= -step && forwardK <= step && x+forward[offset+forwardK] >= n {
				return aLo + n - x, bLo + m - y, aLo + n - startX, bLo + m - startY, true
			}
		}
	}

	return 0, 0, 0, 0, false
}

// matched counts the elements covered by equal ops.
func matched(ops []op) int {
	total := 0

	for _, o := range ops {
		if o.tag == opEqual {
			total += o.aEnd - o.aStart
		}
	}

	return total
}

// ratio is 2*matches/(lenA+lenB); either side empty yields 0.
func ratio(ops []op, lenA, lenB int) float64 {
	if lenA == 0 || lenB == 0 {
		return 0.0
	}

	return 2.0 * float64(matched(ops)) / float64(lenA+lenB)
}
