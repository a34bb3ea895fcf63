// Package diffseq implements the Myers diff algorithm over opaque line
// sequences, the primitive the three-way content merger builds its
// base/ours and base/theirs edit scripts from.
package diffseq

// Sequence is an ordered list of comparable lines. Equality is by value, so
// two identical lines at different positions compare equal.
type Sequence []string

// EditKind classifies a single edit script operation.
type EditKind int

const (
	// EditEqual means the line is unchanged between the two sequences.
	EditEqual EditKind = iota
	// EditInsert means the line exists only in the second (new) sequence.
	EditInsert
	// EditDelete means the line exists only in the first (old) sequence.
	EditDelete
)

// Edit is a single operation in an edit script: a contiguous run of lines
// sharing the same classification, with the line range each side.
type Edit struct {
	Kind EditKind

	// OldStart/OldEnd index into the old sequence (end exclusive).
	OldStart, OldEnd int
	// NewStart/NewEnd index into the new sequence (end exclusive).
	NewStart, NewEnd int
}

// Lines returns the new sequence's lines this edit covers for inserts and
// equals, or the old sequence's lines for deletes.
func (e Edit) Lines(old, new Sequence) Sequence {
	if e.Kind == EditDelete {
		return old[e.OldStart:e.OldEnd]
	}
	return new[e.NewStart:e.NewEnd]
}

// Diff computes the minimal edit script turning old into new, using the
// classic Myers O(ND) algorithm, then coalesces adjacent same-kind
// operations into runs.
func Diff(old, new Sequence) []Edit {
	trace := shortestEditTrace(old, new)
	return coalesce(backtrack(trace, old, new))
}

type point struct{ x, y int }

// shortestEditTrace runs Myers' algorithm, returning the sequence of V
// arrays (one per edit distance D) needed to reconstruct the path.
func shortestEditTrace(old, new Sequence) [][]int {
	n, m := len(old), len(new)
	max := n + m
	if max == 0 {
		return nil
	}

	v := make([]int, 2*max+1)
	offset := max
	var trace [][]int

	for d := 0; d <= max; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k

			for x < n && y < m && old[x] == new[y] {
				x++
				y++
			}

			v[offset+k] = x

			if x >= n && y >= m {
				return trace
			}
		}
	}

	return trace
}

// backtrack walks the trace from the end back to the origin, emitting one
// point-pair move per step; the result is reversed into forward order.
func backtrack(trace [][]int, old, new Sequence) []point {
	n, m := len(old), len(new)
	max := n + m
	if max == 0 {
		return []point{{0, 0}}
	}
	offset := max

	x, y := n, m
	path := []point{{x, y}}

	for d := len(trace) - 1; d > 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			path = append(path, point{x, y})
		}
		if x == prevX {
			y--
		} else {
			x--
		}
		path = append(path, point{x, y})
		x, y = prevX, prevY
	}
	// The D=0 snake: a run of equal lines from the origin.
	for x > 0 && y > 0 {
		x--
		y--
		path = append(path, point{x, y})
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func coalesce(path []point) []Edit {
	var edits []Edit
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]

		var kind EditKind
		switch {
		case cur.x == prev.x+1 && cur.y == prev.y+1:
			kind = EditEqual
		case cur.x == prev.x+1 && cur.y == prev.y:
			kind = EditDelete
		case cur.x == prev.x && cur.y == prev.y+1:
			kind = EditInsert
		default:
			continue
		}

		if n := len(edits); n > 0 && edits[n-1].Kind == kind {
			edits[n-1].OldEnd = cur.x
			edits[n-1].NewEnd = cur.y
			continue
		}

		edits = append(edits, Edit{
			Kind:     kind,
			OldStart: prev.x, OldEnd: cur.x,
			NewStart: prev.y, NewEnd: cur.y,
		})
	}
	return edits
}
