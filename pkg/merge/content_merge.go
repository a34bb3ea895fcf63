package merge

import (
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/scmkit/sourcecontrol/pkg/diffseq"
)

// hunk is a contiguous change against the base sequence: the base range it
// replaces, and the replacement lines' range in the changed sequence.
type hunk struct {
	baseStart, baseEnd int
	newStart, newEnd   int
}

// hunksFromEdits collapses an edit script into change hunks, dropping the
// EditEqual runs that separate them.
func hunksFromEdits(edits []diffseq.Edit) []hunk {
	var hunks []hunk
	for _, e := range edits {
		if e.Kind == diffseq.EditEqual {
			continue
		}

		if n := len(hunks); n > 0 && hunks[n-1].baseEnd == e.OldStart && hunks[n-1].newEnd == e.NewStart {
			hunks[n-1].baseEnd = e.OldEnd
			hunks[n-1].newEnd = e.NewEnd
			continue
		}

		hunks = append(hunks, hunk{
			baseStart: e.OldStart, baseEnd: e.OldEnd,
			newStart: e.NewStart, newEnd: e.NewEnd,
		})
	}
	return hunks
}

// ContentMergeResult is the outcome of a three-way line merge of a single
// file's content: the three input sequences plus an ordered Chunk list
// referencing them. See Format, in result.go, for rendering it to marker
// text.
type ContentMergeResult struct {
	BaseLines, OursLines, TheirsLines []string
	Chunks                            []Chunk
	// Conflicted reports whether any hunk required a conflicting chunk.
	Conflicted bool
	// ConflictCount is the number of distinct conflicting regions.
	ConflictCount int
}

// MergeFileContent performs a three-way line-level merge: changes only one
// side made are applied automatically; changes both sides made to
// overlapping base lines are reconciled if identical, and recorded as a
// conflicting chunk pair otherwise. oursLabel/theirsLabel/diff3Style are
// accepted so existing call sites can go straight from inputs to rendered
// text via Format using the same labels; they have no bearing on the chunk
// list itself.
func MergeFileContent(base, ours, theirs []byte, oursLabel, theirsLabel string, diff3Style bool) *ContentMergeResult {
	baseLines := splitLines(base)
	oursLines := splitLines(ours)
	theirsLines := splitLines(theirs)

	var oursHunks, theirsHunks []hunk
	var g errgroup.Group
	g.Go(func() error {
		oursHunks = hunksFromEdits(diffseq.Diff(diffseq.Sequence(baseLines), diffseq.Sequence(oursLines)))
		return nil
	})
	g.Go(func() error {
		theirsHunks = hunksFromEdits(diffseq.Diff(diffseq.Sequence(baseLines), diffseq.Sequence(theirsLines)))
		return nil
	})
	_ = g.Wait()

	result := &ContentMergeResult{BaseLines: baseLines, OursLines: oursLines, TheirsLines: theirsLines}

	appendNoConflict := func(seq SequenceName, start, end int) {
		if start >= end {
			return
		}
		if n := len(result.Chunks); n > 0 {
			last := &result.Chunks[n-1]
			if last.State == NoConflict && last.Sequence == seq && last.End == start {
				last.End = end
				return
			}
		}
		result.Chunks = append(result.Chunks, Chunk{Sequence: seq, Start: start, End: end, State: NoConflict})
	}

	pos := 0
	oi, ti := 0, 0

	for pos < len(baseLines) || oi < len(oursHunks) || ti < len(theirsHunks) {
		var oh, th *hunk
		if oi < len(oursHunks) && oursHunks[oi].baseStart == pos {
			oh = &oursHunks[oi]
		}
		if ti < len(theirsHunks) && theirsHunks[ti].baseStart == pos {
			th = &theirsHunks[ti]
		}

		switch {
		case oh == nil && th == nil:
			if pos >= len(baseLines) {
				pos++
				continue
			}
			appendNoConflict(SequenceBase, pos, pos+1)
			pos++

		case oh != nil && th == nil:
			appendNoConflict(SequenceOurs, oh.newStart, oh.newEnd)
			pos = oh.baseEnd
			oi++

		case oh == nil && th != nil:
			appendNoConflict(SequenceTheirs, th.newStart, th.newEnd)
			pos = th.baseEnd
			ti++

		default:
			oursText := oursLines[oh.newStart:oh.newEnd]
			theirsText := theirsLines[th.newStart:th.newEnd]

			if equalLines(oursText, theirsText) {
				appendNoConflict(SequenceOurs, oh.newStart, oh.newEnd)
				pos = maxInt(oh.baseEnd, th.baseEnd)
				oi++
				ti++
				break
			}

			end := maxInt(oh.baseEnd, th.baseEnd)
			result.ConflictCount++
			result.Chunks = append(result.Chunks,
				Chunk{Sequence: SequenceOurs, Start: oh.newStart, End: oh.newEnd, State: FirstConflictingRange},
				Chunk{Sequence: SequenceBase, Start: pos, End: end, State: NextConflictingRange},
				Chunk{Sequence: SequenceTheirs, Start: th.newStart, End: th.newEnd, State: NextConflictingRange},
			)
			pos = end
			oi++
			ti++
		}
	}

	result.Conflicted = result.ConflictCount > 0
	return result
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	text := strings.TrimSuffix(string(content), "\n")
	return strings.Split(text, "\n")
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
