package merge

import (
	"sort"

	"github.com/scmkit/sourcecontrol/pkg/diffseq"
	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/tree"
)

// renameThreshold is the minimum similarity score (see similarity) two blobs
// must share before a path disappearing on one side and a new path
// appearing are treated as a rename rather than an independent delete/add.
const renameThreshold = 0.5

// RenameEntry records that From, present in the base, was detected as
// renamed to To on one side of a merge, with Score measuring how confident
// that detection is.
type RenameEntry struct {
	From, To string
	Score    float64
}

// blobReader reads a blob's content given its object hash.
type blobReader func(sha objects.ObjectHash) ([]byte, error)

// DetectRenames finds paths present in base but absent from side, and pairs
// each against a path present in side but absent from base, when their blob
// content is similar enough. Only regular-file and symlink entries (never
// directories or gitlinks) are considered; a mode change alone never
// disqualifies a match, since the tree-walk handles mode conflicts
// separately.
func DetectRenames(base, side map[string]*tree.TreeEntry, read blobReader) []RenameEntry {
	var removed, added []string
	for path := range base {
		if _, ok := side[path]; !ok {
			if e := base[path]; !e.IsDirectory() && !e.Mode().IsGitlink() {
				removed = append(removed, path)
			}
		}
	}
	for path := range side {
		if _, ok := base[path]; !ok {
			if e := side[path]; !e.IsDirectory() && !e.Mode().IsGitlink() {
				added = append(added, path)
			}
		}
	}
	if len(removed) == 0 || len(added) == 0 {
		return nil
	}
	sort.Strings(removed)
	sort.Strings(added)

	type candidate struct {
		from, to string
		score    float64
	}
	var candidates []candidate
	for _, from := range removed {
		fromBlob, err := read(base[from].SHA())
		if err != nil {
			continue
		}
		for _, to := range added {
			toBlob, err := read(side[to].SHA())
			if err != nil {
				continue
			}
			score := similarity(fromBlob, toBlob)
			if score >= renameThreshold {
				candidates = append(candidates, candidate{from, to, score})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].from != candidates[j].from {
			return candidates[i].from < candidates[j].from
		}
		return candidates[i].to < candidates[j].to
	})

	usedFrom := make(map[string]bool, len(removed))
	usedTo := make(map[string]bool, len(added))
	var renames []RenameEntry
	for _, c := range candidates {
		if usedFrom[c.from] || usedTo[c.to] {
			continue
		}
		usedFrom[c.from] = true
		usedTo[c.to] = true
		renames = append(renames, RenameEntry{From: c.from, To: c.to, Score: c.score})
	}

	sort.Slice(renames, func(i, j int) bool { return renames[i].From < renames[j].From })
	return renames
}

// similarity scores two blobs' content by the fraction of lines the longer
// one shares unchanged with the other, via the same Myers diff used for
// content merging.
func similarity(a, b []byte) float64 {
	aLines := splitLines(a)
	bLines := splitLines(b)
	if len(aLines) == 0 && len(bLines) == 0 {
		return 1
	}

	edits := diffseq.Diff(diffseq.Sequence(aLines), diffseq.Sequence(bLines))
	var equal int
	for _, e := range edits {
		if e.Kind == diffseq.EditEqual {
			equal += e.OldEnd - e.OldStart
		}
	}

	longest := len(aLines)
	if len(bLines) > longest {
		longest = len(bLines)
	}
	if longest == 0 {
		return 1
	}
	return float64(equal) / float64(longest)
}

// RenameTable indexes a set of detected renames for lookup from either end.
type RenameTable struct {
	byFrom map[string]RenameEntry
	byTo   map[string]RenameEntry
}

// NewRenameTable indexes renames by both their From and To paths.
func NewRenameTable(renames []RenameEntry) *RenameTable {
	t := &RenameTable{byFrom: make(map[string]RenameEntry), byTo: make(map[string]RenameEntry)}
	for _, r := range renames {
		t.byFrom[r.From] = r
		t.byTo[r.To] = r
	}
	return t
}

// RenameOf reports the entry, if any, whose From matches path.
func (t *RenameTable) RenameOf(path string) (RenameEntry, bool) {
	if t == nil {
		return RenameEntry{}, false
	}
	r, ok := t.byFrom[path]
	return r, ok
}

// RenamedTo reports the entry, if any, whose To matches path.
func (t *RenameTable) RenamedTo(path string) (RenameEntry, bool) {
	if t == nil {
		return RenameEntry{}, false
	}
	r, ok := t.byTo[path]
	return r, ok
}
