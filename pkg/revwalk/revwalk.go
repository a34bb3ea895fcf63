// Package revwalk walks commit ancestry graphs: finding merge bases and
// testing ancestor relationships without materializing a full ancestor set
// up front.
package revwalk

import (
	"container/heap"
	"context"
	"errors"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/commit"
)

// MaxBases caps how many merge bases MergeBases will report before giving
// up; a repository needing more than this has a pathological criss-cross
// history no caller should try to resolve automatically.
const MaxBases = 64

// ErrTooManyBases is returned when the merge-base search exceeds MaxBases.
var ErrTooManyBases = errors.New("revwalk: too many merge bases")

// CommitReader reads a commit object by hash. *sourcerepo.SourceRepository
// satisfies this directly.
type CommitReader interface {
	ReadCommitObject(hash objects.ObjectHash) (*commit.Commit, error)
}

type flag uint8

const (
	flagParent1 flag = 1 << iota
	flagParent2
	flagResult
	flagStale
)

// node is one commit visited by the walk, carrying the ancestry flags
// painted onto it so far. Nodes are shared by pointer between the pending
// queue and any in-flight parent lookups, so updating flags in place is
// visible everywhere the node is referenced.
type node struct {
	sha    objects.ObjectHash
	commit *commit.Commit
	flags  flag
}

// pending is a max-heap ordered by commit author time (newest first),
// mirroring the priority queue real version-control tools use to walk
// history breadth-first in time order rather than parent order.
type pending []*node

func (p pending) Len() int { return len(p) }
func (p pending) Less(i, j int) bool {
	return p[i].commit.Author.When.Time().After(p[j].commit.Author.When.Time())
}
func (p pending) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p *pending) Push(x interface{}) { *p = append(*p, x.(*node)) }
func (p *pending) Pop() interface{} {
	old := *p
	n := len(old)
	item := old[n-1]
	*p = old[:n-1]
	return item
}

// Walker computes ancestry relationships between commits.
type Walker struct {
	reader CommitReader
}

// NewWalker returns a Walker reading commits through reader.
func NewWalker(reader CommitReader) *Walker {
	return &Walker{reader: reader}
}

// MergeBases finds the best common ancestors of a and b: commits reachable
// from both that are not themselves ancestors of another common ancestor.
// For a simple history this is a single commit; a criss-cross merge history
// can produce several, none of which dominates the others.
//
// The algorithm paints each start commit with a parent flag, then walks
// pending commits newest-first, propagating flags to parents. A commit
// carrying both parent flags is a merge-base candidate; once found, its
// flag-propagation continues so that any ancestor of it is marked stale and
// excluded from the result, since a merge base that is itself an ancestor
// of another merge base isn't the best common ancestor.
func (w *Walker) MergeBases(ctx context.Context, a, b objects.ObjectHash) ([]objects.ObjectHash, error) {
	if a.Equal(b) {
		return []objects.ObjectHash{a}, nil
	}

	seen := make(map[objects.ObjectHash]*node)

	start := func(sha objects.ObjectHash, f flag) error {
		c, err := w.reader.ReadCommitObject(sha)
		if err != nil {
			return err
		}
		seen[sha] = &node{sha: sha, commit: c, flags: f}
		return nil
	}
	if err := start(a, flagParent1); err != nil {
		return nil, err
	}
	if err := start(b, flagParent2); err != nil {
		return nil, err
	}

	q := pending{seen[a], seen[b]}
	heap.Init(&q)

	var bases []objects.ObjectHash

	for q.Len() > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n := heap.Pop(&q).(*node)

		if n.flags&(flagParent1|flagParent2) == (flagParent1|flagParent2) && n.flags&(flagResult|flagStale) == 0 {
			n.flags |= flagResult
			bases = append(bases, n.sha)
			if len(bases) > MaxBases {
				return nil, ErrTooManyBases
			}
		}

		inherited := n.flags &^ flagResult
		if n.flags&flagResult != 0 {
			inherited |= flagStale
		}

		for _, parentSHA := range n.commit.ParentSHAs {
			if existing, ok := seen[parentSHA]; ok {
				existing.flags |= inherited
				continue
			}

			parentCommit, err := w.reader.ReadCommitObject(parentSHA)
			if err != nil {
				return nil, err
			}
			p := &node{sha: parentSHA, commit: parentCommit, flags: inherited}
			seen[parentSHA] = p
			heap.Push(&q, p)
		}
	}

	var result []objects.ObjectHash
	for _, sha := range bases {
		if seen[sha].flags&flagStale == 0 {
			result = append(result, sha)
		}
	}
	return result, nil
}

// IsAncestor reports whether ancestor is reachable from descendant by
// following parent links.
func (w *Walker) IsAncestor(ctx context.Context, ancestor, descendant objects.ObjectHash) (bool, error) {
	if ancestor.Equal(descendant) {
		return true, nil
	}

	visited := make(map[objects.ObjectHash]bool)
	queue := []objects.ObjectHash{descendant}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		sha := queue[0]
		queue = queue[1:]
		if visited[sha] {
			continue
		}
		visited[sha] = true

		if sha.Equal(ancestor) {
			return true, nil
		}

		c, err := w.reader.ReadCommitObject(sha)
		if err != nil {
			return false, err
		}
		queue = append(queue, c.ParentSHAs...)
	}

	return false, nil
}
