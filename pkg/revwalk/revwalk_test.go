package revwalk

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/commit"
)

// fakeReader is an in-memory CommitReader built directly from a DAG
// described by tests, rather than real object hashes.
type fakeReader struct {
	commits map[objects.ObjectHash]*commit.Commit
}

func newFakeReader() *fakeReader {
	return &fakeReader{commits: make(map[objects.ObjectHash]*commit.Commit)}
}

// add registers a commit named sha with the given parents and a strictly
// increasing author time based on seq, so the priority queue has a
// deterministic order to walk in.
func (f *fakeReader) add(sha objects.ObjectHash, seq int, parents ...objects.ObjectHash) {
	person, err := commit.NewCommitPerson("tester", "tester@example.com", time.Unix(int64(seq)*100, 0).UTC())
	if err != nil {
		panic(err)
	}
	f.commits[sha] = &commit.Commit{
		TreeSHA:    objects.ObjectHash(fmt.Sprintf("%040d", seq)),
		ParentSHAs: parents,
		Author:     person,
		Committer:  person,
		Message:    string(sha),
	}
}

func (f *fakeReader) ReadCommitObject(hash objects.ObjectHash) (*commit.Commit, error) {
	c, ok := f.commits[hash]
	if !ok {
		return nil, fmt.Errorf("unknown commit %s", hash)
	}
	return c, nil
}

func hashOf(name string) objects.ObjectHash {
	padded := fmt.Sprintf("%x", []byte(name)) + "0000000000000000000000000000000000000000"
	return objects.ObjectHash(padded[:40])
}

func TestMergeBases_LinearHistorySharesDirectAncestor(t *testing.T) {
	r := newFakeReader()
	root := hashOf("root")
	mid := hashOf("mid")
	a := hashOf("branch-a")
	b := hashOf("branch-b")

	r.add(root, 0)
	r.add(mid, 1, root)
	r.add(a, 2, mid)
	r.add(b, 3, mid)

	w := NewWalker(r)
	bases, err := w.MergeBases(context.Background(), a, b)

	require.NoError(t, err)
	assert.Equal(t, []objects.ObjectHash{mid}, bases)
}

func TestMergeBases_SameCommitIsItsOwnBase(t *testing.T) {
	r := newFakeReader()
	c := hashOf("solo")
	r.add(c, 0)

	w := NewWalker(r)
	bases, err := w.MergeBases(context.Background(), c, c)

	require.NoError(t, err)
	assert.Equal(t, []objects.ObjectHash{c}, bases)
}

func TestMergeBases_CrissCrossReturnsBothBases(t *testing.T) {
	r := newFakeReader()
	root := hashOf("root")
	p1 := hashOf("p1")
	p2 := hashOf("p2")
	m1 := hashOf("m1")
	m2 := hashOf("m2")

	r.add(root, 0)
	r.add(p1, 1, root)
	r.add(p2, 2, root)
	r.add(m1, 3, p1, p2)
	r.add(m2, 4, p2, p1)

	w := NewWalker(r)
	bases, err := w.MergeBases(context.Background(), m1, m2)

	require.NoError(t, err)
	assert.ElementsMatch(t, []objects.ObjectHash{p1, p2}, bases)
}

func TestIsAncestor(t *testing.T) {
	r := newFakeReader()
	root := hashOf("root")
	mid := hashOf("mid")
	tip := hashOf("tip")

	r.add(root, 0)
	r.add(mid, 1, root)
	r.add(tip, 2, mid)

	w := NewWalker(r)

	ok, err := w.IsAncestor(context.Background(), root, tip)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = w.IsAncestor(context.Background(), tip, root)
	require.NoError(t, err)
	assert.False(t, ok)
}
