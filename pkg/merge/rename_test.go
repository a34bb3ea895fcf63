package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/tree"
)

type blobFixture struct {
	contents map[objects.ObjectHash][]byte
}

func newBlobFixture() *blobFixture {
	return &blobFixture{contents: make(map[objects.ObjectHash][]byte)}
}

func (f *blobFixture) put(name string, content string) *tree.TreeEntry {
	sha := objects.ObjectHash(fmt.Sprintf("sha-%s-%d", name, len(f.contents)))
	f.contents[sha] = []byte(content)
	return tree.NewTreeEntry(name, objects.FileModeRegular, sha)
}

func (f *blobFixture) read(sha objects.ObjectHash) ([]byte, error) {
	c, ok := f.contents[sha]
	if !ok {
		return nil, fmt.Errorf("unknown blob %s", sha)
	}
	return c, nil
}

func TestDetectRenames_MatchesSimilarContentUnderNewName(t *testing.T) {
	f := newBlobFixture()
	body := "line one\nline two\nline three\nline four\nline five\n"

	base := map[string]*tree.TreeEntry{"old.txt": f.put("old.txt", body)}
	side := map[string]*tree.TreeEntry{"new.txt": f.put("new.txt", body)}

	renames := DetectRenames(base, side, f.read)

	require.Len(t, renames, 1)
	assert.Equal(t, "old.txt", renames[0].From)
	assert.Equal(t, "new.txt", renames[0].To)
	assert.Greater(t, renames[0].Score, renameThreshold)
}

func TestDetectRenames_NoMatchBelowThreshold(t *testing.T) {
	f := newBlobFixture()
	base := map[string]*tree.TreeEntry{"old.txt": f.put("old.txt", "alpha\nbeta\n")}
	side := map[string]*tree.TreeEntry{"new.txt": f.put("new.txt", "completely\nunrelated\ncontent\nhere\n")}

	renames := DetectRenames(base, side, f.read)

	assert.Empty(t, renames)
}

func TestDetectRenames_GreedyMatchPrefersHigherScore(t *testing.T) {
	f := newBlobFixture()
	body := "a\nb\nc\nd\ne\nf\ng\n"
	almostBody := "a\nb\nc\nd\ne\nf\nX\n"

	base := map[string]*tree.TreeEntry{
		"one.txt": f.put("one.txt", body),
		"two.txt": f.put("two.txt", almostBody),
	}
	side := map[string]*tree.TreeEntry{
		"renamed.txt": f.put("renamed.txt", body),
	}

	renames := DetectRenames(base, side, f.read)

	require.Len(t, renames, 1)
	assert.Equal(t, "one.txt", renames[0].From)
	assert.Equal(t, "renamed.txt", renames[0].To)
}

func TestRenameTable_LookupBothDirections(t *testing.T) {
	table := NewRenameTable([]RenameEntry{{From: "a.txt", To: "b.txt", Score: 0.9}})

	entry, ok := table.RenameOf("a.txt")
	require.True(t, ok)
	assert.Equal(t, "b.txt", entry.To)

	entry, ok = table.RenamedTo("b.txt")
	require.True(t, ok)
	assert.Equal(t, "a.txt", entry.From)

	_, ok = table.RenameOf("missing.txt")
	assert.False(t, ok)
}

func TestSimilarity_IdenticalContentIsOne(t *testing.T) {
	content := []byte("one\ntwo\nthree\n")
	assert.Equal(t, 1.0, similarity(content, content))
}

func TestSimilarity_EmptyBothIsOne(t *testing.T) {
	assert.Equal(t, 1.0, similarity(nil, nil))
}
