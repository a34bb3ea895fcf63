package merge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFileContent_AutoMergesNonOverlappingChanges(t *testing.T) {
	base := []byte("one\ntwo\nthree\nfour\nfive\n")
	ours := []byte("one\nTWO\nthree\nfour\nfive\n")
	theirs := []byte("one\ntwo\nthree\nfour\nFIVE\n")

	result := MergeFileContent(base, ours, theirs, "HEAD", "feature", false)

	require.False(t, result.Conflicted)
	assert.Equal(t, "one\nTWO\nthree\nfour\nFIVE\n", string(result.Format("HEAD", "feature", false)))
}

func TestMergeFileContent_BothSidesMakeIdenticalChange(t *testing.T) {
	base := []byte("one\ntwo\nthree\n")
	ours := []byte("one\nTWO\nthree\n")
	theirs := []byte("one\nTWO\nthree\n")

	result := MergeFileContent(base, ours, theirs, "HEAD", "feature", false)

	require.False(t, result.Conflicted)
	assert.Equal(t, "one\nTWO\nthree\n", string(result.Format("HEAD", "feature", false)))
}

func TestMergeFileContent_ConflictingChangeGetsMarkers(t *testing.T) {
	base := []byte("one\ntwo\nthree\n")
	ours := []byte("one\nOUR\nthree\n")
	theirs := []byte("one\nTHEIR\nthree\n")

	result := MergeFileContent(base, ours, theirs, "HEAD", "feature", false)

	require.True(t, result.Conflicted)
	assert.Equal(t, 1, result.ConflictCount)

	merged := string(result.Format("HEAD", "feature", false))
	assert.Contains(t, merged, ConflictMarkerStart+" HEAD")
	assert.Contains(t, merged, "OUR")
	assert.Contains(t, merged, ConflictMarkerSeparator)
	assert.Contains(t, merged, "THEIR")
	assert.Contains(t, merged, ConflictMarkerEnd+" feature")
	assert.NotContains(t, merged, ConflictMarkerBase)
}

func TestMergeFileContent_Diff3StyleIncludesBase(t *testing.T) {
	base := []byte("one\ntwo\nthree\n")
	ours := []byte("one\nOUR\nthree\n")
	theirs := []byte("one\nTHEIR\nthree\n")

	result := MergeFileContent(base, ours, theirs, "HEAD", "feature", true)

	require.True(t, result.Conflicted)
	assert.Contains(t, string(result.Format("HEAD", "feature", true)), ConflictMarkerBase+" base")
}

func TestMergeFileContent_IdenticalSidesNeverConflict(t *testing.T) {
	base := []byte("alpha\nbeta\n")
	content := []byte("alpha\nbeta\ngamma\n")

	result := MergeFileContent(base, content, content, "HEAD", "feature", false)

	require.False(t, result.Conflicted)
	assert.Equal(t, string(content), string(result.Format("HEAD", "feature", false)))
}

func TestMergeFileContent_ConflictingRegionsMatchChunks(t *testing.T) {
	base := []byte("one\ntwo\nthree\nfour\n")
	ours := []byte("one\nOUR\nthree\nfour\n")
	theirs := []byte("one\nTHEIR\nthree\nfour\n")

	result := MergeFileContent(base, ours, theirs, "HEAD", "feature", false)

	regions := result.ConflictingRegions()
	require.Len(t, regions, 1)
	assert.Equal(t, []string{"OUR"}, result.OursLines[regions[0].OurStart:regions[0].OurEnd])
	assert.Equal(t, []string{"THEIR"}, result.TheirsLines[regions[0].TheirStart:regions[0].TheirEnd])
	assert.Equal(t, []string{"two"}, result.BaseLines[regions[0].BaseStart:regions[0].BaseEnd])
}

func TestWriteConflictedFile_NoConflictWhenSidesMatch(t *testing.T) {
	var buf bytes.Buffer
	conflicted, err := WriteConflictedFile(&buf, []byte("base\n"), []byte("same\n"), []byte("same\n"), "HEAD", "feature", false)

	require.NoError(t, err)
	assert.False(t, conflicted)
	assert.Equal(t, "same\n", buf.String())
}

func TestWriteConflictedFile_ReportsConflict(t *testing.T) {
	var buf bytes.Buffer
	conflicted, err := WriteConflictedFile(&buf, []byte("base\n"), []byte("ours\n"), []byte("theirs\n"), "HEAD", "feature", false)

	require.NoError(t, err)
	assert.True(t, conflicted)
	assert.Contains(t, buf.String(), ConflictMarkerStart)
}
