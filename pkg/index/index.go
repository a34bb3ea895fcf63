// Package index implements the staging area: a flat, path-sorted list of
// entries bridging the working tree and the next commit, plus the stage
//1/2/3 convention used to record unresolved merge conflicts.
package index

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
)

// Entry is a single staged path. Stage 0 is a normal entry; stages 1-3
// record the base/ours/theirs sides of an unresolved merge conflict.
type Entry struct {
	Stage    int
	Path     scpath.RelativePath
	BlobHash objects.ObjectHash
	Mode     objects.FileMode
}

// Index is the staging area's in-memory representation.
type Index struct {
	Entries []*Entry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add inserts or replaces the stage-0 entry for entry.Path.
func (idx *Index) Add(entry *Entry) {
	normalized := entry.Path.Normalize()
	for i, existing := range idx.Entries {
		if existing.Stage == entry.Stage && existing.Path.Normalize() == normalized {
			idx.Entries[i] = entry
			idx.sort()
			return
		}
	}
	idx.Entries = append(idx.Entries, entry)
	idx.sort()
}

// Remove deletes every entry (any stage) for path.
func (idx *Index) Remove(path scpath.RelativePath) {
	normalized := path.Normalize()
	filtered := make([]*Entry, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		if entry.Path.Normalize() == normalized {
			continue
		}
		filtered = append(filtered, entry)
	}
	idx.Entries = filtered
}

// Get returns the stage-0 entry for path, if present.
func (idx *Index) Get(path scpath.RelativePath) (*Entry, bool) {
	normalized := path.Normalize()
	for _, entry := range idx.Entries {
		if entry.Stage == 0 && entry.Path.Normalize() == normalized {
			return entry, true
		}
	}
	return nil, false
}

func (idx *Index) sort() {
	sort.Slice(idx.Entries, func(i, j int) bool {
		a, b := idx.Entries[i], idx.Entries[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Stage < b.Stage
	})
}

// serialize writes the index in a simple line-oriented format:
// "<stage> <mode> <sha> <path>" per entry.
func (idx *Index) serialize(w *bufio.Writer) error {
	for _, entry := range idx.Entries {
		if _, err := fmt.Fprintf(w, "%d %s %s %s\n", entry.Stage, entry.Mode, entry.BlobHash, entry.Path); err != nil {
			return err
		}
	}
	return w.Flush()
}

func parseIndex(r *bufio.Reader) (*Index, error) {
	idx := NewIndex()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 4)
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed index line: %q", line)
		}

		stage, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("malformed index stage %q: %w", fields[0], err)
		}
		mode, err := objects.ParseFileMode(fields[1])
		if err != nil {
			return nil, fmt.Errorf("malformed index mode: %w", err)
		}
		sha, err := objects.NewObjectHashFromString(fields[2])
		if err != nil {
			return nil, fmt.Errorf("malformed index sha: %w", err)
		}

		idx.Entries = append(idx.Entries, &Entry{
			Stage:    stage,
			Path:     scpath.RelativePath(fields[3]),
			BlobHash: sha,
			Mode:     mode,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	idx.sort()
	return idx, nil
}

func indexFilePath(workingDir scpath.AbsolutePath) string {
	return workingDir.Join(scpath.SourceDir, "index").String()
}

func readIndexFile(workingDir scpath.AbsolutePath) (*Index, error) {
	f, err := os.Open(indexFilePath(workingDir))
	if os.IsNotExist(err) {
		return NewIndex(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	return parseIndex(bufio.NewReader(f))
}

func writeIndexFile(workingDir scpath.AbsolutePath, idx *Index) error {
	f, err := os.Create(indexFilePath(workingDir))
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer f.Close()

	return idx.serialize(bufio.NewWriter(f))
}
