// Package tree implements the tree object: an ordered list of named entries
// (blobs, subtrees, or gitlinks) that together describe one directory level
// of a commit's snapshot.
package tree

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/scmkit/sourcecontrol/pkg/objects"
)

// TreeEntry names one child of a tree: its path segment, mode, and the
// object it points at.
type TreeEntry struct {
	name string
	mode objects.FileMode
	sha  objects.ObjectHash
}

// NewTreeEntry constructs a TreeEntry.
func NewTreeEntry(name string, mode objects.FileMode, sha objects.ObjectHash) *TreeEntry {
	return &TreeEntry{name: name, mode: mode, sha: sha}
}

func (e *TreeEntry) Name() string              { return e.name }
func (e *TreeEntry) Mode() objects.FileMode     { return e.mode }
func (e *TreeEntry) SHA() objects.ObjectHash    { return e.sha }
func (e *TreeEntry) IsDirectory() bool          { return e.mode.IsDirectory() }
func (e *TreeEntry) String() string {
	return fmt.Sprintf("%s %s %s", e.mode, e.sha.Short(), e.name)
}

// sortKey produces the comparison key git uses for canonical tree ordering:
// directory entries sort as if their name had a trailing slash.
func (e *TreeEntry) sortKey() string {
	if e.IsDirectory() {
		return e.name + "/"
	}
	return e.name
}

// Tree is an ordered collection of entries, canonically sorted, making two
// trees with identical content byte-identical once serialized.
type Tree struct {
	entries []*TreeEntry
	hash    *objects.ObjectHash
}

// NewTree builds a Tree, sorting entries into canonical order.
func NewTree(entries []*TreeEntry) *Tree {
	sorted := make([]*TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].sortKey() < sorted[j].sortKey()
	})
	return &Tree{entries: sorted}
}

// Entries returns the tree's entries in canonical order.
func (t *Tree) Entries() []*TreeEntry { return t.entries }

// Get returns the entry named name, if present.
func (t *Tree) Get(name string) (*TreeEntry, bool) {
	for _, e := range t.entries {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (t *Tree) Len() int { return len(t.entries) }

func (t *Tree) Type() objects.ObjectType { return objects.TreeType }

// Content renders the tree body in "<mode> <name>\x00<raw-hash>" records,
// the same per-entry binary framing git's tree object uses.
func (t *Tree) Content() (objects.ObjectContent, error) {
	var buf strings.Builder
	for _, e := range t.entries {
		raw, err := e.sha.Raw()
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", e.name, err)
		}
		buf.WriteString(e.mode.String())
		buf.WriteByte(' ')
		buf.WriteString(e.name)
		buf.WriteByte(0)
		buf.Write(raw[:])
	}
	return objects.ObjectContent(buf.String()), nil
}

// Hash returns (and caches) the tree's object hash.
func (t *Tree) Hash() (objects.ObjectHash, error) {
	if t.hash != nil {
		return *t.hash, nil
	}
	content, err := t.Content()
	if err != nil {
		return "", err
	}
	hash := objects.ComputeObjectHash(objects.TreeType, content)
	t.hash = &hash
	return hash, nil
}

func (t *Tree) Size() (objects.ObjectSize, error) {
	content, err := t.Content()
	if err != nil {
		return 0, err
	}
	return content.Size(), nil
}

func (t *Tree) Serialize(w io.Writer) error {
	content, err := t.Content()
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}
	serialized := objects.NewSerializedObject(objects.TreeType, content)
	if _, err := w.Write(serialized.Bytes()); err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}
	return nil
}

// ParseTree parses a tree object from its serialized (with header) form.
func ParseTree(data []byte) (*Tree, error) {
	content, err := objects.ParseSerializedObject(data, objects.TreeType)
	if err != nil {
		return nil, err
	}

	raw := content.Bytes()
	entries := make([]*TreeEntry, 0)

	for len(raw) > 0 {
		sp := indexByte(raw, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("malformed tree entry: missing mode separator")
		}
		mode, err := objects.ParseFileMode(string(raw[:sp]))
		if err != nil {
			return nil, err
		}

		nul := indexByte(raw[sp+1:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("malformed tree entry: missing name terminator")
		}
		name := string(raw[sp+1 : sp+1+nul])

		hashStart := sp + 1 + nul + 1
		hashEnd := hashStart + 20
		if hashEnd > len(raw) {
			return nil, fmt.Errorf("malformed tree entry: truncated hash")
		}
		sha, err := objects.NewObjectHashFromString(hex.EncodeToString(raw[hashStart:hashEnd]))
		if err != nil {
			return nil, fmt.Errorf("malformed tree entry hash: %w", err)
		}

		entries = append(entries, NewTreeEntry(name, mode, sha))
		raw = raw[hashEnd:]
	}

	t := NewTree(entries)
	hash := objects.NewObjectHash(objects.SerializedObject(data))
	t.hash = &hash
	return t, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
