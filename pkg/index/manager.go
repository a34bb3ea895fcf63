package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/blob"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
	"github.com/scmkit/sourcecontrol/pkg/store"
)

// Manager loads, mutates and persists the on-disk index file for a single
// working directory.
type Manager struct {
	workingDir scpath.AbsolutePath
	index      *Index
}

// NewManager creates a Manager for the index file under workingDir's
// control directory.
func NewManager(workingDir scpath.AbsolutePath) *Manager {
	return &Manager{workingDir: workingDir}
}

// Initialize loads the index file from disk, starting empty if absent.
func (m *Manager) Initialize() error {
	idx, err := readIndexFile(m.workingDir)
	if err != nil {
		return err
	}
	m.index = idx
	return nil
}

// GetIndex returns the in-memory index, starting an empty one if
// Initialize has not loaded it; it does not read the index file.
func (m *Manager) GetIndex() *Index {
	if m.index == nil {
		m.index = NewIndex()
	}
	return m.index
}

// Add stages each path: reading it from the working tree, writing a blob
// for its content, and recording a stage-0 entry. Directories are staged
// recursively. Returns the hashes written, in the order paths were given.
func (m *Manager) Add(paths []string, objectStore store.ObjectStore) ([]objects.ObjectHash, error) {
	idx := m.GetIndex()

	var hashes []objects.ObjectHash
	for _, p := range paths {
		relPaths, err := m.expand(p)
		if err != nil {
			return nil, err
		}

		for _, rel := range relPaths {
			hash, mode, err := m.stageFile(rel, objectStore)
			if err != nil {
				return nil, err
			}
			idx.Add(&Entry{Stage: 0, Path: rel, BlobHash: hash, Mode: mode})
			hashes = append(hashes, hash)
		}
	}

	if err := writeIndexFile(m.workingDir, idx); err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}
	return hashes, nil
}

// expand resolves p (relative to the working directory) to the set of
// file-relative paths it names, walking directories recursively.
func (m *Manager) expand(p string) ([]scpath.RelativePath, error) {
	abs := m.workingDir.Join(p).String()
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", p, err)
	}

	if !info.IsDir() {
		rel, err := scpath.NewRelativePath(p)
		if err != nil {
			return nil, err
		}
		return []scpath.RelativePath{rel}, nil
	}

	var out []scpath.RelativePath
	err = filepath.Walk(abs, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if fi.Name() == scpath.SourceDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(m.workingDir.String(), path)
		if err != nil {
			return err
		}
		relPath, err := scpath.NewRelativePath(rel)
		if err != nil {
			return err
		}
		out = append(out, relPath)
		return nil
	})
	return out, err
}

func (m *Manager) stageFile(rel scpath.RelativePath, objectStore store.ObjectStore) (objects.ObjectHash, objects.FileMode, error) {
	abs := m.workingDir.Join(rel.String()).String()

	info, err := os.Lstat(abs)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	mode := objects.FileModeRegular
	if info.Mode()&0o111 != 0 {
		mode = objects.FileModeExecutable
	}

	hash, err := objectStore.WriteObject(blob.NewBlob(data))
	if err != nil {
		return "", 0, fmt.Errorf("failed to write blob for %s: %w", rel, err)
	}
	return hash, mode, nil
}

// Remove unstages paths, optionally recursing into directories under them.
func (m *Manager) Remove(paths []string, recursive bool) ([]scpath.RelativePath, error) {
	idx := m.GetIndex()

	var removed []scpath.RelativePath
	for _, p := range paths {
		rel, err := scpath.NewRelativePath(p)
		if err != nil {
			return nil, err
		}

		if recursive {
			prefix := rel.String() + "/"
			filtered := make([]*Entry, 0, len(idx.Entries))
			for _, entry := range idx.Entries {
				path := entry.Path.Normalize().String()
				if path == rel.String() || len(path) > len(prefix) && path[:len(prefix)] == prefix {
					removed = append(removed, entry.Path)
					continue
				}
				filtered = append(filtered, entry)
			}
			idx.Entries = filtered
		} else {
			idx.Remove(rel)
			removed = append(removed, rel)
		}
	}

	if err := writeIndexFile(m.workingDir, idx); err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}
	return removed, nil
}

// Clear empties the index and persists the change.
func (m *Manager) Clear() error {
	m.index = NewIndex()
	return writeIndexFile(m.workingDir, m.index)
}

// Write persists the current in-memory index to disk.
func (m *Manager) Write() error {
	return writeIndexFile(m.workingDir, m.GetIndex())
}
