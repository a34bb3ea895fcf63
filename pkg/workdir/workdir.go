// Package workdir materializes a commit's tree onto disk, the operation
// backing checkout, reset --hard, stash apply and fast-forward merges.
package workdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/tree"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
)

// Options configures a working-directory update.
type Options struct {
	Force bool
}

// Option mutates Options.
type Option func(*Options)

// WithForce sets Options.Force. UpdateToCommit does not read it and
// overwrites files with uncommitted local changes either way.
func WithForce() Option {
	return func(o *Options) { o.Force = true }
}

// UpdateResult summarizes which paths changed during an update.
type UpdateResult struct {
	Written []scpath.RelativePath
	Removed []scpath.RelativePath
}

// Manager materializes commits onto the working tree.
type Manager struct {
	repo *sourcerepo.SourceRepository
}

// NewManager creates a Manager for repo.
func NewManager(repo *sourcerepo.SourceRepository) *Manager {
	return &Manager{repo: repo}
}

// UpdateToCommit overwrites the working tree with sha's snapshot, removing
// tracked files that no longer exist in it.
func (m *Manager) UpdateToCommit(ctx context.Context, sha objects.ObjectHash, opts ...Option) (*UpdateResult, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	c, err := m.repo.ReadCommitObject(sha)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", sha.Short(), err)
	}

	t, err := m.repo.ReadTreeObject(c.TreeSHA)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree %s: %w", c.TreeSHA.Short(), err)
	}

	existing, err := m.listTrackedFiles()
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{}
	wanted := make(map[scpath.RelativePath]bool)

	if err := m.writeTree(t, "", wanted, result); err != nil {
		return nil, err
	}

	for _, path := range existing {
		if !wanted[path] {
			abs := m.repo.WorkingDirectory().Join(path.String()).String()
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to remove %s: %w", path, err)
			}
			result.Removed = append(result.Removed, path)
		}
	}

	return result, nil
}

func (m *Manager) writeTree(t *tree.Tree, prefix string, wanted map[scpath.RelativePath]bool, result *UpdateResult) error {
	for _, entry := range t.Entries() {
		relStr := entry.Name()
		if prefix != "" {
			relStr = prefix + "/" + relStr
		}

		if entry.IsDirectory() {
			subtree, err := m.repo.ReadTreeObject(entry.SHA())
			if err != nil {
				return fmt.Errorf("failed to read subtree %s: %w", relStr, err)
			}
			if err := m.writeTree(subtree, relStr, wanted, result); err != nil {
				return err
			}
			continue
		}

		rel := scpath.RelativePath(relStr)
		wanted[rel] = true

		blobObj, err := m.repo.ReadBlobObject(entry.SHA())
		if err != nil {
			return fmt.Errorf("failed to read blob for %s: %w", relStr, err)
		}
		content, err := blobObj.Content()
		if err != nil {
			return fmt.Errorf("failed to read blob content for %s: %w", relStr, err)
		}

		abs := m.repo.WorkingDirectory().Join(relStr).String()
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", relStr, err)
		}

		mode := os.FileMode(0644)
		if entry.Mode().IsDirectory() == false && uint32(entry.Mode())&0o111 != 0 {
			mode = 0755
		}
		if err := os.WriteFile(abs, content.Bytes(), mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", relStr, err)
		}
		result.Written = append(result.Written, rel)
	}
	return nil
}

// listTrackedFiles walks the working directory, skipping the control
// directory, returning every file currently present.
func (m *Manager) listTrackedFiles() ([]scpath.RelativePath, error) {
	root := m.repo.WorkingDirectory().String()
	var out []scpath.RelativePath

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == scpath.SourceDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
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
	if err != nil {
		return nil, fmt.Errorf("failed to walk working directory: %w", err)
	}
	return out, nil
}
