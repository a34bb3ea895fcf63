// Package branch manages named branch refs: creating, listing, switching
// and resolving them to commits.
package branch

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/repository/refs"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
)

// repository is the surface Manager needs from a repository.
type repository interface {
	SourceDirectory() scpath.SourcePath
	WorkingDirectory() scpath.AbsolutePath
}

// BranchInfo describes a single branch.
type BranchInfo struct {
	Name   string
	SHA    objects.ObjectHash
	Active bool
}

// Manager reads and writes branch refs for a repository.
type Manager struct {
	repo   repository
	refMgr *refs.RefManager
}

// NewManager creates a branch Manager for repo.
func NewManager(repo repository) *Manager {
	return &Manager{repo: repo, refMgr: refs.NewRefManager(repo)}
}

// CurrentBranch returns the name of the branch HEAD points at, or an error
// if HEAD is detached.
func (m *Manager) CurrentBranch() (string, error) {
	name, err := m.refMgr.CurrentBranchName()
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("HEAD is detached")
	}
	return name, nil
}

// CurrentCommit resolves HEAD to a commit hash.
func (m *Manager) CurrentCommit() (objects.ObjectHash, error) {
	return m.refMgr.ResolveToSHA("HEAD")
}

// BranchExists reports whether a branch named name has a ref on disk.
func (m *Manager) BranchExists(name string) (bool, error) {
	path := m.repo.SourceDirectory().HeadsPath().Sub(name).ToAbsolutePath().String()
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// GetBranch resolves name to its current commit hash.
func (m *Manager) GetBranch(ctx context.Context, name string) (*BranchInfo, error) {
	sha, err := m.refMgr.ResolveToSHA(refs.RefPath("refs/heads/" + name))
	if err != nil {
		return nil, fmt.Errorf("branch %q not found: %w", name, err)
	}

	current, _ := m.CurrentBranch()
	return &BranchInfo{Name: name, SHA: sha, Active: name == current}, nil
}

// CreateBranch creates a new branch named name pointing at startSHA.
func (m *Manager) CreateBranch(name string, startSHA objects.ObjectHash) error {
	exists, err := m.BranchExists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("branch %q already exists", name)
	}
	return m.refMgr.UpdateRef(refs.RefPath("refs/heads/"+name), startSHA)
}

// UpdateBranch moves an existing branch's ref to sha.
func (m *Manager) UpdateBranch(name string, sha objects.ObjectHash) error {
	return m.refMgr.UpdateRef(refs.RefPath("refs/heads/"+name), sha)
}

// DeleteBranch removes a branch's ref file.
func (m *Manager) DeleteBranch(name string) error {
	path := m.repo.SourceDirectory().HeadsPath().Sub(name).ToAbsolutePath().String()
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete branch %q: %w", name, err)
	}
	return nil
}

// Checkout points HEAD at branch name.
func (m *Manager) Checkout(name string) error {
	exists, err := m.BranchExists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("branch %q does not exist", name)
	}
	return m.refMgr.SetHeadToBranch(name)
}

// ListBranches returns the branches stored directly under refs/heads, sorted
// by name; branches whose names contain a slash are not listed.
func (m *Manager) ListBranches() ([]*BranchInfo, error) {
	headsDir := m.repo.SourceDirectory().HeadsPath().ToAbsolutePath().String()
	files, err := os.ReadDir(headsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	current, _ := m.CurrentBranch()

	var branches []*BranchInfo
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.TrimSuffix(f.Name(), "")
		info, err := m.GetBranch(context.Background(), name)
		if err != nil {
			continue
		}
		info.Active = info.Name == current
		branches = append(branches, info)
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}
