// Package commitmanager creates commits from the staged index and walks
// commit history, the layer every history-facing command builds on.
package commitmanager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scmkit/sourcecontrol/pkg/config"
	"github.com/scmkit/sourcecontrol/pkg/index"
	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/commit"
	"github.com/scmkit/sourcecontrol/pkg/objects/tree"
	"github.com/scmkit/sourcecontrol/pkg/repository/refs"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
)

// CommitOptions configures a new commit. Author/Committer default to
// config-resolved identity when left unset, the same fallback tag manager
// uses for tagger identity.
type CommitOptions struct {
	Message   string
	Author    *commit.CommitPerson
	Committer *commit.CommitPerson
	Parents   []objects.ObjectHash
	AllowEmpty bool
}

// Manager creates commits from the index and walks the commit graph.
type Manager struct {
	repo   *sourcerepo.SourceRepository
	refMgr *refs.RefManager
}

// NewManager creates a commit Manager for repo.
func NewManager(repo *sourcerepo.SourceRepository) *Manager {
	return &Manager{repo: repo, refMgr: refs.NewRefManager(repo)}
}

// Initialize verifies the repository is ready to accept commits. It
// currently performs no setup of its own, existing to mirror the other
// managers' lifecycle and leave room for future bookkeeping.
func (m *Manager) Initialize(ctx context.Context) error {
	return nil
}

// GetCommit reads and returns a single commit by hash.
func (m *Manager) GetCommit(ctx context.Context, sha objects.ObjectHash) (*commit.Commit, error) {
	return m.repo.ReadCommitObject(sha)
}

// CreateCommit snapshots the current index into a tree and commits it,
// parented on HEAD (or on opts.Parents, if given), advancing the current
// branch (or HEAD directly, if detached) to the new commit.
func (m *Manager) CreateCommit(ctx context.Context, opts CommitOptions) (*commit.Commit, error) {
	indexMgr := index.NewManager(m.repo.WorkingDirectory())
	if err := indexMgr.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	treeHash, err := m.writeTreeFromIndex(indexMgr.GetIndex())
	if err != nil {
		return nil, fmt.Errorf("failed to write tree: %w", err)
	}

	parents := opts.Parents
	if parents == nil {
		if head, err := m.repo.Head(); err == nil {
			parents = []objects.ObjectHash{head}
		}
	}

	if !opts.AllowEmpty && len(parents) == 1 {
		if parentCommit, err := m.repo.ReadCommitObject(parents[0]); err == nil && parentCommit.TreeSHA == treeHash {
			return nil, fmt.Errorf("nothing to commit, working tree matches HEAD")
		}
	}

	author := opts.Author
	if author == nil {
		author, err = resolveIdentity(m.repo.WorkingDirectory())
		if err != nil {
			return nil, err
		}
	}
	committer := opts.Committer
	if committer == nil {
		committer = author
	}

	builder := commit.NewCommitBuilder().
		Tree(treeHash).
		Parents(parents...).
		Author(author).
		Committer(committer).
		Message(opts.Message)

	newCommit, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build commit: %w", err)
	}

	if _, err := m.repo.WriteObject(newCommit); err != nil {
		return nil, fmt.Errorf("failed to write commit object: %w", err)
	}

	if err := m.advanceHead(newCommit); err != nil {
		return nil, err
	}

	return newCommit, nil
}

// CreateCommitFromIndex is CreateCommit's entry point for callers that
// already know the exact parent list (e.g. a merge commit with two
// parents), bypassing HEAD-based parent resolution.
func (m *Manager) CreateCommitFromIndex(ctx context.Context, message string, parents []objects.ObjectHash) (objects.ObjectHash, error) {
	c, err := m.CreateCommit(ctx, CommitOptions{Message: message, Parents: parents, AllowEmpty: true})
	if err != nil {
		return "", err
	}
	return c.Hash()
}

// advanceHead moves the current branch (or HEAD itself, if detached) to
// newCommit's hash.
func (m *Manager) advanceHead(newCommit *commit.Commit) error {
	hash, err := newCommit.Hash()
	if err != nil {
		return fmt.Errorf("failed to hash commit: %w", err)
	}

	branchName, err := m.refMgr.CurrentBranchName()
	if err != nil {
		return fmt.Errorf("failed to resolve current branch: %w", err)
	}

	if branchName == "" {
		return m.refMgr.UpdateRef("HEAD", hash)
	}
	return m.refMgr.UpdateRef(refs.RefPath("refs/heads/"+branchName), hash)
}

// GetHistory walks ancestry from start (or HEAD, if start is the zero
// value) breadth-first, queueing each commit's parents in order, and
// returns up to limit commits (all of them when limit <= 0) in that
// visiting order; commits are not sorted by time.
func (m *Manager) GetHistory(ctx context.Context, start objects.ObjectHash, limit int) ([]*commit.Commit, error) {
	head := start
	if head == "" {
		resolved, err := m.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		head = resolved
	}

	var history []*commit.Commit
	visited := make(map[objects.ObjectHash]bool)
	queue := []objects.ObjectHash{head}

	for len(queue) > 0 && (limit <= 0 || len(history) < limit) {
		sha := queue[0]
		queue = queue[1:]

		if sha == "" || visited[sha] {
			continue
		}
		visited[sha] = true

		c, err := m.repo.ReadCommitObject(sha)
		if err != nil {
			return nil, fmt.Errorf("failed to read commit %s: %w", sha.Short(), err)
		}
		history = append(history, c)
		queue = append(queue, c.ParentSHAs...)
	}

	return history, nil
}

func (m *Manager) writeTreeFromIndex(idx *index.Index) (objects.ObjectHash, error) {
	type dirNode struct {
		entries  map[string]*tree.TreeEntry
		children map[string]*dirNode
	}
	newDir := func() *dirNode {
		return &dirNode{entries: make(map[string]*tree.TreeEntry), children: make(map[string]*dirNode)}
	}
	root := newDir()

	for _, entry := range idx.Entries {
		if entry.Stage != 0 {
			continue // unresolved conflicts are never part of a committed tree
		}

		parts := strings.Split(entry.Path.Normalize().String(), "/")
		dir := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := dir.children[part]
			if !ok {
				child = newDir()
				dir.children[part] = child
			}
			dir = child
		}
		name := parts[len(parts)-1]
		dir.entries[name] = tree.NewTreeEntry(name, entry.Mode, entry.BlobHash)
	}

	var writeDir func(*dirNode) (objects.ObjectHash, error)
	writeDir = func(dir *dirNode) (objects.ObjectHash, error) {
		entries := make([]*tree.TreeEntry, 0, len(dir.entries)+len(dir.children))
		for _, e := range dir.entries {
			entries = append(entries, e)
		}
		for name, child := range dir.children {
			childHash, err := writeDir(child)
			if err != nil {
				return "", err
			}
			entries = append(entries, tree.NewTreeEntry(name, objects.FileModeDirectory, childHash))
		}

		t := tree.NewTree(entries)
		return m.repo.WriteObject(t)
	}

	return writeDir(root)
}

func resolveIdentity(workingDir scpath.AbsolutePath) (*commit.CommitPerson, error) {
	cfg := config.NewManager(workingDir)

	name := "Unknown User"
	if entry := cfg.Get("user.name"); entry != nil && entry.Value != "" {
		name = entry.Value
	}

	email := "unknown@example.com"
	if entry := cfg.Get("user.email"); entry != nil && entry.Value != "" {
		email = entry.Value
	}

	return commit.NewCommitPerson(name, email, time.Now())
}
