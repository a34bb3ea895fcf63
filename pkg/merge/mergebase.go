package merge

import (
	"context"
	"fmt"

	"github.com/scmkit/sourcecontrol/pkg/commitmanager"
	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/commit"
	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
	"github.com/scmkit/sourcecontrol/pkg/revwalk"
)

// MergeBaseCalculator finds the common ancestor(s) between commits using the
// same flag-propagation walk git's merge-base uses, rather than intersecting
// full ancestor sets.
type MergeBaseCalculator struct {
	repo      *sourcerepo.SourceRepository
	commitMgr *commitmanager.Manager
	walker    *revwalk.Walker
}

// NewMergeBaseCalculator creates a new merge base calculator
func NewMergeBaseCalculator(repo *sourcerepo.SourceRepository) *MergeBaseCalculator {
	return &MergeBaseCalculator{
		repo:      repo,
		commitMgr: commitmanager.NewManager(repo),
		walker:    revwalk.NewWalker(repo),
	}
}

// FindMergeBases finds every merge base between two commits. When the
// commits share more than one best common ancestor (a criss-cross merge),
// all of them are returned, oldest algorithmic concerns included.
func (mbc *MergeBaseCalculator) FindMergeBases(ctx context.Context, commit1SHA, commit2SHA objects.ObjectHash) ([]*commit.Commit, error) {
	if err := mbc.commitMgr.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize commit manager: %w", err)
	}

	baseSHAs, err := mbc.walker.MergeBases(ctx, commit1SHA, commit2SHA)
	if err != nil {
		return nil, fmt.Errorf("failed to compute merge bases: %w", err)
	}

	bases := make([]*commit.Commit, 0, len(baseSHAs))
	for _, sha := range baseSHAs {
		c, err := mbc.commitMgr.GetCommit(ctx, sha)
		if err != nil {
			return nil, fmt.Errorf("failed to get merge base %s: %w", sha.Short(), err)
		}
		bases = append(bases, c)
	}

	return bases, nil
}

// FindMergeBase finds the single best common ancestor between two commits.
// When there is more than one best common ancestor, it synthesizes a
// virtual base by recursively merging the candidates together, the same
// way recursive merge strategies resolve criss-cross histories.
func (mbc *MergeBaseCalculator) FindMergeBase(ctx context.Context, commit1SHA, commit2SHA objects.ObjectHash) (*commit.Commit, error) {
	bases, err := mbc.FindMergeBases(ctx, commit1SHA, commit2SHA)
	if err != nil {
		return nil, err
	}

	if len(bases) == 0 {
		return nil, fmt.Errorf("no common ancestor found")
	}
	if len(bases) == 1 {
		return bases[0], nil
	}

	recursive := NewRecursiveMerger(mbc.repo)
	return recursive.synthesizeVirtualBase(ctx, bases)
}

// IsAncestor checks if possibleAncestor is an ancestor of commit
func (mbc *MergeBaseCalculator) IsAncestor(ctx context.Context, possibleAncestorSHA, commitSHA objects.ObjectHash) (bool, error) {
	return mbc.walker.IsAncestor(ctx, possibleAncestorSHA, commitSHA)
}

// CanFastForward checks if a fast-forward merge is possible from 'from' to 'to'.
// Fast-forward is possible if 'from' is an ancestor of 'to'.
func (mbc *MergeBaseCalculator) CanFastForward(ctx context.Context, fromSHA, toSHA objects.ObjectHash) (bool, error) {
	if fromSHA.Equal(toSHA) {
		return true, nil
	}
	return mbc.IsAncestor(ctx, fromSHA, toSHA)
}
