package merge

import (
	"fmt"

	"github.com/scmkit/sourcecontrol/pkg/index"
	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/commit"
	"github.com/scmkit/sourcecontrol/pkg/objects/tree"
	"github.com/scmkit/sourcecontrol/pkg/repository/refs"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
	"github.com/scmkit/sourcecontrol/pkg/store"
)

// ThreeWayMerger implements three-way merge strategy
type ThreeWayMerger struct {
	repo           *sourcerepo.SourceRepository
	baseCalculator *MergeBaseCalculator
	objectStore    store.ObjectStore
	resolver       *ConflictResolver
}

// NewThreeWayMerger creates a new three-way merger
func NewThreeWayMerger(repo *sourcerepo.SourceRepository) *ThreeWayMerger {
	return &ThreeWayMerger{
		repo:           repo,
		baseCalculator: NewMergeBaseCalculator(repo),
		objectStore:    repo.ObjectStore(),
	}
}

// Name returns the name of this strategy
func (twm *ThreeWayMerger) Name() string {
	return "three-way"
}

// CanMerge checks if three-way merge can be performed
func (twm *ThreeWayMerger) CanMerge(mergeCtx *MergeContext) bool {
	// Three-way merge works for single branch merges with a common ancestor
	return len(mergeCtx.TheirCommits) == 1 && mergeCtx.BaseCommit != nil
}

// Merge performs a three-way merge
func (twm *ThreeWayMerger) Merge(mergeCtx *MergeContext) (*MergeResult, error) {
	if !twm.CanMerge(mergeCtx) {
		return nil, fmt.Errorf("three-way merge requires exactly one commit and a merge base")
	}

	twm.resolver = NewConflictResolver(mergeCtx.Config.ConflictResolution)

	mergedTree, updates, conflicts, err := twm.mergeTreesForContext(mergeCtx)
	if err != nil {
		return nil, err
	}

	for _, conflict := range conflicts {
		twm.resolver.AddConflict(conflict)
	}

	// If there are conflicts and strategy is to fail, return error
	if twm.resolver.HasConflicts() && mergeCtx.Config.ConflictResolution == ConflictFail {
		conflictPaths := make([]string, len(conflicts))
		for i, c := range conflicts {
			conflictPaths[i] = string(c.Path)
		}
		return &MergeResult{
			Success:   false,
			Conflicts: conflictPaths,
			Message:   fmt.Sprintf("Merge conflicts in %d file(s)", len(conflicts)),
		}, nil
	}

	result := &MergeResult{
		Success:     !twm.resolver.HasConflicts(),
		FastForward: false,
	}

	if twm.resolver.HasConflicts() {
		result.Conflicts = make([]string, len(conflicts))
		for i, c := range conflicts {
			result.Conflicts[i] = string(c.Path)
		}
	}

	// If mode is no-commit, don't create the merge commit
	if mergeCtx.Config.Mode == ModeNoCommit {
		if err := twm.updateIndex(updates); err != nil {
			return nil, fmt.Errorf("failed to update index: %w", err)
		}
		result.Message = "Changes staged but not committed (--no-commit)"
		return result, nil
	}

	if err := twm.updateIndex(updates); err != nil {
		return nil, fmt.Errorf("failed to update index: %w", err)
	}

	mergeCommit, err := twm.createMergeCommit(mergeCtx, mergedTree)
	if err != nil {
		return nil, fmt.Errorf("failed to create merge commit: %w", err)
	}

	commitSHA, err := mergeCommit.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to get commit hash: %w", err)
	}

	result.CommitSHA = commitSHA
	result.Message = fmt.Sprintf("Merge commit %s created", commitSHA.Short())

	return result, nil
}

// mergeTreesForContext reads the three trees a MergeContext names and
// merges them with a TreeWalker.
func (twm *ThreeWayMerger) mergeTreesForContext(mergeCtx *MergeContext) (*tree.Tree, []IndexUpdate, []Conflict, error) {
	ourCommit := mergeCtx.OurCommit
	theirCommit := mergeCtx.TheirCommits[0]
	baseCommit := mergeCtx.BaseCommit

	ourTree, err := twm.repo.ReadTreeObject(ourCommit.TreeSHA)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read our tree: %w", err)
	}

	theirTree, err := twm.repo.ReadTreeObject(theirCommit.TreeSHA)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read their tree: %w", err)
	}

	baseTree, err := twm.repo.ReadTreeObject(baseCommit.TreeSHA)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read base tree: %w", err)
	}

	resolver := NewConflictResolver(mergeCtx.Config.ConflictResolution)
	walker := NewTreeWalker(twm.repo, resolver)

	mergedTree, updates, conflicts, err := walker.Merge(mergeCtx.Ctx, baseTree, ourTree, theirTree)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to merge trees: %w", err)
	}

	return mergedTree, updates, conflicts, nil
}

// mergeTreesOnly merges the trees a MergeContext names and writes the
// result, without touching the index, HEAD, or any branch ref. It backs
// virtual merge-base synthesis, where a throwaway tree is all that's
// needed.
func (twm *ThreeWayMerger) mergeTreesOnly(mergeCtx *MergeContext) (objects.ObjectHash, error) {
	mergedTree, _, _, err := twm.mergeTreesForContext(mergeCtx)
	if err != nil {
		return "", err
	}
	return twm.repo.WriteObject(mergedTree)
}

// updateIndex stages every path a merge touched: clean results at stage 0,
// conflicts split across stages 1-3.
func (twm *ThreeWayMerger) updateIndex(updates []IndexUpdate) error {
	indexMgr := index.NewManager(twm.repo.WorkingDirectory())
	if err := indexMgr.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize index: %w", err)
	}

	idx := indexMgr.GetIndex()

	for _, u := range updates {
		relPath, err := scpath.NewRelativePath(u.Path)
		if err != nil {
			return fmt.Errorf("invalid path %s: %w", u.Path, err)
		}

		if u.Conflict {
			if err := idx.AddConflict(relPath, u.BaseSHA, u.OurSHA, u.TheirSHA); err != nil {
				return fmt.Errorf("failed to record conflict for %s: %w", u.Path, err)
			}
			continue
		}

		idx.RemoveConflict(relPath)
		if u.SHA == "" {
			idx.Remove(relPath)
			continue
		}

		idx.Add(&index.Entry{Stage: 0, Path: relPath, BlobHash: u.SHA, Mode: u.Mode})
	}

	return indexMgr.Write()
}

// createMergeCommit creates the merge commit
func (twm *ThreeWayMerger) createMergeCommit(mergeCtx *MergeContext, mergedTree *tree.Tree) (*commit.Commit, error) {
	// Write the merged tree
	treeSHA, err := twm.repo.WriteObject(mergedTree)
	if err != nil {
		return nil, fmt.Errorf("failed to write merged tree: %w", err)
	}

	ourSHA, err := mergeCtx.OurCommit.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to get our commit hash: %w", err)
	}

	theirSHA, err := mergeCtx.TheirCommits[0].Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to get their commit hash: %w", err)
	}

	// Create merge commit message
	message := mergeCtx.Config.Message
	if message == "" {
		message = fmt.Sprintf("Merge commit %s into HEAD", theirSHA.Short())
	}

	// Create the merge commit
	mergeCommit := &commit.Commit{
		TreeSHA:    treeSHA,
		ParentSHAs: []objects.ObjectHash{ourSHA, theirSHA},
		Author:     mergeCtx.OurCommit.Author,
		Committer:  mergeCtx.OurCommit.Committer,
		Message:    message,
	}

	// Write the commit
	commitSHA, err := twm.repo.WriteObject(mergeCommit)
	if err != nil {
		return nil, fmt.Errorf("failed to write merge commit: %w", err)
	}

	if err := twm.advanceRef(commitSHA); err != nil {
		return nil, fmt.Errorf("failed to advance branch ref: %w", err)
	}

	return mergeCommit, nil
}

// advanceRef points the current branch (or HEAD, if detached) at sha,
// mirroring how fast-forward merges and ordinary commits update history.
func (twm *ThreeWayMerger) advanceRef(sha objects.ObjectHash) error {
	refMgr := refs.NewRefManager(twm.repo)

	branchName, err := refMgr.CurrentBranchName()
	if err != nil {
		return err
	}
	if branchName == "" {
		return refMgr.UpdateRef("HEAD", sha)
	}
	return refMgr.UpdateRef(refs.RefPath("refs/heads/"+branchName), sha)
}
