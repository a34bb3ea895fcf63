package merge

import (
	"context"
	"fmt"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/commit"
	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
)

// RecursiveMerger implements the recursive merge strategy
// This is Git's default merge strategy that handles complex merge scenarios
// by recursively merging common ancestors when there are multiple merge bases
type RecursiveMerger struct {
	repo           *sourcerepo.SourceRepository
	baseCalculator *MergeBaseCalculator
	threeWay       *ThreeWayMerger
}

// NewRecursiveMerger creates a new recursive merger
func NewRecursiveMerger(repo *sourcerepo.SourceRepository) *RecursiveMerger {
	return &RecursiveMerger{
		repo:           repo,
		baseCalculator: NewMergeBaseCalculator(repo),
		threeWay:       NewThreeWayMerger(repo),
	}
}

// Name returns the name of this strategy
func (rm *RecursiveMerger) Name() string {
	return "recursive"
}

// CanMerge checks if recursive merge can be performed
func (rm *RecursiveMerger) CanMerge(mergeCtx *MergeContext) bool {
	// Recursive merge works for single branch merges
	return len(mergeCtx.TheirCommits) == 1
}

// Merge performs a recursive merge
// The recursive strategy handles cases where there are multiple merge bases
// by creating a virtual merge commit of the merge bases
func (rm *RecursiveMerger) Merge(mergeCtx *MergeContext) (*MergeResult, error) {
	if !rm.CanMerge(mergeCtx) {
		return nil, fmt.Errorf("recursive merge requires exactly one commit to merge")
	}

	ourCommit := mergeCtx.OurCommit
	theirCommit := mergeCtx.TheirCommits[0]

	ourSHA, err := ourCommit.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to get our commit hash: %w", err)
	}

	theirSHA, err := theirCommit.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to get their commit hash: %w", err)
	}

	// Find merge base(s)
	mergeBases, err := rm.baseCalculator.FindMergeBases(mergeCtx.Ctx, ourSHA, theirSHA)
	if err != nil {
		if !mergeCtx.Config.AllowUnrelatedHistories {
			return nil, fmt.Errorf("no merge base found and unrelated histories not allowed: %w", err)
		}
		// No merge base - unrelated histories
		mergeBases = nil
	}

	baseCommit := mergeCtx.BaseCommit
	if baseCommit == nil && len(mergeBases) == 1 {
		baseCommit = mergeBases[0]
	}

	// Criss-cross histories leave more than one best common ancestor. Fold
	// them pairwise into a single virtual base the same way the base
	// commits themselves would be three-way merged.
	if baseCommit == nil && len(mergeBases) > 1 {
		if mergeCtx.Config.Verbose {
			fmt.Printf("Multiple merge bases found (%d), synthesizing a virtual base\n", len(mergeBases))
		}
		virtualBase, err := rm.synthesizeVirtualBase(mergeCtx.Ctx, mergeBases)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize virtual merge base: %w", err)
		}
		baseCommit = virtualBase
	}

	updatedCtx := &MergeContext{
		Ctx:          mergeCtx.Ctx,
		OurCommit:    ourCommit,
		TheirCommits: mergeCtx.TheirCommits,
		BaseCommit:   baseCommit,
		Config:       mergeCtx.Config,
	}

	// Perform three-way merge
	return rm.threeWay.Merge(updatedCtx)
}

// synthesizeVirtualBase folds a set of equally-good merge bases into a
// single virtual commit by merging them pairwise, left to right. Conflicts
// between the bases themselves never stop synthesis: content conflicts take
// the first base's version, a delete/modify keeps the modified file, a mode
// conflict keeps the first base's mode, and a rename/rename keeps both
// targets. The conflict list is discarded; the result exists only to seed the real
// three-way merge and is never pointed to by a branch ref.
func (rm *RecursiveMerger) synthesizeVirtualBase(ctx context.Context, bases []*commit.Commit) (*commit.Commit, error) {
	if len(bases) == 0 {
		return nil, fmt.Errorf("no merge bases to synthesize from")
	}

	folded := bases[0]
	for _, next := range bases[1:] {
		merged, err := rm.mergePairIgnoringConflicts(ctx, folded, next)
		if err != nil {
			return nil, err
		}
		folded = merged
	}

	return folded, nil
}

// mergePairIgnoringConflicts merges two commits' trees, resolving content
// conflicts in favor of a (other conflict kinds as synthesizeVirtualBase
// describes), and writes the result as a detached commit with
// a and b as its parents. Nothing in the repository is made to point at it.
func (rm *RecursiveMerger) mergePairIgnoringConflicts(ctx context.Context, a, b *commit.Commit) (*commit.Commit, error) {
	aSHA, err := a.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash virtual base candidate: %w", err)
	}
	bSHA, err := b.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash virtual base candidate: %w", err)
	}

	if aSHA.Equal(bSHA) {
		return a, nil
	}

	// Fall back to a itself as the base when the candidates share no
	// ancestor; mergeTreesOnly always needs a tree to diff against.
	base := a
	pairBases, err := rm.baseCalculator.FindMergeBases(ctx, aSHA, bSHA)
	if err == nil && len(pairBases) > 0 {
		base = pairBases[0]
	}

	pairCtx := &MergeContext{
		Ctx:          ctx,
		OurCommit:    a,
		TheirCommits: []*commit.Commit{b},
		BaseCommit:   base,
		Config: &Config{
			Strategy:           StrategyRecursive,
			Mode:               ModeNoCommit,
			ConflictResolution: ConflictOurs,
		},
	}

	treeSHA, err := rm.threeWay.mergeTreesOnly(pairCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to merge virtual base candidates: %w", err)
	}

	virtual := &commit.Commit{
		TreeSHA:    treeSHA,
		ParentSHAs: []objects.ObjectHash{aSHA, bSHA},
		Author:     a.Author,
		Committer:  a.Committer,
		Message:    fmt.Sprintf("Virtual merge base of %s and %s", aSHA.Short(), bSHA.Short()),
	}

	if _, err := rm.repo.WriteObject(virtual); err != nil {
		return nil, fmt.Errorf("failed to write virtual merge base: %w", err)
	}

	return virtual, nil
}
