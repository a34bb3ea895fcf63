package merge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/blob"
	"github.com/scmkit/sourcecontrol/pkg/objects/tree"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
)

// IndexUpdate describes what a tree-walk merge decided for one path: a
// clean result to stage at index stage 0, or a conflict to record across
// stages 1-3. SHA is empty when the merge deletes the path.
type IndexUpdate struct {
	Path     string
	SHA      objects.ObjectHash
	Mode     objects.FileMode
	Conflict bool
	BaseSHA  objects.ObjectHash
	OurSHA   objects.ObjectHash
	TheirSHA objects.ObjectHash
}

// TreeWalker merges three trees path by path. Tree.Entries only exposes one
// directory level, so the walker flattens each tree recursively before
// comparing them, then detects renames on each side so a file edited on one
// branch and renamed on the other merges instead of looking like an
// unrelated add and delete.
type TreeWalker struct {
	repo     sourcerepo.Repository
	resolver *ConflictResolver
}

// NewTreeWalker builds a TreeWalker that resolves content conflicts
// according to resolver's configured strategy.
func NewTreeWalker(repo sourcerepo.Repository, resolver *ConflictResolver) *TreeWalker {
	return &TreeWalker{repo: repo, resolver: resolver}
}

// walkState accumulates the result of a Merge call as paths are resolved.
type walkState struct {
	merged    map[string]*tree.TreeEntry
	updates   []IndexUpdate
	conflicts []Conflict
}

func (ws *walkState) conflict(c *Conflict) {
	if c != nil {
		ws.conflicts = append(ws.conflicts, *c)
	}
}

// Merge walks base, ours and theirs, returning the merged tree, the index
// updates every affected path needs, and any conflicts found.
func (w *TreeWalker) Merge(ctx context.Context, base, ours, theirs *tree.Tree) (*tree.Tree, []IndexUpdate, []Conflict, error) {
	baseFlat, err := w.flatten(base, "")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to flatten base tree: %w", err)
	}
	oursFlat, err := w.flatten(ours, "")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to flatten our tree: %w", err)
	}
	theirsFlat, err := w.flatten(theirs, "")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to flatten their tree: %w", err)
	}

	oursRenames := NewRenameTable(DetectRenames(baseFlat, oursFlat, w.readBlob))
	theirsRenames := NewRenameTable(DetectRenames(baseFlat, theirsFlat, w.readBlob))

	consumedOurs := make(map[string]bool)
	consumedTheirs := make(map[string]bool)

	ws := &walkState{merged: make(map[string]*tree.TreeEntry)}

	basePaths := make([]string, 0, len(baseFlat))
	for p := range baseFlat {
		basePaths = append(basePaths, p)
	}
	sort.Strings(basePaths)

	for _, p := range basePaths {
		select {
		case <-ctx.Done():
			return nil, nil, nil, ctx.Err()
		default:
		}

		baseEntry := baseFlat[p]

		oursPath, oursEntry, oursDeleted := resolveSide(p, oursFlat, oursRenames, consumedOurs)
		theirsPath, theirsEntry, theirsDeleted := resolveSide(p, theirsFlat, theirsRenames, consumedTheirs)

		if err := w.resolveEntry(ws, p, oursPath, theirsPath, baseEntry, oursEntry, theirsEntry, oursDeleted, theirsDeleted); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to merge %s: %w", p, err)
		}
	}

	addPaths := make(map[string]bool)
	for p := range oursFlat {
		if !consumedOurs[p] {
			addPaths[p] = true
		}
	}
	for p := range theirsFlat {
		if !consumedTheirs[p] {
			addPaths[p] = true
		}
	}

	sortedAdds := make([]string, 0, len(addPaths))
	for p := range addPaths {
		sortedAdds = append(sortedAdds, p)
	}
	sort.Strings(sortedAdds)

	for _, p := range sortedAdds {
		select {
		case <-ctx.Done():
			return nil, nil, nil, ctx.Err()
		default:
		}

		if err := w.resolveAdd(ws, p, oursFlat[p], theirsFlat[p]); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to merge %s: %w", p, err)
		}
	}

	w.detectBoundaryConflicts(ws)

	mergedTree, err := w.buildTree(ws.merged)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build merged tree: %w", err)
	}

	return mergedTree, ws.updates, ws.conflicts, nil
}

// resolveSide reports what became of base path p on one side: the path it
// now lives at (possibly renamed), its current entry, and whether it was
// deleted outright. Consuming a match (direct or via rename) marks it in
// consumed so the later added-paths pass doesn't see it as a fresh add.
func resolveSide(p string, sideFlat map[string]*tree.TreeEntry, renames *RenameTable, consumed map[string]bool) (path string, entry *tree.TreeEntry, deleted bool) {
	if e, ok := sideFlat[p]; ok {
		consumed[p] = true
		return p, e, false
	}
	if r, ok := renames.RenameOf(p); ok {
		if e, ok := sideFlat[r.To]; ok {
			consumed[r.To] = true
			return r.To, e, false
		}
	}
	return "", nil, true
}

// resolveEntry applies the merge decision table to one path tracked since
// base: clean deletes, renames, mode changes, and content merges for paths
// both sides touched.
func (w *TreeWalker) resolveEntry(ws *walkState, basePath, oursPath, theirsPath string, base, ours, theirs *tree.TreeEntry, oursDeleted, theirsDeleted bool) error {
	if oursDeleted && theirsDeleted {
		return nil
	}

	if oursDeleted {
		if theirsPath == basePath && base.SHA().Equal(theirs.SHA()) {
			ws.updates = append(ws.updates, IndexUpdate{Path: basePath, BaseSHA: base.SHA(), TheirSHA: theirs.SHA()})
			return nil
		}
		ws.merged[theirsPath] = tree.NewTreeEntry(lastSegment(theirsPath), theirs.Mode(), theirs.SHA())
		ws.updates = append(ws.updates, IndexUpdate{Path: theirsPath, Conflict: true, BaseSHA: base.SHA(), TheirSHA: theirs.SHA()})
		ws.conflict(w.createConflict(theirsPath, base, nil, theirs))
		return nil
	}

	if theirsDeleted {
		if oursPath == basePath && base.SHA().Equal(ours.SHA()) {
			ws.updates = append(ws.updates, IndexUpdate{Path: basePath, BaseSHA: base.SHA(), OurSHA: ours.SHA()})
			return nil
		}
		ws.merged[oursPath] = tree.NewTreeEntry(lastSegment(oursPath), ours.Mode(), ours.SHA())
		ws.updates = append(ws.updates, IndexUpdate{Path: oursPath, Conflict: true, BaseSHA: base.SHA(), OurSHA: ours.SHA()})
		ws.conflict(w.createConflict(oursPath, base, ours, nil))
		return nil
	}

	path := oursPath

	if oursPath != theirsPath {
		oursRenamed := oursPath != basePath
		theirsRenamed := theirsPath != basePath

		switch {
		case oursRenamed && theirsRenamed:
			// Each side renamed the path to a different target: there's no
			// single location to merge into, so both copies are kept, flagged.
			ws.merged[oursPath] = tree.NewTreeEntry(lastSegment(oursPath), ours.Mode(), ours.SHA())
			ws.merged[theirsPath] = tree.NewTreeEntry(lastSegment(theirsPath), theirs.Mode(), theirs.SHA())
			ws.updates = append(ws.updates,
				IndexUpdate{Path: oursPath, Conflict: true, BaseSHA: base.SHA(), OurSHA: ours.SHA()},
				IndexUpdate{Path: theirsPath, Conflict: true, BaseSHA: base.SHA(), TheirSHA: theirs.SHA()},
			)
			ws.conflict(w.createConflict(basePath, base, ours, theirs))
			return nil

		case oursRenamed:
			// Only ours renamed the path; theirs' edit (if any) still
			// applies at the new location.
			path = oursPath

		default:
			// Only theirs renamed the path; ours' edit (if any) still
			// applies at the new location.
			path = theirsPath
		}
	}

	switch {
	case base.SHA().Equal(ours.SHA()) && base.SHA().Equal(theirs.SHA()):
		ws.merged[path] = tree.NewTreeEntry(lastSegment(path), ours.Mode(), ours.SHA())
		ws.updates = append(ws.updates, IndexUpdate{Path: path, SHA: ours.SHA(), Mode: ours.Mode()})
		return nil

	case base.SHA().Equal(theirs.SHA()) && !base.SHA().Equal(ours.SHA()):
		mode, modeConflict := resolveMode(base.Mode(), ours.Mode(), theirs.Mode())
		ws.merged[path] = tree.NewTreeEntry(lastSegment(path), mode, ours.SHA())
		ws.updates = append(ws.updates, IndexUpdate{Path: path, SHA: ours.SHA(), Mode: mode, Conflict: modeConflict})
		if modeConflict {
			ws.conflict(w.createConflict(path, base, ours, theirs))
		}
		return nil

	case base.SHA().Equal(ours.SHA()) && !base.SHA().Equal(theirs.SHA()):
		mode, modeConflict := resolveMode(base.Mode(), ours.Mode(), theirs.Mode())
		ws.merged[path] = tree.NewTreeEntry(lastSegment(path), mode, theirs.SHA())
		ws.updates = append(ws.updates, IndexUpdate{Path: path, SHA: theirs.SHA(), Mode: mode, Conflict: modeConflict})
		if modeConflict {
			ws.conflict(w.createConflict(path, base, ours, theirs))
		}
		return nil

	case ours.SHA().Equal(theirs.SHA()):
		ws.merged[path] = tree.NewTreeEntry(lastSegment(path), ours.Mode(), ours.SHA())
		ws.updates = append(ws.updates, IndexUpdate{Path: path, SHA: ours.SHA(), Mode: ours.Mode()})
		return nil

	default:
		mergedEntry, conflict, err := w.mergeContent(path, base, ours, theirs)
		if err != nil {
			return err
		}
		ws.merged[path] = mergedEntry
		update := IndexUpdate{Path: path, SHA: mergedEntry.SHA(), Mode: mergedEntry.Mode(), BaseSHA: base.SHA(), OurSHA: ours.SHA(), TheirSHA: theirs.SHA()}
		update.Conflict = conflict != nil
		ws.updates = append(ws.updates, update)
		ws.conflict(conflict)
		return nil
	}
}

// resolveAdd handles a path with no base entry: added on one side, or
// added differently on both.
func (w *TreeWalker) resolveAdd(ws *walkState, path string, ours, theirs *tree.TreeEntry) error {
	switch {
	case ours != nil && theirs != nil:
		if ours.SHA().Equal(theirs.SHA()) {
			ws.merged[path] = tree.NewTreeEntry(lastSegment(path), ours.Mode(), ours.SHA())
			ws.updates = append(ws.updates, IndexUpdate{Path: path, SHA: ours.SHA(), Mode: ours.Mode()})
			return nil
		}
		mergedEntry, conflict, err := w.mergeContent(path, nil, ours, theirs)
		if err != nil {
			return err
		}
		ws.merged[path] = mergedEntry
		update := IndexUpdate{Path: path, SHA: mergedEntry.SHA(), Mode: mergedEntry.Mode(), OurSHA: ours.SHA(), TheirSHA: theirs.SHA()}
		update.Conflict = conflict != nil
		ws.updates = append(ws.updates, update)
		ws.conflict(conflict)
		return nil

	case ours != nil:
		ws.merged[path] = tree.NewTreeEntry(lastSegment(path), ours.Mode(), ours.SHA())
		ws.updates = append(ws.updates, IndexUpdate{Path: path, SHA: ours.SHA(), Mode: ours.Mode()})
		return nil

	default:
		ws.merged[path] = tree.NewTreeEntry(lastSegment(path), theirs.Mode(), theirs.SHA())
		ws.updates = append(ws.updates, IndexUpdate{Path: path, SHA: theirs.SHA(), Mode: theirs.Mode()})
		return nil
	}
}

// detectBoundaryConflicts finds paths that ended up colliding with a
// directory another merged path implies (one side's file at "docs", the
// other's subtree rooted at "docs/guide.md"). A path can't be both, so the
// file loses structurally and is reported as a conflict instead.
func (w *TreeWalker) detectBoundaryConflicts(ws *walkState) {
	paths := make([]string, 0, len(ws.merged))
	for p := range ws.merged {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		prefix := p + "/"
		for _, other := range paths {
			if other == p || !strings.HasPrefix(other, prefix) {
				continue
			}
			entry := ws.merged[p]
			delete(ws.merged, p)
			relPath, _ := scpath.NewRelativePath(p)
			ws.conflicts = append(ws.conflicts, Conflict{Path: relPath, OurSHA: entry.SHA()})
			ws.updates = append(ws.updates, IndexUpdate{Path: p, Conflict: true, OurSHA: entry.SHA()})
			break
		}
	}
}

// mergeContent attempts a three-way line merge of a file both sides
// touched. A conflicting merge is resolved according to the configured
// ConflictResolution: ConflictOurs/ConflictTheirs pick a side outright and
// report no conflict (the OURS-knob symmetry callers rely on); anything
// else keeps the diff3-marked content and still reports the conflict.
func (w *TreeWalker) mergeContent(path string, base, ours, theirs *tree.TreeEntry) (*tree.TreeEntry, *Conflict, error) {
	var baseContent, oursContent, theirsContent []byte
	var err error

	if base != nil {
		if baseContent, err = w.readBlob(base.SHA()); err != nil {
			return nil, nil, fmt.Errorf("failed to read base content for %s: %w", path, err)
		}
	}
	if oursContent, err = w.readBlob(ours.SHA()); err != nil {
		return nil, nil, fmt.Errorf("failed to read our content for %s: %w", path, err)
	}
	if theirsContent, err = w.readBlob(theirs.SHA()); err != nil {
		return nil, nil, fmt.Errorf("failed to read their content for %s: %w", path, err)
	}

	mode, modeConflict := resolveMode(modeOf(base), ours.Mode(), theirs.Mode())

	result := MergeFileContent(baseContent, oursContent, theirsContent, "HEAD", "incoming", true)

	var content []byte
	conflicted := result.Conflicted

	switch {
	case result.Conflicted && w.resolver != nil && w.resolver.strategy == ConflictOurs:
		content = oursContent
		conflicted = false
	case result.Conflicted && w.resolver != nil && w.resolver.strategy == ConflictTheirs:
		content = theirsContent
		conflicted = false
	default:
		content = result.Format("HEAD", "incoming", true)
	}

	mergedBlob := blob.NewBlob(content)
	mergedSHA, writeErr := w.repo.WriteObject(mergedBlob)
	if writeErr != nil {
		return nil, nil, fmt.Errorf("failed to write merged content for %s: %w", path, writeErr)
	}

	mergedEntry := tree.NewTreeEntry(lastSegment(path), mode, mergedSHA)

	if !conflicted && !modeConflict {
		return mergedEntry, nil, nil
	}

	return mergedEntry, w.createConflict(path, base, ours, theirs), nil
}

// createConflict builds a Conflict carrying each available side's content,
// for reporting and for manual resolution.
func (w *TreeWalker) createConflict(path string, base, ours, theirs *tree.TreeEntry) *Conflict {
	relPath, _ := scpath.NewRelativePath(path)
	conflict := &Conflict{Path: relPath}

	if base != nil {
		conflict.BaseSHA = base.SHA()
		conflict.BaseVersion, _ = w.readBlob(base.SHA())
	}
	if ours != nil {
		conflict.OurSHA = ours.SHA()
		conflict.OurVersion, _ = w.readBlob(ours.SHA())
	}
	if theirs != nil {
		conflict.TheirSHA = theirs.SHA()
		conflict.TheirVersion, _ = w.readBlob(theirs.SHA())
	}

	return conflict
}

// readBlob reads a blob's content by hash.
func (w *TreeWalker) readBlob(sha objects.ObjectHash) ([]byte, error) {
	b, err := w.repo.ReadBlobObject(sha)
	if err != nil {
		return nil, err
	}
	content, err := b.Content()
	if err != nil {
		return nil, err
	}
	return content.Bytes(), nil
}

// flatten recursively descends t, returning a map of full path (relative to
// the tree's root) to leaf entry. Directory entries themselves are never
// included; their contents are inlined under their prefixed paths.
func (w *TreeWalker) flatten(t *tree.Tree, prefix string) (map[string]*tree.TreeEntry, error) {
	flat := make(map[string]*tree.TreeEntry)
	if t == nil {
		return flat, nil
	}

	for _, entry := range t.Entries() {
		path := entry.Name()
		if prefix != "" {
			path = prefix + "/" + path
		}

		if entry.IsDirectory() {
			subTree, err := w.repo.ReadTreeObject(entry.SHA())
			if err != nil {
				return nil, fmt.Errorf("failed to read subtree %s: %w", path, err)
			}
			sub, err := w.flatten(subTree, path)
			if err != nil {
				return nil, err
			}
			for k, v := range sub {
				flat[k] = v
			}
			continue
		}

		flat[path] = entry
	}

	return flat, nil
}

// dirNode is a trie node used to regroup a flat path -> entry map back into
// nested trees.
type dirNode struct {
	entries  map[string]*tree.TreeEntry
	children map[string]*dirNode
}

func newDirNode() *dirNode {
	return &dirNode{entries: make(map[string]*tree.TreeEntry), children: make(map[string]*dirNode)}
}

// buildTree regroups a flat path -> entry map into a tree hierarchy,
// writing each subtree bottom-up and leaving the root unwritten for the
// caller to write alongside the rest of the merge commit.
func (w *TreeWalker) buildTree(flat map[string]*tree.TreeEntry) (*tree.Tree, error) {
	root := newDirNode()

	for path, entry := range flat {
		parts := strings.Split(path, "/")
		dir := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := dir.children[part]
			if !ok {
				child = newDirNode()
				dir.children[part] = child
			}
			dir = child
		}
		leaf := parts[len(parts)-1]
		dir.entries[leaf] = tree.NewTreeEntry(leaf, entry.Mode(), entry.SHA())
	}

	var writeDir func(dir *dirNode) (objects.ObjectHash, error)
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
		return w.repo.WriteObject(tree.NewTree(entries))
	}

	rootEntries := make([]*tree.TreeEntry, 0, len(root.entries)+len(root.children))
	for _, e := range root.entries {
		rootEntries = append(rootEntries, e)
	}
	for name, child := range root.children {
		childHash, err := writeDir(child)
		if err != nil {
			return nil, err
		}
		rootEntries = append(rootEntries, tree.NewTreeEntry(name, objects.FileModeDirectory, childHash))
	}

	return tree.NewTree(rootEntries), nil
}

// resolveMode picks the mode a merged entry should carry when base, ours
// and theirs disagree: whichever side actually changed it from base wins;
// if both changed it to different modes, ours wins but the change is
// flagged as a conflict.
func resolveMode(base, ours, theirs objects.FileMode) (objects.FileMode, bool) {
	if ours == theirs {
		return ours, false
	}
	if ours == base {
		return theirs, false
	}
	if theirs == base {
		return ours, false
	}
	return ours, true
}

func modeOf(e *tree.TreeEntry) objects.FileMode {
	if e == nil {
		return 0
	}
	return e.Mode()
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
