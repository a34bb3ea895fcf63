package merge

import (
	"bytes"
	"fmt"

	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
)

// ConflictMarker contains the conflict markers used in files
type ConflictMarker struct {
	Start  string // "<<<<<<< HEAD" or "<<<<<<< ours"
	Middle string // "======="
	End    string // ">>>>>>> branch-name" or ">>>>>>> theirs"
}

// DefaultConflictMarker returns the default Git-style conflict markers
func DefaultConflictMarker(ourLabel, theirLabel string) *ConflictMarker {
	return &ConflictMarker{
		Start:  fmt.Sprintf("<<<<<<< %s", ourLabel),
		Middle: "=======",
		End:    fmt.Sprintf(">>>>>>> %s", theirLabel),
	}
}

// ConflictResolver handles conflict resolution
type ConflictResolver struct {
	conflicts []Conflict
	strategy  ConflictResolution
}

// NewConflictResolver creates a new conflict resolver
func NewConflictResolver(strategy ConflictResolution) *ConflictResolver {
	return &ConflictResolver{
		conflicts: make([]Conflict, 0),
		strategy:  strategy,
	}
}

// AddConflict registers a new conflict
func (cr *ConflictResolver) AddConflict(conflict Conflict) {
	cr.conflicts = append(cr.conflicts, conflict)
}

// HasConflicts returns true if there are any conflicts
func (cr *ConflictResolver) HasConflicts() bool {
	return len(cr.conflicts) > 0
}

// GetConflicts returns all registered conflicts
func (cr *ConflictResolver) GetConflicts() []Conflict {
	return cr.conflicts
}

// Resolve resolves a conflict based on the configured strategy
func (cr *ConflictResolver) Resolve(conflict *Conflict) ([]byte, error) {
	switch cr.strategy {
	case ConflictOurs:
		return conflict.OurVersion, nil
	case ConflictTheirs:
		return conflict.TheirVersion, nil
	case ConflictManual:
		return cr.createConflictMarkers(conflict), nil
	case ConflictFail:
		return nil, fmt.Errorf("conflict in %s", conflict.Path)
	default:
		return nil, fmt.Errorf("unknown conflict resolution strategy")
	}
}

// createConflictMarkers creates a file with conflict markers
func (cr *ConflictResolver) createConflictMarkers(conflict *Conflict) []byte {
	var buf bytes.Buffer

	marker := DefaultConflictMarker("HEAD", conflict.TheirSHA.Short().String())

	buf.WriteString(marker.Start)
	buf.WriteString("\n")
	buf.Write(conflict.OurVersion)
	if len(conflict.OurVersion) > 0 && conflict.OurVersion[len(conflict.OurVersion)-1] != '\n' {
		buf.WriteString("\n")
	}
	buf.WriteString(marker.Middle)
	buf.WriteString("\n")
	buf.Write(conflict.TheirVersion)
	if len(conflict.TheirVersion) > 0 && conflict.TheirVersion[len(conflict.TheirVersion)-1] != '\n' {
		buf.WriteString("\n")
	}
	buf.WriteString(marker.End)
	buf.WriteString("\n")

	return buf.Bytes()
}

// ConflictPaths returns a list of paths with conflicts
func (cr *ConflictResolver) ConflictPaths() []scpath.RelativePath {
	paths := make([]scpath.RelativePath, len(cr.conflicts))
	for i, c := range cr.conflicts {
		paths[i] = c.Path
	}
	return paths
}

// MergeContent performs a three-way merge on file content, returning the
// merged bytes and whether the merge was clean (no conflicting hunks).
func MergeContent(base, ours, theirs []byte) ([]byte, bool) {
	result := MergeFileContent(base, ours, theirs, "HEAD", "theirs", false)
	return result.Format("HEAD", "theirs", false), !result.Conflicted
}

// LineBasedMerge performs a line-based three-way merge, reporting each
// conflicting region found.
func LineBasedMerge(base, ours, theirs []byte) ([]byte, []ConflictRegion, error) {
	if bytes.Equal(ours, theirs) {
		return ours, nil, nil
	}

	result := MergeFileContent(base, ours, theirs, "HEAD", "theirs", false)
	if !result.Conflicted {
		return result.Format("HEAD", "theirs", false), nil, nil
	}

	return result.Format("HEAD", "theirs", false), result.ConflictingRegions(), nil
}

// ConflictRegion represents a region of conflicting lines
type ConflictRegion struct {
	BaseStart  int
	BaseEnd    int
	OurStart   int
	OurEnd     int
	TheirStart int
	TheirEnd   int
}
