// Package scpath centralizes the three path flavors the rest of the module
// juggles: paths relative to a repository's working tree, absolute
// filesystem paths, and paths rooted inside the repository's control
// directory (.sourcecontrol).
package scpath

import (
	"path/filepath"
	"strings"
)

// SourceDir is the name of the repository's control directory, the
// equivalent of ".git".
const SourceDir = ".sourcecontrol"

// AbsolutePath is a fully-qualified filesystem path.
type AbsolutePath string

// RepositoryPath is the filesystem path a repository is rooted at, as
// passed to Repository.Initialize. It is the same underlying path type as
// AbsolutePath: a repository's root and a working directory are the same
// kind of location, just named for different call sites.
type RepositoryPath = AbsolutePath

func (p AbsolutePath) String() string { return string(p) }

// Join appends path segments, returning the combined AbsolutePath.
func (p AbsolutePath) Join(elem ...string) AbsolutePath {
	parts := append([]string{string(p)}, elem...)
	return AbsolutePath(filepath.Join(parts...))
}

// RelativePath is a slash-separated path relative to the working tree root.
type RelativePath string

func (p RelativePath) String() string { return string(p) }

// Normalize returns the path with the OS path separator converted to forward
// slashes and any leading/trailing slashes trimmed, so two differently-spelled
// references to the same path compare equal.
func (p RelativePath) Normalize() RelativePath {
	s := filepath.ToSlash(string(p))
	s = strings.Trim(s, "/")
	return RelativePath(s)
}

// NewRelativePath normalizes a user-supplied path string; it does no other
// validation and never returns an error.
func NewRelativePath(path string) (RelativePath, error) {
	return RelativePath(path).Normalize(), nil
}

// SourcePath is a path rooted inside the repository's control directory.
type SourcePath struct {
	root AbsolutePath
	rel  string
}

// NewSourcePath roots a SourcePath at the repository's control directory.
func NewSourcePath(root AbsolutePath) SourcePath {
	return SourcePath{root: root}
}

// ToAbsolutePath resolves the SourcePath to a filesystem path.
func (p SourcePath) ToAbsolutePath() AbsolutePath {
	if p.rel == "" {
		return p.root
	}
	return p.root.Join(p.rel)
}

// Sub returns a SourcePath for a named subdirectory (e.g. "refs", "objects").
func (p SourcePath) Sub(elem ...string) SourcePath {
	return SourcePath{root: p.root, rel: filepath.Join(append([]string{p.rel}, elem...)...)}
}

// TagsPath returns the path tags live under: <sourcedir>/refs/tags.
func (p SourcePath) TagsPath() SourcePath { return p.Sub("refs", "tags") }

// HeadsPath returns the path branch heads live under: <sourcedir>/refs/heads.
func (p SourcePath) HeadsPath() SourcePath { return p.Sub("refs", "heads") }

// ObjectsPath returns the path loose objects live under: <sourcedir>/objects.
func (p SourcePath) ObjectsPath() SourcePath { return p.Sub("objects") }
