package objects

import (
	"fmt"
	"io"
	"strconv"
)

// Object is implemented by every storable object kind (blob, tree, commit,
// tag). It mirrors the contract tag.Tag already codes against.
type Object interface {
	Type() ObjectType
	Content() (ObjectContent, error)
	Hash() (ObjectHash, error)
	Size() (ObjectSize, error)
	Serialize(w io.Writer) error
}

// FileMode is a tree entry's Unix-style mode, restricted to the handful of
// values Git's object model actually uses.
type FileMode uint32

const (
	FileModeRegular    FileMode = 0o100644
	FileModeExecutable FileMode = 0o100755
	FileModeSymlink    FileMode = 0o120000
	FileModeDirectory  FileMode = 0o040000
	FileModeGitlink    FileMode = 0o160000
)

// String renders the mode the way tree objects encode it.
func (m FileMode) String() string { return fmt.Sprintf("%06o", uint32(m)) }

// IsDirectory reports whether the mode names a subtree.
func (m FileMode) IsDirectory() bool { return m == FileModeDirectory }

// IsGitlink reports whether the mode names a submodule commit pointer.
func (m FileMode) IsGitlink() bool { return m == FileModeGitlink }

// IsSymlink reports whether the mode names a symbolic link.
func (m FileMode) IsSymlink() bool { return m == FileModeSymlink }

// ParseFileMode parses the octal mode string a tree entry is encoded with.
func ParseFileMode(s string) (FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode %q: %w", s, err)
	}
	return FileMode(v), nil
}
