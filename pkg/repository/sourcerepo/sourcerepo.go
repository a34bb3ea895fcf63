// Package sourcerepo ties together the control directory, working tree and
// object store into the single handle every manager package is built on.
package sourcerepo

import (
	"fmt"
	"os"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/blob"
	"github.com/scmkit/sourcecontrol/pkg/objects/commit"
	"github.com/scmkit/sourcecontrol/pkg/objects/tree"
	"github.com/scmkit/sourcecontrol/pkg/repository/refs"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
	"github.com/scmkit/sourcecontrol/pkg/store"
)

// Repository is the surface every manager package depends on: enough to
// locate the working tree and control directory, and to read and write
// objects, without depending on the concrete SourceRepository type.
type Repository interface {
	SourceDirectory() scpath.SourcePath
	WorkingDirectory() scpath.AbsolutePath
	ObjectStore() store.ObjectStore
	ReadObject(hash objects.ObjectHash) (objects.Object, error)
	ReadTreeObject(hash objects.ObjectHash) (*tree.Tree, error)
	ReadBlobObject(hash objects.ObjectHash) (*blob.Blob, error)
	ReadCommitObject(hash objects.ObjectHash) (*commit.Commit, error)
	WriteObject(obj objects.Object) (objects.ObjectHash, error)
	Head() (objects.ObjectHash, error)
}

// SourceRepository is the on-disk implementation of Repository, rooted at a
// working directory with a ".sourcecontrol" control directory alongside it.
type SourceRepository struct {
	workingDir scpath.AbsolutePath
	sourceDir  scpath.SourcePath
	store      *store.FileObjectStore
	refs       *refs.RefManager
}

// NewSourceRepository returns an uninitialized repository handle; call
// Initialize (to create a new repository) or Open (to attach to an
// existing one) before using it.
func NewSourceRepository() *SourceRepository {
	return &SourceRepository{}
}

// InitRepository is a convenience constructor combining NewSourceRepository
// and Initialize for callers that don't need the uninitialized handle.
func InitRepository(path string) (*SourceRepository, error) {
	repo := NewSourceRepository()
	if err := repo.Initialize(scpath.RepositoryPath(path)); err != nil {
		return nil, err
	}
	return repo, nil
}

// Initialize creates a new repository rooted at path: the control
// directory, its objects/refs subdirectories, and an initial HEAD pointing
// at an unborn "main" branch.
func (r *SourceRepository) Initialize(path scpath.RepositoryPath) error {
	r.workingDir = scpath.AbsolutePath(path)
	r.sourceDir = scpath.NewSourcePath(r.workingDir.Join(scpath.SourceDir))

	for _, dir := range []scpath.SourcePath{
		r.sourceDir,
		r.sourceDir.ObjectsPath(),
		r.sourceDir.HeadsPath(),
		r.sourceDir.TagsPath(),
	} {
		if err := os.MkdirAll(dir.ToAbsolutePath().String(), 0755); err != nil {
			return fmt.Errorf("failed to create repository directory: %w", err)
		}
	}

	r.store = store.NewFileObjectStore()
	if err := r.store.Initialize(r.workingDir); err != nil {
		return fmt.Errorf("failed to initialize object store: %w", err)
	}
	r.refs = refs.NewRefManager(r)

	headPath := r.sourceDir.Sub("HEAD").ToAbsolutePath().String()
	if _, err := os.Stat(headPath); os.IsNotExist(err) {
		if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0644); err != nil {
			return fmt.Errorf("failed to write HEAD: %w", err)
		}
	}

	return nil
}

// Open attaches to an existing repository rooted at path. The object store
// creates its objects directory if it is missing; nothing else is created.
func (r *SourceRepository) Open(path scpath.AbsolutePath) error {
	r.workingDir = path
	r.sourceDir = scpath.NewSourcePath(r.workingDir.Join(scpath.SourceDir))

	sourceRoot := r.sourceDir.ToAbsolutePath().String()
	if _, err := os.Stat(sourceRoot); err != nil {
		return fmt.Errorf("not a sourcecontrol repository: %s", path)
	}

	r.store = store.NewFileObjectStore()
	if err := r.store.Initialize(r.workingDir); err != nil {
		return fmt.Errorf("failed to initialize object store: %w", err)
	}
	r.refs = refs.NewRefManager(r)
	return nil
}

func (r *SourceRepository) SourceDirectory() scpath.SourcePath  { return r.sourceDir }
func (r *SourceRepository) WorkingDirectory() scpath.AbsolutePath { return r.workingDir }
func (r *SourceRepository) ObjectStore() store.ObjectStore        { return r.store }

// Head resolves HEAD to the commit hash it currently points at.
func (r *SourceRepository) Head() (objects.ObjectHash, error) {
	return r.refs.ResolveToSHA("HEAD")
}

// ReadObject reads and parses an object by hash, regardless of its kind.
func (r *SourceRepository) ReadObject(hash objects.ObjectHash) (objects.Object, error) {
	return r.store.ReadObject(hash)
}

// WriteObject serializes and stores obj, returning its hash.
func (r *SourceRepository) WriteObject(obj objects.Object) (objects.ObjectHash, error) {
	return r.store.WriteObject(obj)
}

// ReadTreeObject reads hash and asserts it names a tree.
func (r *SourceRepository) ReadTreeObject(hash objects.ObjectHash) (*tree.Tree, error) {
	obj, err := r.store.ReadObject(hash)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(*tree.Tree)
	if !ok {
		return nil, fmt.Errorf("object %s is not a tree", hash.Short())
	}
	return t, nil
}

// ReadBlobObject reads hash and asserts it names a blob.
func (r *SourceRepository) ReadBlobObject(hash objects.ObjectHash) (*blob.Blob, error) {
	obj, err := r.store.ReadObject(hash)
	if err != nil {
		return nil, err
	}
	b, ok := obj.(*blob.Blob)
	if !ok {
		return nil, fmt.Errorf("object %s is not a blob", hash.Short())
	}
	return b, nil
}

// ReadCommitObject reads hash and asserts it names a commit.
func (r *SourceRepository) ReadCommitObject(hash objects.ObjectHash) (*commit.Commit, error) {
	obj, err := r.store.ReadObject(hash)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*commit.Commit)
	if !ok {
		return nil, fmt.Errorf("object %s is not a commit", hash.Short())
	}
	return c, nil
}

// RefManager exposes the repository's ref resolver to packages that need
// more than Head(), e.g. resolving branch names directly.
func (r *SourceRepository) RefManager() *refs.RefManager { return r.refs }
