// Package store implements the content-addressable object store: loose
// objects written under <sourcedir>/objects/xx/yyyy..., zlib-compressed the
// way git's own loose object format is, plus an in-memory store for tests.
package store

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/objects/blob"
	"github.com/scmkit/sourcecontrol/pkg/objects/commit"
	"github.com/scmkit/sourcecontrol/pkg/objects/tag"
	"github.com/scmkit/sourcecontrol/pkg/objects/tree"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
)

// ObjectStore is the minimal contract the merge engine and every manager
// package needs from object storage: write an object, read it back by hash,
// and check presence without paying for a full read.
type ObjectStore interface {
	WriteObject(obj objects.Object) (objects.ObjectHash, error)
	ReadObject(hash objects.ObjectHash) (objects.Object, error)
	HasObject(hash objects.ObjectHash) bool
}

// FileObjectStore persists objects as loose files on disk.
type FileObjectStore struct {
	root scpath.SourcePath
}

// NewFileObjectStore creates an uninitialized store; call Initialize before use.
func NewFileObjectStore() *FileObjectStore {
	return &FileObjectStore{}
}

// Initialize roots the store under workingDir's control directory.
func (s *FileObjectStore) Initialize(workingDir scpath.AbsolutePath) error {
	s.root = scpath.NewSourcePath(workingDir.Join(scpath.SourceDir)).ObjectsPath()
	return os.MkdirAll(s.root.ToAbsolutePath().String(), 0755)
}

func (s *FileObjectStore) pathFor(hash objects.ObjectHash) string {
	h := hash.String()
	return filepath.Join(s.root.ToAbsolutePath().String(), h[:2], h[2:])
}

// WriteObject serializes and compresses obj, storing it under its hash.
func (s *FileObjectStore) WriteObject(obj objects.Object) (objects.ObjectHash, error) {
	hash, err := obj.Hash()
	if err != nil {
		return "", fmt.Errorf("failed to hash object: %w", err)
	}

	path := s.pathFor(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil // already stored, content-addressed so no rewrite needed
	}

	var raw bytes.Buffer
	if err := obj.Serialize(&raw); err != nil {
		return "", fmt.Errorf("failed to serialize object: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create object file: %w", err)
	}
	defer f.Close()

	zw := zlib.NewWriter(f)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		return "", fmt.Errorf("failed to compress object: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}

	return hash, nil
}

// ReadObject reads, decompresses and parses the object named by hash.
func (s *FileObjectStore) ReadObject(hash objects.ObjectHash) (objects.Object, error) {
	f, err := os.Open(s.pathFor(hash))
	if err != nil {
		return nil, fmt.Errorf("object %s not found: %w", hash.Short(), err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress object %s: %w", hash.Short(), err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", hash.Short(), err)
	}

	return ParseObject(data)
}

// HasObject reports whether hash is present in the store.
func (s *FileObjectStore) HasObject(hash objects.ObjectHash) bool {
	_, err := os.Stat(s.pathFor(hash))
	return err == nil
}

// ParseObject dispatches to the right object-kind parser based on the
// serialized header's type field.
func ParseObject(data []byte) (objects.Object, error) {
	idx := bytes.IndexByte(data, ' ')
	if idx < 0 {
		return nil, fmt.Errorf("malformed object: missing type field")
	}
	objType, err := objects.ParseObjectType(string(data[:idx]))
	if err != nil {
		return nil, err
	}

	switch objType {
	case objects.BlobType:
		return blob.ParseBlob(data)
	case objects.TreeType:
		return tree.ParseTree(data)
	case objects.CommitType:
		return commit.ParseCommit(data)
	case objects.TagType:
		return tag.ParseTag(data)
	default:
		return nil, fmt.Errorf("unsupported object type: %s", objType)
	}
}

// MemoryObjectStore is an in-memory ObjectStore that never touches disk.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[objects.ObjectHash]objects.Object
}

// NewMemoryObjectStore creates an empty in-memory store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[objects.ObjectHash]objects.Object)}
}

func (s *MemoryObjectStore) WriteObject(obj objects.Object) (objects.ObjectHash, error) {
	hash, err := obj.Hash()
	if err != nil {
		return "", fmt.Errorf("failed to hash object: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[hash] = obj
	return hash, nil
}

func (s *MemoryObjectStore) ReadObject(hash objects.ObjectHash) (objects.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[hash]
	if !ok {
		return nil, fmt.Errorf("object %s not found", hash.Short())
	}
	return obj, nil
}

func (s *MemoryObjectStore) HasObject(hash objects.ObjectHash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[hash]
	return ok
}
