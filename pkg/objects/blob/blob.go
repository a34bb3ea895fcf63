// Package blob implements the blob object: an opaque byte string, the
// storage form of a single file's content.
package blob

import (
	"fmt"
	"io"

	"github.com/scmkit/sourcecontrol/pkg/objects"
)

// Blob is a file's content, stored exactly as given with no interpretation
// of line endings or encoding.
type Blob struct {
	data []byte
	hash *objects.ObjectHash
}

// NewBlob wraps raw file content as a Blob.
func NewBlob(data []byte) *Blob {
	return &Blob{data: data}
}

func (b *Blob) Type() objects.ObjectType { return objects.BlobType }

func (b *Blob) Content() (objects.ObjectContent, error) {
	return objects.ObjectContent(b.data), nil
}

func (b *Blob) Hash() (objects.ObjectHash, error) {
	if b.hash != nil {
		return *b.hash, nil
	}
	hash := objects.ComputeObjectHash(objects.BlobType, objects.ObjectContent(b.data))
	b.hash = &hash
	return hash, nil
}

func (b *Blob) Size() (objects.ObjectSize, error) {
	return objects.ObjectSize(len(b.data)), nil
}

func (b *Blob) Serialize(w io.Writer) error {
	serialized := objects.NewSerializedObject(objects.BlobType, objects.ObjectContent(b.data))
	if _, err := w.Write(serialized.Bytes()); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

// ParseBlob parses a blob object from its serialized (with header) form.
func ParseBlob(data []byte) (*Blob, error) {
	content, err := objects.ParseSerializedObject(data, objects.BlobType)
	if err != nil {
		return nil, err
	}
	b := NewBlob(content.Bytes())
	hash := objects.NewObjectHash(objects.SerializedObject(data))
	b.hash = &hash
	return b, nil
}
