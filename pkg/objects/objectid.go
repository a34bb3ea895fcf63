// Package objects defines the content-addressable object model shared by
// every other package: the hash space objects live in, the loose-object
// serialization format, and the four object types (blob, tree, commit, tag).
package objects

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// HexLength is the length, in hex characters, of a serialized ObjectHash.
// The engine targets SHA-1 object IDs (40 hex chars / 20 raw bytes), matching
// the hash space the teacher's loose object store already serializes against.
const HexLength = 40

// ObjectHash is the hex-encoded content hash of a stored object. It is the
// same opaque, fixed-width identifier used throughout refs, the index and
// the merge engine to name blobs, trees, commits and tags.
type ObjectHash string

// ShortHash is the abbreviated, display-only form of an ObjectHash.
type ShortHash string

// RawHash is the raw binary digest backing an ObjectHash.
type RawHash [sha1.Size]byte

// String returns the hex representation of the hash.
func (h ObjectHash) String() string { return string(h) }

// String returns the short hex representation.
func (s ShortHash) String() string { return string(s) }

// IsZero reports whether h is the unset/zero hash.
func (h ObjectHash) IsZero() bool { return h == "" || h == zeroHashString }

// Equal reports whether h and other name the same object.
func (h ObjectHash) Equal(other ObjectHash) bool { return h == other }

// Short returns the first 7 hex characters, git's conventional abbreviation
// length, falling back to the whole hash when it is already shorter.
func (h ObjectHash) Short() ShortHash {
	if len(h) <= 7 {
		return ShortHash(h)
	}
	return ShortHash(h[:7])
}

// Validate checks that h is a syntactically valid hex object hash.
func (h ObjectHash) Validate() error {
	if len(h) != HexLength {
		return fmt.Errorf("object hash must be %d hex characters, got %d", HexLength, len(h))
	}
	if _, err := hex.DecodeString(string(h)); err != nil {
		return fmt.Errorf("object hash is not valid hex: %w", err)
	}
	return nil
}

// Raw decodes h into its binary digest.
func (h ObjectHash) Raw() (RawHash, error) {
	if err := h.Validate(); err != nil {
		return RawHash{}, err
	}
	var r RawHash
	decoded, _ := hex.DecodeString(string(h))
	copy(r[:], decoded)
	return r, nil
}

var zeroHashString = ObjectHash(strings.Repeat("0", HexLength))

// ZeroHash returns the all-zero object hash used as a sentinel for "no
// object" (e.g. a deleted MERGE_HEAD, or a merge-base that doesn't exist).
func ZeroHash() ObjectHash { return zeroHashString }

// NewObjectHashFromString parses and validates a hex object hash.
func NewObjectHashFromString(s string) (ObjectHash, error) {
	h := ObjectHash(strings.TrimSpace(s))
	if err := h.Validate(); err != nil {
		return "", err
	}
	return h, nil
}

// ParseObjectHash is an alias of NewObjectHashFromString kept for call sites
// that read more naturally as "parse" than "construct".
func ParseObjectHash(s string) (ObjectHash, error) { return NewObjectHashFromString(s) }

// NewObjectHash computes the object hash of an already-serialized object.
func NewObjectHash(data SerializedObject) ObjectHash {
	sum := sha1.Sum(data.Bytes())
	return ObjectHash(hex.EncodeToString(sum[:]))
}

// ComputeObjectHash serializes content under the given type header and
// returns the resulting object hash, without retaining the serialized form.
func ComputeObjectHash(t ObjectType, content ObjectContent) ObjectHash {
	return NewObjectHash(NewSerializedObject(t, content))
}

// ObjectType names the four object kinds the store can hold.
type ObjectType string

const (
	BlobType   ObjectType = "blob"
	TreeType   ObjectType = "tree"
	CommitType ObjectType = "commit"
	TagType    ObjectType = "tag"
)

// ParseObjectType validates s against the known object type names.
func ParseObjectType(s string) (ObjectType, error) {
	switch ObjectType(s) {
	case BlobType, TreeType, CommitType, TagType:
		return ObjectType(s), nil
	default:
		return "", fmt.Errorf("unknown object type: %q", s)
	}
}

// ObjectSize is the length, in bytes, of an object's content (header excluded).
type ObjectSize int64

// ObjectContent is the body of an object, with its type header stripped.
type ObjectContent []byte

func (c ObjectContent) String() string   { return string(c) }
func (c ObjectContent) Bytes() []byte    { return []byte(c) }
func (c ObjectContent) Size() ObjectSize { return ObjectSize(len(c)) }

// SerializedObject is an object's on-disk form: "<type> <size>\x00<content>".
type SerializedObject []byte

func (s SerializedObject) Bytes() []byte { return []byte(s) }

// NewSerializedObject builds the on-disk representation of content under t.
func NewSerializedObject(t ObjectType, content ObjectContent) SerializedObject {
	header := fmt.Sprintf("%s %d\x00", t, len(content))
	buf := make([]byte, 0, len(header)+len(content))
	buf = append(buf, header...)
	buf = append(buf, content...)
	return SerializedObject(buf)
}

// ParseSerializedObject validates and strips the header from data, requiring
// its declared type to match expected.
func ParseSerializedObject(data []byte, expected ObjectType) (ObjectContent, error) {
	idx := bytes.IndexByte(data, 0)
	if idx < 0 {
		return nil, fmt.Errorf("malformed object: missing header terminator")
	}

	parts := strings.SplitN(string(data[:idx]), " ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed object header: %q", data[:idx])
	}

	objType, err := ParseObjectType(parts[0])
	if err != nil {
		return nil, err
	}
	if objType != expected {
		return nil, fmt.Errorf("object type mismatch: expected %s, got %s", expected, objType)
	}

	size, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed object size %q: %w", parts[1], err)
	}

	content := data[idx+1:]
	if len(content) != size {
		return nil, fmt.Errorf("object size mismatch: header says %d, got %d", size, len(content))
	}

	return ObjectContent(content), nil
}
