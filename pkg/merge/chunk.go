package merge

// SequenceName identifies which of the three merge inputs a Chunk indexes
// into.
type SequenceName int

const (
	SequenceBase SequenceName = iota
	SequenceOurs
	SequenceTheirs
)

func (s SequenceName) String() string {
	switch s {
	case SequenceBase:
		return "base"
	case SequenceOurs:
		return "ours"
	case SequenceTheirs:
		return "theirs"
	default:
		return "unknown"
	}
}

// ConflictState classifies a Chunk's place in the ordered result list.
type ConflictState int

const (
	// NoConflict is a line range either side agrees on, or that only one
	// side touched.
	NoConflict ConflictState = iota
	// FirstConflictingRange opens a conflicting region. Always "ours".
	FirstConflictingRange
	// NextConflictingRange continues a conflicting region opened by a
	// FirstConflictingRange chunk: the base range, then "theirs".
	NextConflictingRange
)

// Chunk is a contiguous line range within one of the three input sequences,
// in emission order. MergeFileContent produces an ordered []Chunk;
// ContentMergeResult.Format renders it to marker text. Keeping the two
// apart means a caller that only wants conflict locations (LineBasedMerge)
// never has to parse marker text back out of a rendered string.
type Chunk struct {
	Sequence   SequenceName
	Start, End int
	State      ConflictState
}
