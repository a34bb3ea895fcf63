package merge

import "strings"

// Format renders a chunk list to marker text: NoConflict chunks pass
// through verbatim, and each conflicting region is wrapped in the familiar
// <<<<<<< / ||||||| / ======= / >>>>>>> markers. The algorithm always
// records a base chunk for a conflicting region regardless of diff3Style;
// it is Format's job, not MergeFileContent's, to decide whether that chunk
// is rendered, so the same ContentMergeResult can be formatted either way
// without re-running the merge.
func (r *ContentMergeResult) Format(oursLabel, theirsLabel string, diff3Style bool) []byte {
	var out []string

	i := 0
	for i < len(r.Chunks) {
		c := r.Chunks[i]

		if c.State == NoConflict {
			out = append(out, r.sequence(c.Sequence)[c.Start:c.End]...)
			i++
			continue
		}

		// c.State == FirstConflictingRange: consume the whole conflicting
		// region (ours, then its NextConflictingRange chunks) in one pass.
		out = append(out, ConflictMarkerStart+" "+oursLabel)
		out = append(out, r.sequence(c.Sequence)[c.Start:c.End]...)
		i++

		for i < len(r.Chunks) && r.Chunks[i].State == NextConflictingRange {
			nc := r.Chunks[i]
			if nc.Sequence == SequenceBase {
				if diff3Style {
					out = append(out, ConflictMarkerBase+" base")
					out = append(out, r.sequence(nc.Sequence)[nc.Start:nc.End]...)
				}
				i++
				continue
			}

			out = append(out, ConflictMarkerSeparator)
			out = append(out, r.sequence(nc.Sequence)[nc.Start:nc.End]...)
			out = append(out, ConflictMarkerEnd+" "+theirsLabel)
			i++
		}
	}

	if len(out) == 0 {
		return nil
	}
	return []byte(strings.Join(out, "\n") + "\n")
}

func (r *ContentMergeResult) sequence(s SequenceName) []string {
	switch s {
	case SequenceBase:
		return r.BaseLines
	case SequenceOurs:
		return r.OursLines
	default:
		return r.TheirsLines
	}
}

// ConflictingRegions derives the base/ours/theirs line ranges of each
// conflicting region straight from the chunk list, without parsing
// rendered marker text.
func (r *ContentMergeResult) ConflictingRegions() []ConflictRegion {
	var regions []ConflictRegion

	i := 0
	for i < len(r.Chunks) {
		c := r.Chunks[i]
		if c.State != FirstConflictingRange {
			i++
			continue
		}

		region := ConflictRegion{OurStart: c.Start, OurEnd: c.End}
		i++
		for i < len(r.Chunks) && r.Chunks[i].State == NextConflictingRange {
			nc := r.Chunks[i]
			switch nc.Sequence {
			case SequenceBase:
				region.BaseStart, region.BaseEnd = nc.Start, nc.End
			case SequenceTheirs:
				region.TheirStart, region.TheirEnd = nc.Start, nc.End
			}
			i++
		}
		regions = append(regions, region)
	}

	return regions
}
