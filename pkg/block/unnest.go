package block

// Unnest helpers flatten one parent position of a nested block into a
// flat builder, padding with nulls up to entryCount so several unnested
// columns of the same row stay position-aligned.

// UnnestArray appends the elements of src position pos to dst, then
// appends nulls until entryCount values were written.
func UnnestArray(src *ArrayBlock, pos int, entryCount int, dst BlockBuilder) {
	checkReadablePosition(src, pos)
	written := 0
	if !src.IsNull(pos) {
		length := src.EntryLength(pos)
		if length > entryCount {
			throw(InvalidArgument, "array has %d elements, row declares %d entries",
				length, entryCount)
		}
		dst.AppendRange(src.Elems, int(src.entryOffset(pos)), length)
		written = length
	}
	for ; written < entryCount; written++ {
		dst.AppendNull()
	}
}

// UnnestMap appends the key/value pairs of src position pos to keyDst
// and valueDst in lockstep, padding both with nulls up to entryCount.
func UnnestMap(src *MapBlock, pos int, entryCount int, keyDst, valueDst BlockBuilder) {
	checkReadablePosition(src, pos)
	written := 0
	if !src.IsNull(pos) {
		length := src.EntryLength(pos)
		if length > entryCount {
			throw(InvalidArgument, "map has %d entries, row declares %d",
				length, entryCount)
		}
		start := int(src.entryOffset(pos))
		keyDst.AppendRange(src.Keys, start, length)
		valueDst.AppendRange(src.Values, start, length)
		written = length
	}
	for ; written < entryCount; written++ {
		keyDst.AppendNull()
		valueDst.AppendNull()
	}
}
