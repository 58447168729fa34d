package block

// RunLengthBlock represents positionCount repetitions of a single value
// as one physical entry: a value block of position count 1.
type RunLengthBlock struct {
	Val Block
	Cnt int
}

// NewRunLengthBlock builds a run of count repetitions of value's single
// position. The stored value block is always a leaf: run-length and
// dictionary values are flattened here so runs never nest.
func NewRunLengthBlock(value Block, count int) *RunLengthBlock {
	if count < 0 {
		throw(InvalidArgument, "negative run length %d", count)
	}
	if value.PositionCount() != 1 {
		throw(InvalidArgument,
			"run value must have exactly one position, not %d", value.PositionCount())
	}
	switch v := value.(type) {
	case *RunLengthBlock:
		value = v.Val
	case *DictionaryBlock:
		value = v.Dict.CopyPositions([]int{int(v.idAt(0))})
	case *LazyBlock:
		return NewRunLengthBlock(v.Loaded(), count)
	}
	return &RunLengthBlock{Val: value, Cnt: count}
}

func (b *RunLengthBlock) PositionCount() int {
	return b.Cnt
}

func (b *RunLengthBlock) SizeInBytes() int64 {
	return b.Val.SizeInBytes()
}

func (b *RunLengthBlock) RegionSizeInBytes(offset, length int) int64 {
	checkValidRegion(b.Cnt, offset, length)
	return b.Val.SizeInBytes()
}

func (b *RunLengthBlock) PositionsSizeInBytes(positions []int) int64 {
	checkValidPositions(positions, b.Cnt)
	return b.Val.SizeInBytes()
}

func (b *RunLengthBlock) RetainedSizeInBytes() int64 {
	return b.Val.RetainedSizeInBytes()
}

func (b *RunLengthBlock) MayHaveNull() bool {
	return b.Val.MayHaveNull()
}

func (b *RunLengthBlock) IsNull(pos int) bool {
	checkReadablePosition(b, pos)
	return b.Val.IsNull(0)
}

func (b *RunLengthBlock) GetLong(pos int, offset int) int64 {
	checkReadablePosition(b, pos)
	return b.Val.GetLong(0, offset)
}

func (b *RunLengthBlock) GetInt(pos int, offset int) int32 {
	checkReadablePosition(b, pos)
	return b.Val.GetInt(0, offset)
}

func (b *RunLengthBlock) GetShort(pos int, offset int) int16 {
	checkReadablePosition(b, pos)
	return b.Val.GetShort(0, offset)
}

func (b *RunLengthBlock) GetByte(pos int, offset int) byte {
	checkReadablePosition(b, pos)
	return b.Val.GetByte(0, offset)
}

func (b *RunLengthBlock) GetSlice(pos int, offset int, length int) []byte {
	checkReadablePosition(b, pos)
	return b.Val.GetSlice(0, offset, length)
}

func (b *RunLengthBlock) SliceLength(pos int) int {
	checkReadablePosition(b, pos)
	return b.Val.SliceLength(0)
}

func (b *RunLengthBlock) Region(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	return &RunLengthBlock{Val: b.Val, Cnt: length}
}

func (b *RunLengthBlock) CopyRegion(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	return &RunLengthBlock{Val: b.Val.CopyRegion(0, 1), Cnt: length}
}

func (b *RunLengthBlock) Positions(positions []int) Block {
	checkValidPositions(positions, b.Cnt)
	return &RunLengthBlock{Val: b.Val, Cnt: len(positions)}
}

func (b *RunLengthBlock) CopyPositions(positions []int) Block {
	checkValidPositions(positions, b.Cnt)
	return &RunLengthBlock{Val: b.Val.CopyRegion(0, 1), Cnt: len(positions)}
}

func (b *RunLengthBlock) CopyWithAppendedNull() Block {
	if b.Val.IsNull(0) {
		return &RunLengthBlock{Val: b.Val.CopyRegion(0, 1), Cnt: b.Cnt + 1}
	}
	// the run breaks: re-encode as a two-entry dictionary
	dict := b.Val.CopyWithAppendedNull()
	ids := make([]int32, b.Cnt+1)
	ids[b.Cnt] = 1
	return NewDictionaryBlock(b.Cnt+1, dict, ids)
}

func (b *RunLengthBlock) EncodingName() string {
	return EncRle
}

func (b *RunLengthBlock) Loaded() Block {
	return b
}
