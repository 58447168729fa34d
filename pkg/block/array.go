package block

import (
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// ArrayBlock is the columnar decomposition of an array column: position i
// spans [Offsets[i], Offsets[i+1]) of one elements block.
type ArrayBlock struct {
	Elems   Block
	Offsets []int32
	Off     int
	Cnt     int
	Mask    *util.Bitmap
}

func NewArrayBlock(count int, elements Block, offsets []int32, mask *util.Bitmap) *ArrayBlock {
	if count < 0 || len(offsets) < count+1 {
		throw(InvalidArgument, "need %d offsets, have %d", count+1, len(offsets))
	}
	if int(offsets[count]) > elements.PositionCount() {
		throw(InvalidArgument, "offsets address %d elements, block has %d",
			offsets[count], elements.PositionCount())
	}
	return &ArrayBlock{
		Elems:   elements,
		Offsets: offsets,
		Cnt:     count,
		Mask:    maskOrEmpty(mask),
	}
}

func (b *ArrayBlock) entryOffset(pos int) int32 {
	return b.Offsets[b.Off+pos]
}

// EntryLength returns the element count of the array at pos.
func (b *ArrayBlock) EntryLength(pos int) int {
	checkReadablePosition(b, pos)
	return int(b.Offsets[b.Off+pos+1] - b.Offsets[b.Off+pos])
}

// Array returns a zero-copy view of the elements of position pos.
func (b *ArrayBlock) Array(pos int) Block {
	checkReadablePosition(b, pos)
	return b.Elems.Region(int(b.entryOffset(pos)), b.EntryLength(pos))
}

func (b *ArrayBlock) PositionCount() int {
	return b.Cnt
}

func (b *ArrayBlock) elemSpan(offset, length int) (int, int) {
	start := int(b.Offsets[b.Off+offset])
	total := int(b.Offsets[b.Off+offset+length]) - start
	return start, total
}

func (b *ArrayBlock) SizeInBytes() int64 {
	return b.RegionSizeInBytes(0, b.Cnt)
}

func (b *ArrayBlock) RegionSizeInBytes(offset, length int) int64 {
	checkValidRegion(b.Cnt, offset, length)
	start, total := b.elemSpan(offset, length)
	return b.Elems.RegionSizeInBytes(start, total) + int64(length)*(4+1)
}

func (b *ArrayBlock) PositionsSizeInBytes(positions []int) int64 {
	checkValidPositions(positions, b.Cnt)
	var sz int64
	for _, p := range positions {
		sz += b.Elems.RegionSizeInBytes(int(b.entryOffset(p)), b.EntryLength(p))
	}
	return sz + int64(len(positions))*(4+1)
}

func (b *ArrayBlock) RetainedSizeInBytes() int64 {
	return b.Elems.RetainedSizeInBytes() + int64(cap(b.Offsets))*(4+1) + int64(len(b.Mask.Data()))
}

func (b *ArrayBlock) MayHaveNull() bool {
	return b.Mask.IsMaskSet()
}

func (b *ArrayBlock) IsNull(pos int) bool {
	checkReadablePosition(b, pos)
	return !b.Mask.RowIsValid(uint64(b.Off + pos))
}

func (b *ArrayBlock) GetLong(pos int, offset int) int64 {
	throwUnsupported(EncArray, "GetLong")
	return 0
}

func (b *ArrayBlock) GetInt(pos int, offset int) int32 {
	throwUnsupported(EncArray, "GetInt")
	return 0
}

func (b *ArrayBlock) GetShort(pos int, offset int) int16 {
	throwUnsupported(EncArray, "GetShort")
	return 0
}

func (b *ArrayBlock) GetByte(pos int, offset int) byte {
	throwUnsupported(EncArray, "GetByte")
	return 0
}

func (b *ArrayBlock) GetSlice(pos int, offset int, length int) []byte {
	throwUnsupported(EncArray, "GetSlice")
	return nil
}

func (b *ArrayBlock) SliceLength(pos int) int {
	throwUnsupported(EncArray, "SliceLength")
	return 0
}

func (b *ArrayBlock) Region(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	return &ArrayBlock{
		Elems:   b.Elems,
		Offsets: b.Offsets,
		Off:     b.Off + offset,
		Cnt:     length,
		Mask:    b.Mask,
	}
}

func (b *ArrayBlock) CopyRegion(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	start, total := b.elemSpan(offset, length)
	elems := b.Elems.CopyRegion(start, total)
	offsets := make([]int32, length+1)
	base := b.Offsets[b.Off+offset]
	for i := 0; i <= length; i++ {
		offsets[i] = b.Offsets[b.Off+offset+i] - base
	}
	mask := &util.Bitmap{}
	if b.Mask.HasInvalid(uint64(b.Off+offset), uint64(length)) {
		mask.Init(length)
		mask.CopyRange(b.Mask, 0, uint64(b.Off+offset), uint64(length))
	}
	return &ArrayBlock{Elems: elems, Offsets: offsets, Cnt: length, Mask: mask}
}

func (b *ArrayBlock) Positions(positions []int) Block {
	return positionsView(b, positions)
}

func (b *ArrayBlock) CopyPositions(positions []int) Block {
	checkValidPositions(positions, b.Cnt)
	var elemPositions []int
	offsets := make([]int32, len(positions)+1)
	mask := &util.Bitmap{}
	for i, p := range positions {
		start := int(b.entryOffset(p))
		for e := 0; e < b.EntryLength(p); e++ {
			elemPositions = append(elemPositions, start+e)
		}
		offsets[i+1] = int32(len(elemPositions))
		if !b.Mask.RowIsValid(uint64(b.Off + p)) {
			mask.PrepareSpace(len(positions))
			mask.SetInvalidUnsafe(uint64(i))
		}
	}
	return &ArrayBlock{
		Elems:   b.Elems.CopyPositions(elemPositions),
		Offsets: offsets,
		Cnt:     len(positions),
		Mask:    mask,
	}
}

func (b *ArrayBlock) CopyWithAppendedNull() Block {
	start, total := b.elemSpan(0, b.Cnt)
	elems := b.Elems.CopyRegion(start, total)
	offsets := make([]int32, b.Cnt+2)
	base := b.Offsets[b.Off]
	for i := 0; i <= b.Cnt; i++ {
		offsets[i] = b.Offsets[b.Off+i] - base
	}
	offsets[b.Cnt+1] = offsets[b.Cnt]
	mask := &util.Bitmap{}
	mask.Init(b.Cnt + 1)
	mask.CopyRange(b.Mask, 0, uint64(b.Off), uint64(b.Cnt))
	mask.SetInvalidUnsafe(uint64(b.Cnt))
	return &ArrayBlock{Elems: elems, Offsets: offsets, Cnt: b.Cnt + 1, Mask: mask}
}

func (b *ArrayBlock) EncodingName() string {
	return EncArray
}

func (b *ArrayBlock) Loaded() Block {
	return b
}

// ArrayBlockBuilder accumulates arrays entry by entry: BeginEntry hands
// out the shared element builder, CloseEntry seals the entry.
type ArrayBlockBuilder struct {
	status  *BlockBuilderStatus
	elems   BlockBuilder
	offsets []int32
	mask    util.Bitmap
	maskCap int
	hint    int
	cnt     int
	hasNull bool
	inEntry bool
}

func NewArrayBlockBuilder(status *BlockBuilderStatus, elements BlockBuilder, expectedEntries int) *ArrayBlockBuilder {
	if expectedEntries <= 0 {
		expectedEntries = util.DefaultExpectedEntries
	}
	return &ArrayBlockBuilder{
		status:  status,
		elems:   elements,
		offsets: make([]int32, 1, expectedEntries+1),
		hint:    expectedEntries,
	}
}

func (b *ArrayBlockBuilder) growMask(need int) {
	if b.mask.IsMaskSet() && need > b.maskCap {
		newCap := calcGrownCapacity(b.maskCap, need, b.hint)
		b.mask.Resize(b.maskCap, newCap)
		b.maskCap = newCap
	}
}

func (b *ArrayBlockBuilder) BeginEntry() BlockBuilder {
	if b.inEntry {
		throw(IllegalState, "entry already open")
	}
	b.inEntry = true
	return b.elems
}

func (b *ArrayBlockBuilder) CloseEntry() {
	if !b.inEntry {
		throw(IllegalState, "no open entry")
	}
	b.inEntry = false
	b.growMask(b.cnt + 1)
	if b.mask.IsMaskSet() {
		b.mask.SetValidUnsafe(uint64(b.cnt))
	}
	b.offsets = append(b.offsets, int32(b.elems.PositionCount()))
	b.cnt++
	b.status.AddBytes(4 + 1)
}

func (b *ArrayBlockBuilder) AppendNull() {
	if b.inEntry {
		throw(IllegalState, "entry still open")
	}
	need := b.cnt + 1
	if !b.mask.IsMaskSet() {
		b.maskCap = calcGrownCapacity(0, need, b.hint)
		b.mask.Init(b.maskCap)
	}
	b.growMask(need)
	b.mask.SetInvalidUnsafe(uint64(b.cnt))
	b.offsets = append(b.offsets, int32(b.elems.PositionCount()))
	b.cnt++
	b.hasNull = true
	b.status.AddBytes(4 + 1)
}

func (b *ArrayBlockBuilder) AppendRange(src Block, offset, length int) {
	switch s := src.(type) {
	case *ArrayBlock:
		checkValidRegion(s.Cnt, offset, length)
		for i := 0; i < length; i++ {
			pos := offset + i
			if s.IsNull(pos) {
				b.AppendNull()
				continue
			}
			eb := b.BeginEntry()
			eb.AppendRange(s.Elems, int(s.entryOffset(pos)), s.EntryLength(pos))
			b.CloseEntry()
		}
	case *RunLengthBlock:
		checkValidRegion(s.Cnt, offset, length)
		for i := 0; i < length; i++ {
			b.AppendRange(s.Val, 0, 1)
		}
	case *DictionaryBlock:
		checkValidRegion(s.Cnt, offset, length)
		for i := 0; i < length; i++ {
			b.AppendRange(s.Dict, int(s.idAt(offset+i)), 1)
		}
	case *LazyBlock:
		b.AppendRange(s.Loaded(), offset, length)
	default:
		throwUnsupported(EncArray, "AppendRange from "+src.EncodingName())
	}
}

func (b *ArrayBlockBuilder) PositionCount() int {
	return b.cnt
}

func (b *ArrayBlockBuilder) SizeInBytes() int64 {
	return b.elems.SizeInBytes() + int64(b.cnt)*(4+1)
}

func (b *ArrayBlockBuilder) RetainedSizeInBytes() int64 {
	return b.elems.RetainedSizeInBytes() + int64(cap(b.offsets))*(4+1) + int64(len(b.mask.Data()))
}

func (b *ArrayBlockBuilder) Build() Block {
	if b.inEntry {
		throw(IllegalState, "entry still open")
	}
	mask := &util.Bitmap{}
	if b.hasNull {
		mask.ShareWith(&b.mask)
	}
	return &ArrayBlock{
		Elems:   b.elems.Build(),
		Offsets: b.offsets[:b.cnt+1],
		Cnt:     b.cnt,
		Mask:    mask,
	}
}
