package block

import (
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// MapBlock is the two-child variant of ArrayBlock: position i spans
// [Offsets[i], Offsets[i+1]) in the keys and values blocks, which move in
// lockstep.
type MapBlock struct {
	Keys    Block
	Values  Block
	Offsets []int32
	Off     int
	Cnt     int
	Mask    *util.Bitmap
}

func NewMapBlock(count int, keys, values Block, offsets []int32, mask *util.Bitmap) *MapBlock {
	if count < 0 || len(offsets) < count+1 {
		throw(InvalidArgument, "need %d offsets, have %d", count+1, len(offsets))
	}
	if keys.PositionCount() != values.PositionCount() {
		throw(InvalidArgument, "keys have %d positions, values %d",
			keys.PositionCount(), values.PositionCount())
	}
	if int(offsets[count]) > keys.PositionCount() {
		throw(InvalidArgument, "offsets address %d entries, blocks have %d",
			offsets[count], keys.PositionCount())
	}
	return &MapBlock{
		Keys:    keys,
		Values:  values,
		Offsets: offsets,
		Cnt:     count,
		Mask:    maskOrEmpty(mask),
	}
}

func (b *MapBlock) entryOffset(pos int) int32 {
	return b.Offsets[b.Off+pos]
}

func (b *MapBlock) EntryLength(pos int) int {
	checkReadablePosition(b, pos)
	return int(b.Offsets[b.Off+pos+1] - b.Offsets[b.Off+pos])
}

// Entries returns zero-copy views of the keys and values of position pos.
func (b *MapBlock) Entries(pos int) (Block, Block) {
	checkReadablePosition(b, pos)
	start, length := int(b.entryOffset(pos)), b.EntryLength(pos)
	return b.Keys.Region(start, length), b.Values.Region(start, length)
}

func (b *MapBlock) PositionCount() int {
	return b.Cnt
}

func (b *MapBlock) elemSpan(offset, length int) (int, int) {
	start := int(b.Offsets[b.Off+offset])
	total := int(b.Offsets[b.Off+offset+length]) - start
	return start, total
}

func (b *MapBlock) SizeInBytes() int64 {
	return b.RegionSizeInBytes(0, b.Cnt)
}

func (b *MapBlock) RegionSizeInBytes(offset, length int) int64 {
	checkValidRegion(b.Cnt, offset, length)
	start, total := b.elemSpan(offset, length)
	return b.Keys.RegionSizeInBytes(start, total) +
		b.Values.RegionSizeInBytes(start, total) +
		int64(length)*(4+1)
}

func (b *MapBlock) PositionsSizeInBytes(positions []int) int64 {
	checkValidPositions(positions, b.Cnt)
	var sz int64
	for _, p := range positions {
		start, length := int(b.entryOffset(p)), b.EntryLength(p)
		sz += b.Keys.RegionSizeInBytes(start, length)
		sz += b.Values.RegionSizeInBytes(start, length)
	}
	return sz + int64(len(positions))*(4+1)
}

func (b *MapBlock) RetainedSizeInBytes() int64 {
	return b.Keys.RetainedSizeInBytes() + b.Values.RetainedSizeInBytes() +
		int64(cap(b.Offsets))*(4+1) + int64(len(b.Mask.Data()))
}

func (b *MapBlock) MayHaveNull() bool {
	return b.Mask.IsMaskSet()
}

func (b *MapBlock) IsNull(pos int) bool {
	checkReadablePosition(b, pos)
	return !b.Mask.RowIsValid(uint64(b.Off + pos))
}

func (b *MapBlock) GetLong(pos int, offset int) int64 {
	throwUnsupported(EncMap, "GetLong")
	return 0
}

func (b *MapBlock) GetInt(pos int, offset int) int32 {
	throwUnsupported(EncMap, "GetInt")
	return 0
}

func (b *MapBlock) GetShort(pos int, offset int) int16 {
	throwUnsupported(EncMap, "GetShort")
	return 0
}

func (b *MapBlock) GetByte(pos int, offset int) byte {
	throwUnsupported(EncMap, "GetByte")
	return 0
}

func (b *MapBlock) GetSlice(pos int, offset int, length int) []byte {
	throwUnsupported(EncMap, "GetSlice")
	return nil
}

func (b *MapBlock) SliceLength(pos int) int {
	throwUnsupported(EncMap, "SliceLength")
	return 0
}

func (b *MapBlock) Region(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	return &MapBlock{
		Keys:    b.Keys,
		Values:  b.Values,
		Offsets: b.Offsets,
		Off:     b.Off + offset,
		Cnt:     length,
		Mask:    b.Mask,
	}
}

func (b *MapBlock) CopyRegion(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	start, total := b.elemSpan(offset, length)
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
	return &MapBlock{
		Keys:    b.Keys.CopyRegion(start, total),
		Values:  b.Values.CopyRegion(start, total),
		Offsets: offsets,
		Cnt:     length,
		Mask:    mask,
	}
}

func (b *MapBlock) Positions(positions []int) Block {
	return positionsView(b, positions)
}

func (b *MapBlock) CopyPositions(positions []int) Block {
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
	return &MapBlock{
		Keys:    b.Keys.CopyPositions(elemPositions),
		Values:  b.Values.CopyPositions(elemPositions),
		Offsets: offsets,
		Cnt:     len(positions),
		Mask:    mask,
	}
}

func (b *MapBlock) CopyWithAppendedNull() Block {
	start, total := b.elemSpan(0, b.Cnt)
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
	return &MapBlock{
		Keys:    b.Keys.CopyRegion(start, total),
		Values:  b.Values.CopyRegion(start, total),
		Offsets: offsets,
		Cnt:     b.Cnt + 1,
		Mask:    mask,
	}
}

func (b *MapBlock) EncodingName() string {
	return EncMap
}

func (b *MapBlock) Loaded() Block {
	return b
}

// MapBlockBuilder accumulates map entries; keys and values builders
// advance in lockstep within one entry.
type MapBlockBuilder struct {
	status  *BlockBuilderStatus
	keys    BlockBuilder
	values  BlockBuilder
	offsets []int32
	mask    util.Bitmap
	maskCap int
	hint    int
	cnt     int
	hasNull bool
	inEntry bool
}

func NewMapBlockBuilder(status *BlockBuilderStatus, keys, values BlockBuilder, expectedEntries int) *MapBlockBuilder {
	if expectedEntries <= 0 {
		expectedEntries = util.DefaultExpectedEntries
	}
	return &MapBlockBuilder{
		status:  status,
		keys:    keys,
		values:  values,
		offsets: make([]int32, 1, expectedEntries+1),
		hint:    expectedEntries,
	}
}

func (b *MapBlockBuilder) growMask(need int) {
	if b.mask.IsMaskSet() && need > b.maskCap {
		newCap := calcGrownCapacity(b.maskCap, need, b.hint)
		b.mask.Resize(b.maskCap, newCap)
		b.maskCap = newCap
	}
}

func (b *MapBlockBuilder) BeginEntry() (BlockBuilder, BlockBuilder) {
	if b.inEntry {
		throw(IllegalState, "entry already open")
	}
	b.inEntry = true
	return b.keys, b.values
}

func (b *MapBlockBuilder) CloseEntry() {
	if !b.inEntry {
		throw(IllegalState, "no open entry")
	}
	if b.keys.PositionCount() != b.values.PositionCount() {
		throw(InvalidArgument, "entry has %d keys but %d values",
			b.keys.PositionCount(), b.values.PositionCount())
	}
	b.inEntry = false
	b.growMask(b.cnt + 1)
	if b.mask.IsMaskSet() {
		b.mask.SetValidUnsafe(uint64(b.cnt))
	}
	b.offsets = append(b.offsets, int32(b.keys.PositionCount()))
	b.cnt++
	b.status.AddBytes(4 + 1)
}

func (b *MapBlockBuilder) AppendNull() {
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
	b.offsets = append(b.offsets, int32(b.keys.PositionCount()))
	b.cnt++
	b.hasNull = true
	b.status.AddBytes(4 + 1)
}

func (b *MapBlockBuilder) AppendRange(src Block, offset, length int) {
	switch s := src.(type) {
	case *MapBlock:
		checkValidRegion(s.Cnt, offset, length)
		for i := 0; i < length; i++ {
			pos := offset + i
			if s.IsNull(pos) {
				b.AppendNull()
				continue
			}
			kb, vb := b.BeginEntry()
			start, entryLen := int(s.entryOffset(pos)), s.EntryLength(pos)
			kb.AppendRange(s.Keys, start, entryLen)
			vb.AppendRange(s.Values, start, entryLen)
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
		throwUnsupported(EncMap, "AppendRange from "+src.EncodingName())
	}
}

func (b *MapBlockBuilder) PositionCount() int {
	return b.cnt
}

func (b *MapBlockBuilder) SizeInBytes() int64 {
	return b.keys.SizeInBytes() + b.values.SizeInBytes() + int64(b.cnt)*(4+1)
}

func (b *MapBlockBuilder) RetainedSizeInBytes() int64 {
	return b.keys.RetainedSizeInBytes() + b.values.RetainedSizeInBytes() +
		int64(cap(b.offsets))*(4+1) + int64(len(b.mask.Data()))
}

func (b *MapBlockBuilder) Build() Block {
	if b.inEntry {
		throw(IllegalState, "entry still open")
	}
	mask := &util.Bitmap{}
	if b.hasNull {
		mask.ShareWith(&b.mask)
	}
	return &MapBlock{
		Keys:    b.keys.Build(),
		Values:  b.values.Build(),
		Offsets: b.offsets[:b.cnt+1],
		Cnt:     b.cnt,
		Mask:    mask,
	}
}
