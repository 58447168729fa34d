package block

import (
	"bytes"

	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// VarWidthBlock backs string/binary columns: positionCount+1 offsets into
// one contiguous byte buffer. Value i spans
// Bytes[Offsets[Off+i]:Offsets[Off+i+1]].
type VarWidthBlock struct {
	Offsets []int32
	Bytes   []byte
	Off     int
	Cnt     int
	Mask    *util.Bitmap
}

func NewVarWidthBlock(count int, offsets []int32, data []byte, mask *util.Bitmap) *VarWidthBlock {
	if count < 0 || len(offsets) < count+1 {
		throw(InvalidArgument, "need %d offsets, have %d", count+1, len(offsets))
	}
	if int(offsets[count]) > len(data) {
		throw(InvalidArgument, "offsets address %d bytes, buffer has %d",
			offsets[count], len(data))
	}
	return &VarWidthBlock{
		Offsets: offsets,
		Bytes:   data,
		Cnt:     count,
		Mask:    maskOrEmpty(mask),
	}
}

func (b *VarWidthBlock) start(pos int) int32 {
	return b.Offsets[b.Off+pos]
}

func (b *VarWidthBlock) PositionCount() int {
	return b.Cnt
}

func (b *VarWidthBlock) byteLength(offset, length int) int64 {
	return int64(b.Offsets[b.Off+offset+length] - b.Offsets[b.Off+offset])
}

func (b *VarWidthBlock) SizeInBytes() int64 {
	return b.byteLength(0, b.Cnt) + int64(b.Cnt)*(4+1)
}

func (b *VarWidthBlock) RegionSizeInBytes(offset, length int) int64 {
	checkValidRegion(b.Cnt, offset, length)
	return b.byteLength(offset, length) + int64(length)*(4+1)
}

func (b *VarWidthBlock) PositionsSizeInBytes(positions []int) int64 {
	checkValidPositions(positions, b.Cnt)
	var sz int64
	for _, p := range positions {
		sz += int64(b.SliceLength(p))
	}
	return sz + int64(len(positions))*(4+1)
}

func (b *VarWidthBlock) RetainedSizeInBytes() int64 {
	// offset slots carry the per-position null flag charge too
	return int64(cap(b.Bytes)) + int64(cap(b.Offsets))*(4+1) + int64(len(b.Mask.Data()))
}

func (b *VarWidthBlock) MayHaveNull() bool {
	return b.Mask.IsMaskSet()
}

func (b *VarWidthBlock) IsNull(pos int) bool {
	checkReadablePosition(b, pos)
	return !b.Mask.RowIsValid(uint64(b.Off + pos))
}

func (b *VarWidthBlock) GetLong(pos int, offset int) int64 {
	throwUnsupported(EncVarWidth, "GetLong")
	return 0
}

func (b *VarWidthBlock) GetInt(pos int, offset int) int32 {
	throwUnsupported(EncVarWidth, "GetInt")
	return 0
}

func (b *VarWidthBlock) GetShort(pos int, offset int) int16 {
	throwUnsupported(EncVarWidth, "GetShort")
	return 0
}

func (b *VarWidthBlock) GetByte(pos int, offset int) byte {
	throwUnsupported(EncVarWidth, "GetByte")
	return 0
}

// GetSlice returns a zero-copy view of length bytes of position pos
// starting at byte offset.
func (b *VarWidthBlock) GetSlice(pos int, offset int, length int) []byte {
	checkReadablePosition(b, pos)
	if offset < 0 || length < 0 || offset+length > b.SliceLength(pos) {
		throw(InvalidArgument, "byte range [%d, %d) out of value of %d bytes",
			offset, offset+length, b.SliceLength(pos))
	}
	start := int(b.start(pos)) + offset
	return b.Bytes[start : start+length]
}

func (b *VarWidthBlock) SliceLength(pos int) int {
	checkReadablePosition(b, pos)
	return int(b.Offsets[b.Off+pos+1] - b.Offsets[b.Off+pos])
}

// BytesEqual compares a byte range of position pos with other without
// materializing a value. A range reaching past the stored value cannot
// match.
func (b *VarWidthBlock) BytesEqual(pos int, offset int, other []byte) bool {
	checkReadablePosition(b, pos)
	if offset < 0 || offset+len(other) > b.SliceLength(pos) {
		return false
	}
	return bytes.Equal(b.GetSlice(pos, offset, len(other)), other)
}

func (b *VarWidthBlock) BytesCompare(pos int, offset int, length int, other []byte) int {
	return bytes.Compare(b.GetSlice(pos, offset, length), other)
}

// Hash hashes a byte range of position pos with the engine-wide byte
// hash, so block-side hashes match hashes of raw values.
func (b *VarWidthBlock) Hash(pos int, offset int, length int) uint64 {
	return util.HashSlice(b.GetSlice(pos, offset, length))
}

// WriteBytesTo forwards a byte range of position pos into another
// variable-width builder without an intermediate copy.
func (b *VarWidthBlock) WriteBytesTo(pos int, offset int, length int, dst *VarWidthBlockBuilder) {
	dst.Append(b.GetSlice(pos, offset, length))
}

func (b *VarWidthBlock) Region(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	return &VarWidthBlock{
		Offsets: b.Offsets,
		Bytes:   b.Bytes,
		Off:     b.Off + offset,
		Cnt:     length,
		Mask:    b.Mask,
	}
}

func (b *VarWidthBlock) CopyRegion(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	base := b.Offsets[b.Off+offset]
	byteLen := b.byteLength(offset, length)
	data := make([]byte, byteLen)
	copy(data, b.Bytes[base:int64(base)+byteLen])
	offsets := make([]int32, length+1)
	for i := 0; i <= length; i++ {
		offsets[i] = b.Offsets[b.Off+offset+i] - base
	}
	mask := &util.Bitmap{}
	if b.Mask.HasInvalid(uint64(b.Off+offset), uint64(length)) {
		mask.Init(length)
		mask.CopyRange(b.Mask, 0, uint64(b.Off+offset), uint64(length))
	}
	return &VarWidthBlock{Offsets: offsets, Bytes: data, Cnt: length, Mask: mask}
}

func (b *VarWidthBlock) Positions(positions []int) Block {
	return positionsView(b, positions)
}

func (b *VarWidthBlock) CopyPositions(positions []int) Block {
	checkValidPositions(positions, b.Cnt)
	var byteLen int64
	for _, p := range positions {
		byteLen += int64(b.SliceLength(p))
	}
	data := make([]byte, 0, byteLen)
	offsets := make([]int32, len(positions)+1)
	mask := &util.Bitmap{}
	for i, p := range positions {
		if b.Mask.RowIsValid(uint64(b.Off + p)) {
			data = append(data, b.GetSlice(p, 0, b.SliceLength(p))...)
		} else {
			mask.PrepareSpace(len(positions))
			mask.SetInvalidUnsafe(uint64(i))
		}
		offsets[i+1] = int32(len(data))
	}
	return &VarWidthBlock{Offsets: offsets, Bytes: data, Cnt: len(positions), Mask: mask}
}

func (b *VarWidthBlock) CopyWithAppendedNull() Block {
	base := b.Offsets[b.Off]
	byteLen := b.byteLength(0, b.Cnt)
	data := make([]byte, byteLen)
	copy(data, b.Bytes[base:int64(base)+byteLen])
	offsets := make([]int32, b.Cnt+2)
	for i := 0; i <= b.Cnt; i++ {
		offsets[i] = b.Offsets[b.Off+i] - base
	}
	offsets[b.Cnt+1] = offsets[b.Cnt]
	mask := &util.Bitmap{}
	mask.Init(b.Cnt + 1)
	mask.CopyRange(b.Mask, 0, uint64(b.Off), uint64(b.Cnt))
	mask.SetInvalidUnsafe(uint64(b.Cnt))
	return &VarWidthBlock{Offsets: offsets, Bytes: data, Cnt: b.Cnt + 1, Mask: mask}
}

func (b *VarWidthBlock) EncodingName() string {
	return EncVarWidth
}

func (b *VarWidthBlock) Loaded() Block {
	return b
}

// VarWidthBlockBuilder accumulates variable-width values into one growing
// byte buffer plus an offsets array.
type VarWidthBlockBuilder struct {
	status  *BlockBuilderStatus
	hint    int
	offsets []int32
	data    []byte
	mask    util.Bitmap
	maskCap int
	cnt     int
	hasNull bool
}

func NewVarWidthBlockBuilder(status *BlockBuilderStatus, expectedEntries int) *VarWidthBlockBuilder {
	if expectedEntries <= 0 {
		expectedEntries = util.DefaultExpectedEntries
	}
	return &VarWidthBlockBuilder{
		status:  status,
		hint:    expectedEntries,
		offsets: make([]int32, 1, expectedEntries+1),
	}
}

func (b *VarWidthBlockBuilder) growEntries(need int) {
	if b.mask.IsMaskSet() && need > b.maskCap {
		newCap := calcGrownCapacity(b.maskCap, need, b.hint)
		b.mask.Resize(b.maskCap, newCap)
		b.maskCap = newCap
	}
}

func (b *VarWidthBlockBuilder) Append(v []byte) {
	b.growEntries(b.cnt + 1)
	b.data = append(b.data, v...)
	b.offsets = append(b.offsets, int32(len(b.data)))
	if b.mask.IsMaskSet() {
		b.mask.SetValidUnsafe(uint64(b.cnt))
	}
	b.cnt++
	b.status.AddBytes(len(v) + 4 + 1)
}

func (b *VarWidthBlockBuilder) AppendString(v string) {
	b.Append(util.UnsafeStringToBytes(v))
}

func (b *VarWidthBlockBuilder) AppendNull() {
	need := b.cnt + 1
	if !b.mask.IsMaskSet() {
		b.maskCap = calcGrownCapacity(0, need, b.hint)
		b.mask.Init(b.maskCap)
	}
	b.growEntries(need)
	b.mask.SetInvalidUnsafe(uint64(b.cnt))
	b.offsets = append(b.offsets, int32(len(b.data)))
	b.cnt++
	b.hasNull = true
	b.status.AddBytes(4 + 1)
}

func (b *VarWidthBlockBuilder) AppendRange(src Block, offset, length int) {
	switch s := src.(type) {
	case *VarWidthBlock:
		checkValidRegion(s.Cnt, offset, length)
		for i := 0; i < length; i++ {
			pos := offset + i
			if s.IsNull(pos) {
				b.AppendNull()
			} else {
				b.Append(s.GetSlice(pos, 0, s.SliceLength(pos)))
			}
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
		throwUnsupported(EncVarWidth, "AppendRange from "+src.EncodingName())
	}
}

func (b *VarWidthBlockBuilder) PositionCount() int {
	return b.cnt
}

func (b *VarWidthBlockBuilder) SizeInBytes() int64 {
	return int64(len(b.data)) + int64(b.cnt)*(4+1)
}

func (b *VarWidthBlockBuilder) RetainedSizeInBytes() int64 {
	return int64(cap(b.data)) + int64(cap(b.offsets))*(4+1) + int64(len(b.mask.Data()))
}

func (b *VarWidthBlockBuilder) Build() Block {
	mask := &util.Bitmap{}
	if b.hasNull {
		mask.ShareWith(&b.mask)
	}
	return &VarWidthBlock{
		Offsets: b.offsets[:b.cnt+1],
		Bytes:   b.data,
		Cnt:     b.cnt,
		Mask:    mask,
	}
}
