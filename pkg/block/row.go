package block

import (
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// RowBlock holds one child block per field. Fields are not
// offset-addressed: field f of parent position i is child block f at
// position i directly, so every child has the parent's position count.
type RowBlock struct {
	Fields []Block
	Off    int
	Cnt    int
	Mask   *util.Bitmap
}

func NewRowBlock(count int, fields []Block, mask *util.Bitmap) *RowBlock {
	if len(fields) == 0 {
		throw(InvalidArgument, "row block needs at least one field")
	}
	for f, fb := range fields {
		if fb.PositionCount() < count {
			throw(InvalidArgument, "field %d has %d positions, row block has %d",
				f, fb.PositionCount(), count)
		}
	}
	return &RowBlock{
		Fields: fields,
		Cnt:    count,
		Mask:   maskOrEmpty(mask),
	}
}

func (b *RowBlock) FieldCount() int {
	return len(b.Fields)
}

// Field returns a zero-copy view of one field, aligned to this block's
// positions.
func (b *RowBlock) Field(f int) Block {
	if f < 0 || f >= len(b.Fields) {
		throw(InvalidArgument, "field %d out of range, row has %d fields", f, len(b.Fields))
	}
	return b.Fields[f].Region(b.Off, b.Cnt)
}

func (b *RowBlock) PositionCount() int {
	return b.Cnt
}

func (b *RowBlock) SizeInBytes() int64 {
	return b.RegionSizeInBytes(0, b.Cnt)
}

func (b *RowBlock) RegionSizeInBytes(offset, length int) int64 {
	checkValidRegion(b.Cnt, offset, length)
	sz := int64(length)
	for _, f := range b.Fields {
		sz += f.RegionSizeInBytes(b.Off+offset, length)
	}
	return sz
}

func (b *RowBlock) PositionsSizeInBytes(positions []int) int64 {
	checkValidPositions(positions, b.Cnt)
	shifted := make([]int, len(positions))
	for i, p := range positions {
		shifted[i] = b.Off + p
	}
	sz := int64(len(positions))
	for _, f := range b.Fields {
		sz += f.PositionsSizeInBytes(shifted)
	}
	return sz
}

func (b *RowBlock) RetainedSizeInBytes() int64 {
	// per-position null flag charged here, matching the logical accounting
	sz := int64(b.Cnt) + int64(len(b.Mask.Data()))
	for _, f := range b.Fields {
		sz += f.RetainedSizeInBytes()
	}
	return sz
}

func (b *RowBlock) MayHaveNull() bool {
	return b.Mask.IsMaskSet()
}

func (b *RowBlock) IsNull(pos int) bool {
	checkReadablePosition(b, pos)
	return !b.Mask.RowIsValid(uint64(b.Off + pos))
}

func (b *RowBlock) GetLong(pos int, offset int) int64 {
	throwUnsupported(EncRow, "GetLong")
	return 0
}

func (b *RowBlock) GetInt(pos int, offset int) int32 {
	throwUnsupported(EncRow, "GetInt")
	return 0
}

func (b *RowBlock) GetShort(pos int, offset int) int16 {
	throwUnsupported(EncRow, "GetShort")
	return 0
}

func (b *RowBlock) GetByte(pos int, offset int) byte {
	throwUnsupported(EncRow, "GetByte")
	return 0
}

func (b *RowBlock) GetSlice(pos int, offset int, length int) []byte {
	throwUnsupported(EncRow, "GetSlice")
	return nil
}

func (b *RowBlock) SliceLength(pos int) int {
	throwUnsupported(EncRow, "SliceLength")
	return 0
}

func (b *RowBlock) Region(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	return &RowBlock{
		Fields: b.Fields,
		Off:    b.Off + offset,
		Cnt:    length,
		Mask:   b.Mask,
	}
}

func (b *RowBlock) CopyRegion(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	fields := make([]Block, len(b.Fields))
	for f, fb := range b.Fields {
		fields[f] = fb.CopyRegion(b.Off+offset, length)
	}
	mask := &util.Bitmap{}
	if b.Mask.HasInvalid(uint64(b.Off+offset), uint64(length)) {
		mask.Init(length)
		mask.CopyRange(b.Mask, 0, uint64(b.Off+offset), uint64(length))
	}
	return &RowBlock{Fields: fields, Cnt: length, Mask: mask}
}

func (b *RowBlock) Positions(positions []int) Block {
	return positionsView(b, positions)
}

func (b *RowBlock) CopyPositions(positions []int) Block {
	checkValidPositions(positions, b.Cnt)
	shifted := make([]int, len(positions))
	mask := &util.Bitmap{}
	for i, p := range positions {
		shifted[i] = b.Off + p
		if !b.Mask.RowIsValid(uint64(b.Off + p)) {
			mask.PrepareSpace(len(positions))
			mask.SetInvalidUnsafe(uint64(i))
		}
	}
	fields := make([]Block, len(b.Fields))
	for f, fb := range b.Fields {
		fields[f] = fb.CopyPositions(shifted)
	}
	return &RowBlock{Fields: fields, Cnt: len(positions), Mask: mask}
}

func (b *RowBlock) CopyWithAppendedNull() Block {
	fields := make([]Block, len(b.Fields))
	for f, fb := range b.Fields {
		fields[f] = fb.Region(b.Off, b.Cnt).CopyWithAppendedNull()
	}
	mask := &util.Bitmap{}
	mask.Init(b.Cnt + 1)
	mask.CopyRange(b.Mask, 0, uint64(b.Off), uint64(b.Cnt))
	mask.SetInvalidUnsafe(uint64(b.Cnt))
	return &RowBlock{Fields: fields, Cnt: b.Cnt + 1, Mask: mask}
}

func (b *RowBlock) EncodingName() string {
	return EncRow
}

func (b *RowBlock) Loaded() Block {
	return b
}

// RowBlockBuilder accumulates rows; within one entry every field builder
// advances by exactly one position.
type RowBlockBuilder struct {
	status  *BlockBuilderStatus
	fields  []BlockBuilder
	mask    util.Bitmap
	maskCap int
	hint    int
	cnt     int
	hasNull bool
	inEntry bool
	entryAt []int
}

func NewRowBlockBuilder(status *BlockBuilderStatus, fields []BlockBuilder, expectedEntries int) *RowBlockBuilder {
	if len(fields) == 0 {
		throw(InvalidArgument, "row builder needs at least one field")
	}
	if expectedEntries <= 0 {
		expectedEntries = util.DefaultExpectedEntries
	}
	return &RowBlockBuilder{
		status:  status,
		fields:  fields,
		hint:    expectedEntries,
		entryAt: make([]int, len(fields)),
	}
}

func (b *RowBlockBuilder) growMask(need int) {
	if b.mask.IsMaskSet() && need > b.maskCap {
		newCap := calcGrownCapacity(b.maskCap, need, b.hint)
		b.mask.Resize(b.maskCap, newCap)
		b.maskCap = newCap
	}
}

func (b *RowBlockBuilder) BeginEntry() []BlockBuilder {
	if b.inEntry {
		throw(IllegalState, "entry already open")
	}
	b.inEntry = true
	for f, fb := range b.fields {
		b.entryAt[f] = fb.PositionCount()
	}
	return b.fields
}

func (b *RowBlockBuilder) CloseEntry() {
	if !b.inEntry {
		throw(IllegalState, "no open entry")
	}
	for f, fb := range b.fields {
		if fb.PositionCount() != b.entryAt[f]+1 {
			throw(IllegalState, "field %d advanced by %d positions in one entry",
				f, fb.PositionCount()-b.entryAt[f])
		}
	}
	b.inEntry = false
	b.growMask(b.cnt + 1)
	if b.mask.IsMaskSet() {
		b.mask.SetValidUnsafe(uint64(b.cnt))
	}
	b.cnt++
	b.status.AddBytes(1)
}

func (b *RowBlockBuilder) AppendNull() {
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
	// fields stay position-aligned: null rows still occupy one slot per field
	for _, fb := range b.fields {
		fb.AppendNull()
	}
	b.cnt++
	b.hasNull = true
	b.status.AddBytes(1)
}

func (b *RowBlockBuilder) AppendRange(src Block, offset, length int) {
	switch s := src.(type) {
	case *RowBlock:
		checkValidRegion(s.Cnt, offset, length)
		if len(s.Fields) != len(b.fields) {
			throw(InvalidArgument, "source row has %d fields, builder has %d",
				len(s.Fields), len(b.fields))
		}
		for i := 0; i < length; i++ {
			pos := offset + i
			if s.IsNull(pos) {
				b.AppendNull()
				continue
			}
			fields := b.BeginEntry()
			for f, fb := range fields {
				fb.AppendRange(s.Fields[f], s.Off+pos, 1)
			}
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
		throwUnsupported(EncRow, "AppendRange from "+src.EncodingName())
	}
}

func (b *RowBlockBuilder) PositionCount() int {
	return b.cnt
}

func (b *RowBlockBuilder) SizeInBytes() int64 {
	sz := int64(b.cnt)
	for _, fb := range b.fields {
		sz += fb.SizeInBytes()
	}
	return sz
}

func (b *RowBlockBuilder) RetainedSizeInBytes() int64 {
	sz := int64(b.cnt) + int64(len(b.mask.Data()))
	for _, fb := range b.fields {
		sz += fb.RetainedSizeInBytes()
	}
	return sz
}

func (b *RowBlockBuilder) Build() Block {
	if b.inEntry {
		throw(IllegalState, "entry still open")
	}
	fields := make([]Block, len(b.fields))
	for f, fb := range b.fields {
		fields[f] = fb.Build()
	}
	mask := &util.Bitmap{}
	if b.hasNull {
		mask.ShareWith(&b.mask)
	}
	return &RowBlock{Fields: fields, Cnt: b.cnt, Mask: mask}
}
