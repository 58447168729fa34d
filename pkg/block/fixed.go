package block

import (
	"unsafe"

	"github.com/GuinsooLab/witdb-sub009/pkg/common"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// FixedValue enumerates the element types backed by fixed-width blocks.
type FixedValue interface {
	int64 | int32 | int16 | uint8 | common.Hugeint
}

// FixedBlock backs the primitive columnar types with one flat typed array
// plus an optional validity mask. Off is the view offset: region views
// share Vals and Mask and only move Off.
type FixedBlock[T FixedValue] struct {
	Vals []T
	Off  int
	Cnt  int
	Mask *util.Bitmap
}

type (
	ByteBlock   = FixedBlock[uint8]
	ShortBlock  = FixedBlock[int16]
	IntBlock    = FixedBlock[int32]
	LongBlock   = FixedBlock[int64]
	Int128Block = FixedBlock[common.Hugeint]
)

func NewFixedBlock[T FixedValue](count int, values []T, mask *util.Bitmap) *FixedBlock[T] {
	if count < 0 || count > len(values) {
		throw(InvalidArgument, "count %d does not fit %d values", count, len(values))
	}
	return &FixedBlock[T]{
		Vals: values,
		Cnt:  count,
		Mask: maskOrEmpty(mask),
	}
}

func NewLongBlock(count int, values []int64, mask *util.Bitmap) *LongBlock {
	return NewFixedBlock[int64](count, values, mask)
}

func NewIntBlock(count int, values []int32, mask *util.Bitmap) *IntBlock {
	return NewFixedBlock[int32](count, values, mask)
}

func NewShortBlock(count int, values []int16, mask *util.Bitmap) *ShortBlock {
	return NewFixedBlock[int16](count, values, mask)
}

func NewByteBlock(count int, values []uint8, mask *util.Bitmap) *ByteBlock {
	return NewFixedBlock[uint8](count, values, mask)
}

func NewInt128Block(count int, values []common.Hugeint, mask *util.Bitmap) *Int128Block {
	return NewFixedBlock[common.Hugeint](count, values, mask)
}

func fixedValueSize[T FixedValue]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// one null-flag byte per position on top of the value bytes
func fixedBytesPerPosition[T FixedValue]() int {
	return fixedValueSize[T]() + 1
}

func fixedEncodingName[T FixedValue]() string {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return EncByteArray
	case int16:
		return EncShortArray
	case int32:
		return EncIntArray
	case int64:
		return EncLongArray
	case common.Hugeint:
		return EncInt128
	}
	panic("usp")
}

func (b *FixedBlock[T]) valueAt(pos int) T {
	return b.Vals[b.Off+pos]
}

func (b *FixedBlock[T]) PositionCount() int {
	return b.Cnt
}

func (b *FixedBlock[T]) SizeInBytes() int64 {
	return int64(b.Cnt) * int64(fixedBytesPerPosition[T]())
}

func (b *FixedBlock[T]) RegionSizeInBytes(offset, length int) int64 {
	checkValidRegion(b.Cnt, offset, length)
	return int64(length) * int64(fixedBytesPerPosition[T]())
}

func (b *FixedBlock[T]) PositionsSizeInBytes(positions []int) int64 {
	checkValidPositions(positions, b.Cnt)
	return int64(len(positions)) * int64(fixedBytesPerPosition[T]())
}

func (b *FixedBlock[T]) RetainedSizeInBytes() int64 {
	// null flags are charged one byte per retained slot, matching the
	// logical accounting, so retained never drops below SizeInBytes
	ret := int64(cap(b.Vals)) * int64(fixedBytesPerPosition[T]())
	ret += int64(len(b.Mask.Data()))
	return ret
}

func (b *FixedBlock[T]) MayHaveNull() bool {
	return b.Mask.IsMaskSet()
}

func (b *FixedBlock[T]) IsNull(pos int) bool {
	checkReadablePosition(b, pos)
	return !b.Mask.RowIsValid(uint64(b.Off + pos))
}

func (b *FixedBlock[T]) GetLong(pos int, offset int) int64 {
	checkReadablePosition(b, pos)
	switch v := any(b.valueAt(pos)).(type) {
	case int64:
		if offset != 0 {
			throw(InvalidArgument, "offset %d not supported by %s", offset, EncLongArray)
		}
		return v
	case common.Hugeint:
		switch offset {
		case 0:
			return v.Upper
		case 8:
			return int64(v.Lower)
		default:
			throw(InvalidArgument, "offset %d not supported by %s", offset, EncInt128)
		}
	}
	throwUnsupported(b.EncodingName(), "GetLong")
	return 0
}

func (b *FixedBlock[T]) GetInt(pos int, offset int) int32 {
	checkReadablePosition(b, pos)
	if v, ok := any(b.valueAt(pos)).(int32); ok {
		if offset != 0 {
			throw(InvalidArgument, "offset %d not supported by %s", offset, EncIntArray)
		}
		return v
	}
	throwUnsupported(b.EncodingName(), "GetInt")
	return 0
}

func (b *FixedBlock[T]) GetShort(pos int, offset int) int16 {
	checkReadablePosition(b, pos)
	if v, ok := any(b.valueAt(pos)).(int16); ok {
		if offset != 0 {
			throw(InvalidArgument, "offset %d not supported by %s", offset, EncShortArray)
		}
		return v
	}
	throwUnsupported(b.EncodingName(), "GetShort")
	return 0
}

func (b *FixedBlock[T]) GetByte(pos int, offset int) byte {
	checkReadablePosition(b, pos)
	if v, ok := any(b.valueAt(pos)).(uint8); ok {
		if offset != 0 {
			throw(InvalidArgument, "offset %d not supported by %s", offset, EncByteArray)
		}
		return v
	}
	throwUnsupported(b.EncodingName(), "GetByte")
	return 0
}

func (b *FixedBlock[T]) GetSlice(pos int, offset int, length int) []byte {
	throwUnsupported(b.EncodingName(), "GetSlice")
	return nil
}

func (b *FixedBlock[T]) SliceLength(pos int) int {
	throwUnsupported(b.EncodingName(), "SliceLength")
	return 0
}

// GetInt128 returns the full 128-bit value. Int128 blocks only.
func (b *FixedBlock[T]) GetInt128(pos int) common.Hugeint {
	checkReadablePosition(b, pos)
	if v, ok := any(b.valueAt(pos)).(common.Hugeint); ok {
		return v
	}
	throwUnsupported(b.EncodingName(), "GetInt128")
	return common.Hugeint{}
}

// GetDecimal unpacks the 128-bit slot as a decimal at the given scale.
// Int128 blocks only.
func (b *FixedBlock[T]) GetDecimal(pos int, scale int) common.Decimal {
	h := b.GetInt128(pos)
	d, err := common.UnpackDecimal(h, scale)
	if err != nil {
		throw(InternalConsistency, "stored int128 is not a decimal at scale %d: %v", scale, err)
	}
	return d
}

func (b *FixedBlock[T]) Region(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	return &FixedBlock[T]{
		Vals: b.Vals,
		Off:  b.Off + offset,
		Cnt:  length,
		Mask: b.Mask,
	}
}

func (b *FixedBlock[T]) CopyRegion(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	vals := make([]T, length)
	copy(vals, b.Vals[b.Off+offset:b.Off+offset+length])
	mask := &util.Bitmap{}
	if b.Mask.HasInvalid(uint64(b.Off+offset), uint64(length)) {
		mask.Init(length)
		mask.CopyRange(b.Mask, 0, uint64(b.Off+offset), uint64(length))
	}
	return &FixedBlock[T]{Vals: vals, Cnt: length, Mask: mask}
}

func (b *FixedBlock[T]) Positions(positions []int) Block {
	return positionsView(b, positions)
}

func (b *FixedBlock[T]) CopyPositions(positions []int) Block {
	checkValidPositions(positions, b.Cnt)
	vals := make([]T, len(positions))
	mask := &util.Bitmap{}
	for i, p := range positions {
		vals[i] = b.valueAt(p)
		if !b.Mask.RowIsValid(uint64(b.Off + p)) {
			mask.PrepareSpace(len(positions))
			mask.SetInvalidUnsafe(uint64(i))
		}
	}
	return &FixedBlock[T]{Vals: vals, Cnt: len(positions), Mask: mask}
}

func (b *FixedBlock[T]) CopyWithAppendedNull() Block {
	vals := make([]T, b.Cnt+1)
	copy(vals, b.Vals[b.Off:b.Off+b.Cnt])
	mask := &util.Bitmap{}
	mask.Init(b.Cnt + 1)
	mask.CopyRange(b.Mask, 0, uint64(b.Off), uint64(b.Cnt))
	mask.SetInvalidUnsafe(uint64(b.Cnt))
	return &FixedBlock[T]{Vals: vals, Cnt: b.Cnt + 1, Mask: mask}
}

func (b *FixedBlock[T]) EncodingName() string {
	return fixedEncodingName[T]()
}

func (b *FixedBlock[T]) Loaded() Block {
	return b
}

// FixedBlockBuilder accumulates fixed-width values. Created with an
// expected-entry-count hint; backing arrays double on overflow, never
// shrinking below the hint.
type FixedBlockBuilder[T FixedValue] struct {
	status     *BlockBuilderStatus
	hint       int
	vals       []T
	mask       util.Bitmap
	cnt        int
	hasNonNull bool
	hasNull    bool
}

type (
	ByteBlockBuilder   = FixedBlockBuilder[uint8]
	ShortBlockBuilder  = FixedBlockBuilder[int16]
	IntBlockBuilder    = FixedBlockBuilder[int32]
	LongBlockBuilder   = FixedBlockBuilder[int64]
	Int128BlockBuilder = FixedBlockBuilder[common.Hugeint]
)

func NewFixedBlockBuilder[T FixedValue](status *BlockBuilderStatus, expectedEntries int) *FixedBlockBuilder[T] {
	if expectedEntries <= 0 {
		expectedEntries = util.DefaultExpectedEntries
	}
	return &FixedBlockBuilder[T]{
		status: status,
		hint:   expectedEntries,
		vals:   make([]T, expectedEntries),
	}
}

func NewLongBlockBuilder(status *BlockBuilderStatus, expectedEntries int) *LongBlockBuilder {
	return NewFixedBlockBuilder[int64](status, expectedEntries)
}

func NewIntBlockBuilder(status *BlockBuilderStatus, expectedEntries int) *IntBlockBuilder {
	return NewFixedBlockBuilder[int32](status, expectedEntries)
}

func NewShortBlockBuilder(status *BlockBuilderStatus, expectedEntries int) *ShortBlockBuilder {
	return NewFixedBlockBuilder[int16](status, expectedEntries)
}

func NewByteBlockBuilder(status *BlockBuilderStatus, expectedEntries int) *ByteBlockBuilder {
	return NewFixedBlockBuilder[uint8](status, expectedEntries)
}

func NewInt128BlockBuilder(status *BlockBuilderStatus, expectedEntries int) *Int128BlockBuilder {
	return NewFixedBlockBuilder[common.Hugeint](status, expectedEntries)
}

func (b *FixedBlockBuilder[T]) grow(need int) {
	if need <= len(b.vals) {
		return
	}
	newCap := calcGrownCapacity(len(b.vals), need, b.hint)
	newVals := make([]T, newCap)
	copy(newVals, b.vals[:b.cnt])
	if b.mask.IsMaskSet() {
		b.mask.Resize(len(b.vals), newCap)
	}
	b.vals = newVals
}

func (b *FixedBlockBuilder[T]) Append(v T) {
	b.grow(b.cnt + 1)
	b.vals[b.cnt] = v
	if b.mask.IsMaskSet() {
		b.mask.SetValidUnsafe(uint64(b.cnt))
	}
	b.cnt++
	b.hasNonNull = true
	b.status.AddBytes(fixedBytesPerPosition[T]())
}

// AppendDecimal packs a decimal into a 128-bit slot. Int128 builders only.
func (b *FixedBlockBuilder[T]) AppendDecimal(d common.Decimal) {
	h, err := common.PackDecimal(d)
	if err != nil {
		throw(InvalidArgument, "%v", err)
	}
	if v, ok := any(h).(T); ok {
		b.Append(v)
		return
	}
	throwUnsupported(fixedEncodingName[T](), "AppendDecimal")
}

func (b *FixedBlockBuilder[T]) AppendNull() {
	b.grow(b.cnt + 1)
	if !b.mask.IsMaskSet() {
		b.mask.Init(len(b.vals))
	}
	b.mask.SetInvalidUnsafe(uint64(b.cnt))
	b.cnt++
	b.hasNull = true
	b.status.AddBytes(fixedBytesPerPosition[T]())
}

func (b *FixedBlockBuilder[T]) AppendRange(src Block, offset, length int) {
	switch s := src.(type) {
	case *FixedBlock[T]:
		checkValidRegion(s.Cnt, offset, length)
		b.grow(b.cnt + length)
		copy(b.vals[b.cnt:], s.Vals[s.Off+offset:s.Off+offset+length])
		if s.Mask.HasInvalid(uint64(s.Off+offset), uint64(length)) {
			if !b.mask.IsMaskSet() {
				b.mask.Init(len(b.vals))
			}
			b.mask.CopyRange(s.Mask, uint64(b.cnt), uint64(s.Off+offset), uint64(length))
			b.hasNull = true
			if s.Mask.CountValid(uint64(s.Off+offset), uint64(length)) > 0 {
				b.hasNonNull = true
			}
		} else if length > 0 {
			b.hasNonNull = true
		}
		b.cnt += length
		b.status.AddBytes(length * fixedBytesPerPosition[T]())
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
		throwUnsupported(fixedEncodingName[T](), "AppendRange from "+src.EncodingName())
	}
}

func (b *FixedBlockBuilder[T]) PositionCount() int {
	return b.cnt
}

func (b *FixedBlockBuilder[T]) SizeInBytes() int64 {
	return int64(b.cnt) * int64(fixedBytesPerPosition[T]())
}

func (b *FixedBlockBuilder[T]) RetainedSizeInBytes() int64 {
	return int64(cap(b.vals))*int64(fixedBytesPerPosition[T]()) + int64(len(b.mask.Data()))
}

// Build freezes the accumulated state. The backing arrays are shared with
// the result, not copied. A builder that only ever saw nulls builds a
// run-length block around a single null instead of keeping the full
// arrays alive.
func (b *FixedBlockBuilder[T]) Build() Block {
	if b.cnt > 0 && !b.hasNonNull {
		return NewRunLengthBlock(nullFixedBlock[T](), b.cnt)
	}
	mask := &util.Bitmap{}
	if b.hasNull {
		mask.ShareWith(&b.mask)
	}
	return &FixedBlock[T]{Vals: b.vals[:b.cnt], Cnt: b.cnt, Mask: mask}
}

func nullFixedBlock[T FixedValue]() *FixedBlock[T] {
	mask := &util.Bitmap{}
	mask.Init(1)
	mask.SetInvalidUnsafe(0)
	return &FixedBlock[T]{Vals: make([]T, 1), Cnt: 1, Mask: mask}
}
