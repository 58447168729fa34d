package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// builds [[1,2],[],null,[3]]
func buildIntArrays(t *testing.T) *ArrayBlock {
	bld := NewArrayBlockBuilder(nil, NewLongBlockBuilder(nil, 8), 4)
	eb := bld.BeginEntry().(*LongBlockBuilder)
	eb.Append(1)
	eb.Append(2)
	bld.CloseEntry()
	bld.BeginEntry()
	bld.CloseEntry()
	bld.AppendNull()
	eb = bld.BeginEntry().(*LongBlockBuilder)
	eb.Append(3)
	bld.CloseEntry()
	b := bld.Build().(*ArrayBlock)
	assert.Equal(t, 4, b.PositionCount())
	return b
}

func Test_arrayBasics(t *testing.T) {
	b := buildIntArrays(t)

	assert.Equal(t, 2, b.EntryLength(0))
	assert.Equal(t, 0, b.EntryLength(1))
	assert.True(t, b.IsNull(2))
	assert.Equal(t, 1, b.EntryLength(3))

	first := b.Array(0)
	assert.Equal(t, int64(1), first.GetLong(0, 0))
	assert.Equal(t, int64(2), first.GetLong(1, 0))
	assert.Equal(t, int64(3), b.Array(3).GetLong(0, 0))

	assertThrows(t, UnsupportedOperation, func() {
		b.GetLong(0, 0)
	})
}

func Test_arrayRegionAndCopies(t *testing.T) {
	b := buildIntArrays(t)

	region := b.Region(1, 3).(*ArrayBlock)
	assert.Equal(t, 3, region.PositionCount())
	assert.Equal(t, 0, region.EntryLength(0))
	assert.True(t, region.IsNull(1))
	assert.Equal(t, int64(3), region.Array(2).GetLong(0, 0))

	cpy := b.CopyRegion(1, 3).(*ArrayBlock)
	assert.Equal(t, int32(0), cpy.Offsets[0])
	assert.Equal(t, int64(3), cpy.Array(2).GetLong(0, 0))

	picked := b.CopyPositions([]int{3, 0}).(*ArrayBlock)
	assert.Equal(t, 2, picked.PositionCount())
	assert.Equal(t, int64(3), picked.Array(0).GetLong(0, 0))
	assert.Equal(t, int64(1), picked.Array(1).GetLong(0, 0))
	assert.Equal(t, int64(2), picked.Array(1).GetLong(1, 0))

	grown := b.CopyWithAppendedNull().(*ArrayBlock)
	assert.Equal(t, 5, grown.PositionCount())
	assert.True(t, grown.IsNull(4))
	assert.Equal(t, 2, grown.EntryLength(0))
}

func Test_arrayEntryStateMachine(t *testing.T) {
	bld := NewArrayBlockBuilder(nil, NewLongBlockBuilder(nil, 4), 4)
	bld.BeginEntry()
	assertThrows(t, IllegalState, func() {
		bld.BeginEntry()
	})
	assertThrows(t, IllegalState, func() {
		bld.AppendNull()
	})
	assertThrows(t, IllegalState, func() {
		bld.Build()
	})
	bld.CloseEntry()
	assertThrows(t, IllegalState, func() {
		bld.CloseEntry()
	})
}

func Test_arrayAppendRange(t *testing.T) {
	src := buildIntArrays(t)
	bld := NewArrayBlockBuilder(nil, NewLongBlockBuilder(nil, 8), 4)
	bld.AppendRange(src, 0, 4)
	b := bld.Build().(*ArrayBlock)
	assert.Equal(t, 4, b.PositionCount())
	assert.Equal(t, int64(2), b.Array(0).GetLong(1, 0))
	assert.True(t, b.IsNull(2))
	assert.Equal(t, int64(3), b.Array(3).GetLong(0, 0))
}

func Test_arraySizeMonotonic(t *testing.T) {
	b := buildIntArrays(t)
	assert.GreaterOrEqual(t, b.RetainedSizeInBytes(), b.SizeInBytes())
	assert.LessOrEqual(t, b.RegionSizeInBytes(0, 2), b.SizeInBytes())
}
