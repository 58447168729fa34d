package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// builds rows (1, "x"), null, (3, "z")
func buildIdNameRows(t *testing.T) *RowBlock {
	bld := NewRowBlockBuilder(nil, []BlockBuilder{
		NewLongBlockBuilder(nil, 4),
		NewVarWidthBlockBuilder(nil, 4),
	}, 4)
	fields := bld.BeginEntry()
	fields[0].(*LongBlockBuilder).Append(1)
	fields[1].(*VarWidthBlockBuilder).AppendString("x")
	bld.CloseEntry()
	bld.AppendNull()
	fields = bld.BeginEntry()
	fields[0].(*LongBlockBuilder).Append(3)
	fields[1].(*VarWidthBlockBuilder).AppendString("z")
	bld.CloseEntry()
	b := bld.Build().(*RowBlock)
	assert.Equal(t, 3, b.PositionCount())
	return b
}

func Test_rowBasics(t *testing.T) {
	b := buildIdNameRows(t)

	assert.Equal(t, 2, b.FieldCount())
	assert.True(t, b.IsNull(1))

	// every field stays aligned to the parent positions
	ids := b.Field(0)
	names := b.Field(1)
	assert.Equal(t, 3, ids.PositionCount())
	assert.Equal(t, 3, names.PositionCount())
	assert.Equal(t, int64(1), ids.GetLong(0, 0))
	assert.Equal(t, int64(3), ids.GetLong(2, 0))
	assert.Equal(t, []byte("z"), names.GetSlice(2, 0, 1))
}

func Test_rowFieldCountEnforced(t *testing.T) {
	bld := NewRowBlockBuilder(nil, []BlockBuilder{
		NewLongBlockBuilder(nil, 4),
		NewVarWidthBlockBuilder(nil, 4),
	}, 4)
	fields := bld.BeginEntry()
	fields[0].(*LongBlockBuilder).Append(1)
	// second field never written
	assertThrows(t, IllegalState, func() {
		bld.CloseEntry()
	})
}

func Test_rowCopies(t *testing.T) {
	b := buildIdNameRows(t)

	region := b.Region(1, 2).(*RowBlock)
	assert.True(t, region.IsNull(0))
	assert.Equal(t, int64(3), region.Field(0).GetLong(1, 0))

	picked := b.CopyPositions([]int{2, 1, 0}).(*RowBlock)
	assert.Equal(t, int64(3), picked.Field(0).GetLong(0, 0))
	assert.True(t, picked.IsNull(1))
	assert.Equal(t, []byte("x"), picked.Field(1).GetSlice(2, 0, 1))

	grown := b.CopyWithAppendedNull().(*RowBlock)
	assert.Equal(t, 4, grown.PositionCount())
	assert.True(t, grown.IsNull(3))
	assert.Equal(t, int64(1), grown.Field(0).GetLong(0, 0))
}

func Test_rowAppendRange(t *testing.T) {
	src := buildIdNameRows(t)
	bld := NewRowBlockBuilder(nil, []BlockBuilder{
		NewLongBlockBuilder(nil, 4),
		NewVarWidthBlockBuilder(nil, 4),
	}, 4)
	bld.AppendRange(src, 0, 3)
	b := bld.Build().(*RowBlock)
	assert.Equal(t, 3, b.PositionCount())
	assert.True(t, b.IsNull(1))
	assert.Equal(t, int64(3), b.Field(0).GetLong(2, 0))
}
