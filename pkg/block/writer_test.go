package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newRowWriter() *RowValueWriter {
	return NewRowValueWriter(NewRowBlockBuilder(nil, []BlockBuilder{
		NewLongBlockBuilder(nil, 1),
		NewVarWidthBlockBuilder(nil, 1),
	}, 1))
}

func Test_rowValueWriter(t *testing.T) {
	w := newRowWriter()
	w.WriteLong(42)
	w.WriteSlice([]byte("hello"))
	b := w.Build().(*RowBlock)

	assert.Equal(t, 1, b.PositionCount())
	assert.Equal(t, int64(42), b.Field(0).GetLong(0, 0))
	assert.Equal(t, []byte("hello"), b.Field(1).GetSlice(0, 0, 5))
}

func Test_rowValueWriterNullField(t *testing.T) {
	w := newRowWriter()
	w.WriteLong(1)
	w.WriteNull()
	b := w.Build().(*RowBlock)
	assert.True(t, b.Field(1).IsNull(0))
	assert.False(t, b.IsNull(0))
}

func Test_rowValueWriterFieldsExactlyOnce(t *testing.T) {
	w := newRowWriter()
	w.WriteLong(1)
	// second field missing
	assertThrows(t, IllegalState, func() {
		w.Build()
	})
	w.WriteSlice([]byte("x"))
	// all fields written, a third write is out of range
	assertThrows(t, IllegalState, func() {
		w.WriteLong(2)
	})
	w.Build()
}

func Test_rowValueWriterSingleUse(t *testing.T) {
	w := newRowWriter()
	w.WriteLong(1)
	w.WriteSlice([]byte("x"))
	w.Build()
	assertThrows(t, IllegalState, func() {
		w.Build()
	})
}

func Test_rowValueWriterSubBuilder(t *testing.T) {
	w := NewRowValueWriter(NewRowBlockBuilder(nil, []BlockBuilder{
		NewLongBlockBuilder(nil, 1),
		NewArrayBlockBuilder(nil, NewLongBlockBuilder(nil, 2), 1),
	}, 1))
	w.WriteLong(7)
	ab := w.FieldBuilder().(*ArrayBlockBuilder)
	// scalar writes are illegal while the sub-builder is open
	assertThrows(t, IllegalState, func() {
		w.WriteLong(8)
	})
	eb := ab.BeginEntry().(*LongBlockBuilder)
	eb.Append(10)
	eb.Append(11)
	ab.CloseEntry()
	w.CloseField()
	b := w.Build().(*RowBlock)

	arr := b.Field(1).(*ArrayBlock)
	assert.Equal(t, 2, arr.EntryLength(0))
	assert.Equal(t, int64(11), arr.Array(0).GetLong(1, 0))
}

func Test_arrayValueWriterScalars(t *testing.T) {
	w := NewArrayValueWriter(NewArrayBlockBuilder(nil, NewLongBlockBuilder(nil, 4), 1))
	w.WriteLong(1)
	w.WriteNull()
	w.WriteLong(3)
	b := w.Build().(*ArrayBlock)

	assert.Equal(t, 1, b.PositionCount())
	arr := b.Array(0)
	assert.Equal(t, int64(1), arr.GetLong(0, 0))
	assert.True(t, arr.IsNull(1))
	assert.Equal(t, int64(3), arr.GetLong(2, 0))
}

func Test_arrayValueWriterModesExclusive(t *testing.T) {
	w := NewArrayValueWriter(NewArrayBlockBuilder(nil, NewLongBlockBuilder(nil, 4), 1))
	w.WriteLong(1)
	assertThrows(t, IllegalState, func() {
		w.ElementBuilder()
	})

	w2 := NewArrayValueWriter(NewArrayBlockBuilder(nil, NewLongBlockBuilder(nil, 4), 1))
	eb := w2.ElementBuilder().(*LongBlockBuilder)
	eb.Append(5)
	assertThrows(t, IllegalState, func() {
		w2.WriteLong(6)
	})
	b := w2.Build().(*ArrayBlock)
	assert.Equal(t, int64(5), b.Array(0).GetLong(0, 0))
	assertThrows(t, IllegalState, func() {
		w2.Build()
	})
}
