package block

import (
	"github.com/GuinsooLab/witdb-sub009/pkg/common"
)

// appendScalarLong routes a 64-bit write to whatever builder kind sits
// behind the field slot.
func appendScalarLong(dst BlockBuilder, v int64) {
	switch d := dst.(type) {
	case *LongBlockBuilder:
		d.Append(v)
	case *IntBlockBuilder:
		d.Append(int32(v))
	case *ShortBlockBuilder:
		d.Append(int16(v))
	case *ByteBlockBuilder:
		d.Append(uint8(v))
	case *Int128BlockBuilder:
		d.Append(common.HugeintFromInt64(v))
	default:
		throw(InvalidArgument, "builder cannot accept a scalar long")
	}
}

func appendScalarSlice(dst BlockBuilder, v []byte) {
	d, ok := dst.(*VarWidthBlockBuilder)
	if !ok {
		throw(InvalidArgument, "builder cannot accept a byte slice")
	}
	d.Append(v)
}

// RowValueWriter writes the fields of a single row, in declaration
// order, exactly once each. A field is written either as a scalar or
// through its sub-builder, never both. Build is single-use.
type RowValueWriter struct {
	builder *RowBlockBuilder
	fields  []BlockBuilder
	next    int
	opened  bool
	built   bool
}

func NewRowValueWriter(builder *RowBlockBuilder) *RowValueWriter {
	return &RowValueWriter{
		builder: builder,
		fields:  builder.BeginEntry(),
	}
}

func (w *RowValueWriter) checkField() {
	if w.built {
		throw(IllegalState, "writer already built")
	}
	if w.opened {
		throw(IllegalState, "field sub-builder still open")
	}
	if w.next >= len(w.fields) {
		throw(IllegalState, "all %d fields already written", len(w.fields))
	}
}

func (w *RowValueWriter) WriteLong(v int64) {
	w.checkField()
	appendScalarLong(w.fields[w.next], v)
	w.next++
}

func (w *RowValueWriter) WriteSlice(v []byte) {
	w.checkField()
	appendScalarSlice(w.fields[w.next], v)
	w.next++
}

func (w *RowValueWriter) WriteNull() {
	w.checkField()
	w.fields[w.next].AppendNull()
	w.next++
}

// FieldBuilder hands out the next field's builder for nested writes.
// The caller must append exactly one position, then call CloseField.
func (w *RowValueWriter) FieldBuilder() BlockBuilder {
	w.checkField()
	w.opened = true
	return w.fields[w.next]
}

func (w *RowValueWriter) CloseField() {
	if !w.opened {
		throw(IllegalState, "no open field")
	}
	w.opened = false
	w.next++
}

func (w *RowValueWriter) Build() Block {
	if w.built {
		throw(IllegalState, "writer already built")
	}
	if w.opened {
		throw(IllegalState, "field sub-builder still open")
	}
	if w.next != len(w.fields) {
		throw(IllegalState, "row has %d fields, %d written", len(w.fields), w.next)
	}
	w.built = true
	w.builder.CloseEntry()
	return w.builder.Build()
}

// ArrayValueWriter writes the elements of a single array value either
// through sequential scalar writes or through the element sub-builder,
// never mixing the two. Build is single-use.
type ArrayValueWriter struct {
	builder *ArrayBlockBuilder
	elems   BlockBuilder
	scalars int
	opened  bool
	built   bool
}

func NewArrayValueWriter(builder *ArrayBlockBuilder) *ArrayValueWriter {
	return &ArrayValueWriter{
		builder: builder,
		elems:   builder.BeginEntry(),
	}
}

func (w *ArrayValueWriter) checkScalar() {
	if w.built {
		throw(IllegalState, "writer already built")
	}
	if w.opened {
		throw(IllegalState, "element sub-builder in use")
	}
}

func (w *ArrayValueWriter) WriteLong(v int64) {
	w.checkScalar()
	appendScalarLong(w.elems, v)
	w.scalars++
}

func (w *ArrayValueWriter) WriteSlice(v []byte) {
	w.checkScalar()
	appendScalarSlice(w.elems, v)
	w.scalars++
}

func (w *ArrayValueWriter) WriteNull() {
	w.checkScalar()
	w.elems.AppendNull()
	w.scalars++
}

// ElementBuilder exposes the elements builder directly. Once taken,
// sequential scalar writes on this writer are illegal.
func (w *ArrayValueWriter) ElementBuilder() BlockBuilder {
	if w.built {
		throw(IllegalState, "writer already built")
	}
	if w.scalars > 0 {
		throw(IllegalState, "scalar writes already started")
	}
	w.opened = true
	return w.elems
}

func (w *ArrayValueWriter) Build() Block {
	if w.built {
		throw(IllegalState, "writer already built")
	}
	w.built = true
	w.builder.CloseEntry()
	return w.builder.Build()
}
