// Copyright 2023-2024 GuinsooLab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package block

import (
	"testing"

	dec "github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/GuinsooLab/witdb-sub009/pkg/common"
)

func assertThrows(t *testing.T, kind ErrKind, fn func()) {
	t.Helper()
	defer func() {
		v := recover()
		if !assert.NotNil(t, v) {
			return
		}
		berr, ok := v.(*Error)
		if assert.True(t, ok, "panic value %v is not *Error", v) {
			assert.Equal(t, kind, berr.Kind, berr.Msg)
		}
	}()
	fn()
}

func buildLongs(vals []int64, nulls []bool) Block {
	bld := NewLongBlockBuilder(nil, len(vals))
	for i, v := range vals {
		if nulls != nil && nulls[i] {
			bld.AppendNull()
		} else {
			bld.Append(v)
		}
	}
	return bld.Build()
}

func Test_longBlockBasics(t *testing.T) {
	b := buildLongs([]int64{1, 0, 3}, []bool{false, true, false})

	assert.Equal(t, 3, b.PositionCount())
	assert.True(t, b.MayHaveNull())
	assert.False(t, b.IsNull(0))
	assert.True(t, b.IsNull(1))
	assert.False(t, b.IsNull(2))
	assert.Equal(t, int64(1), b.GetLong(0, 0))
	assert.Equal(t, int64(3), b.GetLong(2, 0))

	// 8 value bytes + 1 null byte per position
	assert.Equal(t, int64(3*9), b.SizeInBytes())
	assert.GreaterOrEqual(t, b.RetainedSizeInBytes(), b.SizeInBytes())
	assert.Equal(t, EncLongArray, b.EncodingName())
	assert.Same(t, b, b.Loaded())
}

func Test_longBlockOffsetContract(t *testing.T) {
	b := NewLongBlock(1, []int64{42}, nil)
	assertThrows(t, InvalidArgument, func() {
		b.GetLong(0, 4)
	})
	assertThrows(t, InvalidArgument, func() {
		b.GetLong(1, 0)
	})
	assertThrows(t, UnsupportedOperation, func() {
		b.GetSlice(0, 0, 8)
	})
}

func Test_regionSharesCopyDoesNot(t *testing.T) {
	vals := []int64{10, 20, 30, 40, 50}
	src := NewLongBlock(5, vals, nil)

	region := src.Region(1, 3)
	assert.Equal(t, 3, region.PositionCount())
	assert.Equal(t, int64(20), region.GetLong(0, 0))
	assert.Equal(t, int64(40), region.GetLong(2, 0))

	cpy := src.CopyRegion(1, 3)
	assert.Equal(t, int64(20), cpy.GetLong(0, 0))

	// mutating the original storage must show through the view only
	vals[1] = 99
	assert.Equal(t, int64(99), region.GetLong(0, 0))
	assert.Equal(t, int64(20), cpy.GetLong(0, 0))
}

func Test_regionOfRegionComposes(t *testing.T) {
	src := NewLongBlock(8, []int64{0, 1, 2, 3, 4, 5, 6, 7}, nil)
	inner := src.Region(2, 5).Region(1, 3)
	assert.Equal(t, 3, inner.PositionCount())
	for i := 0; i < 3; i++ {
		assert.Equal(t, int64(3+i), inner.GetLong(i, 0))
	}
	assertThrows(t, InvalidArgument, func() {
		src.Region(5, 4)
	})
}

func Test_copyPositions(t *testing.T) {
	b := buildLongs([]int64{1, 0, 3, 4}, []bool{false, true, false, false})
	cpy := b.CopyPositions([]int{3, 1, 0})
	assert.Equal(t, 3, cpy.PositionCount())
	assert.Equal(t, int64(4), cpy.GetLong(0, 0))
	assert.True(t, cpy.IsNull(1))
	assert.Equal(t, int64(1), cpy.GetLong(2, 0))

	view := b.Positions([]int{3, 1, 0})
	assert.Equal(t, 3, view.PositionCount())
	assert.Equal(t, int64(4), view.GetLong(0, 0))
	assert.True(t, view.IsNull(1))

	assertThrows(t, InvalidArgument, func() {
		b.CopyPositions([]int{4})
	})
}

func Test_copyWithAppendedNull(t *testing.T) {
	b := buildLongs([]int64{7, 8}, nil)
	grown := b.CopyWithAppendedNull()
	assert.Equal(t, 3, grown.PositionCount())
	assert.Equal(t, int64(7), grown.GetLong(0, 0))
	assert.Equal(t, int64(8), grown.GetLong(1, 0))
	assert.True(t, grown.IsNull(2))
	// source untouched
	assert.Equal(t, 2, b.PositionCount())
	assert.False(t, b.MayHaveNull())
}

func Test_builderGrowth(t *testing.T) {
	bld := NewLongBlockBuilder(nil, 4)
	for i := 0; i < 100; i++ {
		bld.Append(int64(i))
	}
	b := bld.Build()
	assert.Equal(t, 100, b.PositionCount())
	for i := 0; i < 100; i++ {
		assert.Equal(t, int64(i), b.GetLong(i, 0))
	}
}

func Test_allNullBuilderBuildsRle(t *testing.T) {
	bld := NewShortBlockBuilder(nil, 16)
	for i := 0; i < 10; i++ {
		bld.AppendNull()
	}
	b := bld.Build()
	assert.Equal(t, 10, b.PositionCount())
	assert.Equal(t, EncRle, b.EncodingName())
	for i := 0; i < 10; i++ {
		assert.True(t, b.IsNull(i))
	}
	// far cheaper than ten materialized positions
	assert.Equal(t, b.SizeInBytes(), NewShortBlock(1, []int16{0}, nil).SizeInBytes())
}

func Test_builderAppendRange(t *testing.T) {
	src := buildLongs([]int64{1, 0, 3, 4, 5}, []bool{false, true, false, false, false})
	bld := NewLongBlockBuilder(nil, 8)
	bld.AppendRange(src, 1, 3)
	b := bld.Build()
	assert.Equal(t, 3, b.PositionCount())
	assert.True(t, b.IsNull(0))
	assert.Equal(t, int64(3), b.GetLong(1, 0))
	assert.Equal(t, int64(4), b.GetLong(2, 0))
}

func Test_builderMixedRangeKeepsValues(t *testing.T) {
	// a single bulk append carrying both nulls and values must not
	// collapse to the all-null run on build
	src := buildLongs([]int64{1, 0, 3}, []bool{false, true, false})
	bld := NewLongBlockBuilder(nil, 4)
	bld.AppendRange(src, 0, 3)
	b := bld.Build()
	assert.Equal(t, EncLongArray, b.EncodingName())
	assert.Equal(t, int64(1), b.GetLong(0, 0))
	assert.True(t, b.IsNull(1))
	assert.Equal(t, int64(3), b.GetLong(2, 0))
}

func Test_retainedCoversLogicalSize(t *testing.T) {
	// exactly-sized blocks are the tight case: no slack to hide behind
	blocks := []Block{
		buildLongs([]int64{1, 0, 3}, []bool{false, true, false}),
		buildLongs([]int64{1, 2, 3}, nil),
		NewLongBlock(3, []int64{1, 2, 3}, nil),
		buildStrings([]string{"apple", "", "cherry"}, []bool{false, true, false}),
		NewDictionaryBlock(3, fruitDict(), []int32{2, 2, 0}),
		NewRunLengthBlock(NewLongBlock(1, []int64{7}, nil), 100),
		buildIntArrays(t),
		buildStringIntMaps(t),
		buildIdNameRows(t),
	}
	for _, b := range blocks {
		assert.GreaterOrEqual(t, b.RetainedSizeInBytes(), b.SizeInBytes(),
			"encoding %s", b.EncodingName())
	}

	bld := NewLongBlockBuilder(nil, 4)
	bld.Append(1)
	bld.AppendNull()
	assert.GreaterOrEqual(t, bld.RetainedSizeInBytes(), bld.SizeInBytes())
}

func Test_pageBuilderStatusAccounting(t *testing.T) {
	page := NewPageBuilderStatus(100)
	st := NewBlockBuilderStatus(page)
	bld := NewLongBlockBuilder(st, 4)
	assert.False(t, page.IsFull())
	for i := 0; i < 12; i++ {
		bld.Append(int64(i))
	}
	// 12 positions at 9 bytes each crossed the 100 byte budget
	assert.Equal(t, int64(108), st.SizeInBytes())
	assert.True(t, page.IsFull())
}

func Test_int128Decimal(t *testing.T) {
	bld := NewInt128BlockBuilder(nil, 4)
	d := common.Decimal{Decimal: dec.MustNew(12345, 2)}
	bld.AppendDecimal(d)
	bld.AppendNull()
	b := bld.Build().(*Int128Block)

	assert.Equal(t, 2, b.PositionCount())
	got := b.GetDecimal(0, 2)
	assert.True(t, d.Equal(&got))
	assert.True(t, b.IsNull(1))

	h := b.GetInt128(0)
	assert.Equal(t, b.GetLong(0, 0), h.Upper)
	assert.Equal(t, b.GetLong(0, 8), int64(h.Lower))
	assertThrows(t, InvalidArgument, func() {
		b.GetLong(0, 4)
	})
}
