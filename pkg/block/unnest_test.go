package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_unnestArray(t *testing.T) {
	src := buildIntArrays(t) // [[1,2],[],null,[3]]
	dst := NewLongBlockBuilder(nil, 8)

	UnnestArray(src, 0, 3, dst)
	b := dst.Build()
	assert.Equal(t, 3, b.PositionCount())
	assert.Equal(t, int64(1), b.GetLong(0, 0))
	assert.Equal(t, int64(2), b.GetLong(1, 0))
	assert.True(t, b.IsNull(2))
}

func Test_unnestArrayNullAndEmpty(t *testing.T) {
	src := buildIntArrays(t)

	empty := NewLongBlockBuilder(nil, 4)
	UnnestArray(src, 1, 2, empty)
	b := empty.Build()
	assert.Equal(t, 2, b.PositionCount())
	assert.True(t, b.IsNull(0))
	assert.True(t, b.IsNull(1))

	nulled := NewLongBlockBuilder(nil, 4)
	UnnestArray(src, 2, 2, nulled)
	b = nulled.Build()
	assert.Equal(t, 2, b.PositionCount())
	assert.True(t, b.IsNull(0))

	assertThrows(t, InvalidArgument, func() {
		UnnestArray(src, 0, 1, NewLongBlockBuilder(nil, 4))
	})
}

func Test_unnestMap(t *testing.T) {
	src := buildStringIntMaps(t) // {"a":1,"b":2}, null, {"c":3}
	keyDst := NewVarWidthBlockBuilder(nil, 8)
	valDst := NewLongBlockBuilder(nil, 8)

	UnnestMap(src, 0, 3, keyDst, valDst)
	keys := keyDst.Build()
	vals := valDst.Build()
	assert.Equal(t, 3, keys.PositionCount())
	assert.Equal(t, 3, vals.PositionCount())
	assert.Equal(t, []byte("a"), keys.GetSlice(0, 0, 1))
	assert.Equal(t, int64(2), vals.GetLong(1, 0))
	assert.True(t, keys.IsNull(2))
	assert.True(t, vals.IsNull(2))
}
