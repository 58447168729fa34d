package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_bitmapLazyMask(t *testing.T) {
	bm := &Bitmap{}
	assert.True(t, bm.AllValid())
	assert.True(t, bm.RowIsValid(0))
	assert.True(t, bm.RowIsValid(63))
	assert.False(t, bm.IsMaskSet())

	// first null materializes the mask
	bm.SetInvalid(5)
	assert.True(t, bm.IsMaskSet())
	assert.False(t, bm.RowIsValid(5))
	assert.True(t, bm.RowIsValid(4))

	bm.SetValid(5)
	assert.True(t, bm.RowIsValid(5))
}

func Test_bitmapResize(t *testing.T) {
	bm := &Bitmap{}
	bm.Init(8)
	bm.SetInvalid(3)

	bm.Resize(8, 100)
	assert.False(t, bm.RowIsValid(3))
	for i := uint64(8); i < 100; i++ {
		assert.True(t, bm.RowIsValid(i))
	}
}

func Test_bitmapBulkSet(t *testing.T) {
	bm := &Bitmap{}
	bm.SetAllInvalid(10)
	assert.Equal(t, 0, bm.CountValid(0, 10))
	assert.True(t, bm.HasInvalid(0, 10))

	bm.SetAllValid(10)
	assert.Equal(t, 10, bm.CountValid(0, 10))
	assert.False(t, bm.HasInvalid(0, 10))
}

func Test_bitmapCopyRange(t *testing.T) {
	src := &Bitmap{}
	src.Init(8)
	src.SetInvalid(1)
	src.SetInvalid(2)

	dst := &Bitmap{}
	dst.Init(16)
	dst.CopyRange(src, 4, 0, 8)
	assert.True(t, dst.RowIsValid(4))
	assert.False(t, dst.RowIsValid(5))
	assert.False(t, dst.RowIsValid(6))
	assert.True(t, dst.RowIsValid(7))

	assert.Equal(t, 6, src.CountValid(0, 8))
	assert.Equal(t, 0, src.CountValid(1, 2))
}
