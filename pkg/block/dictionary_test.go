package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fruitDict() Block {
	return buildStrings([]string{"apple", "banana", "cherry"}, nil)
}

func Test_dictionaryBasics(t *testing.T) {
	ids := []int32{2, 2, 0}
	b := NewDictionaryBlock(3, fruitDict(), ids).(*DictionaryBlock)

	assert.Equal(t, 3, b.PositionCount())
	assert.Equal(t, []byte("cherry"), b.GetSlice(0, 0, 6))
	assert.Equal(t, []byte("cherry"), b.GetSlice(1, 0, 6))
	assert.Equal(t, []byte("apple"), b.GetSlice(2, 0, 5))

	assert.Equal(t, 2, b.UniqueIds())
	assert.False(t, b.IsSequentialIds())
	assert.False(t, b.IsCompact())
}

func Test_dictionarySizeCountsValuesOnce(t *testing.T) {
	dict := fruitDict()
	b := NewDictionaryBlock(4, dict, []int32{0, 0, 0, 0}).(*DictionaryBlock)
	// one referenced value plus 4 id bytes per position
	assert.Equal(t, dict.PositionsSizeInBytes([]int{0})+4*4, b.SizeInBytes())
	assert.Less(t, b.SizeInBytes(), dict.SizeInBytes()+4*4*4)
}

func Test_dictionaryCompact(t *testing.T) {
	b := NewDictionaryBlock(3, fruitDict(), []int32{2, 2, 0}).(*DictionaryBlock)
	compacted := b.Compact()
	assert.NotSame(t, b, compacted)
	assert.True(t, compacted.IsCompact())
	assert.Equal(t, 2, compacted.Dict.PositionCount())
	for pos := 0; pos < 3; pos++ {
		assert.Equal(t,
			b.GetSlice(pos, 0, b.SliceLength(pos)),
			compacted.GetSlice(pos, 0, compacted.SliceLength(pos)))
	}
	// receiver untouched
	assert.Equal(t, 3, b.Dict.PositionCount())

	// already compact comes back as the receiver
	again := compacted.Compact()
	assert.Same(t, compacted, again)
}

func Test_dictionaryOfDictionaryUnwraps(t *testing.T) {
	inner := NewDictionaryBlock(3, fruitDict(), []int32{1, 2, 0})
	outer := NewDictionaryBlock(2, inner, []int32{2, 1}).(*DictionaryBlock)
	_, isDict := outer.Dict.(*DictionaryBlock)
	assert.False(t, isDict)
	assert.Equal(t, []byte("apple"), outer.GetSlice(0, 0, 5))
	assert.Equal(t, []byte("cherry"), outer.GetSlice(1, 0, 6))
}

func Test_dictionaryOfRleCollapses(t *testing.T) {
	rle := NewRunLengthBlock(NewLongBlock(1, []int64{9}, nil), 5)
	b := NewDictionaryBlock(3, rle, []int32{0, 4, 2})
	assert.Equal(t, EncRle, b.EncodingName())
	assert.Equal(t, 3, b.PositionCount())
	assert.Equal(t, int64(9), b.GetLong(1, 0))
}

func Test_dictionaryRegionKeepsSource(t *testing.T) {
	b := NewDictionaryBlock(4, fruitDict(), []int32{0, 1, 2, 1}).(*DictionaryBlock)
	region := b.Region(1, 2).(*DictionaryBlock)
	assert.Equal(t, b.Source, region.Source)
	assert.Equal(t, []byte("banana"), region.GetSlice(0, 0, 6))

	view := b.Positions([]int{3, 0}).(*DictionaryBlock)
	assert.Equal(t, b.Source, view.Source)
	assert.Equal(t, []byte("banana"), view.GetSlice(0, 0, 6))
	assert.Equal(t, []byte("apple"), view.GetSlice(1, 0, 5))
}

func Test_dictionaryCopyPositionsCompacts(t *testing.T) {
	b := NewDictionaryBlock(4, fruitDict(), []int32{0, 1, 2, 1}).(*DictionaryBlock)
	cpy := b.CopyPositions([]int{1, 3}).(*DictionaryBlock)
	assert.True(t, cpy.IsCompact())
	assert.Equal(t, 1, cpy.Dict.PositionCount())
	assert.NotEqual(t, b.Source, cpy.Source)
	assert.Equal(t, []byte("banana"), cpy.GetSlice(0, 0, 6))
	assert.Equal(t, []byte("banana"), cpy.GetSlice(1, 0, 6))
}

func Test_dictionaryAppendedNullReusesEntry(t *testing.T) {
	dict := buildStrings([]string{"apple", ""}, []bool{false, true})
	b := NewDictionaryBlock(2, dict, []int32{0, 1}).(*DictionaryBlock)
	grown := b.CopyWithAppendedNull().(*DictionaryBlock)
	assert.Equal(t, 3, grown.PositionCount())
	assert.True(t, grown.IsNull(2))
	// dictionary not grown, identity preserved
	assert.Equal(t, 2, grown.Dict.PositionCount())
	assert.Equal(t, b.Source, grown.Source)

	noNull := NewDictionaryBlock(2, fruitDict(), []int32{0, 1}).(*DictionaryBlock)
	grown2 := noNull.CopyWithAppendedNull().(*DictionaryBlock)
	assert.True(t, grown2.IsNull(2))
	assert.Equal(t, 4, grown2.Dict.PositionCount())
	assert.NotEqual(t, noNull.Source, grown2.Source)
}

func Test_compactRelatedBlocks(t *testing.T) {
	base := NewDictionaryBlock(4, fruitDict(), []int32{2, 2, 0, 1}).(*DictionaryBlock)
	left := base.Region(0, 3).(*DictionaryBlock)  // ids 2 2 0
	right := base.Region(1, 3).(*DictionaryBlock) // ids 2 0 1

	out := CompactRelatedBlocks([]*DictionaryBlock{left, right})
	assert.Len(t, out, 2)
	assert.Same(t, out[0].Dict, out[1].Dict)
	assert.Equal(t, out[0].Source, out[1].Source)

	// values survive the remap in every block
	assert.Equal(t, []byte("cherry"), out[0].GetSlice(0, 0, 6))
	assert.Equal(t, []byte("apple"), out[0].GetSlice(2, 0, 5))
	assert.Equal(t, []byte("cherry"), out[1].GetSlice(0, 0, 6))
	assert.Equal(t, []byte("banana"), out[1].GetSlice(2, 0, 6))

	// same source entry maps to the same new id across blocks
	assert.Equal(t, out[0].idAt(0), out[1].idAt(0))
	assert.Equal(t, out[0].idAt(2), out[1].idAt(1))
}

func Test_compactRelatedBlocksRejectsForeign(t *testing.T) {
	a := NewDictionaryBlock(2, fruitDict(), []int32{0, 1}).(*DictionaryBlock)
	b := NewDictionaryBlock(2, fruitDict(), []int32{0, 1}).(*DictionaryBlock)
	assertThrows(t, InvalidArgument, func() {
		CompactRelatedBlocks([]*DictionaryBlock{a, b})
	})
}

func Test_dictionaryBadIdIsFatal(t *testing.T) {
	b := newDictionaryBlockSameSource(2, fruitDict(), []int32{0, 7}, NewDictionaryId())
	assertThrows(t, InternalConsistency, func() {
		b.UniqueIds()
	})
}
