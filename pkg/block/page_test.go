package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func Test_pageBasics(t *testing.T) {
	longs := buildLongs([]int64{1, 2, 3}, nil)
	names := buildStrings([]string{"a", "b", "c"}, nil)
	p := NewPage(longs, names)

	assert.Equal(t, 3, p.PositionCount())
	assert.Equal(t, 2, p.ColumnCount())
	assert.Same(t, longs, p.Column(0))
	assert.Equal(t, longs.SizeInBytes()+names.SizeInBytes(), p.SizeInBytes())
	assert.GreaterOrEqual(t, p.RetainedSizeInBytes(), p.SizeInBytes())

	region := p.Region(1, 2)
	assert.Equal(t, 2, region.PositionCount())
	assert.Equal(t, int64(2), region.Column(0).GetLong(0, 0))

	assertThrows(t, InvalidArgument, func() {
		NewPage(longs, buildLongs([]int64{1}, nil))
	})
}

func Test_pageCompactGroupsRelatedColumns(t *testing.T) {
	base := NewDictionaryBlock(4, fruitDict(), []int32{2, 2, 0, 1}).(*DictionaryBlock)
	left := base.Region(0, 3)  // shares base's source
	right := base.Region(1, 3) // shares base's source
	lone := NewDictionaryBlock(3, fruitDict(), []int32{1, 1, 1})
	flat := buildLongs([]int64{9, 8, 7}, nil)

	p := NewPage(left, right, lone, flat.Region(0, 3))
	compacted := p.Compact()

	cLeft := compacted.Column(0).(*DictionaryBlock)
	cRight := compacted.Column(1).(*DictionaryBlock)
	cLone := compacted.Column(2).(*DictionaryBlock)

	// related columns come out sharing one new dictionary and source
	assert.Same(t, cLeft.Dict, cRight.Dict)
	assert.Equal(t, cLeft.Source, cRight.Source)
	assert.NotEqual(t, cLeft.Source, cLone.Source)
	assert.True(t, cLone.IsCompact())
	assert.Equal(t, 1, cLone.Dict.PositionCount())

	// values survive
	assert.Equal(t, []byte("cherry"), cLeft.GetSlice(0, 0, 6))
	assert.Equal(t, []byte("banana"), cRight.GetSlice(2, 0, 6))
	assert.Equal(t, int64(9), compacted.Column(3).GetLong(0, 0))

	// original page untouched
	assert.Equal(t, base.Source, p.Column(0).(*DictionaryBlock).Source)
}

func Test_pageCompactLoadsLazyColumns(t *testing.T) {
	lazy := NewLazyBlock(2, func() Block {
		return buildLongs([]int64{5, 6}, nil)
	})
	p := NewPage(lazy, buildLongs([]int64{1, 2}, nil))
	compacted := p.Compact()
	assert.Equal(t, EncLongArray, compacted.Column(0).EncodingName())
	assert.Equal(t, int64(5), compacted.Column(0).GetLong(0, 0))
}

func Test_concurrentReadsOverSharedBlock(t *testing.T) {
	b := buildLongs([]int64{0, 1, 2, 3, 4, 5, 6, 7}, []bool{false, false, false, false, true, false, false, false})
	var group errgroup.Group
	for g := 0; g < 8; g++ {
		group.Go(func() error {
			for iter := 0; iter < 100; iter++ {
				for pos := 0; pos < 8; pos++ {
					if pos == 4 {
						if !b.IsNull(pos) {
							return assert.AnError
						}
						continue
					}
					if b.GetLong(pos, 0) != int64(pos) {
						return assert.AnError
					}
				}
			}
			return nil
		})
	}
	assert.NoError(t, group.Wait())
}

func Test_describeAndFormat(t *testing.T) {
	arrays := buildIntArrays(t)
	assert.Equal(t, "[1, 2]", FormatValue(arrays, 0))
	assert.Equal(t, "[]", FormatValue(arrays, 1))
	assert.Equal(t, "null", FormatValue(arrays, 2))

	maps := buildStringIntMaps(t)
	assert.Equal(t, `{"a": 1, "b": 2}`, FormatValue(maps, 0))

	rows := buildIdNameRows(t)
	assert.Equal(t, `(1, "x")`, FormatValue(rows, 0))

	dict := NewDictionaryBlock(2, fruitDict(), []int32{1, 0})
	assert.Equal(t, `"banana"`, FormatValue(dict, 0))

	tree := Describe(arrays)
	assert.Contains(t, tree, EncArray)
	assert.Contains(t, tree, EncLongArray)

	pageTree := DescribePage(NewPage(arrays.Region(0, 3), maps))
	assert.Contains(t, pageTree, EncArray)
	assert.Contains(t, pageTree, EncMap)
}
