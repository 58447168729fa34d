package block

import (
	"math/rand"
	"sync/atomic"

	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// DictionaryId identifies one shared dictionary across every block that
// references it. It is an explicit value, not instance identity, so it
// stays meaningful across serialization boundaries.
type DictionaryId struct {
	Node uint64
	Seq  uint64
}

var dictNode = rand.Uint64()
var dictSeq atomic.Uint64

func NewDictionaryId() DictionaryId {
	return DictionaryId{Node: dictNode, Seq: dictSeq.Add(1)}
}

func (id DictionaryId) Less(o DictionaryId) bool {
	if id.Node != o.Node {
		return id.Node < o.Node
	}
	return id.Seq < o.Seq
}

type dictMemo struct {
	unique     int
	sequential bool
}

// DictionaryBlock represents positions as indices into a shared
// dictionary block. The dictionary is never itself a DictionaryBlock;
// construction unwraps one level by composing ids.
type DictionaryBlock struct {
	Dict   Block
	Ids    []int32
	IdsOff int
	Cnt    int
	Source DictionaryId

	memo atomic.Pointer[dictMemo]
}

// NewDictionaryBlock builds a dictionary view over dictionary with the
// given ids. A dictionary that is itself run-length encoded collapses to
// a run-length block; a dictionary that is itself dictionary encoded is
// unwrapped by id composition.
func NewDictionaryBlock(count int, dictionary Block, ids []int32) Block {
	if count < 0 || count > len(ids) {
		throw(InvalidArgument, "count %d does not fit %d ids", count, len(ids))
	}
	if rle, ok := dictionary.(*RunLengthBlock); ok {
		return NewRunLengthBlock(rle.Val, count)
	}
	if d, ok := dictionary.(*DictionaryBlock); ok {
		composed := make([]int32, count)
		for i := 0; i < count; i++ {
			composed[i] = d.idAt(int(ids[i]))
		}
		dictionary = d.Dict
		ids = composed
	}
	return &DictionaryBlock{
		Dict:   dictionary,
		Ids:    ids,
		Cnt:    count,
		Source: NewDictionaryId(),
	}
}

// NewDictionaryBlockWithSource rebuilds a dictionary block around an
// already-issued identity token. Used when a block comes off the wire:
// the token survives serialization so related blocks stay related.
func NewDictionaryBlockWithSource(count int, dictionary Block, ids []int32, source DictionaryId) Block {
	if count < 0 || count > len(ids) {
		throw(InvalidArgument, "count %d does not fit %d ids", count, len(ids))
	}
	if _, ok := dictionary.(*DictionaryBlock); ok {
		throw(InvalidArgument, "dictionary must not itself be dictionary encoded")
	}
	if rle, ok := dictionary.(*RunLengthBlock); ok {
		return NewRunLengthBlock(rle.Val, count)
	}
	return newDictionaryBlockSameSource(count, dictionary, ids, source)
}

func newDictionaryBlockSameSource(count int, dictionary Block, ids []int32, source DictionaryId) *DictionaryBlock {
	return &DictionaryBlock{
		Dict:   dictionary,
		Ids:    ids,
		Cnt:    count,
		Source: source,
	}
}

func (b *DictionaryBlock) idAt(pos int) int32 {
	return b.Ids[b.IdsOff+pos]
}

// checkedIdAt is used on remap paths: an id outside the dictionary there
// is a build-time invariant violation, not a data error.
func (b *DictionaryBlock) checkedIdAt(pos int) int32 {
	id := b.idAt(pos)
	if id < 0 || int(id) >= b.Dict.PositionCount() {
		throw(InternalConsistency,
			"id %d at position %d outside dictionary with %d entries",
			id, pos, b.Dict.PositionCount())
	}
	return id
}

func (b *DictionaryBlock) info() dictMemo {
	if p := b.memo.Load(); p != nil {
		return *p
	}
	// One scan computes unique-id count and sequentiality together. The
	// computation is idempotent; concurrent readers publish equal values.
	seen := make([]bool, b.Dict.PositionCount())
	m := dictMemo{sequential: true}
	prev := int32(-1)
	for i := 0; i < b.Cnt; i++ {
		id := b.checkedIdAt(i)
		if !seen[id] {
			seen[id] = true
			m.unique++
		}
		if id <= prev {
			m.sequential = false
		}
		prev = id
	}
	b.memo.Store(&m)
	return m
}

func (b *DictionaryBlock) UniqueIds() int {
	return b.info().unique
}

func (b *DictionaryBlock) IsSequentialIds() bool {
	return b.info().sequential
}

// IsCompact reports whether every dictionary entry is referenced by at
// least one id. Compaction is an optimization, not a correctness
// requirement.
func (b *DictionaryBlock) IsCompact() bool {
	return b.UniqueIds() == b.Dict.PositionCount()
}

func (b *DictionaryBlock) PositionCount() int {
	return b.Cnt
}

func (b *DictionaryBlock) usedPositions(offset, length int) []int {
	seen := make([]bool, b.Dict.PositionCount())
	used := make([]int, 0, length)
	for i := offset; i < offset+length; i++ {
		id := b.checkedIdAt(i)
		if !seen[id] {
			seen[id] = true
			used = append(used, int(id))
		}
	}
	return used
}

func (b *DictionaryBlock) SizeInBytes() int64 {
	return b.RegionSizeInBytes(0, b.Cnt)
}

func (b *DictionaryBlock) RegionSizeInBytes(offset, length int) int64 {
	checkValidRegion(b.Cnt, offset, length)
	return b.Dict.PositionsSizeInBytes(b.usedPositions(offset, length)) + int64(length)*4
}

func (b *DictionaryBlock) PositionsSizeInBytes(positions []int) int64 {
	checkValidPositions(positions, b.Cnt)
	seen := make([]bool, b.Dict.PositionCount())
	used := make([]int, 0, len(positions))
	for _, p := range positions {
		id := b.checkedIdAt(p)
		if !seen[id] {
			seen[id] = true
			used = append(used, int(id))
		}
	}
	return b.Dict.PositionsSizeInBytes(used) + int64(len(positions))*4
}

func (b *DictionaryBlock) RetainedSizeInBytes() int64 {
	return b.Dict.RetainedSizeInBytes() + int64(cap(b.Ids))*4
}

func (b *DictionaryBlock) MayHaveNull() bool {
	return b.Dict.MayHaveNull()
}

func (b *DictionaryBlock) IsNull(pos int) bool {
	checkReadablePosition(b, pos)
	return b.Dict.IsNull(int(b.idAt(pos)))
}

func (b *DictionaryBlock) GetLong(pos int, offset int) int64 {
	checkReadablePosition(b, pos)
	return b.Dict.GetLong(int(b.idAt(pos)), offset)
}

func (b *DictionaryBlock) GetInt(pos int, offset int) int32 {
	checkReadablePosition(b, pos)
	return b.Dict.GetInt(int(b.idAt(pos)), offset)
}

func (b *DictionaryBlock) GetShort(pos int, offset int) int16 {
	checkReadablePosition(b, pos)
	return b.Dict.GetShort(int(b.idAt(pos)), offset)
}

func (b *DictionaryBlock) GetByte(pos int, offset int) byte {
	checkReadablePosition(b, pos)
	return b.Dict.GetByte(int(b.idAt(pos)), offset)
}

func (b *DictionaryBlock) GetSlice(pos int, offset int, length int) []byte {
	checkReadablePosition(b, pos)
	return b.Dict.GetSlice(int(b.idAt(pos)), offset, length)
}

func (b *DictionaryBlock) SliceLength(pos int) int {
	checkReadablePosition(b, pos)
	return b.Dict.SliceLength(int(b.idAt(pos)))
}

func (b *DictionaryBlock) Region(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	return &DictionaryBlock{
		Dict:   b.Dict,
		Ids:    b.Ids,
		IdsOff: b.IdsOff + offset,
		Cnt:    length,
		Source: b.Source,
	}
}

func (b *DictionaryBlock) CopyRegion(offset, length int) Block {
	checkValidRegion(b.Cnt, offset, length)
	positions := make([]int, length)
	for i := range positions {
		positions[i] = offset + i
	}
	return b.CopyPositions(positions)
}

func (b *DictionaryBlock) Positions(positions []int) Block {
	checkValidPositions(positions, b.Cnt)
	composed := make([]int32, len(positions))
	for i, p := range positions {
		composed[i] = b.idAt(p)
	}
	return newDictionaryBlockSameSource(len(composed), b.Dict, composed, b.Source)
}

// CopyPositions gathers positions into a compact dictionary copy with no
// aliasing to the source.
func (b *DictionaryBlock) CopyPositions(positions []int) Block {
	checkValidPositions(positions, b.Cnt)
	remap := make([]int32, b.Dict.PositionCount())
	util.Fill(remap, len(remap), -1)
	used := make([]int, 0, len(positions))
	newIds := make([]int32, len(positions))
	for i, p := range positions {
		id := b.checkedIdAt(p)
		if remap[id] < 0 {
			remap[id] = int32(len(used))
			used = append(used, int(id))
		}
		newIds[i] = remap[id]
	}
	newDict := b.Dict.CopyPositions(used)
	return newDictionaryBlockSameSource(len(newIds), newDict, newIds, NewDictionaryId())
}

func (b *DictionaryBlock) CopyWithAppendedNull() Block {
	newIds := make([]int32, b.Cnt+1)
	copy(newIds, b.Ids[b.IdsOff:b.IdsOff+b.Cnt])
	// reuse an existing null entry instead of growing the dictionary
	for i := 0; i < b.Dict.PositionCount(); i++ {
		if b.Dict.IsNull(i) {
			newIds[b.Cnt] = int32(i)
			return newDictionaryBlockSameSource(b.Cnt+1, b.Dict, newIds, b.Source)
		}
	}
	newDict := b.Dict.CopyWithAppendedNull()
	newIds[b.Cnt] = int32(b.Dict.PositionCount())
	return newDictionaryBlockSameSource(b.Cnt+1, newDict, newIds, NewDictionaryId())
}

// Compact rewrites the block so every retained dictionary entry is
// referenced. Already-compact blocks are returned unchanged; the receiver
// is never mutated.
func (b *DictionaryBlock) Compact() *DictionaryBlock {
	if b.IsCompact() {
		return b
	}
	positions := make([]int, b.Cnt)
	for i := range positions {
		positions[i] = i
	}
	return b.CopyPositions(positions).(*DictionaryBlock)
}

func (b *DictionaryBlock) EncodingName() string {
	return EncDictionary
}

func (b *DictionaryBlock) Loaded() Block {
	return b
}

// CompactRelatedBlocks re-keys a set of blocks sharing one dictionary in
// a single pass, so post-compaction ids stay mutually consistent: ids
// referring to the same source entry map to the same new slot in every
// output. The remap order is driven by the first block's forward scan.
func CompactRelatedBlocks(blocks []*DictionaryBlock) []*DictionaryBlock {
	if len(blocks) == 0 {
		return nil
	}
	source := blocks[0].Source
	for _, blk := range blocks[1:] {
		if blk.Source != source {
			throw(InvalidArgument, "blocks do not share one dictionary source")
		}
	}
	dict := blocks[0].Dict
	remap := make([]int32, dict.PositionCount())
	util.Fill(remap, len(remap), -1)
	used := make([]int, 0, dict.PositionCount())
	for _, blk := range blocks {
		for i := 0; i < blk.Cnt; i++ {
			id := blk.checkedIdAt(i)
			if remap[id] < 0 {
				remap[id] = int32(len(used))
				used = append(used, int(id))
			}
		}
	}
	newDict := dict.CopyPositions(used)
	newSource := NewDictionaryId()
	out := make([]*DictionaryBlock, len(blocks))
	for bi, blk := range blocks {
		newIds := make([]int32, blk.Cnt)
		for i := 0; i < blk.Cnt; i++ {
			newIds[i] = remap[blk.idAt(i)]
		}
		out[bi] = newDictionaryBlockSameSource(blk.Cnt, newDict, newIds, newSource)
	}
	return out
}
