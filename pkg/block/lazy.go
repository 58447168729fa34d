package block

import (
	"sync"
	"sync/atomic"
)

// LazyBlock defers materialization behind a loader. The loader runs at
// most once, on the first access that needs data; after that every
// method delegates to the loaded block.
type LazyBlock struct {
	Cnt    int
	loader func() Block
	once   sync.Once
	block  atomic.Pointer[Block]
}

func NewLazyBlock(count int, loader func() Block) *LazyBlock {
	if loader == nil {
		throw(InvalidArgument, "lazy block needs a loader")
	}
	if count < 0 {
		throw(InvalidArgument, "negative position count %d", count)
	}
	return &LazyBlock{Cnt: count, loader: loader}
}

func (b *LazyBlock) load() Block {
	b.once.Do(func() {
		loaded := b.loader()
		if loaded == nil {
			throw(InternalConsistency, "lazy loader returned nil")
		}
		if loaded.PositionCount() != b.Cnt {
			throw(InternalConsistency, "lazy loader returned %d positions, declared %d",
				loaded.PositionCount(), b.Cnt)
		}
		loaded = loaded.Loaded()
		b.block.Store(&loaded)
		b.loader = nil
	})
	return *b.block.Load()
}

func (b *LazyBlock) IsLoaded() bool {
	return b.block.Load() != nil
}

func (b *LazyBlock) PositionCount() int {
	return b.Cnt
}

func (b *LazyBlock) SizeInBytes() int64 {
	return b.load().SizeInBytes()
}

func (b *LazyBlock) RegionSizeInBytes(offset, length int) int64 {
	return b.load().RegionSizeInBytes(offset, length)
}

func (b *LazyBlock) PositionsSizeInBytes(positions []int) int64 {
	return b.load().PositionsSizeInBytes(positions)
}

func (b *LazyBlock) RetainedSizeInBytes() int64 {
	if loaded := b.block.Load(); loaded != nil {
		return (*loaded).RetainedSizeInBytes()
	}
	return 0
}

func (b *LazyBlock) MayHaveNull() bool {
	return b.load().MayHaveNull()
}

func (b *LazyBlock) IsNull(pos int) bool {
	return b.load().IsNull(pos)
}

func (b *LazyBlock) GetLong(pos int, offset int) int64 {
	return b.load().GetLong(pos, offset)
}

func (b *LazyBlock) GetInt(pos int, offset int) int32 {
	return b.load().GetInt(pos, offset)
}

func (b *LazyBlock) GetShort(pos int, offset int) int16 {
	return b.load().GetShort(pos, offset)
}

func (b *LazyBlock) GetByte(pos int, offset int) byte {
	return b.load().GetByte(pos, offset)
}

func (b *LazyBlock) GetSlice(pos int, offset int, length int) []byte {
	return b.load().GetSlice(pos, offset, length)
}

func (b *LazyBlock) SliceLength(pos int) int {
	return b.load().SliceLength(pos)
}

func (b *LazyBlock) Region(offset, length int) Block {
	return b.load().Region(offset, length)
}

func (b *LazyBlock) CopyRegion(offset, length int) Block {
	return b.load().CopyRegion(offset, length)
}

func (b *LazyBlock) Positions(positions []int) Block {
	return b.load().Positions(positions)
}

func (b *LazyBlock) CopyPositions(positions []int) Block {
	return b.load().CopyPositions(positions)
}

func (b *LazyBlock) CopyWithAppendedNull() Block {
	return b.load().CopyWithAppendedNull()
}

func (b *LazyBlock) EncodingName() string {
	return b.load().EncodingName()
}

func (b *LazyBlock) Loaded() Block {
	return b.load()
}
