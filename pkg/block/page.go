package block

import (
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
	"github.com/tidwall/btree"
	"go.uber.org/zap"
)

// Page is a horizontal slice of columns with one shared position count.
type Page struct {
	blocks []Block
	count  int
}

func NewPage(blocks ...Block) *Page {
	if len(blocks) == 0 {
		throw(InvalidArgument, "page needs at least one column")
	}
	count := blocks[0].PositionCount()
	for i, b := range blocks {
		if b.PositionCount() != count {
			throw(InvalidArgument, "column %d has %d positions, column 0 has %d",
				i, b.PositionCount(), count)
		}
	}
	return &Page{blocks: blocks, count: count}
}

func (p *Page) PositionCount() int {
	return p.count
}

func (p *Page) ColumnCount() int {
	return len(p.blocks)
}

func (p *Page) Column(i int) Block {
	if i < 0 || i >= len(p.blocks) {
		throw(InvalidArgument, "column %d out of range, page has %d", i, len(p.blocks))
	}
	return p.blocks[i]
}

func (p *Page) Columns() []Block {
	return p.blocks
}

func (p *Page) Region(offset, length int) *Page {
	checkValidRegion(p.count, offset, length)
	blocks := make([]Block, len(p.blocks))
	for i, b := range p.blocks {
		blocks[i] = b.Region(offset, length)
	}
	return &Page{blocks: blocks, count: length}
}

func (p *Page) SizeInBytes() int64 {
	var sz int64
	for _, b := range p.blocks {
		sz += b.SizeInBytes()
	}
	return sz
}

func (p *Page) RetainedSizeInBytes() int64 {
	var sz int64
	for _, b := range p.blocks {
		sz += b.RetainedSizeInBytes()
	}
	return sz
}

type dictColumnGroup struct {
	id   DictionaryId
	cols []int
}

// Compact rewrites every column into its compact form. Dictionary
// columns sharing a source are grouped and remapped in lockstep so
// their id spaces stay mutually consistent; lazy columns are loaded.
func (p *Page) Compact() *Page {
	blocks := make([]Block, len(p.blocks))
	copy(blocks, p.blocks)

	groups := btree.NewBTreeG[dictColumnGroup](func(a, b dictColumnGroup) bool {
		return a.id.Less(b.id)
	})
	for i, b := range blocks {
		if lazy, ok := b.(*LazyBlock); ok {
			b = lazy.Loaded()
			blocks[i] = b
		}
		if dict, ok := b.(*DictionaryBlock); ok {
			g, found := groups.Get(dictColumnGroup{id: dict.Source})
			if !found {
				g = dictColumnGroup{id: dict.Source}
			}
			g.cols = append(g.cols, i)
			groups.Set(g)
		}
	}

	groups.Scan(func(g dictColumnGroup) bool {
		if len(g.cols) == 1 {
			blocks[g.cols[0]] = blocks[g.cols[0]].(*DictionaryBlock).Compact()
			return true
		}
		related := make([]*DictionaryBlock, len(g.cols))
		for i, c := range g.cols {
			related[i] = blocks[c].(*DictionaryBlock)
		}
		for i, compacted := range CompactRelatedBlocks(related) {
			blocks[g.cols[i]] = compacted
		}
		return true
	})

	return &Page{blocks: blocks, count: p.count}
}

// Print2 logs a structured summary of the page, column by column.
func (p *Page) Print2(prefix string) {
	util.Debug(prefix,
		zap.Int("columns", len(p.blocks)),
		zap.Int("positions", p.count),
		zap.Int64("sizeInBytes", p.SizeInBytes()),
	)
	for i, b := range p.blocks {
		util.Debug(prefix,
			zap.Int("column", i),
			zap.String("encoding", b.EncodingName()),
			zap.Int64("sizeInBytes", b.SizeInBytes()),
			zap.Int64("retained", b.RetainedSizeInBytes()),
		)
	}
}
