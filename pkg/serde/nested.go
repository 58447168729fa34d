package serde

import (
	"github.com/GuinsooLab/witdb-sub009/pkg/block"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

type arrayEncoding struct{}

func (arrayEncoding) Name() string {
	return block.EncArray
}

func (arrayEncoding) WriteBlock(r *Registry, serial util.Serialize, b block.Block) error {
	ab := b.(*block.ArrayBlock)
	err := util.Write[uint32](uint32(ab.Cnt), serial)
	if err != nil {
		return err
	}
	err = writeNulls(serial, ab)
	if err != nil {
		return err
	}
	base := ab.Offsets[ab.Off]
	offsets := make([]int32, ab.Cnt+1)
	for i := range offsets {
		offsets[i] = ab.Offsets[ab.Off+i] - base
	}
	err = writeOffsets(serial, offsets)
	if err != nil {
		return err
	}
	total := int(ab.Offsets[ab.Off+ab.Cnt] - base)
	return r.WriteBlock(serial, ab.Elems.Region(int(base), total))
}

func (arrayEncoding) ReadBlock(r *Registry, deserial util.Deserialize) (block.Block, error) {
	var cnt uint32
	err := util.Read[uint32](&cnt, deserial)
	if err != nil {
		return nil, err
	}
	mask, err := readNulls(deserial, int(cnt))
	if err != nil {
		return nil, err
	}
	offsets, err := readOffsets(deserial, int(cnt)+1)
	if err != nil {
		return nil, err
	}
	elems, err := r.ReadBlock(deserial)
	if err != nil {
		return nil, err
	}
	return block.NewArrayBlock(int(cnt), elems, offsets, mask), nil
}

type mapEncoding struct{}

func (mapEncoding) Name() string {
	return block.EncMap
}

func (mapEncoding) WriteBlock(r *Registry, serial util.Serialize, b block.Block) error {
	mb := b.(*block.MapBlock)
	err := util.Write[uint32](uint32(mb.Cnt), serial)
	if err != nil {
		return err
	}
	err = writeNulls(serial, mb)
	if err != nil {
		return err
	}
	base := mb.Offsets[mb.Off]
	offsets := make([]int32, mb.Cnt+1)
	for i := range offsets {
		offsets[i] = mb.Offsets[mb.Off+i] - base
	}
	err = writeOffsets(serial, offsets)
	if err != nil {
		return err
	}
	total := int(mb.Offsets[mb.Off+mb.Cnt] - base)
	err = r.WriteBlock(serial, mb.Keys.Region(int(base), total))
	if err != nil {
		return err
	}
	return r.WriteBlock(serial, mb.Values.Region(int(base), total))
}

func (mapEncoding) ReadBlock(r *Registry, deserial util.Deserialize) (block.Block, error) {
	var cnt uint32
	err := util.Read[uint32](&cnt, deserial)
	if err != nil {
		return nil, err
	}
	mask, err := readNulls(deserial, int(cnt))
	if err != nil {
		return nil, err
	}
	offsets, err := readOffsets(deserial, int(cnt)+1)
	if err != nil {
		return nil, err
	}
	keys, err := r.ReadBlock(deserial)
	if err != nil {
		return nil, err
	}
	values, err := r.ReadBlock(deserial)
	if err != nil {
		return nil, err
	}
	return block.NewMapBlock(int(cnt), keys, values, offsets, mask), nil
}

type rowEncoding struct{}

func (rowEncoding) Name() string {
	return block.EncRow
}

func (rowEncoding) WriteBlock(r *Registry, serial util.Serialize, b block.Block) error {
	rb := b.(*block.RowBlock)
	err := util.Write[uint32](uint32(rb.Cnt), serial)
	if err != nil {
		return err
	}
	err = writeNulls(serial, rb)
	if err != nil {
		return err
	}
	err = util.Write[uint32](uint32(rb.FieldCount()), serial)
	if err != nil {
		return err
	}
	for f := 0; f < rb.FieldCount(); f++ {
		err = r.WriteBlock(serial, rb.Field(f))
		if err != nil {
			return err
		}
	}
	return nil
}

func (rowEncoding) ReadBlock(r *Registry, deserial util.Deserialize) (block.Block, error) {
	var cnt uint32
	err := util.Read[uint32](&cnt, deserial)
	if err != nil {
		return nil, err
	}
	mask, err := readNulls(deserial, int(cnt))
	if err != nil {
		return nil, err
	}
	var fieldCount uint32
	err = util.Read[uint32](&fieldCount, deserial)
	if err != nil {
		return nil, err
	}
	fields := make([]block.Block, fieldCount)
	for f := range fields {
		fields[f], err = r.ReadBlock(deserial)
		if err != nil {
			return nil, err
		}
	}
	return block.NewRowBlock(int(cnt), fields, mask), nil
}
