package serde

import (
	"unsafe"

	"github.com/GuinsooLab/witdb-sub009/pkg/block"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

type dictionaryEncoding struct{}

func (dictionaryEncoding) Name() string {
	return block.EncDictionary
}

func (dictionaryEncoding) WriteBlock(r *Registry, serial util.Serialize, b block.Block) error {
	db := b.(*block.DictionaryBlock)
	err := util.Write[uint32](uint32(db.Cnt), serial)
	if err != nil {
		return err
	}
	ids := db.Ids[db.IdsOff : db.IdsOff+db.Cnt]
	if db.Cnt > 0 {
		buf := util.PointerToSlice[byte](unsafe.Pointer(unsafe.SliceData(ids)), db.Cnt*4)
		err = serial.WriteData(buf, len(buf))
		if err != nil {
			return err
		}
	}
	// the identity token travels with the block so related dictionary
	// columns stay related after a round trip
	err = util.Write[uint64](db.Source.Node, serial)
	if err != nil {
		return err
	}
	err = util.Write[uint64](db.Source.Seq, serial)
	if err != nil {
		return err
	}
	return r.WriteBlock(serial, db.Dict)
}

func (dictionaryEncoding) ReadBlock(r *Registry, deserial util.Deserialize) (block.Block, error) {
	var cnt uint32
	err := util.Read[uint32](&cnt, deserial)
	if err != nil {
		return nil, err
	}
	ids := make([]int32, cnt)
	if cnt > 0 {
		buf := util.PointerToSlice[byte](unsafe.Pointer(unsafe.SliceData(ids)), int(cnt)*4)
		err = deserial.ReadData(buf, len(buf))
		if err != nil {
			return nil, err
		}
	}
	var source block.DictionaryId
	err = util.Read[uint64](&source.Node, deserial)
	if err != nil {
		return nil, err
	}
	err = util.Read[uint64](&source.Seq, deserial)
	if err != nil {
		return nil, err
	}
	dict, err := r.ReadBlock(deserial)
	if err != nil {
		return nil, err
	}
	return block.NewDictionaryBlockWithSource(int(cnt), dict, ids, source), nil
}

type rleEncoding struct{}

func (rleEncoding) Name() string {
	return block.EncRle
}

func (rleEncoding) WriteBlock(r *Registry, serial util.Serialize, b block.Block) error {
	rb := b.(*block.RunLengthBlock)
	err := util.Write[uint32](uint32(rb.Cnt), serial)
	if err != nil {
		return err
	}
	return r.WriteBlock(serial, rb.Val)
}

func (rleEncoding) ReadBlock(r *Registry, deserial util.Deserialize) (block.Block, error) {
	var cnt uint32
	err := util.Read[uint32](&cnt, deserial)
	if err != nil {
		return nil, err
	}
	value, err := r.ReadBlock(deserial)
	if err != nil {
		return nil, err
	}
	return block.NewRunLengthBlock(value, int(cnt)), nil
}
