package serde

import (
	"unsafe"

	"github.com/GuinsooLab/witdb-sub009/pkg/block"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

type varWidthEncoding struct{}

func (varWidthEncoding) Name() string {
	return block.EncVarWidth
}

func writeOffsets(serial util.Serialize, offsets []int32) error {
	buf := util.PointerToSlice[byte](unsafe.Pointer(unsafe.SliceData(offsets)), len(offsets)*4)
	return serial.WriteData(buf, len(buf))
}

func readOffsets(deserial util.Deserialize, count int) ([]int32, error) {
	offsets := make([]int32, count)
	buf := util.PointerToSlice[byte](unsafe.Pointer(unsafe.SliceData(offsets)), count*4)
	err := deserial.ReadData(buf, len(buf))
	if err != nil {
		return nil, err
	}
	return offsets, nil
}

func (varWidthEncoding) WriteBlock(r *Registry, serial util.Serialize, b block.Block) error {
	vb := b.(*block.VarWidthBlock)
	err := util.Write[uint32](uint32(vb.Cnt), serial)
	if err != nil {
		return err
	}
	err = writeNulls(serial, vb)
	if err != nil {
		return err
	}
	// offsets rebased to the view so the read side starts at zero
	base := vb.Offsets[vb.Off]
	offsets := make([]int32, vb.Cnt+1)
	for i := range offsets {
		offsets[i] = vb.Offsets[vb.Off+i] - base
	}
	err = writeOffsets(serial, offsets)
	if err != nil {
		return err
	}
	return util.WriteBytes(vb.Bytes[base:vb.Offsets[vb.Off+vb.Cnt]], serial)
}

func (varWidthEncoding) ReadBlock(r *Registry, deserial util.Deserialize) (block.Block, error) {
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
	data, err := util.ReadBytes(deserial)
	if err != nil {
		return nil, err
	}
	return block.NewVarWidthBlock(int(cnt), offsets, data, mask), nil
}
