package serde

import (
	"unsafe"

	"github.com/GuinsooLab/witdb-sub009/pkg/block"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// fixedEncoding covers all fixed-width kinds. Values travel as one raw
// little-endian blob, nulls included, so the read side can adopt the
// buffer without a per-position loop.
type fixedEncoding[T block.FixedValue] struct {
	name string
}

func (e fixedEncoding[T]) Name() string {
	return e.name
}

func valuesToBytes[T block.FixedValue](vals []T) []byte {
	if len(vals) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	return util.PointerToSlice[byte](unsafe.Pointer(unsafe.SliceData(vals)), len(vals)*size)
}

func (e fixedEncoding[T]) WriteBlock(r *Registry, serial util.Serialize, b block.Block) error {
	fb := b.(*block.FixedBlock[T])
	err := util.Write[uint32](uint32(fb.Cnt), serial)
	if err != nil {
		return err
	}
	err = writeNulls(serial, fb)
	if err != nil {
		return err
	}
	buf := valuesToBytes(fb.Vals[fb.Off : fb.Off+fb.Cnt])
	if len(buf) == 0 {
		return nil
	}
	return serial.WriteData(buf, len(buf))
}

func (e fixedEncoding[T]) ReadBlock(r *Registry, deserial util.Deserialize) (block.Block, error) {
	var cnt uint32
	err := util.Read[uint32](&cnt, deserial)
	if err != nil {
		return nil, err
	}
	mask, err := readNulls(deserial, int(cnt))
	if err != nil {
		return nil, err
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	vals := make([]T, cnt)
	if cnt > 0 {
		buf := util.PointerToSlice[byte](unsafe.Pointer(unsafe.SliceData(vals)), int(cnt)*size)
		err = deserial.ReadData(buf, len(buf))
		if err != nil {
			return nil, err
		}
	}
	return block.NewFixedBlock[T](int(cnt), vals, mask), nil
}
