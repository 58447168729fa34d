package serde

import (
	"fmt"

	"github.com/GuinsooLab/witdb-sub009/pkg/block"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// Null flags travel in one of three shapes, picked per block: absent
// when the block has no nulls, a dense bitmap otherwise, or run-length
// coded when the runs are long enough to beat the bitmap.
const (
	nullsNone  uint8 = 0
	nullsDense uint8 = 1
	nullsRuns  uint8 = 2
)

func nullRuns(b block.Block) []uint32 {
	cnt := b.PositionCount()
	var runs []uint32
	valid := true
	runLen := uint32(0)
	for i := 0; i < cnt; i++ {
		if b.IsNull(i) != !valid {
			runs = append(runs, runLen)
			valid = !valid
			runLen = 0
		}
		runLen++
	}
	runs = append(runs, runLen)
	return runs
}

func writeNulls(serial util.Serialize, b block.Block) error {
	cnt := b.PositionCount()
	if !b.MayHaveNull() {
		return util.Write[uint8](nullsNone, serial)
	}

	// runs alternate valid/null starting with valid; compare encoded
	// sizes and take the smaller shape
	runs := nullRuns(b)
	denseBytes := (cnt + 7) / 8
	if 4+len(runs)*4 < denseBytes {
		err := util.Write[uint8](nullsRuns, serial)
		if err != nil {
			return err
		}
		err = util.Write[uint32](uint32(len(runs)), serial)
		if err != nil {
			return err
		}
		for _, r := range runs {
			err = util.Write[uint32](r, serial)
			if err != nil {
				return err
			}
		}
		return nil
	}

	err := util.Write[uint8](nullsDense, serial)
	if err != nil {
		return err
	}
	bits := make([]uint8, denseBytes)
	for i := range bits {
		bits[i] = 0xFF
	}
	for i := 0; i < cnt; i++ {
		if b.IsNull(i) {
			bits[i/8] &= ^(uint8(1) << (i % 8))
		}
	}
	return serial.WriteData(bits, len(bits))
}

// readNulls returns the validity mask for count positions, or an empty
// mask when the block had no nulls.
func readNulls(deserial util.Deserialize, count int) (*util.Bitmap, error) {
	var marker uint8
	err := util.Read[uint8](&marker, deserial)
	if err != nil {
		return nil, err
	}
	mask := &util.Bitmap{}
	switch marker {
	case nullsNone:
		return mask, nil
	case nullsDense:
		bits := make([]uint8, (count+7)/8)
		err = deserial.ReadData(bits, len(bits))
		if err != nil {
			return nil, err
		}
		mask.Bits = bits
		return mask, nil
	case nullsRuns:
		var runCount uint32
		err = util.Read[uint32](&runCount, deserial)
		if err != nil {
			return nil, err
		}
		mask.Init(count)
		pos := 0
		valid := true
		for i := uint32(0); i < runCount; i++ {
			var runLen uint32
			err = util.Read[uint32](&runLen, deserial)
			if err != nil {
				return nil, err
			}
			if !valid {
				for j := uint32(0); j < runLen; j++ {
					mask.SetInvalidUnsafe(uint64(pos + int(j)))
				}
			}
			pos += int(runLen)
			valid = !valid
		}
		if pos != count {
			return nil, fmt.Errorf("null runs cover %d positions, block has %d", pos, count)
		}
		return mask, nil
	default:
		return nil, fmt.Errorf("bad null marker %d", marker)
	}
}
