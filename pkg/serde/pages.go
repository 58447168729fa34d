package serde

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/GuinsooLab/witdb-sub009/pkg/block"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// ErrChecksum marks a page frame whose payload does not match its
// trailing checksum.
var ErrChecksum = errors.New("page checksum mismatch")

// PagesSerde frames whole pages:
//
//	[uint32 payload length][payload][uint64 checksum]
//
// The payload is the column count followed by every column block. The
// checksum covers the payload only, so a torn or corrupted frame fails
// before any block is decoded.
type PagesSerde struct {
	reg *Registry
}

func NewPagesSerde(reg *Registry) *PagesSerde {
	if reg == nil {
		reg = NewRegistry()
	}
	return &PagesSerde{reg: reg}
}

func (ps *PagesSerde) Registry() *Registry {
	return ps.reg
}

func (ps *PagesSerde) WritePage(serial util.Serialize, page *block.Page) error {
	body := util.NewBufferSerialize(nil)
	err := util.Write[uint32](uint32(page.ColumnCount()), body)
	if err != nil {
		return err
	}
	for i := 0; i < page.ColumnCount(); i++ {
		err = ps.reg.WriteBlock(body, page.Column(i))
		if err != nil {
			return err
		}
	}
	payload := body.Bytes()
	err = util.Write[uint32](uint32(len(payload)), serial)
	if err != nil {
		return err
	}
	err = serial.WriteData(payload, len(payload))
	if err != nil {
		return err
	}
	return util.Write[uint64](util.Checksum(payload), serial)
}

func (ps *PagesSerde) ReadPage(deserial util.Deserialize) (page *block.Page, err error) {
	// corrupted payloads can trip construction invariants that surface
	// as panics; a bad frame must come back as an error
	defer func() {
		if v := recover(); v != nil {
			page = nil
			err = fmt.Errorf("decoding page: %w", util.ConvertPanicError(v))
		}
	}()

	var payloadLen uint32
	err = util.Read[uint32](&payloadLen, deserial)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, payloadLen)
	err = deserial.ReadData(payload, int(payloadLen))
	if err != nil {
		return nil, err
	}
	var sum uint64
	err = util.Read[uint64](&sum, deserial)
	if err != nil {
		return nil, err
	}
	if util.Checksum(payload) != sum {
		return nil, ErrChecksum
	}

	body := util.NewBufferSerialize(bytes.NewBuffer(payload))
	var columns uint32
	err = util.Read[uint32](&columns, body)
	if err != nil {
		return nil, err
	}
	if columns == 0 {
		return nil, fmt.Errorf("page frame with zero columns")
	}
	blocks := make([]block.Block, columns)
	for i := range blocks {
		blocks[i], err = ps.reg.ReadBlock(body)
		if err != nil {
			return nil, err
		}
	}
	return block.NewPage(blocks...), nil
}
