// Copyright 2023-2024 GuinsooLab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package block

import (
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// Encoding names. They key the serde registry and identify block kinds
// on the wire.
const (
	EncByteArray  = "BYTE_ARRAY"
	EncShortArray = "SHORT_ARRAY"
	EncIntArray   = "INT_ARRAY"
	EncLongArray  = "LONG_ARRAY"
	EncInt128     = "INT128_ARRAY"
	EncVarWidth   = "VARIABLE_WIDTH"
	EncDictionary = "DICTIONARY"
	EncRle        = "RLE"
	EncArray      = "ARRAY"
	EncMap        = "MAP"
	EncRow        = "ROW"
)

// Block is an immutable, position-indexed columnar container. Once built
// it may be shared and read by any number of goroutines.
//
// Read accessors are only valid for positions < PositionCount(). Reading
// a position whose value is null yields undefined but non-crashing data;
// callers must check IsNull first. Accessors outside a block kind's
// contract panic with an UnsupportedOperation *Error.
//
// Region and Positions are views: they share storage with the receiver
// and stay alive as long as any holder. CopyRegion, CopyPositions and
// CopyWithAppendedNull always return freshly allocated data with no
// aliasing to the source.
type Block interface {
	PositionCount() int

	// SizeInBytes reports logical cost as if the block were compacted:
	// dictionary and RLE values are counted once. RetainedSizeInBytes
	// reports the true heap footprint including over-allocation, and is
	// never smaller than SizeInBytes.
	SizeInBytes() int64
	RegionSizeInBytes(offset, length int) int64
	PositionsSizeInBytes(positions []int) int64
	RetainedSizeInBytes() int64

	MayHaveNull() bool
	IsNull(pos int) bool

	GetLong(pos int, offset int) int64
	GetInt(pos int, offset int) int32
	GetShort(pos int, offset int) int16
	GetByte(pos int, offset int) byte
	GetSlice(pos int, offset int, length int) []byte
	SliceLength(pos int) int

	Region(offset, length int) Block
	CopyRegion(offset, length int) Block
	Positions(positions []int) Block
	CopyPositions(positions []int) Block
	CopyWithAppendedNull() Block

	EncodingName() string

	// Loaded returns the fully materialized form of the block. Everything
	// except LazyBlock returns itself.
	Loaded() Block
}

// positionsView is the shared Positions implementation: a zero-copy
// dictionary view over the receiver.
func positionsView(b Block, positions []int) Block {
	checkValidPositions(positions, b.PositionCount())
	ids := make([]int32, len(positions))
	for i, p := range positions {
		ids[i] = int32(p)
	}
	return NewDictionaryBlock(len(ids), b, ids)
}

func maskOrEmpty(mask *util.Bitmap) *util.Bitmap {
	if mask == nil {
		return &util.Bitmap{}
	}
	return mask
}
